package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/futig/blueprint-backend/internal/config"
	"github.com/futig/blueprint-backend/internal/entity"
	"github.com/futig/blueprint-backend/internal/integration/common"
	pkghttp "github.com/futig/blueprint-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector talks to the Anthropic Messages API
type Connector struct {
	config    config.LLMConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.LLMConnectorConfig,
	apiKey string,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger,
			pkghttp.WithHeader("x-api-key", apiKey),
			pkghttp.WithHeader("anthropic-version", cfg.APIVersion),
		),
		config: cfg,
		logger: logger,
	}
}

// Complete sends a single non-streaming completion request.
// Every failure is returned as *entity.UpstreamError.
func (c *Connector) Complete(ctx context.Context, req *entity.CompletionRequest) (*entity.CompletionResponse, error) {
	ctxzap.Info(ctx, "requesting completion",
		zap.String("model", req.Model),
		zap.Int("max_tokens", req.MaxTokens),
	)

	var resp entity.CompletionResponse
	err := c.connector.DoRequest(ctx, http.MethodPost, c.config.MessagesEndpoint, req, &resp)
	if err != nil {
		return nil, toUpstreamError(err)
	}

	ctxzap.Info(ctx, "completion received",
		zap.String("stop_reason", resp.StopReason),
		zap.Int("content_parts", len(resp.Content)),
	)

	return &resp, nil
}

func toUpstreamError(err error) error {
	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		return &entity.UpstreamError{
			StatusCode: httpErr.StatusCode,
			Message:    errorMessage(httpErr),
			Err:        err,
		}
	}

	var netErr *pkghttp.NetworkError
	if errors.As(err, &netErr) {
		return &entity.UpstreamError{
			Message: netErr.Err.Error(),
			Err:     err,
		}
	}

	return &entity.UpstreamError{Message: err.Error(), Err: err}
}

// errorMessage prefers the message from the API error envelope and falls back
// to the raw body, then to the status text.
func errorMessage(httpErr *pkghttp.HTTPError) string {
	var body entity.CompletionErrorBody
	if err := json.Unmarshal(httpErr.Body, &body); err == nil && body.Error.Message != "" {
		return body.Error.Message
	}

	if raw := strings.TrimSpace(string(httpErr.Body)); raw != "" {
		return raw
	}

	return http.StatusText(httpErr.StatusCode)
}
