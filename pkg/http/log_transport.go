package http

import (
	"net/http"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// maxLoggedPayload caps how much of a request body reaches the logs.
// Image uploads are sent inline as base64 and would otherwise flood them.
const maxLoggedPayload = 2048

type payloadContextKey struct{}

// redactedHeaders are never written to the logs
var redactedHeaders = map[string]bool{
	"Authorization": true,
	"X-Api-Key":     true,
}

type logTransport struct {
	transport http.RoundTripper
}

func (t *logTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	start := time.Now()

	headers := make(map[string]string, len(req.Header))
	for key := range req.Header {
		if redactedHeaders[http.CanonicalHeaderKey(key)] {
			headers[key] = "[REDACTED]"
			continue
		}
		headers[key] = req.Header.Get(key)
	}

	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Any("headers", headers),
	}

	if payload, ok := ctx.Value(payloadContextKey{}).([]byte); ok && len(payload) > 0 {
		fields = append(fields, zap.Int("payload_size", len(payload)))
		if len(payload) > maxLoggedPayload {
			payload = payload[:maxLoggedPayload]
			fields = append(fields, zap.Bool("payload_truncated", true))
		}
		fields = append(fields, zap.ByteString("payload", payload))
	}

	ctxzap.Debug(ctx, "HTTP outbound request", fields...)

	resp, err := t.transport.RoundTrip(req)
	if err != nil {
		ctxzap.Debug(ctx, "HTTP outbound request failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, err
	}

	ctxzap.Debug(ctx, "HTTP outbound response",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	return resp, nil
}

// WithRequestLogging wraps the HTTP transport with debug logging of method, URL,
// redacted headers and a truncated payload.
func WithRequestLogging() HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &logTransport{
			transport: rt,
		}
	})
}
