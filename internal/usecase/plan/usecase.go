package plan

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/futig/blueprint-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const defaultImageMediaType = "image/jpeg"

type Config struct {
	APIKey    string
	Model     string
	MaxTokens int
}

// PlanUsecase turns building descriptions and photos into construction plans
// and blueprints using the completion API.
type PlanUsecase struct {
	cfg       Config
	connector CompletionConnector
	logger    *zap.Logger
}

func NewUsecase(cfg Config, connector CompletionConnector, logger *zap.Logger) *PlanUsecase {
	return &PlanUsecase{
		cfg:       cfg,
		connector: connector,
		logger:    logger,
	}
}

// CheckCredential reports ErrMissingCredential when no API key is configured
func (uc *PlanUsecase) CheckCredential() error {
	if uc.cfg.APIKey == "" {
		return entity.ErrMissingCredential
	}
	return nil
}

// Analyze forwards the request to the completion API in a single call and
// returns the first text part of the answer unchanged.
func (uc *PlanUsecase) Analyze(ctx context.Context, req *entity.AnalyzeRequest) (string, error) {
	if err := uc.CheckCredential(); err != nil {
		ctxzap.Error(ctx, "completion API key is not set")
		return "", err
	}

	if req == nil || (!req.HasImage() && !req.HasText()) {
		return "", entity.ErrMissingInput
	}

	blueprint := req.IsBlueprintRequest()

	content := make([]entity.ContentPart, 0, 2)
	if req.HasImage() {
		mediaType := req.Image.MediaType
		if mediaType == "" {
			mediaType = defaultImageMediaType
		}

		ctxzap.Info(ctx, "attaching image",
			zap.Int("size", len(req.Image.Data)),
			zap.String("media_type", mediaType),
		)

		content = append(content, entity.ImagePart(mediaType, base64.StdEncoding.EncodeToString(req.Image.Data)))
	}
	content = append(content, entity.TextPart(buildPromptText(req.Text, req.HasImage(), blueprint)))

	resp, err := uc.connector.Complete(ctx, &entity.CompletionRequest{
		Model:     uc.cfg.Model,
		MaxTokens: uc.cfg.MaxTokens,
		Messages: []entity.CompletionMessage{{
			Role:    entity.RoleUser,
			Content: content,
		}},
	})
	if err != nil {
		ctxzap.Error(ctx, "completion request failed", zap.Error(err), zap.Bool("blueprint", blueprint))
		return "", err
	}

	if len(resp.Content) == 0 || resp.Content[0].Type != entity.ContentTypeText {
		ctxzap.Warn(ctx, "completion returned no leading text part")
		return fallbackResponse, nil
	}

	return resp.Content[0].Text, nil
}

// GeneratePlan produces the construction plan for a completed wizard
func (uc *PlanUsecase) GeneratePlan(ctx context.Context, req *entity.BuildRequest) (*entity.PlanResult, error) {
	if err := req.BuildingType.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("%w: description", entity.ErrMissingField)
	}
	if err := req.TerrainType.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Budget) == "" {
		return nil, fmt.Errorf("%w: budget", entity.ErrMissingField)
	}

	text, err := uc.Analyze(ctx, &entity.AnalyzeRequest{
		Image: req.Image,
		Text:  req.Describe(),
	})
	if err != nil {
		return nil, err
	}

	return &entity.PlanResult{Kind: entity.ResultKindPlan, Text: text}, nil
}

// GenerateBlueprints asks for technical drawings of every phase of plan
func (uc *PlanUsecase) GenerateBlueprints(ctx context.Context, plan string) (*entity.PlanResult, error) {
	if strings.TrimSpace(plan) == "" {
		return nil, entity.ErrNoResult
	}

	text, err := uc.Analyze(ctx, &entity.AnalyzeRequest{Text: blueprintPrompt(plan)})
	if err != nil {
		return nil, err
	}

	return &entity.PlanResult{Kind: entity.ResultKindBlueprints, Text: text}, nil
}
