package handlers

import (
	"context"

	"github.com/futig/blueprint-backend/internal/entity"
	"github.com/futig/blueprint-backend/internal/pkg/formatter"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotAPI is the part of *tgbotapi.BotAPI the handlers talk to
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// PlanUsecase generates the plan and blueprints shown on the results step
type PlanUsecase interface {
	GeneratePlan(ctx context.Context, req *entity.BuildRequest) (*entity.PlanResult, error)
	GenerateBlueprints(ctx context.Context, plan string) (*entity.PlanResult, error)
}

type FormatterFactory interface {
	Create(format entity.ResultFormat) (formatter.Formatter, error)
}

type ImageValidator interface {
	MaxImageSize() int64
	ValidateImage(data []byte, declaredType, filename string) (*entity.Image, error)
}

// FileDownloader fetches a file the user sent to the bot
type FileDownloader interface {
	Download(ctx context.Context, fileID string) (data []byte, contentType string, err error)
}
