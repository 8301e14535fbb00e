package telegram

import (
	"context"
	"fmt"

	"github.com/futig/blueprint-backend/internal/config"
	"github.com/futig/blueprint-backend/internal/telegram/bot"
	"github.com/futig/blueprint-backend/internal/telegram/handlers"
	"github.com/futig/blueprint-backend/internal/telegram/state"
	pkgHTTP "github.com/futig/blueprint-backend/pkg/http"
	"go.uber.org/zap"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

// Deps are the services the bot drives
type Deps struct {
	PlanUC     handlers.PlanUsecase
	Formatters handlers.FormatterFactory
	Images     handlers.ImageValidator
	// Files downloads user uploads; it must not log request URLs, they carry the bot token
	Files *pkgHTTP.Connector
}

// NewBot initializes the telegram bot with all dependencies
func NewBot(cfg *config.TelegramConfig, storage state.Storage, deps Deps, logger *zap.Logger) (Bot, error) {
	stateManager := state.NewManager(storage)

	b, err := bot.New(cfg, stateManager, logger)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	registerHandlers(b, deps, logger)

	logger.Info("telegram bot initialized successfully")

	return b, nil
}

// registerHandlers registers all handlers with the bot
func registerHandlers(b *bot.Bot, deps Deps, logger *zap.Logger) {
	api := b.GetAPI()
	sender := b.GetSender()
	stateManager := b.GetStateManager()
	kb := b.GetKeyboard()

	files := handlers.NewTelegramFiles(api, deps.Files, deps.Images.MaxImageSize())

	registered := []handlers.Handler{
		handlers.NewCallbackHandler(api, sender, stateManager, kb, deps.PlanUC, deps.Formatters, logger),
		handlers.NewDescriptionHandler(sender, stateManager, kb, files, deps.Images),
		handlers.NewBudgetHandler(sender, stateManager, kb),
	}
	for _, h := range registered {
		b.RegisterHandler(h)
	}

	logger.Info("telegram handlers registered",
		zap.Int("handler_count", len(registered)),
	)
}
