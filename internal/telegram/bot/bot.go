package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/futig/blueprint-backend/internal/config"
	"github.com/futig/blueprint-backend/internal/pkg/logger"
	"github.com/futig/blueprint-backend/internal/telegram/handlers"
	"github.com/futig/blueprint-backend/internal/telegram/keyboard"
	"github.com/futig/blueprint-backend/internal/telegram/middleware"
	"github.com/futig/blueprint-backend/internal/telegram/render"
	"github.com/futig/blueprint-backend/internal/telegram/state"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Bot represents the Telegram bot
type Bot struct {
	api          *tgbotapi.BotAPI
	cfg          *config.TelegramConfig
	stateManager *state.Manager
	handlers     map[string]handlers.Handler
	keyboard     *keyboard.Builder
	sender       *handlers.MessageSender
	presenter    *handlers.Presenter
	logger       *zap.Logger
	loggingMW    *middleware.LoggingMiddleware
	recoveryMW   *middleware.RecoveryMiddleware
	rateLimitMW  *middleware.RateLimiterMiddleware
	updatesChan  tgbotapi.UpdatesChannel
	slots        chan struct{}
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

// New creates a new Telegram bot
func New(cfg *config.TelegramConfig, stateManager *state.Manager, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}
	api.Debug = false

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	kb := keyboard.NewBuilder()
	sender := handlers.NewMessageSender(api, &cfg.Retry, logger)

	maxConcurrent := cfg.MaxConcurrentUsers
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	bot := &Bot{
		api:          api,
		cfg:          cfg,
		stateManager: stateManager,
		keyboard:     kb,
		sender:       sender,
		presenter:    handlers.NewPresenter(sender, kb),
		logger:       logger,
		handlers:     make(map[string]handlers.Handler),
		slots:        make(chan struct{}, maxConcurrent),
		stopChan:     make(chan struct{}),
	}

	bot.loggingMW = middleware.NewLoggingMiddleware(logger)
	bot.recoveryMW = middleware.NewRecoveryMiddleware(logger, api)
	bot.rateLimitMW = middleware.NewRateLimiterMiddleware(
		cfg.RateLimitPerMinute,
		cfg.RateLimitBurst,
		logger,
		api,
	)

	return bot, nil
}

// Start starts the bot
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting telegram bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout

	b.updatesChan = b.api.GetUpdatesChan(u)

	ctx = ctxzap.ToContext(ctx, b.logger)
	go b.processUpdates(ctx)

	b.logger.Info("telegram bot started successfully")
	return nil
}

// Stop stops the bot gracefully with timeout
func (b *Bot) Stop() error {
	b.logger.Info("stopping telegram bot")

	close(b.stopChan)
	b.api.StopReceivingUpdates()
	b.rateLimitMW.Close()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	shutdownTimeout := time.Duration(b.cfg.ShutdownTimeout) * time.Second
	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(shutdownTimeout):
		b.logger.Warn("shutdown timeout exceeded, some handlers may not have completed",
			zap.Duration("timeout", shutdownTimeout),
		)
		return errors.New("shutdown timeout exceeded")
	}

	b.logger.Info("telegram bot stopped successfully")
	return nil
}

// processUpdates processes incoming updates, at most MaxConcurrentUsers at a time
func (b *Bot) processUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "context cancelled, stopping update processing")
			return
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update, ok := <-b.updatesChan:
			if !ok {
				return
			}
			b.slots <- struct{}{}
			b.wg.Add(1)
			go func(u tgbotapi.Update) {
				defer func() {
					<-b.slots
					b.wg.Done()
				}()
				b.handleUpdateWithMiddleware(u)
			}(update)
		}
	}
}

// handleUpdateWithMiddleware processes update through middleware chain
func (b *Bot) handleUpdateWithMiddleware(update tgbotapi.Update) {
	b.rateLimitMW.Handle(update, func(u tgbotapi.Update) {
		b.loggingMW.Handle(u, func(u2 tgbotapi.Update) {
			b.recoveryMW.Handle(u2, b.handleUpdate)
		})
	})
}

// handleUpdate routes update to appropriate handler
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	ctx := ctxzap.ToContext(context.Background(), b.logger)

	switch {
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.From != nil:
		b.handleMessage(ctx, update.Message)
	}
}

// handleMessage routes a message to the handler of the user's current wizard step
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	userID := message.From.ID
	chatID := message.Chat.ID

	w, err := b.stateManager.Get(ctx, userID)
	if err != nil {
		ctxzap.Error(ctx, "failed to get wizard",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		b.sendText(ctx, chatID, render.ErrGeneric)
		return
	}
	ctx = logger.WithWizard(ctx, w.ID)

	step := w.Step.String()
	handler, exists := b.handlers[step]
	if !exists {
		// Steps driven only by buttons get their prompt again
		b.sendText(ctx, chatID, render.MsgUseButtons)
		if err := b.presenter.ShowStep(ctx, chatID, w); err != nil {
			ctxzap.Error(ctx, "failed to show step", zap.Error(err))
		}
		return
	}

	msg := &handlers.Message{
		ChatID:    chatID,
		UserID:    userID,
		MessageID: message.MessageID,
		Text:      message.Text,
		Caption:   message.Caption,
		Photo:     message.Photo,
		Document:  message.Document,
	}

	if err := handler.Handle(ctx, msg); err != nil {
		ctxzap.Error(ctx, "handler error",
			zap.Error(err),
			zap.String("state", step),
			zap.Int64("user_id", userID),
		)
		b.sendText(ctx, chatID, render.ClassifyError(err))
	}
}

// handleCommand handles bot commands
func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	command := message.Command()
	chatID := message.Chat.ID

	ctxzap.Info(ctx, "command received",
		zap.String("command", command),
		zap.Int64("user_id", message.From.ID),
	)

	switch command {
	case "start":
		b.handleStartCommand(ctx, message)
	case "help":
		b.sendText(ctx, chatID, render.MsgHelp)
	case "cancel":
		b.handleCancelCommand(ctx, message)
	default:
		b.sendText(ctx, chatID, render.ErrUnknownCommand)
	}
}

// handleStartCommand starts a fresh wizard. A generation still running for the
// previous one is discarded when it finishes.
func (b *Bot) handleStartCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	w, err := b.stateManager.Restart(ctx, message.From.ID)
	if err != nil {
		ctxzap.Error(ctx, "failed to start wizard", zap.Error(err))
		b.sendText(ctx, chatID, render.ErrGeneric)
		return
	}

	b.sendText(ctx, chatID, render.MsgWelcome)
	if err := b.presenter.ShowStep(ctx, chatID, w); err != nil {
		ctxzap.Error(ctx, "failed to show first step",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

func (b *Bot) handleCancelCommand(ctx context.Context, message *tgbotapi.Message) {
	if err := b.stateManager.Delete(ctx, message.From.ID); err != nil {
		ctxzap.Error(ctx, "failed to delete wizard",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID),
		)
	}
	b.sendText(ctx, message.Chat.ID, render.MsgCancelled)
}

// handleCallbackQuery answers the query at once and handles it in the background,
// so Telegram does not treat a long generation as a stale query.
func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.Message == nil || query.From == nil {
		b.sender.Answer(query.ID, "")
		return
	}

	if _, err := keyboard.ParseCallback(query.Data); err != nil {
		ctxzap.Warn(ctx, "invalid callback data",
			zap.Error(err),
			zap.String("data", query.Data),
		)
		b.sender.Answer(query.ID, render.ErrInvalidCallback)
		return
	}

	handler, exists := b.handlers[handlers.HandlerStateCallback]
	if !exists {
		ctxzap.Warn(ctx, "callback handler not registered")
		b.sender.Answer(query.ID, render.ErrGeneric)
		return
	}

	b.sender.Answer(query.ID, "")

	msg := &handlers.Message{
		ChatID:       query.Message.Chat.ID,
		UserID:       query.From.ID,
		MessageID:    query.Message.MessageID,
		CallbackData: query.Data,
		CallbackID:   query.ID,
	}

	b.wg.Add(1)
	go func(ctx context.Context) {
		defer b.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				ctxzap.Error(ctx, "panic recovered in callback handler", zap.Any("panic", r))
				b.sendText(ctx, msg.ChatID, render.ErrGeneric)
			}
		}()

		if err := handler.Handle(ctx, msg); err != nil {
			ctxzap.Error(ctx, "callback handler error",
				zap.Error(err),
				zap.Int64("user_id", msg.UserID),
			)
			b.sendText(ctx, msg.ChatID, render.ClassifyError(err))
		}
	}(logger.Detach(ctx))
}

// sendError sends a plain message without a keyboard
func (b *Bot) sendText(ctx context.Context, chatID int64, text string) {
	_ = b.sender.Send(ctx, chatID, text, nil)
}

// RegisterHandler registers a handler for a state
func (b *Bot) RegisterHandler(handler handlers.Handler) {
	state := handler.GetState()

	if !handlers.IsValidState(state) {
		b.logger.Fatal("invalid handler state",
			zap.String("state", state),
		)
	}

	b.handlers[state] = handler
	b.logger.Info("handler registered",
		zap.String("state", state),
	)
}

// GetAPI returns the bot API instance (for handlers)
func (b *Bot) GetAPI() *tgbotapi.BotAPI {
	return b.api
}

// GetStateManager returns the state manager (for handlers)
func (b *Bot) GetStateManager() *state.Manager {
	return b.stateManager
}

// GetKeyboard returns the keyboard builder (for handlers)
func (b *Bot) GetKeyboard() *keyboard.Builder {
	return b.keyboard
}

// GetSender returns the retrying message sender (for handlers)
func (b *Bot) GetSender() *handlers.MessageSender {
	return b.sender
}

// GetConfig returns the bot config (for handlers)
func (b *Bot) GetConfig() *config.TelegramConfig {
	return b.cfg
}
