package builder

import (
	"fmt"
	"net/http"
	"time"

	"github.com/futig/blueprint-backend/internal/api"
	"github.com/futig/blueprint-backend/internal/api/analyze"
	"github.com/futig/blueprint-backend/internal/api/export"
	"github.com/futig/blueprint-backend/internal/config"
	"github.com/futig/blueprint-backend/internal/integration/llm"
	"github.com/futig/blueprint-backend/internal/pkg/formatter"
	"github.com/futig/blueprint-backend/internal/pkg/validator"
	"github.com/futig/blueprint-backend/internal/telegram"
	"github.com/futig/blueprint-backend/internal/telegram/state"
	"github.com/futig/blueprint-backend/internal/usecase/plan"
	pkgHTTP "github.com/futig/blueprint-backend/pkg/http"
	"go.uber.org/zap"
)

// core holds the services shared by the HTTP API and the bot
type core struct {
	planUC     *plan.PlanUsecase
	validator  *validator.Validator
	formatters *formatter.Factory
}

func buildCore(cfg *config.Config, logger *zap.Logger) *core {
	var connector plan.CompletionConnector
	if cfg.EnableMocks {
		logger.Info("Using mock completion connector")
		connector = llm.NewMockConnector(logger)
	} else {
		logger.Info("Using completion API connector",
			zap.String("url", cfg.LLMConnectorCfg.Url),
			zap.String("model", cfg.LLMConnectorCfg.Model),
		)
		connector = llm.NewConnector(cfg.LLMConnectorCfg, cfg.AnthropicAPIKey, logger)
	}

	if cfg.AnthropicAPIKey == "" {
		logger.Warn("ANTHROPIC_API_KEY is not set, analyze requests will fail")
	}

	planUC := plan.NewUsecase(plan.Config{
		APIKey:    cfg.AnthropicAPIKey,
		Model:     cfg.LLMConnectorCfg.Model,
		MaxTokens: cfg.LLMConnectorCfg.MaxTokens,
	}, connector, logger)

	return &core{
		planUC:     planUC,
		validator:  validator.NewFileValidator(cfg.FileUploadCfg),
		formatters: formatter.NewFactory(),
	}
}

func loadConfigAndLogger() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}
	return cfg, logger, nil
}

func Build() (*App, error) {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return nil, err
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	c := buildCore(cfg, logger)

	analyzeHandler := analyze.NewHandler(c.planUC, c.validator)
	exportHandler := export.NewHandler(c.formatters)
	logger.Info("API handlers initialized")

	router := api.SetupRouter(analyzeHandler, exportHandler, logger)

	// Write timeout leaves room for the completion call behind /api/analyze-house
	server := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      cfg.LLMConnectorCfg.RequestTimeout + time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}, nil
}

// BuildTelegramBot creates and initializes the Telegram bot
func BuildTelegramBot() (telegram.Bot, *zap.Logger, error) {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return nil, nil, err
	}

	if err := cfg.TelegramCfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger.Info("Building Telegram bot",
		zap.String("environment", cfg.Environment),
	)

	c := buildCore(cfg, logger)

	// No request logging here: Bot API file URLs embed the bot token
	files := pkgHTTP.NewConnector(
		&pkgHTTP.ConnectorConfig{Logger: logger},
		pkgHTTP.WithRequestTimeout(cfg.TelegramCfg.DownloadTimeout),
	)

	bot, err := telegram.NewBot(
		&cfg.TelegramCfg,
		state.NewMemoryStorage(cfg.TelegramCfg.StateTTL),
		telegram.Deps{
			PlanUC:     c.planUC,
			Formatters: c.formatters,
			Images:     c.validator,
			Files:      files,
		},
		logger,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	logger.Info("Telegram bot built successfully",
		zap.String("environment", cfg.Environment),
	)

	return bot, logger, nil
}
