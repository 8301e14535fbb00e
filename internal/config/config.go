package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/blueprint-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr      string        `env:"SERVER_ADDR,notEmpty"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Completion API credential. Absence is reported per request, not at startup.
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`

	LLMConnectorCfg LLMConnectorConfig `envPrefix:"LLM_"`

	// File upload configuration
	FileUploadCfg FileUploadConfig `envPrefix:"FILE_UPLOAD_"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Telegram bot configuration (only validated by the bot binary)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Environment (set from flag, not from env var)
	Environment string
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string               `env:"BOT_TOKEN"`
	UpdateTimeout      int                  `env:"UPDATE_TIMEOUT" envDefault:"60"`
	MaxConcurrentUsers int                  `env:"MAX_CONCURRENT_USERS" envDefault:"100"`
	RateLimitPerMinute int                  `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	RateLimitBurst     int                  `env:"RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownTimeout    int                  `env:"SHUTDOWN_TIMEOUT" envDefault:"30"` // seconds
	StateTTL           time.Duration        `env:"STATE_TTL" envDefault:"24h"`
	DownloadTimeout    time.Duration        `env:"DOWNLOAD_TIMEOUT" envDefault:"60s"`
	Retry              pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type LLMConnectorConfig struct {
	HTTPClientConfig
	MessagesEndpoint string `env:"MESSAGES_ENDPOINT" envDefault:"/v1/messages"`
	APIVersion       string `env:"API_VERSION" envDefault:"2023-06-01"`
	Model            string `env:"MODEL" envDefault:"claude-3-5-haiku-20241022"`
	MaxTokens        int    `env:"MAX_TOKENS" envDefault:"8192"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"3m"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"30s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"3m"`
	Url                   string        `env:"SERVICE_URL" envDefault:"https://api.anthropic.com"`
}

// FileUploadConfig holds file upload limits
type FileUploadConfig struct {
	MaxImageSize  int64 `env:"MAX_IMAGE_SIZE" envDefault:"10485760"`  // 10 MiB
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"20971520"` // 20 MiB
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	cfg.Environment = *envFlag

	return cfg, nil
}

// Parse reads the configuration from the process environment and validates it
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if cfg.LLMConnectorCfg.Url == "" {
		errors = append(errors, "LLM_SERVICE_URL must not be empty")
	}

	if cfg.LLMConnectorCfg.MaxTokens < 1 {
		errors = append(errors, fmt.Sprintf("LLM_MAX_TOKENS must be positive, got %d", cfg.LLMConnectorCfg.MaxTokens))
	}

	if cfg.FileUploadCfg.MaxImageSize < 1 {
		errors = append(errors, fmt.Sprintf("FILE_UPLOAD_MAX_IMAGE_SIZE must be positive, got %d", cfg.FileUploadCfg.MaxImageSize))
	}

	if cfg.FileUploadCfg.MaxUploadSize < cfg.FileUploadCfg.MaxImageSize {
		errors = append(errors, fmt.Sprintf("FILE_UPLOAD_MAX_UPLOAD_SIZE must be at least FILE_UPLOAD_MAX_IMAGE_SIZE(%d), got %d",
			cfg.FileUploadCfg.MaxImageSize, cfg.FileUploadCfg.MaxUploadSize))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// Validate checks settings that only the bot binary needs
func (c *TelegramConfig) Validate() error {
	var errors []string

	if c.BotToken == "" {
		errors = append(errors, "TELEGRAM_BOT_TOKEN must not be empty")
	}

	if c.RateLimitPerMinute < 1 || c.RateLimitPerMinute > 60 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", c.RateLimitPerMinute))
	}

	if c.RateLimitBurst < 1 || c.RateLimitBurst > 20 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_BURST must be between 1 and 20, got %d", c.RateLimitBurst))
	}

	if c.ShutdownTimeout < 1 || c.ShutdownTimeout > 300 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_SHUTDOWN_TIMEOUT must be between 1 and 300 seconds, got %d", c.ShutdownTimeout))
	}

	if c.StateTTL <= 0 {
		errors = append(errors, "TELEGRAM_STATE_TTL must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("telegram configuration errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
