package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":8080")
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Empty(t, cfg.AnthropicAPIKey)
	assert.Equal(t, "https://api.anthropic.com", cfg.LLMConnectorCfg.Url)
	assert.Equal(t, "/v1/messages", cfg.LLMConnectorCfg.MessagesEndpoint)
	assert.Equal(t, "2023-06-01", cfg.LLMConnectorCfg.APIVersion)
	assert.Equal(t, "claude-3-5-haiku-20241022", cfg.LLMConnectorCfg.Model)
	assert.Equal(t, 8192, cfg.LLMConnectorCfg.MaxTokens)
	assert.Equal(t, 3*time.Minute, cfg.LLMConnectorCfg.RequestTimeout)
	assert.Equal(t, int64(10<<20), cfg.FileUploadCfg.MaxImageSize)
	assert.Equal(t, 24*time.Hour, cfg.TelegramCfg.StateTTL)
	assert.Equal(t, uint(3), cfg.TelegramCfg.Retry.Attempts)
	assert.False(t, cfg.EnableMocks)
}

func TestParse_RequiresServerAddr(t *testing.T) {
	t.Setenv("SERVER_ADDR", "")

	_, err := Parse()
	assert.Error(t, err)
}

func TestParse_RejectsInconsistentUploadLimits(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":8080")
	t.Setenv("FILE_UPLOAD_MAX_IMAGE_SIZE", "2048")
	t.Setenv("FILE_UPLOAD_MAX_UPLOAD_SIZE", "1024")

	_, err := Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FILE_UPLOAD_MAX_UPLOAD_SIZE")
}

func TestTelegramConfig_Validate(t *testing.T) {
	valid := TelegramConfig{
		BotToken:           "123:abc",
		RateLimitPerMinute: 20,
		RateLimitBurst:     5,
		ShutdownTimeout:    30,
		StateTTL:           time.Hour,
	}
	assert.NoError(t, valid.Validate())

	missingToken := valid
	missingToken.BotToken = ""
	err := missingToken.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")

	badBurst := valid
	badBurst.RateLimitBurst = 0
	assert.Error(t, badBurst.Validate())
}

func TestGetEnvFile(t *testing.T) {
	assert.Equal(t, ".env.prod", getEnvFile("production"))
	assert.Equal(t, ".env.local", getEnvFile("dev"))
	assert.Equal(t, ".env.staging", getEnvFile("staging"))
}
