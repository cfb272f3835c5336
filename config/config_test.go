package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FACILITATOR_URL", "https://facilitator.example.com/settle")
	t.Setenv("RELAY_RECIPIENT_ADDRESS", "0x3f2f84d6aee437f1724e36d00554bf435938eaa5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.SettleTimeout)
	assert.Equal(t, "MON", cfg.Gate.Currency)
	assert.Equal(t, int64(10143), cfg.Gate.ChainID)
	assert.Equal(t, "/api/send-dm", cfg.Gate.ResourcePath)
	assert.True(t, cfg.Gate.DefaultPrice.Equal(decimal.RequireFromString("0.1")))
	assert.NoError(t, cfg.Gate.ValidateRecipient())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FACILITATOR_URL", "https://facilitator.example.com/settle")
	t.Setenv("RELAY_PORT", "9090")
	t.Setenv("RELAY_DEFAULT_PRICE", "2.5")
	t.Setenv("RELAY_CHAIN_ID", "84532")
	t.Setenv("RELAY_CURRENCY", "USDC")
	t.Setenv("RELAY_SETTLE_TIMEOUT_SECONDS", "5")
	t.Setenv("TG_BOT_TOKEN", "token")
	t.Setenv("TG_CHAT_ID", "42")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.Gate.DefaultPrice.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, int64(84532), cfg.Gate.ChainID)
	assert.Equal(t, "USDC", cfg.Gate.Currency)
	assert.Equal(t, 5*time.Second, cfg.SettleTimeout)
	assert.Equal(t, "token", cfg.TelegramBotToken)
	assert.Equal(t, "42", cfg.TelegramChatID)
}

func TestLoadRequiresFacilitator(t *testing.T) {
	t.Setenv("FACILITATOR_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FACILITATOR_URL")
}

func TestLoadAllowsMissingRecipient(t *testing.T) {
	// A missing recipient is a per-request 500, not a boot failure.
	t.Setenv("FACILITATOR_URL", "https://facilitator.example.com/settle")
	t.Setenv("RELAY_RECIPIENT_ADDRESS", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Error(t, cfg.Gate.ValidateRecipient())
}

func TestLoadRejectsBadPrice(t *testing.T) {
	t.Setenv("FACILITATOR_URL", "https://facilitator.example.com/settle")
	t.Setenv("RELAY_DEFAULT_PRICE", "lots")

	_, err := Load()
	require.Error(t, err)
}
