// Package config loads the relay's process configuration from environment
// variables. Everything is read once at startup; the resulting values are
// immutable for the process lifetime.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cybergate-systems/relay/types"
)

type Config struct {
	Port     string
	LogLevel string

	// FacilitatorURL is the settlement authority's settle endpoint.
	FacilitatorURL string
	SettleTimeout  time.Duration

	// Telegram credentials are optional: when absent the relay still settles
	// payments and skips notification delivery.
	TelegramBotToken string
	TelegramChatID   string

	Gate types.GateConfig
}

// Load reads configuration from the environment.
//
// RELAY_RECIPIENT_ADDRESS is deliberately not required here: a missing
// recipient is surfaced per-request as a 500 by the gate, so a misdeployed
// process answers with a diagnosable error instead of crash-looping.
func Load() (*Config, error) {
	facilitatorURL := os.Getenv("FACILITATOR_URL")
	if facilitatorURL == "" {
		return nil, fmt.Errorf("required environment variable FACILITATOR_URL is not set")
	}

	defaultPrice, err := decimal.NewFromString(getOptionalEnv("RELAY_DEFAULT_PRICE", "0.1"))
	if err != nil {
		return nil, fmt.Errorf("invalid RELAY_DEFAULT_PRICE: %w", err)
	}

	chainID, err := strconv.ParseInt(getOptionalEnv("RELAY_CHAIN_ID", "10143"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RELAY_CHAIN_ID: %w", err)
	}

	settleTimeout, err := strconv.Atoi(getOptionalEnv("RELAY_SETTLE_TIMEOUT_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid RELAY_SETTLE_TIMEOUT_SECONDS: %w", err)
	}

	return &Config{
		Port:             getOptionalEnv("RELAY_PORT", "8080"),
		LogLevel:         getOptionalEnv("LOG_LEVEL", "info"),
		FacilitatorURL:   facilitatorURL,
		SettleTimeout:    time.Duration(settleTimeout) * time.Second,
		TelegramBotToken: os.Getenv("TG_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TG_CHAT_ID"),
		Gate: types.GateConfig{
			RecipientAddress: os.Getenv("RELAY_RECIPIENT_ADDRESS"),
			DefaultPrice:     defaultPrice,
			Currency:         getOptionalEnv("RELAY_CURRENCY", "MON"),
			ChainID:          chainID,
			ResourcePath:     getOptionalEnv("RELAY_RESOURCE_PATH", "/api/send-dm"),
		},
	}, nil
}

func getOptionalEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
