package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Line: Line{
			ChannelSecret:      "secret",
			ChannelAccessToken: "token",
		},
		Gemini: Gemini{
			APIKey:      "gemini-key",
			Model:       "gemini-1.5-flash-latest",
			Temperature: 0.3,
		},
		Places: Places{
			APIKey:   "places-key",
			Language: "zh-TW",
		},
		Redis: Redis{
			Host: "localhost",
			Port: "6379",
		},
		Server: Server{
			Host: "0.0.0.0",
			Port: 5000,
		},
		Callback: Callback{
			BaseURL: "https://example.ngrok-free.app",
		},
		Bot: Bot{
			MaxRecommendations: 5,
			MinReviewRating:    4,
			HistoryTurns:       10,
			HistoryTTLSeconds:  3600,
			ReviewWorkers:      3,
		},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(validConfig()))
}

func TestValidate_MissingCredentials(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing channel secret", func(c *Config) { c.Line.ChannelSecret = "" }},
		{"missing access token", func(c *Config) { c.Line.ChannelAccessToken = "" }},
		{"missing gemini key", func(c *Config) { c.Gemini.APIKey = "" }},
		{"missing places key", func(c *Config) { c.Places.APIKey = "" }},
		{"bad callback url", func(c *Config) { c.Callback.BaseURL = "not a url" }},
		{"review rating out of range", func(c *Config) { c.Bot.MinReviewRating = 6 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}

func TestAddresses(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, "0.0.0.0:5000", cfg.Server.Address())
}
