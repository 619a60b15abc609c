package config

import (
	"os"

	"github.com/mlapp/folio/llm"
	llmanthropic "github.com/mlapp/folio/llm/anthropic"
	"github.com/rs/zerolog"
)

// LoadAnthropicSettings loads Anthropic settings from the config, applying
// ANTHROPIC_API_KEY and ANTHROPIC_BASE_URL overrides.
func LoadAnthropicSettings(cfg *ServerConfig) llm.Settings {
	var settings llm.Settings
	if cfg != nil {
		settings = providerSettings(cfg.LLM.Anthropic)
	}

	if envAPIKey := os.Getenv("ANTHROPIC_API_KEY"); envAPIKey != "" {
		settings.APIKey = envAPIKey
	}
	if envBaseURL := os.Getenv("ANTHROPIC_BASE_URL"); envBaseURL != "" {
		settings.BaseURL = envBaseURL
	}

	return settings
}

// NewAnthropicClient creates a new Anthropic adapter from the configuration.
func NewAnthropicClient(cfg *ServerConfig, logger zerolog.Logger) *llmanthropic.AnthropicClient {
	return llmanthropic.NewAnthropicClient(LoadAnthropicSettings(cfg), cfg.LLMTimeout(), logger)
}

func providerSettings(p ProviderConfig) llm.Settings {
	return llm.Settings{
		APIKey:      p.APIKey,
		BaseURL:     p.BaseURL,
		Model:       p.Model,
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
	}
}
