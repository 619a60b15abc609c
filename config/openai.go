package config

import (
	"os"

	"github.com/mlapp/folio/llm"
	llmopenai "github.com/mlapp/folio/llm/openai"
	"github.com/rs/zerolog"
)

// LoadOpenAISettings loads OpenAI settings from the config.
// OPENAI_API_KEY, OPENAI_BASE_URL and OPENAI_MODEL take precedence when set.
func LoadOpenAISettings(cfg *ServerConfig) llm.Settings {
	var settings llm.Settings
	if cfg != nil {
		settings = providerSettings(cfg.LLM.OpenAI)
	}

	// Apply environment variable overrides
	if envAPIKey := getOpenAIAPIKeyFromEnv(); envAPIKey != "" {
		settings.APIKey = envAPIKey
	}
	if envBaseURL := getOpenAIBaseURLFromEnv(); envBaseURL != "" {
		settings.BaseURL = envBaseURL
	}
	if envModel := getOpenAIModelFromEnv(); envModel != "" {
		settings.Model = envModel
	}

	return settings
}

// NewOpenAIClient creates a new OpenAI adapter from the configuration.
func NewOpenAIClient(cfg *ServerConfig, logger zerolog.Logger) *llmopenai.OpenAIClient {
	return llmopenai.NewOpenAIClient(LoadOpenAISettings(cfg), cfg.LLMTimeout(), logger)
}

func getOpenAIAPIKeyFromEnv() string {
	return os.Getenv("OPENAI_API_KEY")
}

func getOpenAIBaseURLFromEnv() string {
	return os.Getenv("OPENAI_BASE_URL")
}

func getOpenAIModelFromEnv() string {
	return os.Getenv("OPENAI_MODEL")
}
