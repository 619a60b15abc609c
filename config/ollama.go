package config

import (
	"os"

	"github.com/mlapp/folio/llm"
	llmollama "github.com/mlapp/folio/llm/ollama"
	"github.com/rs/zerolog"
)

// LoadOllamaSettings loads Ollama settings from the config.
// It applies OLLAMA_HOST and OLLAMA_MODEL overrides.
func LoadOllamaSettings(cfg *ServerConfig) llm.LocalSettings {
	var settings llm.LocalSettings
	if cfg != nil {
		settings = llm.LocalSettings{
			Enabled: cfg.LLM.Ollama.Enabled,
			BaseURL: cfg.LLM.Ollama.BaseURL,
			Model:   cfg.LLM.Ollama.Model,
		}
	}

	// Apply environment variable overrides
	if envHost := os.Getenv("OLLAMA_HOST"); envHost != "" {
		settings.BaseURL = envHost
	}
	if envModel := os.Getenv("OLLAMA_MODEL"); envModel != "" {
		settings.Model = envModel
	}

	// Set defaults if still empty
	if settings.BaseURL == "" {
		settings.BaseURL = llmollama.DefaultBaseURL
	}

	return settings
}

// NewOllamaClient creates a new Ollama adapter from the configuration.
func NewOllamaClient(cfg *ServerConfig, logger zerolog.Logger) (*llmollama.OllamaClient, error) {
	return llmollama.NewOllamaClient(LoadOllamaSettings(cfg), cfg.LLMTimeout(), logger)
}
