package config

import (
	"fmt"

	"github.com/mlapp/folio/llm"
	"github.com/rs/zerolog"
)

// LoadRouterConfig builds the dispatch router configuration. When the llm
// section is disabled no provider block is present and nothing is available.
func LoadRouterConfig(cfg *ServerConfig) llm.RouterConfig {
	routerCfg := llm.RouterConfig{DefaultProvider: cfg.LLM.DefaultProvider}
	if cfg.LLM.Disabled {
		return routerCfg
	}

	anthropicSettings := LoadAnthropicSettings(cfg)
	openaiSettings := LoadOpenAISettings(cfg)
	ollamaSettings := LoadOllamaSettings(cfg)
	routerCfg.Anthropic = &anthropicSettings
	routerCfg.OpenAI = &openaiSettings
	routerCfg.Ollama = &ollamaSettings
	return routerCfg
}

// NewAdapters creates one adapter per supported provider. Adapters are built
// regardless of availability so the router can always dispatch.
func NewAdapters(cfg *ServerConfig, logger zerolog.Logger) ([]llm.Adapter, error) {
	ollamaClient, err := NewOllamaClient(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}

	return []llm.Adapter{
		NewAnthropicClient(cfg, logger),
		NewOpenAIClient(cfg, logger),
		ollamaClient,
	}, nil
}

// NewRouter creates the dispatch router with its adapters from the configuration.
func NewRouter(cfg *ServerConfig, logger zerolog.Logger, opts ...llm.RouterOption) (*llm.Router, error) {
	adapters, err := NewAdapters(cfg, logger)
	if err != nil {
		return nil, err
	}
	return llm.NewRouter(logger, LoadRouterConfig(cfg), adapters, opts...), nil
}
