package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mlapp/folio/llm"
	"github.com/ollama/ollama/api"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is where a local Ollama daemon listens by default.
const DefaultBaseURL = "http://localhost:11434"

// OllamaClient implements llm.Adapter for a local Ollama daemon using the
// non-streaming generate endpoint.
type OllamaClient struct {
	client   *api.Client
	settings llm.LocalSettings
	logger   zerolog.Logger
}

// NewOllamaClient creates a new OllamaClient.
// If BaseURL is empty, it will use DefaultBaseURL.
func NewOllamaClient(settings llm.LocalSettings, timeout time.Duration, logger zerolog.Logger) (*OllamaClient, error) {
	if settings.BaseURL == "" {
		settings.BaseURL = DefaultBaseURL
	}

	baseURL, err := parseHost(settings.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid host: %w", err)
	}

	return &OllamaClient{
		client:   api.NewClient(baseURL, &http.Client{Timeout: timeout}),
		settings: settings,
		logger:   logger.With().Str("component", "ollamaClient").Logger(),
	}, nil
}

// parseHost parses a host string into a URL.
func parseHost(host string) (*url.URL, error) {
	// If host doesn't have a scheme, add http://
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return url.Parse(strings.TrimRight(host, "/"))
}

// Provider implements llm.Adapter.
func (c *OllamaClient) Provider() llm.Provider {
	return llm.ProviderOllama
}

// Send implements llm.Adapter. Only the model override is honoured; Ollama
// does not report token usage for this endpoint so TokensUsed is always 0.
func (c *OllamaClient) Send(ctx context.Context, prompt string, overrides llm.Overrides) (*llm.Response, error) {
	model := overrides.Model.Or(c.settings.Model)
	stream := false

	req := &api.GenerateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: &stream,
	}

	var text string
	start := time.Now()
	err := c.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		text += resp.Response
		return nil
	})
	elapsed := time.Since(start)
	if err != nil {
		return nil, convertOllamaError(err)
	}

	c.logger.Debug().
		Str("model", model).
		Dur("elapsed", elapsed).
		Msg("Ollama generate finished")

	return &llm.Response{
		Provider:      llm.ProviderOllama,
		Model:         model,
		ResponseText:  text,
		TokensUsed:    0,
		ElapsedMillis: elapsed.Milliseconds(),
	}, nil
}

func convertOllamaError(err error) error {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return llm.NewStatusError(
			llm.ProviderOllama,
			statusErr.StatusCode,
			fmt.Sprintf("Ollama error: %s", statusErr.ErrorMessage),
			err,
		)
	}
	return llm.NewProviderError(llm.ProviderOllama, "Ollama request failed", err)
}

var _ llm.Adapter = (*OllamaClient)(nil)
