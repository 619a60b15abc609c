package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/mlapp/folio/llm"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is the public Anthropic API endpoint. The SDK appends /v1/messages.
const DefaultBaseURL = "https://api.anthropic.com"

// AnthropicClient implements llm.Adapter for Anthropic's Messages API.
type AnthropicClient struct {
	client   *anthropic.Client
	settings llm.Settings
	logger   zerolog.Logger
}

// NewAnthropicClient creates a new AnthropicClient. An empty API key is
// accepted so that an unconfigured provider can still be dispatched to and
// surface the backend's authentication error.
func NewAnthropicClient(settings llm.Settings, timeout time.Duration, logger zerolog.Logger) *AnthropicClient {
	if settings.BaseURL == "" {
		settings.BaseURL = DefaultBaseURL
	}

	opts := []option.RequestOption{
		option.WithAPIKey(settings.APIKey),
		option.WithBaseURL(settings.BaseURL),
		option.WithMaxRetries(0),
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}

	client := anthropic.NewClient(opts...)
	return &AnthropicClient{
		client:   &client,
		settings: settings,
		logger:   logger.With().Str("component", "anthropicClient").Logger(),
	}
}

// Provider implements llm.Adapter.
func (c *AnthropicClient) Provider() llm.Provider {
	return llm.ProviderClaude
}

// Send implements llm.Adapter.
func (c *AnthropicClient) Send(ctx context.Context, prompt string, overrides llm.Overrides) (*llm.Response, error) {
	resolved := c.settings.Resolve(overrides)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(resolved.Model),
		MaxTokens: int64(resolved.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if temp, ok := resolved.Temperature.Get(); ok {
		params.Temperature = anthropic.Float(temp)
	}

	start := time.Now()
	message, err := c.client.Messages.New(ctx, params)
	elapsed := time.Since(start)
	if err != nil {
		return nil, convertAnthropicError(err)
	}

	// Only the first content block is read; a reply without content yields "".
	var text string
	if len(message.Content) > 0 {
		text = message.Content[0].Text
	}

	c.logger.Debug().
		Str("model", resolved.Model).
		Int64("output_tokens", message.Usage.OutputTokens).
		Dur("elapsed", elapsed).
		Msg("Anthropic message completed")

	return &llm.Response{
		Provider:      llm.ProviderClaude,
		Model:         resolved.Model,
		ResponseText:  text,
		TokensUsed:    int(message.Usage.OutputTokens),
		ElapsedMillis: elapsed.Milliseconds(),
	}, nil
}

// convertAnthropicError converts Anthropic SDK errors to llm.ProviderCallError.
func convertAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return llm.NewStatusError(
			llm.ProviderClaude,
			apiErr.StatusCode,
			fmt.Sprintf("Anthropic API error (status %d)", apiErr.StatusCode),
			err,
		)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return llm.NewDecodeError(llm.ProviderClaude, err)
	}

	return llm.NewProviderError(llm.ProviderClaude, "Anthropic request failed", err)
}

var _ llm.Adapter = (*AnthropicClient)(nil)
