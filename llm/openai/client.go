package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/mlapp/folio/llm"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultBaseURL is the public OpenAI API endpoint. The SDK appends /chat/completions.
const DefaultBaseURL = "https://api.openai.com/v1"

// OpenAIClient implements llm.Adapter for OpenAI-compatible chat completion APIs.
type OpenAIClient struct {
	client   *openai.Client
	settings llm.Settings
	logger   zerolog.Logger
}

// NewOpenAIClient creates a new OpenAIClient.
// If BaseURL is empty, it will use the default OpenAI API endpoint.
func NewOpenAIClient(settings llm.Settings, timeout time.Duration, logger zerolog.Logger) *OpenAIClient {
	if settings.BaseURL == "" {
		settings.BaseURL = DefaultBaseURL
	}

	config := openai.DefaultConfig(settings.APIKey)
	config.BaseURL = settings.BaseURL
	config.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIClient{
		client:   openai.NewClientWithConfig(config),
		settings: settings,
		logger:   logger.With().Str("component", "openaiClient").Logger(),
	}
}

// Provider implements llm.Adapter.
func (c *OpenAIClient) Provider() llm.Provider {
	return llm.ProviderOpenAI
}

// Send implements llm.Adapter.
func (c *OpenAIClient) Send(ctx context.Context, prompt string, overrides llm.Overrides) (*llm.Response, error) {
	resolved := c.settings.Resolve(overrides)

	chatReq := openai.ChatCompletionRequest{
		Model: resolved.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: resolved.MaxTokens,
	}
	if temp, ok := resolved.Temperature.Get(); ok {
		chatReq.Temperature = float32(temp)
		if temp == 0 {
			// The SDK drops a zero temperature from the payload, so send the
			// smallest positive float32 instead.
			chatReq.Temperature = math.SmallestNonzeroFloat32
		}
	}

	start := time.Now()
	chatResp, err := c.client.CreateChatCompletion(ctx, chatReq)
	elapsed := time.Since(start)
	if err != nil {
		return nil, convertOpenAIError(err)
	}

	var text string
	if len(chatResp.Choices) > 0 {
		text = chatResp.Choices[0].Message.Content
	}

	c.logger.Debug().
		Str("model", resolved.Model).
		Int("completion_tokens", chatResp.Usage.CompletionTokens).
		Dur("elapsed", elapsed).
		Msg("OpenAI chat completion finished")

	return &llm.Response{
		Provider:      llm.ProviderOpenAI,
		Model:         resolved.Model,
		ResponseText:  text,
		TokensUsed:    chatResp.Usage.CompletionTokens,
		ElapsedMillis: elapsed.Milliseconds(),
	}, nil
}

// convertOpenAIError converts OpenAI API errors to llm.ProviderCallError.
func convertOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return llm.NewStatusError(
			llm.ProviderOpenAI,
			apiErr.HTTPStatusCode,
			fmt.Sprintf("OpenAI API error: %s", apiErr.Message),
			err,
		)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return llm.NewStatusError(
			llm.ProviderOpenAI,
			reqErr.HTTPStatusCode,
			fmt.Sprintf("OpenAI request error (status %d)", reqErr.HTTPStatusCode),
			err,
		)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return llm.NewDecodeError(llm.ProviderOpenAI, err)
	}

	return llm.NewProviderError(llm.ProviderOpenAI, "OpenAI request failed", err)
}

var _ llm.Adapter = (*OpenAIClient)(nil)
