package llm

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// LoggingMiddleware logs every dispatched prompt and its outcome.
type LoggingMiddleware struct {
	logger zerolog.Logger
}

// NewLoggingMiddleware creates a new LoggingMiddleware.
func NewLoggingMiddleware(logger zerolog.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{
		logger: logger.With().Str("component", "llmLoggingMiddleware").Logger(),
	}
}

// BeforeRequest implements Middleware.BeforeRequest.
func (m *LoggingMiddleware) BeforeRequest(ctx context.Context, req *Request) (*Request, error) {
	model, _ := req.Model.Get()
	m.logger.Info().
		Str("provider", req.Provider).
		Str("model_override", model).
		Int("prompt_chars", len(req.Prompt)).
		Msg("Sending prompt")
	return req, nil
}

// AfterResponse implements Middleware.AfterResponse.
func (m *LoggingMiddleware) AfterResponse(ctx context.Context, req *Request, resp *Response) (*Response, error) {
	m.logger.Info().
		Str("provider", resp.Provider.String()).
		Str("model", resp.Model).
		Int("tokens", resp.TokensUsed).
		Int64("elapsed_ms", resp.ElapsedMillis).
		Msg("Prompt completed")
	return resp, nil
}

// OnError implements Middleware.OnError.
func (m *LoggingMiddleware) OnError(ctx context.Context, req *Request, err error) error {
	event := m.logger.Error().Str("provider", req.Provider).Err(err)
	var pcErr *ProviderCallError
	if errors.As(err, &pcErr) {
		event = event.Str("error_type", string(pcErr.Type)).Int("status", pcErr.StatusCode)
	}
	event.Msg("Prompt failed")
	return err
}

var _ Middleware = (*LoggingMiddleware)(nil)
