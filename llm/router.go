package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// RouterConfig is the read-only provider configuration the Router consults.
// A nil block means the provider is not configured at all.
type RouterConfig struct {
	DefaultProvider string
	Anthropic       *Settings
	OpenAI          *Settings
	Ollama          *LocalSettings
}

// Router selects a provider adapter by name and reports provider availability.
// It holds no mutable state after construction and is safe for concurrent use.
type Router struct {
	config     RouterConfig
	adapters   map[Provider]Adapter
	middleware []Middleware
	logger     zerolog.Logger
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithMiddleware appends middleware applied around every adapter call.
func WithMiddleware(mw ...Middleware) RouterOption {
	return func(r *Router) {
		r.middleware = append(r.middleware, mw...)
	}
}

// NewRouter creates a Router over the given adapters. Adapters are keyed by
// the canonical provider they report.
func NewRouter(logger zerolog.Logger, cfg RouterConfig, adapters []Adapter, opts ...RouterOption) *Router {
	r := &Router{
		config:   cfg,
		adapters: make(map[Provider]Adapter, len(adapters)),
		logger:   logger.With().Str("component", "llmRouter").Logger(),
	}
	for _, a := range adapters {
		if a != nil {
			r.adapters[a.Provider()] = a
		}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SendPrompt dispatches a prompt to the requested provider, or the configured
// default when the request names none.
//
// SendPrompt does not check availability. Callers are expected to consult
// IsAvailable first; dispatching to an unconfigured provider still attempts the
// call and surfaces whatever error the backend returns.
func (r *Router) SendPrompt(ctx context.Context, req Request) (*Response, error) {
	name := req.Provider
	if name == "" {
		name = r.config.DefaultProvider
	}
	provider, err := ParseProvider(name)
	if err != nil {
		return nil, err
	}

	adapter, ok := r.adapters[provider]
	if !ok {
		return nil, &ProviderCallError{
			Provider: provider,
			Type:     ErrorTypeUnknown,
			Message:  "no adapter registered",
		}
	}

	r.logger.Debug().
		Str("provider", provider.String()).
		Str("requested", name).
		Int("prompt_chars", len(req.Prompt)).
		Msg("Dispatching prompt")

	req.Provider = provider.String()
	resp, err := send(ctx, adapter, &req, r.middleware)
	if err != nil {
		return nil, err
	}
	resp.Provider = provider
	return resp, nil
}

// IsAvailable reports whether a provider is configured well enough to be
// offered to callers. It never touches the network. Unknown names are
// reported as unavailable.
func (r *Router) IsAvailable(name string) bool {
	provider, err := ParseProvider(name)
	if err != nil {
		return false
	}
	return r.isAvailable(provider)
}

func (r *Router) isAvailable(provider Provider) bool {
	switch provider {
	case ProviderClaude:
		return r.config.Anthropic != nil && r.config.Anthropic.HasKey()
	case ProviderOpenAI:
		return r.config.OpenAI != nil && r.config.OpenAI.HasKey()
	case ProviderOllama:
		return r.config.Ollama != nil && r.config.Ollama.Enabled
	default:
		return false
	}
}

// ListAvailable returns the available providers in canonical order
// (claude, openai, ollama), independent of configuration order.
func (r *Router) ListAvailable() []Provider {
	return lo.Filter(Providers, func(p Provider, _ int) bool {
		return r.isAvailable(p)
	})
}

// DefaultProvider returns the configured default provider name.
func (r *Router) DefaultProvider() string {
	return r.config.DefaultProvider
}

// String implements fmt.Stringer for log output.
func (r *Router) String() string {
	return fmt.Sprintf("Router(default=%s, available=%v)", r.config.DefaultProvider, r.ListAvailable())
}
