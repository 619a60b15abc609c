package llm

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
)

type stubAdapter struct {
	provider Provider
	calls    int
	last     Overrides
	err      error
}

func (s *stubAdapter) Provider() Provider { return s.provider }

func (s *stubAdapter) Send(ctx context.Context, prompt string, o Overrides) (*Response, error) {
	s.calls++
	s.last = o
	if s.err != nil {
		return nil, s.err
	}
	return &Response{Provider: s.provider, Model: o.Model.Or("default-model"), ResponseText: "echo: " + prompt}, nil
}

func newTestRouter(cfg RouterConfig, opts ...RouterOption) (*Router, map[Provider]*stubAdapter) {
	stubs := map[Provider]*stubAdapter{
		ProviderClaude: {provider: ProviderClaude},
		ProviderOpenAI: {provider: ProviderOpenAI},
		ProviderOllama: {provider: ProviderOllama},
	}
	adapters := []Adapter{stubs[ProviderClaude], stubs[ProviderOpenAI], stubs[ProviderOllama]}
	return NewRouter(zerolog.Nop(), cfg, adapters, opts...), stubs
}

func TestRouter_SendPromptAliases(t *testing.T) {
	router, stubs := newTestRouter(RouterConfig{DefaultProvider: "claude"})
	ctx := context.Background()

	resp, err := router.SendPrompt(ctx, Request{Provider: "GPT", Prompt: "hi"})
	if err != nil {
		t.Fatalf("SendPrompt: %v", err)
	}
	if resp.Provider != ProviderOpenAI {
		t.Errorf("Expected provider openai, got %s", resp.Provider)
	}

	if _, err := router.SendPrompt(ctx, Request{Provider: "openai", Prompt: "hi"}); err != nil {
		t.Fatalf("SendPrompt: %v", err)
	}
	if stubs[ProviderOpenAI].calls != 2 {
		t.Errorf("Expected both GPT and openai to reach the OpenAI adapter, got %d calls", stubs[ProviderOpenAI].calls)
	}

	resp, err = router.SendPrompt(ctx, Request{Provider: "Anthropic", Prompt: "hi"})
	if err != nil {
		t.Fatalf("SendPrompt: %v", err)
	}
	if resp.Provider != ProviderClaude {
		t.Errorf("Expected canonical provider claude, got %s", resp.Provider)
	}
}

func TestRouter_SendPromptDefaultProvider(t *testing.T) {
	router, stubs := newTestRouter(RouterConfig{DefaultProvider: "ollama"})

	resp, err := router.SendPrompt(context.Background(), Request{Prompt: "hi"})
	if err != nil {
		t.Fatalf("SendPrompt: %v", err)
	}
	if resp.Provider != ProviderOllama || stubs[ProviderOllama].calls != 1 {
		t.Errorf("Expected default provider ollama to be used, got %s", resp.Provider)
	}
}

func TestRouter_SendPromptUnsupported(t *testing.T) {
	router, stubs := newTestRouter(RouterConfig{DefaultProvider: "claude"})

	_, err := router.SendPrompt(context.Background(), Request{Provider: "unknown-x", Prompt: "hi"})
	var upErr *UnsupportedProviderError
	if !errors.As(err, &upErr) {
		t.Fatalf("Expected UnsupportedProviderError, got %v", err)
	}
	if upErr.Name != "unknown-x" {
		t.Errorf("Expected name unknown-x, got %q", upErr.Name)
	}
	if IsProviderCallError(err) {
		t.Error("Unsupported provider must not look like a transport error")
	}
	for p, s := range stubs {
		if s.calls != 0 {
			t.Errorf("Adapter %s should not have been called", p)
		}
	}
}

func TestRouter_SendPromptDoesNotCheckAvailability(t *testing.T) {
	// No provider blocks configured at all: the call is still attempted.
	router, stubs := newTestRouter(RouterConfig{DefaultProvider: "claude"})
	stubs[ProviderClaude].err = NewStatusError(ProviderClaude, 401, "invalid x-api-key", nil)

	_, err := router.SendPrompt(context.Background(), Request{Prompt: "hi"})
	if !IsProviderCallError(err) {
		t.Fatalf("Expected ProviderCallError from the backend, got %v", err)
	}
	if stubs[ProviderClaude].calls != 1 {
		t.Errorf("Expected the adapter to be called once, got %d", stubs[ProviderClaude].calls)
	}
}

func TestRouter_SendPromptPassesOverrides(t *testing.T) {
	router, stubs := newTestRouter(RouterConfig{DefaultProvider: "claude"})

	resp, err := router.SendPrompt(context.Background(), Request{
		Prompt:    "hi",
		Overrides: Overrides{Model: Some("claude-opus"), MaxTokens: Some(12)},
	})
	if err != nil {
		t.Fatalf("SendPrompt: %v", err)
	}
	if resp.Model != "claude-opus" {
		t.Errorf("Expected model override, got %q", resp.Model)
	}
	if got := stubs[ProviderClaude].last.MaxTokens.Or(0); got != 12 {
		t.Errorf("Expected max tokens 12, got %d", got)
	}
}

func TestRouter_IsAvailable(t *testing.T) {
	tests := []struct {
		name     string
		cfg      RouterConfig
		provider string
		want     bool
	}{
		{name: "claude with key", cfg: RouterConfig{Anthropic: &Settings{APIKey: "k"}}, provider: "claude", want: true},
		{name: "anthropic alias with key", cfg: RouterConfig{Anthropic: &Settings{APIKey: "k"}}, provider: "ANTHROPIC", want: true},
		{name: "claude placeholder key", cfg: RouterConfig{Anthropic: &Settings{APIKey: PlaceholderAPIKey}}, provider: "claude", want: false},
		{name: "claude empty key", cfg: RouterConfig{Anthropic: &Settings{}}, provider: "claude", want: false},
		{name: "claude missing block", cfg: RouterConfig{}, provider: "claude", want: false},
		{name: "openai with key", cfg: RouterConfig{OpenAI: &Settings{APIKey: "k"}}, provider: "gpt", want: true},
		{name: "openai placeholder", cfg: RouterConfig{OpenAI: &Settings{APIKey: PlaceholderAPIKey}}, provider: "openai", want: false},
		{name: "ollama enabled", cfg: RouterConfig{Ollama: &LocalSettings{Enabled: true, BaseURL: "http://unreachable.invalid:1"}}, provider: "ollama", want: true},
		{name: "ollama disabled", cfg: RouterConfig{Ollama: &LocalSettings{Enabled: false}}, provider: "ollama", want: false},
		{name: "ollama missing block", cfg: RouterConfig{}, provider: "ollama", want: false},
		{name: "unknown provider", cfg: RouterConfig{Anthropic: &Settings{APIKey: "k"}}, provider: "mistral", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter(tt.cfg)
			if got := router.IsAvailable(tt.provider); got != tt.want {
				t.Errorf("IsAvailable(%q): expected %v, got %v", tt.provider, tt.want, got)
			}
		})
	}
}

func TestRouter_ListAvailableFixedOrder(t *testing.T) {
	router, _ := newTestRouter(RouterConfig{
		Ollama:    &LocalSettings{Enabled: true},
		OpenAI:    &Settings{APIKey: "k"},
		Anthropic: &Settings{APIKey: "k"},
	})
	want := []Provider{ProviderClaude, ProviderOpenAI, ProviderOllama}
	if got := router.ListAvailable(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	router, _ = newTestRouter(RouterConfig{
		Ollama: &LocalSettings{Enabled: true},
		OpenAI: &Settings{APIKey: PlaceholderAPIKey},
	})
	want = []Provider{ProviderOllama}
	if got := router.ListAvailable(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestRouter_MiddlewareOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return MiddlewareFunc{
			BeforeRequestFunc: func(ctx context.Context, req *Request) (*Request, error) {
				order = append(order, "before-"+name)
				return req, nil
			},
			AfterResponseFunc: func(ctx context.Context, req *Request, resp *Response) (*Response, error) {
				order = append(order, "after-"+name)
				return resp, nil
			},
		}
	}
	router, _ := newTestRouter(RouterConfig{DefaultProvider: "claude"}, WithMiddleware(mw("a"), mw("b")))

	if _, err := router.SendPrompt(context.Background(), Request{Prompt: "hi"}); err != nil {
		t.Fatalf("SendPrompt: %v", err)
	}
	want := []string{"before-a", "before-b", "after-b", "after-a"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("Expected %v, got %v", want, order)
	}
}

func TestRouter_MiddlewareSeesErrors(t *testing.T) {
	var seen error
	router, stubs := newTestRouter(RouterConfig{DefaultProvider: "openai"}, WithMiddleware(MiddlewareFunc{
		OnErrorFunc: func(ctx context.Context, req *Request, err error) error {
			seen = err
			return nil
		},
	}, NewLoggingMiddleware(zerolog.Nop())))
	stubs[ProviderOpenAI].err = NewProviderError(ProviderOpenAI, "down", errors.New("refused"))

	_, err := router.SendPrompt(context.Background(), Request{Prompt: "hi"})
	if !IsProviderCallError(err) {
		t.Fatalf("Expected original error to survive a nil OnError, got %v", err)
	}
	if seen == nil {
		t.Error("Expected middleware to observe the error")
	}
}
