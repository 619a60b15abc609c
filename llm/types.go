package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider is the canonical identifier of an LLM backend.
type Provider string

const (
	ProviderClaude Provider = "claude"
	ProviderOpenAI Provider = "openai"
	ProviderOllama Provider = "ollama"
)

// PlaceholderAPIKey is the sample value shipped in example configs. A key equal
// to it counts as unset.
const PlaceholderAPIKey = "your-api-key-here"

// Providers lists the canonical providers in their fixed reporting order.
var Providers = []Provider{ProviderClaude, ProviderOpenAI, ProviderOllama}

// aliases maps lower-cased caller-supplied names onto canonical providers.
var aliases = map[string]Provider{
	"claude":    ProviderClaude,
	"anthropic": ProviderClaude,
	"openai":    ProviderOpenAI,
	"gpt":       ProviderOpenAI,
	"ollama":    ProviderOllama,
}

// ParseProvider folds a provider name or alias onto its canonical form.
// Matching is case-insensitive.
func ParseProvider(name string) (Provider, error) {
	p, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", &UnsupportedProviderError{Name: name}
	}
	return p, nil
}

// String implements fmt.Stringer.
func (p Provider) String() string {
	return string(p)
}

// Override is an optional per-request value. The zero value is absent.
type Override[T any] struct {
	value T
	set   bool
}

// Some returns a present override.
func Some[T any](v T) Override[T] {
	return Override[T]{value: v, set: true}
}

// None returns an absent override.
func None[T any]() Override[T] {
	return Override[T]{}
}

// FromPtr converts a nullable value, typically decoded from JSON, into an override.
func FromPtr[T any](v *T) Override[T] {
	if v == nil {
		return None[T]()
	}
	return Some(*v)
}

// Get returns the value and whether it is present.
func (o Override[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether the override is present.
func (o Override[T]) IsSet() bool {
	return o.set
}

// Or returns the value if present, otherwise def.
func (o Override[T]) Or(def T) T {
	if o.set {
		return o.value
	}
	return def
}

// Overrides carries the optional per-request settings an adapter merges with
// its configured defaults.
type Overrides struct {
	Model       Override[string]
	MaxTokens   Override[int]
	Temperature Override[float64]
}

// Request is a provider-neutral prompt dispatch request.
type Request struct {
	Provider string // name or alias; empty selects the configured default
	Prompt   string
	Overrides
}

// Validate checks the fields the router cannot default.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("prompt is required")
	}
	return nil
}

// Response is the normalized completion returned by every adapter.
type Response struct {
	Provider      Provider `json:"provider"`
	Model         string   `json:"model"`
	ResponseText  string   `json:"response"`
	TokensUsed    int      `json:"tokensUsed"`
	ElapsedMillis int64    `json:"responseTimeMs"`
}

// Adapter sends a single prompt to one backend using that backend's wire format.
type Adapter interface {
	Provider() Provider
	Send(ctx context.Context, prompt string, overrides Overrides) (*Response, error)
}

// Settings holds the configured defaults of an API-key provider.
type Settings struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
}

// LocalSettings holds the configured defaults of the local-model provider.
type LocalSettings struct {
	Enabled bool
	BaseURL string
	Model   string
}

// Resolved holds the effective values for one outbound call.
type Resolved struct {
	Model       string
	MaxTokens   int
	Temperature Override[float64]
}

// Resolve merges request overrides with configured defaults. An explicit
// temperature override is always sent, even when zero. The configured
// temperature is only sent when it is positive.
func (s Settings) Resolve(o Overrides) Resolved {
	r := Resolved{
		Model:     o.Model.Or(s.Model),
		MaxTokens: o.MaxTokens.Or(s.MaxTokens),
	}
	switch {
	case o.Temperature.IsSet():
		r.Temperature = o.Temperature
	case s.Temperature > 0:
		r.Temperature = Some(s.Temperature)
	}
	return r
}

// HasKey reports whether an API key is configured and is not the placeholder.
func (s Settings) HasKey() bool {
	key := strings.TrimSpace(s.APIKey)
	return key != "" && key != PlaceholderAPIKey
}
