// Package llm provides provider-neutral prompt dispatch over several Large
// Language Model backends.
//
// # Core Concepts
//
//  1. Provider: a closed set of canonical identifiers (claude, openai, ollama).
//     ParseProvider folds caller-supplied names and aliases onto them.
//
//  2. Overrides: per-request model, max-tokens and temperature values modelled
//     as Override[T] so "absent" and "zero" stay distinct.
//
//  3. Adapter: one implementation per backend wire format, living in the
//     anthropic, openai and ollama subpackages. Each resolves its effective
//     settings with Settings.Resolve.
//
//  4. Router: chooses an adapter by name or the configured default and answers
//     availability questions from configuration alone.
//
//  5. Middleware: hooks around every adapter call, used for logging and metrics.
//
//  6. Errors: UnsupportedProviderError for caller mistakes, ProviderCallError
//     for transport and decoding failures.
//
// Usage Example
//
//	router := llm.NewRouter(logger, llm.RouterConfig{
//	    DefaultProvider: "claude",
//	    Anthropic:       &llm.Settings{APIKey: key, Model: "claude-sonnet-4-5", MaxTokens: 1024},
//	}, []llm.Adapter{anthropicAdapter}, llm.WithMiddleware(llm.NewLoggingMiddleware(logger)))
//
//	resp, err := router.SendPrompt(ctx, llm.Request{
//	    Provider: "anthropic",
//	    Prompt:   "Summarise my portfolio",
//	    Overrides: llm.Overrides{Temperature: llm.Some(0.2)},
//	})
package llm
