package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mlapp/folio/llm"
	"github.com/rs/zerolog"
)

func TestParseHost(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"localhost:11434", "http://localhost:11434"},
		{"http://ollama:11434", "http://ollama:11434"},
		{"https://ollama.example.com/", "https://ollama.example.com"},
	}

	for _, tt := range tests {
		u, err := parseHost(tt.in)
		if err != nil {
			t.Fatalf("parseHost(%q): %v", tt.in, err)
		}
		if u.String() != tt.want {
			t.Errorf("parseHost(%q): expected %q, got %q", tt.in, tt.want, u.String())
		}
	}
}

func TestOllamaClient_Send(t *testing.T) {
	var path string
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama-test","response":"hold","done":true}` + "\n"))
	}))
	defer srv.Close()

	client, err := NewOllamaClient(llm.LocalSettings{Enabled: true, BaseURL: srv.URL, Model: "llama-default"}, 5*time.Second, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewOllamaClient: %v", err)
	}

	resp, err := client.Send(context.Background(), "What about MSFT?", llm.Overrides{
		Model:       llm.Some("llama-test"),
		MaxTokens:   llm.Some(5),
		Temperature: llm.Some(0.9),
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if resp.Provider != llm.ProviderOllama {
		t.Errorf("Expected provider ollama, got %s", resp.Provider)
	}
	if resp.ResponseText != "hold" {
		t.Errorf("Expected response 'hold', got %q", resp.ResponseText)
	}
	if resp.TokensUsed != 0 {
		t.Errorf("Expected 0 tokens, got %d", resp.TokensUsed)
	}
	if resp.Model != "llama-test" {
		t.Errorf("Expected model override, got %q", resp.Model)
	}

	if path != "/api/generate" {
		t.Errorf("Expected path /api/generate, got %q", path)
	}
	if body["model"] != "llama-test" || body["prompt"] != "What about MSFT?" {
		t.Errorf("Unexpected request body %v", body)
	}
	if body["stream"] != false {
		t.Errorf("Expected stream=false, got %v", body["stream"])
	}
	// The SDK always encodes options; overrides must not populate it.
	if body["options"] != nil {
		t.Errorf("Expected no generation options, got %v", body["options"])
	}
}

func TestOllamaClient_SendUsesConfiguredModel(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"model":"llama-default","done":true}` + "\n"))
	}))
	defer srv.Close()

	client, err := NewOllamaClient(llm.LocalSettings{BaseURL: srv.URL, Model: "llama-default"}, 0, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewOllamaClient: %v", err)
	}
	resp, err := client.Send(context.Background(), "hi", llm.Overrides{})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if body["model"] != "llama-default" {
		t.Errorf("Expected configured model, got %v", body["model"])
	}
	if resp.ResponseText != "" {
		t.Errorf("Expected empty response text, got %q", resp.ResponseText)
	}
}

func TestOllamaClient_SendUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client, err := NewOllamaClient(llm.LocalSettings{BaseURL: url, Model: "m"}, time.Second, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewOllamaClient: %v", err)
	}
	_, err = client.Send(context.Background(), "hi", llm.Overrides{})
	if !llm.IsProviderCallError(err) {
		t.Fatalf("Expected ProviderCallError, got %v", err)
	}
}
