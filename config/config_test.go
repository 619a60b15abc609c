package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/mlapp/folio/llm"
	"github.com/rs/zerolog"
)

var nopLogger = zerolog.Nop()

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ANTHROPIC_API_KEY", "ANTHROPIC_BASE_URL",
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL",
		"OLLAMA_HOST", "OLLAMA_MODEL",
		"FOLIO_LLM_DEFAULT_PROVIDER",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadServerConfig_MissingFileUsesDefaults(t *testing.T) {
	clearProviderEnv(t)

	cfg, err := LoadServerConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadServerConfig: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Expected default addr :8080, got %q", cfg.Server.Addr)
	}
	if cfg.LLM.DefaultProvider != "claude" {
		t.Errorf("Expected default provider claude, got %q", cfg.LLM.DefaultProvider)
	}
	if cfg.LLMTimeout() != 60*time.Second {
		t.Errorf("Expected 60s LLM timeout, got %v", cfg.LLMTimeout())
	}
	if cfg.LLM.Ollama.Enabled {
		t.Error("Expected ollama to be disabled by default")
	}
	if _, ok := cfg.PrimaryMCPServer(); ok {
		t.Error("Expected no MCP server by default")
	}
}

func TestLoadServerConfig_MergesFileOverDefaults(t *testing.T) {
	clearProviderEnv(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
server:
  addr: ":9090"
llm:
  default_provider: openai
  timeout: 15
  openai:
    api_key: sk-file
    temperature: 0.3
  ollama:
    enabled: true
mcp_servers:
  zeta:
    url: http://localhost:9000/mcp
  alpha:
    command: stock-mcp
    args: ["--stdio"]
database:
  path: `+filepath.Join(dir, "h.db")+`
schedule:
  refresh_prices: 15m
`)

	cfg, err := LoadServerConfig(path)
	if err != nil {
		t.Fatalf("LoadServerConfig: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Expected addr :9090, got %q", cfg.Server.Addr)
	}
	if cfg.Server.RequestTimeout != 120 {
		t.Errorf("Expected default request timeout to survive merge, got %d", cfg.Server.RequestTimeout)
	}
	if cfg.LLM.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("Expected default OpenAI model to survive merge, got %q", cfg.LLM.OpenAI.Model)
	}
	if cfg.LLM.OpenAI.APIKey != "sk-file" || cfg.LLM.OpenAI.Temperature != 0.3 {
		t.Errorf("Unexpected OpenAI block %+v", cfg.LLM.OpenAI)
	}
	if cfg.LLMTimeout() != 15*time.Second {
		t.Errorf("Expected 15s timeout, got %v", cfg.LLMTimeout())
	}
	if !cfg.LLM.Ollama.Enabled {
		t.Error("Expected ollama enabled")
	}
	if cfg.Schedule.RefreshPrices != "15m" {
		t.Errorf("Expected refresh schedule 15m, got %q", cfg.Schedule.RefreshPrices)
	}

	primary, ok := cfg.PrimaryMCPServer()
	if !ok {
		t.Fatal("Expected a primary MCP server")
	}
	if primary.Name != "alpha" || primary.Command != "stock-mcp" {
		t.Errorf("Expected alpha to be primary, got %+v", primary)
	}
}

func TestLoadServerConfig_InvalidYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "server: [unterminated")
	if _, err := LoadServerConfig(path); err == nil {
		t.Fatal("Expected parse error")
	}
}

func TestLoadServerConfig_ImportsMCPConfigFile(t *testing.T) {
	clearProviderEnv(t)
	dir := t.TempDir()
	jsonPath := writeFile(t, dir, "mcp.json", `{
		"mcpServers": {
			"stocks": {"command": "node", "args": ["server.js"], "env": {"B": "2", "A": "1"}},
			"local": {"command": "ignored"}
		}
	}`)
	path := writeFile(t, dir, "config.yaml", `
mcp_config_file: `+jsonPath+`
mcp_servers:
  local:
    url: http://localhost:8081/mcp
`)

	cfg, err := LoadServerConfig(path)
	if err != nil {
		t.Fatalf("LoadServerConfig: %v", err)
	}
	if len(cfg.MCPServers) != 2 {
		t.Fatalf("Expected 2 MCP servers, got %d", len(cfg.MCPServers))
	}
	if cfg.MCPServers["local"].URL != "http://localhost:8081/mcp" {
		t.Errorf("Expected YAML server to win, got %+v", cfg.MCPServers["local"])
	}
	stocks := cfg.MCPServers["stocks"]
	if want := []string{"A=1", "B=2"}; !reflect.DeepEqual(stocks.Env, want) {
		t.Errorf("Expected env %v, got %v", want, stocks.Env)
	}
}

func TestLoadMCPConfigFile_EnvArray(t *testing.T) {
	path := writeFile(t, t.TempDir(), "mcp.json", `{"mcpServers":{"s":{"command":"x","env":["K=V"]}}}`)
	servers, err := LoadMCPConfigFile(path)
	if err != nil {
		t.Fatalf("LoadMCPConfigFile: %v", err)
	}
	if !reflect.DeepEqual(servers["s"].Env, []string{"K=V"}) {
		t.Errorf("Expected env [K=V], got %v", servers["s"].Env)
	}
}

func TestLoadMCPConfigFile_BadEnv(t *testing.T) {
	path := writeFile(t, t.TempDir(), "mcp.json", `{"mcpServers":{"s":{"command":"x","env":42}}}`)
	if _, err := LoadMCPConfigFile(path); err == nil {
		t.Fatal("Expected error for non-array, non-object env")
	}
}

func TestProviderSettingsEnvOverrides(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "env-anthropic")
	t.Setenv("OPENAI_MODEL", "gpt-env")
	t.Setenv("OLLAMA_HOST", "ollama.internal:11434")

	cfg := Defaults()
	cfg.LLM.Anthropic.APIKey = "file-key"

	if got := LoadAnthropicSettings(&cfg).APIKey; got != "env-anthropic" {
		t.Errorf("Expected env API key, got %q", got)
	}
	if got := LoadOpenAISettings(&cfg).Model; got != "gpt-env" {
		t.Errorf("Expected env model, got %q", got)
	}
	if got := LoadOllamaSettings(&cfg).BaseURL; got != "ollama.internal:11434" {
		t.Errorf("Expected env host, got %q", got)
	}
}

func TestLoadRouterConfig(t *testing.T) {
	clearProviderEnv(t)

	cfg := Defaults()
	cfg.LLM.OpenAI.APIKey = "sk-live"
	cfg.LLM.Anthropic.APIKey = llm.PlaceholderAPIKey
	cfg.LLM.Ollama.Enabled = true

	router := llm.NewRouter(nopLogger, LoadRouterConfig(&cfg), nil)
	want := []llm.Provider{llm.ProviderOpenAI, llm.ProviderOllama}
	if got := router.ListAvailable(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	cfg.LLM.Disabled = true
	router = llm.NewRouter(nopLogger, LoadRouterConfig(&cfg), nil)
	if got := router.ListAvailable(); len(got) != 0 {
		t.Errorf("Expected no providers when llm is disabled, got %v", got)
	}
}

func TestNewRouterBuildsAllAdapters(t *testing.T) {
	clearProviderEnv(t)
	cfg := Defaults()

	adapters, err := NewAdapters(&cfg, nopLogger)
	if err != nil {
		t.Fatalf("NewAdapters: %v", err)
	}
	got := make([]llm.Provider, 0, len(adapters))
	for _, a := range adapters {
		got = append(got, a.Provider())
	}
	if !reflect.DeepEqual(got, llm.Providers) {
		t.Errorf("Expected adapters for %v, got %v", llm.Providers, got)
	}
}

func TestSaveServerConfigRoundTrip(t *testing.T) {
	clearProviderEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Defaults()
	cfg.Server.Addr = ":7070"
	if err := SaveServerConfig(&cfg, path); err != nil {
		t.Fatalf("SaveServerConfig: %v", err)
	}
	loaded, err := LoadServerConfig(path)
	if err != nil {
		t.Fatalf("LoadServerConfig: %v", err)
	}
	if loaded.Server.Addr != ":7070" {
		t.Errorf("Expected :7070, got %q", loaded.Server.Addr)
	}
}
