package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// ProviderConfig represents configuration for an API-key based LLM provider.
type ProviderConfig struct {
	APIKey      string  `yaml:"api_key,omitempty"`     // API key; blank or placeholder means unavailable
	BaseURL     string  `yaml:"base_url,omitempty"`    // Custom base URL (default: official API)
	Model       string  `yaml:"model,omitempty"`       // Default model name
	MaxTokens   int     `yaml:"max_tokens,omitempty"`  // Default completion budget
	Temperature float64 `yaml:"temperature,omitempty"` // Sent only when > 0 unless overridden per request
}

// OllamaConfig represents configuration for a local Ollama daemon.
type OllamaConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"` // Ollama host (default: "http://localhost:11434")
	Model   string `yaml:"model,omitempty"`
}

// LLMConfig groups the provider blocks used by the dispatch router.
type LLMConfig struct {
	Disabled        bool           `yaml:"disabled,omitempty"`         // Drop every provider block
	DefaultProvider string         `yaml:"default_provider,omitempty"` // Used when a request names no provider
	Timeout         int            `yaml:"timeout,omitempty"`          // Per-call timeout in seconds
	Anthropic       ProviderConfig `yaml:"anthropic,omitempty"`
	OpenAI          ProviderConfig `yaml:"openai,omitempty"`
	Ollama          OllamaConfig   `yaml:"ollama,omitempty"`
}

// MCPServerConfig represents configuration for an MCP server.
type MCPServerConfig struct {
	Name    string   `yaml:"name,omitempty"`
	Command string   `yaml:"command,omitempty"` // For STDIO transport
	URL     string   `yaml:"url,omitempty"`     // For HTTP transport
	Args    []string `yaml:"args,omitempty"`    // Additional args for STDIO command
	Env     []string `yaml:"env,omitempty"`     // Environment variables for STDIO
}

// ServerConfig represents configuration for the foliod daemon.
type ServerConfig struct {
	Server struct {
		Addr           string   `yaml:"addr,omitempty"`            // HTTP listen address (default: :8080)
		CORSOrigins    []string `yaml:"cors_origins,omitempty"`    // Allowed CORS origins
		RequestTimeout int      `yaml:"request_timeout,omitempty"` // Per-request timeout in seconds
	} `yaml:"server,omitempty"`

	LLM LLMConfig `yaml:"llm,omitempty"`

	MCPServers    map[string]*MCPServerConfig `yaml:"mcp_servers,omitempty"`
	MCPConfigFile string                      `yaml:"mcp_config_file,omitempty"` // JSON file with an "mcpServers" object

	Database struct {
		Path string `yaml:"path,omitempty"` // SQLite file for prompt history
	} `yaml:"database,omitempty"`

	Schedule struct {
		RefreshPrices string `yaml:"refresh_prices,omitempty"` // e.g., "15m" or "0 */15 * * * *" (cron)
	} `yaml:"schedule,omitempty"`
}

// Defaults returns the built-in configuration that loaded files are merged onto.
func Defaults() ServerConfig {
	cfg := ServerConfig{
		LLM: LLMConfig{
			DefaultProvider: "claude",
			Timeout:         60,
			Anthropic: ProviderConfig{
				BaseURL:   "https://api.anthropic.com",
				Model:     "claude-sonnet-4-5",
				MaxTokens: 1024,
			},
			OpenAI: ProviderConfig{
				BaseURL:   "https://api.openai.com/v1",
				Model:     "gpt-4o-mini",
				MaxTokens: 1024,
			},
			Ollama: OllamaConfig{
				BaseURL: "http://localhost:11434",
				Model:   "llama3.2",
			},
		},
		MCPServers: make(map[string]*MCPServerConfig),
	}
	cfg.Server.Addr = ":8080"
	cfg.Server.CORSOrigins = []string{"*"}
	cfg.Server.RequestTimeout = 120
	cfg.Database.Path = "~/.folio/folio.db"
	return cfg
}

// GetServerConfigPath returns the default config file path.
// Can be overridden via FOLIO_CONFIG_PATH environment variable.
func GetServerConfigPath() string {
	if envPath := os.Getenv("FOLIO_CONFIG_PATH"); envPath != "" {
		return expandPath(envPath)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./.folio/config.yaml"
	}
	return filepath.Join(homeDir, ".folio", "config.yaml")
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[2:])
	}
	return path
}

// LoadServerConfig loads the daemon configuration: built-in defaults, then the
// YAML file at path (if it exists), then environment overrides.
func LoadServerConfig(path string) (*ServerConfig, error) {
	cfg := Defaults()

	expandedPath := expandPath(path)
	if _, err := os.Stat(expandedPath); err == nil {
		data, err := os.ReadFile(expandedPath) //#nosec 304 -- intentional file read for config
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", expandedPath, err)
		}

		var fileConfig ServerConfig
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %q: %w", expandedPath, err)
		}

		if err := mergo.Merge(&cfg, fileConfig, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge config: %w", err)
		}
	}

	if cfg.MCPServers == nil {
		cfg.MCPServers = make(map[string]*MCPServerConfig)
	}

	if cfg.MCPConfigFile != "" {
		imported, err := LoadMCPConfigFile(cfg.MCPConfigFile)
		if err != nil {
			return nil, err
		}
		// Servers declared in YAML win over imported ones with the same name.
		for name, server := range imported {
			if _, exists := cfg.MCPServers[name]; !exists {
				cfg.MCPServers[name] = server
			}
		}
	}

	for name, server := range cfg.MCPServers {
		if server == nil {
			delete(cfg.MCPServers, name)
			continue
		}
		if server.Name == "" {
			server.Name = name
		}
	}

	if envProvider := os.Getenv("FOLIO_LLM_DEFAULT_PROVIDER"); envProvider != "" {
		cfg.LLM.DefaultProvider = envProvider
	}
	cfg.Database.Path = expandPath(cfg.Database.Path)

	return &cfg, nil
}

// SaveServerConfig saves the configuration to the specified path.
func SaveServerConfig(cfg *ServerConfig, path string) error {
	expandedPath := expandPath(path)

	// Ensure directory exists
	dir := filepath.Dir(expandedPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(expandedPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// PrimaryMCPServer returns the MCP server the daemon connects to: the first
// one in name order. The second return value is false when none is configured.
func (c *ServerConfig) PrimaryMCPServer() (*MCPServerConfig, bool) {
	if len(c.MCPServers) == 0 {
		return nil, false
	}
	names := make([]string, 0, len(c.MCPServers))
	for name := range c.MCPServers {
		names = append(names, name)
	}
	sort.Strings(names)
	return c.MCPServers[names[0]], true
}

// LLMTimeout returns the per-call LLM timeout.
func (c *ServerConfig) LLMTimeout() time.Duration {
	if c.LLM.Timeout <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.LLM.Timeout) * time.Second
}

// RequestTimeout returns the HTTP per-request timeout.
func (c *ServerConfig) RequestTimeout() time.Duration {
	if c.Server.RequestTimeout <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.Server.RequestTimeout) * time.Second
}
