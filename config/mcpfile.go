package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/samber/lo"
)

// mcpConfigFile is the JSON layout shared by desktop MCP hosts:
// {"mcpServers": {"name": {"command": ..., "args": [...], "env": {...}}}}.
type mcpConfigFile struct {
	MCPServers map[string]mcpFileServer `json:"mcpServers"`
}

type mcpFileServer struct {
	Command string          `json:"command,omitempty"`
	URL     string          `json:"url,omitempty"`
	Args    []string        `json:"args,omitempty"`
	Env     json.RawMessage `json:"env,omitempty"` // Can be array of strings or object
}

// envAsStrings converts the Env field to a slice of strings.
// Env can be either an array of strings or an object (map[string]string).
// If it's an object, converts it to sorted "KEY=VALUE" strings.
func (s *mcpFileServer) envAsStrings() ([]string, error) {
	if len(s.Env) == 0 {
		return nil, nil
	}

	var envArray []string
	if err := json.Unmarshal(s.Env, &envArray); err == nil {
		return envArray, nil
	}

	var envMap map[string]string
	if err := json.Unmarshal(s.Env, &envMap); err != nil {
		return nil, fmt.Errorf("env must be an array of strings or an object: %w", err)
	}
	env := lo.MapToSlice(envMap, func(key string, value string) string {
		return fmt.Sprintf("%s=%s", key, value)
	})
	sort.Strings(env)
	return env, nil
}

// LoadMCPConfigFile reads MCP server definitions from a JSON file with an
// "mcpServers" object. A missing file yields no servers.
func LoadMCPConfigFile(path string) (map[string]*MCPServerConfig, error) {
	expandedPath := expandPath(path)
	if _, err := os.Stat(expandedPath); os.IsNotExist(err) {
		return map[string]*MCPServerConfig{}, nil
	}

	data, err := os.ReadFile(expandedPath) //#nosec 304 -- intentional file read for config
	if err != nil {
		return nil, fmt.Errorf("failed to read MCP config file %q: %w", expandedPath, err)
	}

	var file mcpConfigFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse MCP config file %q: %w", expandedPath, err)
	}

	result := make(map[string]*MCPServerConfig, len(file.MCPServers))
	for name, server := range file.MCPServers {
		env, err := server.envAsStrings()
		if err != nil {
			return nil, fmt.Errorf("MCP server %q: %w", name, err)
		}
		result[name] = &MCPServerConfig{
			Name:    name,
			Command: server.Command,
			URL:     server.URL,
			Args:    server.Args,
			Env:     env,
		}
	}
	return result, nil
}
