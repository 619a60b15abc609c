package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mlapp/folio/config"
	foliologger "github.com/mlapp/folio/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logFile    string
	pretty     bool
)

var rootCmd = &cobra.Command{
	Use:           "foliod",
	Short:         "Portfolio and market-data gateway over MCP with multi-provider LLM dispatch",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: $FOLIO_CONFIG_PATH or ~/.folio/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logFile, "logfile", "", "Path to log file. If not set, logs to stdout")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "Use pretty console output (only valid when logfile is not set)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the configuration and initializes the logger shared by every command.
func setup() (*config.ServerConfig, zerolog.Logger, io.Closer, error) {
	if logFile != "" && pretty {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("--logfile and --pretty are mutually exclusive")
	}

	logger, closer, err := foliologger.New(foliologger.Options{File: logFile, Pretty: pretty})
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	path := configPath
	if path == "" {
		path = config.GetServerConfigPath()
	}
	cfg, err := config.LoadServerConfig(path)
	if err != nil {
		_ = closer.Close()
		return nil, zerolog.Logger{}, nil, fmt.Errorf("failed to load server configuration: %w", err)
	}
	logger.Info().Str("path", path).Msg("Loaded server configuration")

	return cfg, logger, closer, nil
}
