// Command cbioportal-mcp runs the cBioPortal MCP server over stdio.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/pickleton89/cbioportal-mcp/internal/config"
	"github.com/pickleton89/cbioportal-mcp/internal/mcpserver"
	"github.com/pickleton89/cbioportal-mcp/pkg/client"
	"github.com/pickleton89/cbioportal-mcp/pkg/logging"
	"github.com/pickleton89/cbioportal-mcp/pkg/tools"
)

const version = "0.2.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "cbioportal-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath    string
		baseURL       string
		logLevel      string
		timeout       time.Duration
		exampleConfig string
	)

	flags := pflag.NewFlagSet("cbioportal-mcp", pflag.ContinueOnError)
	flags.StringVar(&configPath, "config", "", "path to YAML configuration file")
	flags.StringVar(&baseURL, "base-url", "", "base URL for the cBioPortal API (overrides config)")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	flags.DurationVar(&timeout, "timeout", 0, "HTTP client timeout (overrides config)")
	flags.StringVar(&exampleConfig, "create-example-config", "", "write an example configuration file to the given path and exit")
	flags.Lookup("create-example-config").NoOptDefVal = "cbioportal-mcp-config.example.yaml"

	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	if exampleConfig != "" {
		if err := config.WriteExample(exampleConfig); err != nil {
			return fmt.Errorf("create example config: %w", err)
		}
		fmt.Printf("Example configuration created: %s\n", exampleConfig)
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// CLI flags win over file and environment.
	if baseURL != "" {
		cfg.Server.BaseURL = baseURL
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if timeout > 0 {
		cfg.Server.ClientTimeout = timeout.Seconds()
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger, err := setupLogging(cfg.Logging)
	if err != nil {
		return err
	}

	logger.Info().
		Str("version", version).
		Str("base_url", cfg.Server.BaseURL).
		Str("transport", cfg.Server.Transport).
		Dur("client_timeout", cfg.Server.Timeout()).
		Msg("starting cBioPortal MCP server")

	apiClient, err := client.New(client.Config{
		BaseURL: cfg.Server.BaseURL,
		Timeout: cfg.Server.Timeout(),
	})
	if err != nil {
		return fmt.Errorf("create API client: %w", err)
	}
	apiClient.Start()
	defer func() {
		if err := apiClient.Close(); err != nil {
			logger.Warn().Err(err).Msg("closing API client")
		}
	}()

	srv := mcpserver.New(tools.NewService(apiClient), version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ServeStdio()
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("signal received, shutting down")
		return nil
	case err := <-errCh:
		if err != nil && ctx.Err() == nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info().Msg("server shut down")
		return nil
	}
}

// setupLogging configures the global logger from the loaded
// configuration, routing output to a file when one is set.
func setupLogging(cfg config.Logging) (zerolog.Logger, error) {
	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.LogLevel(cfg.Level)
	logCfg.Pretty = cfg.Pretty

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("open log file: %w", err)
		}
		logCfg.Output = f
	}

	return logging.Setup(logCfg), nil
}
