package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	_ "time/tzdata" // region timezones must resolve without a system zoneinfo

	"github.com/NERVsystems/tripgomcp/pkg/config"
	"github.com/NERVsystems/tripgomcp/pkg/metrics"
	"github.com/NERVsystems/tripgomcp/pkg/server"
	"github.com/NERVsystems/tripgomcp/pkg/version"
)

// serverKey names this server in MCP client configs.
const serverKey = "TripGo"

var (
	showVersionFlag bool
	debug           bool
	generateConfig  string
	mergeOnly       bool
	transport       string
	addr            string
)

func init() {
	flag.BoolVar(&showVersionFlag, "version", false, "Display version information")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.StringVar(&generateConfig, "generate-config", "", "Generate a Claude Desktop Client config file at the specified path")
	flag.BoolVar(&mergeOnly, "merge-only", false, "With -generate-config, only update an existing config file")
	flag.StringVar(&transport, "transport", "", "Transport to serve: stdio or sse (overrides TRIPGO_TRANSPORT)")
	flag.StringVar(&addr, "addr", "", "Listen address for the sse transport (overrides TRIPGO_SSE_ADDR)")
}

func main() {
	flag.Parse()

	// Configure logging. stdout carries the stdio transport, so logs go to stderr.
	var logLevel slog.Level
	if debug {
		logLevel = slog.LevelDebug
	} else {
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Show version and exit if requested
	if showVersionFlag {
		fmt.Println(version.String())
		return
	}

	// Generate Claude Desktop config if requested
	if generateConfig != "" {
		if err := generateClientConfig(generateConfig, mergeOnly); err != nil {
			logger.Error("failed to generate config", "error", err)
			os.Exit(1)
		}
		logger.Info("successfully generated Claude Desktop Client config", "path", generateConfig)
		return
	}

	if err := run(logger, logLevel); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, logLevel slog.Level) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if transport != "" {
		cfg.Transport = strings.ToLower(transport)
	}
	if addr != "" {
		cfg.SSEAddr = addr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Info("starting TripGo MCP server",
		"version", version.BuildVersion,
		"transport", cfg.Transport,
		"log_level", logLevel.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, logger); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("server initialized, waiting for requests")
	return srv.Run(ctx)
}

// generateClientConfig creates or updates a Claude Desktop Client config
// file. With mergeOnly the file must already exist.
func generateClientConfig(outputPath string, mergeOnly bool) error {
	logger := slog.Default()

	if outputPath == "" {
		return errors.New("config path is empty")
	}
	if filepath.Ext(outputPath) != ".json" {
		return fmt.Errorf("config path %q must end in .json", outputPath)
	}
	for _, part := range strings.Split(filepath.ToSlash(outputPath), "/") {
		if part == ".." {
			return fmt.Errorf("config path %q must not contain '..'", outputPath)
		}
	}

	// Get absolute path to executable
	execPath, err := os.Executable()
	if err != nil {
		execPath = os.Args[0] // Fallback to args if cannot get executable path
	}
	absExecPath, err := filepath.Abs(execPath)
	if err != nil {
		absExecPath = execPath // Use as is if cannot resolve absolute path
	}

	serverConfig := map[string]interface{}{
		"command": absExecPath,
		"args":    []string{},
		"env": map[string]string{
			config.EnvPrefix + "_API_KEY": "<your TripGo API key>",
		},
	}

	var cfg map[string]interface{}

	data, err := os.ReadFile(outputPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			if mergeOnly {
				return fmt.Errorf("existing config is not valid JSON: %w", err)
			}
			logger.Warn("existing config is not valid JSON, will create new", "error", err)
			cfg = nil
		}
	case errors.Is(err, os.ErrNotExist):
		if mergeOnly {
			return fmt.Errorf("config file %s does not exist", outputPath)
		}
	default:
		return fmt.Errorf("failed to read existing config: %w", err)
	}
	if cfg == nil {
		cfg = make(map[string]interface{})
	}

	// Check if mcpServers exists, create it if not
	mcpServers, ok := cfg["mcpServers"].(map[string]interface{})
	if !ok {
		mcpServers = make(map[string]interface{})
		cfg["mcpServers"] = mcpServers
	}
	mcpServers[serverKey] = serverConfig

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	out = append(out, '\n')

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// The file holds an API key once edited, so keep it private.
	if err := os.WriteFile(outputPath, out, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Chmod(outputPath, 0o600); err != nil {
		return fmt.Errorf("failed to set config permissions: %w", err)
	}

	return nil
}
