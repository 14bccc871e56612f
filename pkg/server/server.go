// Package server provides the MCP server implementation for the TripGo integration.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/NERVsystems/tripgomcp/pkg/config"
	"github.com/NERVsystems/tripgomcp/pkg/region"
	"github.com/NERVsystems/tripgomcp/pkg/resilience"
	"github.com/NERVsystems/tripgomcp/pkg/tools"
	"github.com/NERVsystems/tripgomcp/pkg/tools/prompts"
	"github.com/NERVsystems/tripgomcp/pkg/tripgo"
	"github.com/NERVsystems/tripgomcp/pkg/version"
)

const (
	// ServerName is the name of the MCP server
	ServerName = "tripgo-mcp-server"

	// shutdownTimeout bounds SSE shutdown once the context is cancelled.
	shutdownTimeout = 5 * time.Second
)

// Server encapsulates the MCP server with TripGo tools.
type Server struct {
	srv     *server.MCPServer
	cfg     *config.Config
	client  *tripgo.Client
	regions *region.Cache
	logger  *slog.Logger
}

// NewServer creates a new TripGo MCP server with all tools registered.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server: config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("initializing TripGo MCP server", "name", ServerName, version.Attr())

	httpCfg := resilience.DefaultClientConfig("tripgo")
	httpCfg.Timeout = cfg.Timeout
	httpCfg.MaxRetries = uint64(cfg.MaxRetries)
	httpCfg.Logger = logger

	client, err := tripgo.NewClient(tripgo.ClientConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		HTTPClient:  resilience.NewClient(httpCfg),
		RateLimiter: tripgo.NewRateLimiter(cfg.RateLimit, cfg.RateBurst, logger),
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating TripGo client: %w", err)
	}
	regions := region.NewCache(client, cfg.RegionCacheTTL, logger)

	// Create MCP server with options
	srv := server.NewMCPServer(
		ServerName,
		version.BuildVersion,
		server.WithToolCapabilities(false),
		server.WithPromptCapabilities(false),
		server.WithRecovery(),
	)

	// Create tool registry and register all tools
	registry := tools.NewRegistry(client, regions, logger)
	registry.RegisterTools(srv)
	prompts.RegisterTripPlanningPrompts(srv)

	return &Server{
		srv:     srv,
		cfg:     cfg,
		client:  client,
		regions: regions,
		logger:  logger,
	}, nil
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.srv
}

// Run serves the configured transport until ctx is done or the transport fails.
func (s *Server) Run(ctx context.Context) error {
	switch s.cfg.Transport {
	case config.TransportSSE:
		return s.ServeSSE(ctx, s.cfg.SSEAddr)
	default:
		return s.ServeStdio(ctx, os.Stdin, os.Stdout)
	}
}

// ServeStdio serves MCP over in and out until ctx is done or in is closed.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("serving MCP over stdio")
	stdio := server.NewStdioServer(s.srv)
	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// ServeSSE serves MCP over server-sent events on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	sse := server.NewSSEServer(s.srv)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving MCP over SSE", "addr", addr)
		errCh <- sse.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down SSE server")
		return sse.Shutdown(shutdownCtx)
	}
}
