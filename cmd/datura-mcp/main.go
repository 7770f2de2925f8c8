// Command datura-mcp runs an MCP server that exposes Datura search as tools
// for MCP clients such as editors and agent frameworks.
//
// Configuration is layered: built-in defaults, an optional YAML file
// (-config flag, DATURA_CONFIG, ./config.yaml or /etc/datura/config.yaml),
// then DATURA_* environment variables. A .env file in the working directory
// is loaded first if present.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/datura-ai/datura-go/pkg/config"
	"github.com/datura-ai/datura-go/pkg/datura"
	"github.com/datura-ai/datura-go/pkg/observability"
	"github.com/datura-ai/datura-go/pkg/tools"
)

func main() {
	if err := run(); err != nil {
		slog.Error("datura-mcp failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	// Local development convenience; missing .env is not an error.
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded environment from .env")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	client, err := datura.New(datura.Config{
		APIKey:  cfg.Datura.APIKey,
		BaseURL: cfg.Datura.BaseURL,
		Timeout: cfg.Datura.Timeout,
		HTTPClient: &http.Client{
			Timeout:   cfg.Datura.Timeout,
			Transport: observability.InstrumentTransport(nil),
		},
	})
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}
	defer client.Close()

	searchTools := tools.New(client, datura.ModelNova)
	prometheus.MustRegister(searchTools.Collectors()...)

	server := mcp.NewServer(
		&mcp.Implementation{Name: "datura-mcp", Version: datura.Version},
		nil,
	)
	searchTools.Register(server)

	handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server
	}, nil)

	mux := http.NewServeMux()
	mux.Handle(cfg.MCP.Path, handler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	if cfg.Observability.Metrics.Enabled {
		mux.Handle(cfg.Observability.Metrics.Path, promhttp.Handler())
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.MCP.Port),
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("datura-mcp starting",
			"port", cfg.MCP.Port,
			"path", cfg.MCP.Path,
			"base_url", cfg.Datura.BaseURL,
			"metrics", cfg.Observability.Metrics.Enabled)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
