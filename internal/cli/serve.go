package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/eeat/internal/adapters/http/api"
	"github.com/okian/eeat/internal/adapters/http/swagger"
	"github.com/okian/eeat/internal/adapters/llm/anthropic"
	"github.com/okian/eeat/internal/adapters/repository"
	service "github.com/okian/eeat/internal/app"
	"github.com/okian/eeat/internal/config"
	"github.com/okian/eeat/internal/domain/catalog"
	"github.com/okian/eeat/pkg/logger"
	"github.com/okian/eeat/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	minWriteTimeout        = 60 * time.Second
	writeTimeoutMargin     = 15 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP scoring service",
		Long: `Loads configuration (defaults, then the YAML file named by --config or
EEAT_CONFIG, then EEAT_* environment variables) and serves the API until
interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				if err := os.Setenv(config.EnvConfig, configPath); err != nil {
					return err
				}
			}
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
				return err
			}
			if err := logger.SetLevelString(cfg.LogLevel); err != nil {
				logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
					logger.String("log_level", cfg.LogLevel), logger.Error(err))
				_ = logger.SetLevelString("info")
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")

	return cmd
}

// openStore returns the batch store selected by cfg.
func openStore(cfg *config.Config) (repository.Store, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		return repository.NewSQLiteStore(cfg.SQLitePath)
	case config.StoreMemory, "":
		return repository.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("%w: store %q", config.ErrInvalidConfig, cfg.Store)
}

// newService wires the catalog, store and classifier described by cfg.
func newService(cfg *config.Config, log logger.Logger) (*service.Service, error) {
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	classifier := anthropic.New(anthropic.Config{
		APIKey:    cfg.AnthropicAPIKey,
		BaseURL:   cfg.AnthropicBaseURL,
		Model:     cfg.AnthropicModel,
		MaxTokens: cfg.AnthropicMaxTokens,
		Timeout:   cfg.ClassifyTimeout(),
	}, cat)

	return service.New(
		service.WithLogger(log),
		service.WithCatalog(cat),
		service.WithStore(store),
		service.WithClassifier(classifier),
		service.WithQueueSize(cfg.QueueSize),
		service.WithMaxBatchURLs(cfg.MaxBatchURLs),
		service.WithRateLimit(cfg.ClassifyRatePerSec),
		service.WithClassifyTimeout(cfg.ClassifyTimeout()),
	), nil
}

// newHandler registers the API and docs routes for svc.
func newHandler(ctx context.Context, svc *service.Service, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)

	apiServer := api.NewServer(svc, api.WithAllowOrigin(cfg.CORSAllowOrigin))
	apiServer.Register(ctx, mux)
	return apiServer.Handler(mux)
}

// writeTimeout outlasts the classifier timeout so a slow verdict relayed by
// POST /api/analyze still reaches the client, or ends in a 504.
func writeTimeout(cfg *config.Config) time.Duration {
	return max(minWriteTimeout, cfg.ClassifyTimeout()+writeTimeoutMargin)
}

func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout(cfg),
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	svc, err := newService(cfg, log)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := svc.Stop(stopCtx); err != nil {
			log.Error(ctx, "service stop failed", logger.Error(err))
		}
	}()

	go startServiceMetricsUpdater(ctx, svc)

	srv := newHTTPServer(cfg, newHandler(ctx, svc, cfg))

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// startServiceMetricsUpdater refreshes queue gauges until ctx is done.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(ctx, svc)
		}
	}
}

func updateServiceMetrics(ctx context.Context, svc *service.Service) {
	stats, err := svc.Stats(ctx)
	if err != nil {
		return
	}
	metrics.UpdateQueueSize(stats.QueueLength)
	metrics.UpdateQueueCapacity(stats.QueueCapacity)
}
