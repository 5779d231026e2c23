package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/replaytune/internal/adapters/http/api"
	"github.com/okian/replaytune/internal/adapters/repository"
	"github.com/okian/replaytune/internal/adapters/webhook"
	app "github.com/okian/replaytune/internal/app"
	"github.com/okian/replaytune/internal/config"
	"github.com/okian/replaytune/internal/domain/category"
	"github.com/okian/replaytune/internal/domain/matching"
	"github.com/okian/replaytune/internal/domain/profile"
	"github.com/okian/replaytune/pkg/logger"
	"github.com/okian/replaytune/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 30 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		// The logger may not exist yet.
		_, _ = os.Stderr.WriteString("replaytune: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := newService(cfg, log)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	if err := svc.ReloadCatalog(ctx); err != nil {
		// Not fatal: the catalog is retried lazily on the first request.
		log.Warn(ctx, "initial catalog load failed", logger.String("path", cfg.CatalogPath), logger.Error(err))
	}

	srv := newHTTPServer(ctx, cfg, svc, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(context.Background(), "shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
		}
		if err := svc.Stop(shutdownCtx); err != nil {
			log.Error(shutdownCtx, "service shutdown incomplete", logger.Error(err))
		}
		log.Info(shutdownCtx, "server stopped")
		return nil
	})
	g.Go(func() error {
		watchReload(gctx, svc, log)
		return nil
	})
	g.Go(func() error {
		startSystemMetricsUpdater(gctx)
		return nil
	})

	return g.Wait()
}

// newService wires the domain pipeline and delivery settings from cfg.
func newService(cfg *config.Config, log logger.Logger) *app.Service {
	catalogLog := log.Named("catalog")
	store := repository.NewCatalogStore(
		repository.NewLoader(cfg.CatalogPath, repository.WithLoaderLogger(catalogLog)),
		repository.WithLogger(catalogLog),
	)

	builder := profile.New(
		profile.WithCategorizer(category.New(category.WithThresholds(cfg.CategoryThresholds()))),
	)

	deliverer := webhook.NewClient(
		webhook.WithTimeout(cfg.Webhook.Timeout),
		webhook.WithLogger(log.Named("webhook")),
		webhook.WithBreaker(webhook.BreakerSettings{
			MaxRequests:      cfg.Webhook.BreakerMaxRequests,
			Interval:         cfg.Webhook.BreakerInterval,
			Timeout:          cfg.Webhook.BreakerTimeout,
			FailureThreshold: cfg.Webhook.BreakerFailureThreshold,
		}),
	)

	return app.New(
		app.WithLogger(log.Named("service")),
		app.WithCatalog(store),
		app.WithProfileBuilder(builder),
		app.WithMatcher(matching.New(matching.WithWeights(cfg.MatchingWeights()))),
		app.WithDeliverer(deliverer),
		app.WithTopN(cfg.DefaultTopN, cfg.MaxTopN),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithRetry(cfg.Webhook.MaxAttempts, cfg.Webhook.Backoff),
	)
}

// newHTTPServer builds the HTTP server around the API routes.
func newHTTPServer(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) *http.Server {
	apiServer := api.NewServer(svc,
		api.WithAllowedOrigins(cfg.AllowedOrigins),
		api.WithRateLimit(cfg.RateLimitPerMinute),
		api.WithMaxBodyBytes(cfg.MaxBodyBytes),
		api.WithLogger(log.Named("api")),
	)
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           apiServer.Routes(ctx),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// watchReload re-reads the catalog on SIGHUP until ctx is done.
func watchReload(ctx context.Context, svc *app.Service, log logger.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := svc.ReloadCatalog(ctx); err != nil {
				log.Error(ctx, "catalog reload failed; keeping previous catalog", logger.Error(err))
				continue
			}
			log.Info(ctx, "catalog reloaded")
		}
	}
}

// startSystemMetricsUpdater samples runtime metrics until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	metrics.UpdateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateSystemMetrics()
		}
	}
}
