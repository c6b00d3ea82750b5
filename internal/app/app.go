// Package app wires the stockroom server together.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/stockroom/internal/api"
	"github.com/xenking/stockroom/internal/domain/inventory"
	"github.com/xenking/stockroom/pkg/health"
	"github.com/xenking/stockroom/pkg/httpmiddleware"
)

// Run opens the storage backend, builds the store and serves the API until
// ctx is cancelled.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("storage", cfg.Storage.Driver),
	)

	storage, closeStorage, err := OpenStorage(ctx, lg, cfg.Storage)
	if err != nil {
		return errors.Wrap(err, "open storage")
	}
	defer closeStorage()

	store := inventory.NewStore(
		inventory.WithLogger(lg.Named("inventory")),
		inventory.WithTracerProvider(m.TracerProvider()),
	)
	if cfg.Storage.LoadOnStart {
		if err := loadOnStart(ctx, lg, store, storage, cfg.Storage.Document); err != nil {
			return err
		}
	}

	healthSvc := health.New()
	healthSvc.AddReadinessCheck("storage", 5*time.Second, health.PingCheck(storage))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	defer healthSvc.Stop()
	healthSvc.SetReady(true)

	h, err := api.NewHandler(api.Config{Document: cfg.Storage.Document}, store, storage,
		api.WithMeterProvider(m.MeterProvider()),
	)
	if err != nil {
		return errors.Wrap(err, "create handler")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	h.Register(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: otelhttp.NewHandler(
			httpmiddleware.Wrap(mux,
				httpmiddleware.InjectLogger(zctx.From(ctx)),
				httpmiddleware.Recovery(),
				httpmiddleware.RequestID(),
				httpmiddleware.LogRequests(),
			),
			"stockroom",
			otelhttp.WithMeterProvider(m.MeterProvider()),
			otelhttp.WithTracerProvider(m.TracerProvider()),
		),
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		healthSvc.SetReady(false)
		if ctx.Err() != nil {
			lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
			time.Sleep(cfg.Graceful.ReadinessDelay)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})
	return g.Wait()
}

// loadOnStart restores the default document. A missing document starts the
// server with an empty inventory.
func loadOnStart(ctx context.Context, lg *zap.Logger, store *inventory.Store, storage inventory.Storage, name string) error {
	n, err := store.Load(ctx, storage, name)
	switch {
	case errors.Is(err, inventory.ErrDocumentNotFound):
		lg.Info("No inventory document to load", zap.String("document", name))
		return nil
	case err != nil:
		return errors.Wrap(err, "load inventory")
	}
	lg.Info("Inventory restored", zap.String("document", name), zap.Int("products", n))
	return nil
}
