package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/astekno/paytrack-be/internal/backend"
	"github.com/astekno/paytrack-be/internal/config"
	"github.com/astekno/paytrack-be/internal/currency"
	"github.com/astekno/paytrack-be/internal/domain"
	"github.com/astekno/paytrack-be/internal/guard"
	"github.com/astekno/paytrack-be/internal/handler"
	"github.com/astekno/paytrack-be/internal/realtime"
	"github.com/astekno/paytrack-be/internal/server"
	"github.com/astekno/paytrack-be/internal/service"
	"github.com/astekno/paytrack-be/internal/store"
	"github.com/astekno/paytrack-be/internal/ws"
	"github.com/astekno/paytrack-be/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.New(cfg.Logging.Level)
	defer log.Sync()

	ctx := context.Background()
	log.Info(ctx, "Starting application")

	// Backend: Postgres when configured, in-memory otherwise so the
	// dashboard still comes up without a database.
	var (
		repo domain.Repository
		feed domain.ChangeFeed
	)
	if cfg.Database.URL != "" {
		pg, err := backend.Connect(cfg.Database.URL, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, log)
		if err != nil {
			log.Fatal(ctx, "Failed to connect to database", "error", err)
		}
		defer pg.Close()

		if err := pg.Migrate(ctx); err != nil {
			log.Fatal(ctx, "Migration failed", "error", err)
		}
		repo, feed = pg, pg
		log.Info(ctx, "Postgres backend initialized")
	} else {
		mem := backend.NewMemoryBackend()
		repo, feed = mem, mem
		log.Warn(ctx, "No DATABASE_URL set, using in-memory backend")
	}

	files, err := backend.NewDiskFileStore(cfg.Files.Dir, cfg.Files.BaseURL)
	if err != nil {
		log.Fatal(ctx, "Failed to initialize file store", "error", err)
	}

	st := store.New(log)
	dedup := guard.New(cfg.Guard.SuppressionWindow, cfg.Guard.GracePeriod)
	cooldown := guard.NewCooldown(cfg.Guard.SubmitCooldown)

	svc := service.NewPaymentService(repo, files, st, dedup, cooldown, cfg.Rates.Period, log)
	log.Info(ctx, "Services initialized")

	// Startup is fail-open: a dead backend leaves the store on seed data
	// instead of refusing to serve.
	if err := svc.Reload(ctx); err != nil {
		log.Warn(ctx, "Initial load failed, serving seed data", "error", err)
	}

	fetcher := currency.NewLiveFetcher(cfg.Rates.FetchURL, log)
	svc.SeedRates(ctx, fetcher.Fetch(ctx))

	hub := ws.NewHub()
	unsubscribe := st.Subscribe(func(snap store.Snapshot) {
		hub.Broadcast(ws.StoreUpdate{
			RecordCount: len(snap.Records),
			ViewCount:   len(snap.View),
			Reason:      "store_changed",
		})
	})
	defer unsubscribe()

	loop := realtime.NewLoop(feed, svc.Reload, cfg.Realtime.Debounce, log)
	if err := loop.Start(ctx); err != nil {
		log.Error(ctx, "Realtime loop failed to start", "error", err)
	}

	paymentHandler := handler.NewPaymentHandler(svc, log)
	reportHandler := handler.NewReportHandler(svc, st, log)
	ratesHandler := handler.NewRatesHandler(svc, st, log)
	wsHandler := handler.NewWSHandler(hub, log)
	healthHandler := handler.NewHealthHandler()
	log.Info(ctx, "Handlers initialized")

	srv := server.New(cfg, log, paymentHandler, reportHandler, ratesHandler, wsHandler, healthHandler)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal(ctx, "Failed to start HTTP server", "error", err)
		}
	}()

	log.Info(ctx, "Application started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info(ctx, "Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "HTTP server shutdown error", "error", err)
	}

	loop.Stop()

	log.Info(ctx, "Application stopped gracefully")
}
