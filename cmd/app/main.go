// @title Reel Faucet API
// @version 1.0
// @description Slot machine wager engine: sessions, spins, bets and live event streams.
// @BasePath /
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/osse101/reelfaucet/internal/announce"
	"github.com/osse101/reelfaucet/internal/balance"
	"github.com/osse101/reelfaucet/internal/betting"
	"github.com/osse101/reelfaucet/internal/config"
	"github.com/osse101/reelfaucet/internal/event"
	"github.com/osse101/reelfaucet/internal/handler"
	"github.com/osse101/reelfaucet/internal/jobs"
	"github.com/osse101/reelfaucet/internal/ledger"
	"github.com/osse101/reelfaucet/internal/metrics"
	"github.com/osse101/reelfaucet/internal/server"
	"github.com/osse101/reelfaucet/internal/session"
	"github.com/osse101/reelfaucet/internal/slots"
	"github.com/osse101/reelfaucet/internal/spin"
	"github.com/osse101/reelfaucet/internal/sse"
)

// ShutdownTimeout bounds graceful shutdown of every component
const ShutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	initLogger(cfg)
	for _, w := range cfg.Warnings() {
		slog.Warn("Configuration warning", "warning", w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Configuration errors in the catalog or level table are fatal
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	bets, err := betting.NewController(nil)
	if err != nil {
		return err
	}
	pool, err := poolConfig(cfg)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.close()

	var balanceService ledger.BalanceService
	if cfg.SignedInEnabled() {
		balanceService = balance.NewClient(cfg.BalanceURL, cfg.BalanceTimeout)
	}

	// Event bus: SSE bridge, metrics, optional Discord announcer
	bus := event.NewMemoryBus()
	publisher, err := event.NewResilientPublisher(bus, cfg.EventMaxRetries, cfg.EventRetryDelay, cfg.DeadLetterPath)
	if err != nil {
		return err
	}

	hub := sse.NewHub()
	hub.Start()
	sse.NewSubscriber(hub, bus).Subscribe()
	metrics.NewEventMetricsCollector().Register(bus)

	if cfg.AnnouncementsEnabled() {
		dg, err := announce.NewSession(cfg.DiscordToken)
		if err != nil {
			return err
		}
		announce.New(dg, cfg.DiscordChannelID).Register(bus)
		slog.Info("Big-win announcements enabled", "channel_id", cfg.DiscordChannelID)
	}

	sessions, err := session.NewManager(session.Config{
		Catalog:         catalog,
		Pool:            pool,
		Bets:            bets,
		Store:           store,
		Balance:         balanceService,
		StartingCredits: cfg.StartingCredits,
		Timings:         timings(cfg),
		Scheduler:       spin.ClockScheduler{},
		Publisher:       publisher,
		Size:            cfg.SessionCacheSize,
		IdleTTL:         cfg.SessionIdleTTL,
	})
	if err != nil {
		return err
	}

	scheduler := jobs.NewScheduler(jobs.Config{
		CheckpointSpec: cfg.CheckpointSpec,
		PruneSpec:      cfg.PruneSpec,
		Retention:      cfg.RecordRetention,
	}, sessions, store.pruner)
	if err := scheduler.Start(ctx); err != nil {
		return err
	}

	profile := cfg.SlotsProfile
	if cfg.CatalogPath != "" {
		profile = slots.ProfileCustom
	}
	srv := server.NewServer(
		cfg.Port,
		cfg.Version,
		cfg.TrustedProxies,
		server.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		handler.NewSlotsHandler(sessions, catalog, bets, pool, profile),
		hub,
		store.pinger,
	)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			slog.Error("Server failed", "error", err)
		}
	}

	return shutdown(scheduler, hub, srv, sessions, publisher)
}

// shutdown stops intake first, then saves sessions, then drains events
func shutdown(scheduler *jobs.Scheduler, hub *sse.Hub, srv *server.Server, sessions *session.Manager, publisher *event.ResilientPublisher) error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	var errs []error
	scheduler.Stop()
	// Closing streams first lets the HTTP server drain
	hub.Stop()
	if err := srv.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := sessions.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := publisher.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	slog.Info("Shutdown complete")
	return nil
}
