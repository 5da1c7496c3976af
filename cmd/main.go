package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqpadapter "adbudget/internal/adapter/amqp"
	httpadapter "adbudget/internal/adapter/http"
	"adbudget/internal/adapter/postgres"
	"adbudget/internal/adapter/usecase"
	"adbudget/internal/config"
	"adbudget/internal/core/port"
	"adbudget/internal/db"
)

// main is the entry point of the budget service. It loads configuration,
// optionally runs database migrations and seeding, initializes the database
// pool and the core components, then starts the HTTP server, the optional
// AMQP spend consumer and the sweep ticker. On receiving a termination
// signal it gracefully shuts down the server.
func main() {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	var logger *slog.Logger
	{
		// Initialise structured logger based on configuration.
		var handler slog.Handler
		level := cfg.Log.SlogLevel()
		switch cfg.Log.SlogFormat() {
		case "json":
			handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		default:
			handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		}
		logger = slog.New(handler)
	}

	if cfg.Psql.RunMigrations {
		if err = db.Migrate(cfg.Psql.Addr.String()); err != nil {
			logger.Error("migration error", slog.Any("error", err))
		} else {
			logger.Info("migrations applied successfully")
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.Psql)
	if err != nil {
		logger.Error("database connection error", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Psql.RunSeed {
		if err = db.Seed(ctx, pool); err != nil {
			logger.Error("seed error", slog.Any("error", err))
		} else {
			logger.Info("demo data seeded")
		}
	}

	store := postgres.NewStore(pool)
	activation := usecase.NewActivation(store, logger)
	ledger := usecase.NewLedger(store, activation, logger)
	schedules := usecase.NewSchedules(store, activation, logger)
	sweeper := usecase.NewSweeper(store, ledger, activation, logger)

	handler := httpadapter.NewHandler(ledger, schedules, sweeper, store, logger)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
		}
	}()

	if cfg.AMQP.Enabled {
		consumer := amqpadapter.NewConsumer(cfg.AMQP.URL, cfg.AMQP.Queue, ledger, logger)
		go func() {
			if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("spend consumer stopped", slog.Any("error", err))
			}
		}()
	}

	if cfg.Sweep.Enabled {
		go runSweeps(ctx, sweeper, cfg.Sweep.CheckInterval, logger)
	}

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	} else {
		logger.Info("server gracefully stopped")
	}
}

// runSweeps stands in for an external scheduler: every interval it runs the
// budget and schedule check sweeps, and fires the daily and monthly reset
// sweeps when the UTC day or month rolls over. Sweeps are idempotent, so a
// missed or doubled tick is harmless.
func runSweeps(ctx context.Context, sweeper port.Sweeper, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now().UTC()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			now = now.UTC()
			if now.Day() != last.Day() {
				if _, err := sweeper.DailyResetSweep(ctx); err != nil {
					logger.Error("daily reset sweep failed", slog.Any("error", err))
				}
			}
			if now.Month() != last.Month() || now.Year() != last.Year() {
				if _, err := sweeper.MonthlyResetSweep(ctx); err != nil {
					logger.Error("monthly reset sweep failed", slog.Any("error", err))
				}
			}
			if _, err := sweeper.BudgetCheckSweep(ctx); err != nil {
				logger.Error("budget check sweep failed", slog.Any("error", err))
			}
			if _, err := sweeper.ScheduleCheckSweep(ctx); err != nil {
				logger.Error("schedule check sweep failed", slog.Any("error", err))
			}
			last = now
		}
	}
}
