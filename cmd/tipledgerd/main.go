package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"tipledger/config"
	"tipledger/core/events"
	"tipledger/core/state"
	"tipledger/gateway/middleware"
	"tipledger/native/tipping"
	"tipledger/observability"
	"tipledger/observability/logging"
	telemetry "tipledger/observability/otel"
	"tipledger/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	allowMigrateFlag := flag.Bool("allow-migrate", false, "Allow starting with a mismatched state schema (manual migrations only)")
	flag.Parse()

	if err := run(*configFile, *allowMigrateFlag); err != nil {
		fmt.Fprintf(os.Stderr, "tipledgerd: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile string, allowMigrate bool) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if env := strings.TrimSpace(os.Getenv("TIPLEDGER_ENV")); env != "" {
		cfg.Environment = env
	}
	logger := logging.SetupWithOptions("tipledgerd", cfg.Environment, logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName: "tipledgerd",
		Environment: cfg.Environment,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		Headers:     telemetry.ParseHeaders(cfg.Telemetry.Headers),
		Traces:      cfg.Telemetry.Traces,
		Metrics:     cfg.Telemetry.Metrics,
		SampleRatio: cfg.Telemetry.SampleRatio,

		StorageBackend: cfg.StorageBackend,
		DataDir:        cfg.DataDir,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown", slog.Any("error", err))
		}
	}()

	db, err := storage.Open(cfg.StorageBackend, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StorageBackend, err)
	}
	defer db.Close()
	if err := state.EnsureStateVersion(db, allowMigrate || cfg.AllowMigrate); err != nil {
		return err
	}

	engine := newEngine(db, cfg, logger)
	srv := newServer(engine, middleware.RateLimit{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	}, prometheus.DefaultRegisterer, prometheus.DefaultGatherer, logger)
	srv.limiter.OnReject(func(route string) {
		observability.Ledger().RecordThrottle("http_" + route)
	})

	sweepStop := make(chan struct{})
	defer close(sweepStop)
	go srv.limiter.Run(sweepStop)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("ops http listening",
			slog.String("address", cfg.ListenAddress),
			slog.String("backend", cfg.StorageBackend))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve ops http: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown ops http: %w", err)
		}
	}
	return nil
}

func newEngine(db storage.Database, cfg *config.Config, logger *slog.Logger) *tipping.Engine {
	engine := tipping.NewEngine(state.NewTippingStore(db))
	engine.SetLogger(logger)
	engine.SetLimits(tipping.Limits{
		Cooldown:  cfg.Ledger.TipCooldownSeconds,
		MaxPerDay: cfg.Ledger.MaxTipsPerDay,
	})
	engine.SetEmitter(events.Multi{
		observability.Events(),
		eventLogger(logger),
	})
	return engine
}

// eventLogger writes every committed ledger event at debug level.
func eventLogger(logger *slog.Logger) events.Emitter {
	return events.Func(func(evt events.Event) {
		payload, ok := tipping.Unwrap(evt)
		if !ok {
			return
		}
		attrs := []any{slog.String("id", payload.ID), slog.String("type", payload.Type)}
		for key, value := range payload.Attributes {
			if key == "message" {
				attrs = append(attrs, logging.MaskField(key, value))
				continue
			}
			attrs = append(attrs, slog.String(key, value))
		}
		logger.Debug("ledger event", attrs...)
	})
}
