// Command ordervox is the main entry point for the Ordervox order service.
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
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/ordervox/ordervox/internal/config"
	"github.com/ordervox/ordervox/internal/health"
	"github.com/ordervox/ordervox/internal/httpapi"
	"github.com/ordervox/ordervox/internal/match"
	"github.com/ordervox/ordervox/internal/menu"
	"github.com/ordervox/ordervox/internal/observe"
	"github.com/ordervox/ordervox/internal/order"
	"github.com/ordervox/ordervox/internal/orderlog"
	"github.com/ordervox/ordervox/internal/pos"
	"github.com/ordervox/ordervox/internal/resilience"
	"github.com/ordervox/ordervox/internal/transcript"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "ordervox: config file %q not found; copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "ordervox: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("ordervox starting",
		"version", version,
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	tel, err := observe.Setup(observe.WithServiceVersion(version))
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(sctx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	// ── Menu catalog ──────────────────────────────────────────────────────────
	var (
		menuStore menu.Store
		checkers  []health.Checker
	)
	switch cfg.Menu.Source {
	case config.MenuSourcePostgres:
		pool, err := pgxpool.New(ctx, cfg.Menu.PostgresDSN)
		if err != nil {
			slog.Error("failed to connect to menu database", "err", err)
			return 1
		}
		defer pool.Close()

		pgStore := menu.NewPostgresStore(pool)
		if err := pgStore.Migrate(ctx); err != nil {
			slog.Error("failed to migrate menu schema", "err", err)
			return 1
		}
		menuStore = pgStore
		checkers = append(checkers, health.DatabaseChecker("menu_db", pool))

	default: // file
		m, err := menu.LoadMenuFile(cfg.Menu.Path)
		if err != nil {
			slog.Error("failed to load menu", "path", cfg.Menu.Path, "err", err)
			return 1
		}
		memStore, err := menu.NewMemStore(m)
		if err != nil {
			slog.Error("failed to initialise menu store", "err", err)
			return 1
		}
		menuStore = memStore
	}

	snapshot, err := menuStore.Snapshot(ctx)
	if err != nil {
		slog.Error("failed to read menu snapshot", "err", err)
		return 1
	}
	slog.Info("menu catalog loaded",
		"restaurant", snapshot.Restaurant.Name,
		"items", len(snapshot.Items),
		"modifier_groups", len(snapshot.ModifierGroups),
	)
	checkers = append(checkers, health.MenuChecker(menuStore))

	matcher := match.New(snapshot)

	// ── Menu hot-reload (file source only) ────────────────────────────────────
	if cfg.Menu.Source == config.MenuSourceFile && cfg.Menu.WatchInterval > 0 {
		watcher, err := menu.NewWatcher(cfg.Menu.Path, menuStore,
			menu.WithInterval(time.Duration(cfg.Menu.WatchInterval)*time.Second),
			menu.WithOnReload(matcher.SetMenu),
		)
		if err != nil {
			slog.Error("failed to start menu watcher", "err", err)
			return 1
		}
		defer watcher.Stop()
		slog.Info("menu watcher started", "interval_seconds", cfg.Menu.WatchInterval)
	}

	// ── Resolution pipeline ───────────────────────────────────────────────────
	resolverOpts := []order.ResolverOption{order.WithResolverMetrics(metrics)}
	if cfg.Transcript.CorrectionEnabled() {
		corrector := transcript.New(
			transcript.WithPhoneticThreshold(cfg.Transcript.PhoneticThreshold),
			transcript.WithFuzzyThreshold(cfg.Transcript.FuzzyThreshold),
		)
		resolverOpts = append(resolverOpts, order.WithCorrector(corrector))
	}
	resolver := order.NewResolver(matcher, resolverOpts...)
	builder := order.NewBuilder(resolver, order.Tax{Rate: cfg.Tax.Rate, Code: cfg.Tax.Code})

	// ── Order gateway ─────────────────────────────────────────────────────────
	var gateway order.Gateway
	if cfg.POS.BaseURL != "" {
		client := pos.New(cfg.POS.BaseURL,
			pos.WithAPIKey(cfg.POS.APIKey),
			pos.WithTimeout(time.Duration(cfg.POS.TimeoutSeconds)*time.Second),
			pos.WithBreaker(resilience.Config{
				Name:             "pos",
				FailureThreshold: cfg.POS.FailureThreshold,
				Cooldown:         time.Duration(cfg.POS.CooldownSeconds) * time.Second,
			}),
		)
		gateway = client
		checkers = append(checkers, health.GatewayChecker(client))
		slog.Info("order gateway configured", "base_url", cfg.POS.BaseURL)
	} else {
		gateway = pos.NewLocal()
		slog.Warn("no pos.base_url configured; orders are accepted locally")
	}

	// ── Order log ─────────────────────────────────────────────────────────────
	var logStore orderlog.Store
	if cfg.OrderLog.PostgresDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.OrderLog.PostgresDSN)
		if err != nil {
			slog.Error("failed to connect to order log database", "err", err)
			return 1
		}
		defer pool.Close()

		pgLog := orderlog.NewPostgresStore(pool)
		if err := pgLog.Migrate(ctx); err != nil {
			slog.Error("failed to migrate order log schema", "err", err)
			return 1
		}
		logStore = pgLog
		checkers = append(checkers, health.DatabaseChecker("orderlog_db", pool))
	} else {
		logStore = orderlog.NewMemStore()
	}

	// ── Service + HTTP API ────────────────────────────────────────────────────
	service := order.NewService(builder, gateway,
		order.WithOrderLog(logStore),
		order.WithMetrics(metrics),
	)

	api := httpapi.New(menuStore, service,
		httpapi.WithOrderLog(logStore),
		httpapi.WithHealth(health.New(checkers...)),
		httpapi.WithMetrics(metrics),
	)

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server ready, press Ctrl+C to shut down", "addr", cfg.Server.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received, stopping…")
		sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// newLogger builds the process-wide slog logger at the configured level.
func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
