package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/udisondev/swarmspawn/internal/api"
	"github.com/udisondev/swarmspawn/internal/config"
	"github.com/udisondev/swarmspawn/internal/db"
	"github.com/udisondev/swarmspawn/internal/metrics"
	"github.com/udisondev/swarmspawn/internal/sim"
	"github.com/udisondev/swarmspawn/internal/spawn"
)

const ConfigPath = "config/spawnserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("SWARMSPAWN_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", cfgPath, err)
	}

	slog.Info("swarmspawn server starting",
		"log_level", cfg.LogLevel,
		"tick", cfg.TickInterval,
		"grid", fmt.Sprintf("%dx%d", cfg.Grid.XMax+1, cfg.Grid.ZMax+1),
		"stage", cfg.InitialStage)

	g, gctx := errgroup.WithContext(ctx)

	observers := []spawn.Observer{metrics.NewRecorder(prometheus.DefaultRegisterer)}

	var (
		unreachableRepo *db.UnreachableRepository
		cycleRepo       *db.CycleRepository
	)
	if cfg.Database.Enabled {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		version, err := database.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied", "version", version)

		unreachableRepo = database.Unreachable()
		cycleRepo = database.Cycles()

		journal := db.NewJournal(unreachableRepo, cycleRepo)
		observers = append(observers, journal)
		g.Go(func() error {
			return journal.Run(gctx)
		})
	}

	game, err := sim.NewGame(cfg, time.Now(), observers...)
	if err != nil {
		return fmt.Errorf("creating game: %w", err)
	}

	if cfg.Database.Enabled {
		if err := restoreSpawnState(ctx, game, unreachableRepo, cycleRepo); err != nil {
			return err
		}
	}

	driver := sim.NewDriver(game, cfg.TickInterval)
	metrics.RegisterStatus(prometheus.DefaultRegisterer, driver.Status)

	g.Go(func() error {
		if err := driver.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("simulation driver: %w", err)
		}
		return nil
	})

	if cfg.Admin.Enabled {
		router := api.NewRouter(api.RouterConfig{
			Controller:     driver,
			TriggerLimiter: rate.NewLimiter(rate.Limit(cfg.Admin.TriggerRate), cfg.Admin.TriggerBurst),
			CORSOrigins:    cfg.Admin.CORSOrigins,
		})
		server := api.NewServer(cfg.Admin.Addr(), router)
		g.Go(func() error {
			return server.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// restoreSpawnState seeds the scheduler with the unreachable cells and the
// penalty persisted by previous runs.
func restoreSpawnState(ctx context.Context, game *sim.Game, cells *db.UnreachableRepository, cycles *db.CycleRepository) error {
	known, err := cells.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading unreachable cells: %w", err)
	}
	game.Scheduler.Unreachable().Seed(known)

	penalty, err := cycles.LastPenalty(ctx)
	if err != nil {
		return fmt.Errorf("loading spawn penalty: %w", err)
	}
	game.Scheduler.SeedPenalty(penalty)

	slog.Info("spawn state restored", "unreachableCells", len(known), "penalty", penalty)
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
