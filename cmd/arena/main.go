package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/robocombat/internal/config"
	"github.com/udisondev/robocombat/internal/db"
	"github.com/udisondev/robocombat/internal/engine"
	"github.com/udisondev/robocombat/internal/match"
	"github.com/udisondev/robocombat/internal/roster"
	"github.com/udisondev/robocombat/internal/telemetry"
)

const ArenaConfigPath = "config/arena.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down, no new matches will start", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ArenaConfigPath
	if p := os.Getenv("ROBOCOMBAT_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadArena(cfgPath)
	if err != nil {
		return fmt.Errorf("loading arena config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
	engine.EnableDebugLogging(logLevel == slog.LevelDebug)

	slog.Info("arena starting",
		"config", cfgPath,
		"matches", len(cfg.Matches),
		"parallelism", cfg.Parallelism,
		"turn_budget", cfg.TurnBudget)

	registry := roster.NewRegistry()
	if err := roster.RegisterBuiltins(registry); err != nil {
		return fmt.Errorf("registering builtin robots: %w", err)
	}

	opts := []match.Option{
		match.WithTurnBudget(cfg.TurnBudget),
		match.WithSeed(cfg.Seed),
	}

	if cfg.Database.Enabled {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")

		opts = append(opts,
			match.WithStats(db.NewStatsRepository(database.Pool())),
			match.WithResults(db.NewMatchRepository(database.Pool())),
		)
	}

	var feed *telemetry.Writer
	if cfg.TelemetryPath != "" {
		f, err := os.Create(cfg.TelemetryPath)
		if err != nil {
			return fmt.Errorf("creating telemetry file: %w", err)
		}
		defer f.Close()
		feed = telemetry.NewWriter(f)
	}

	svc := match.NewService(registry, opts...)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Parallelism)

	for _, m := range cfg.Matches {
		if gctx.Err() != nil {
			break
		}
		mcfg := toMatchConfig(m)
		g.Go(func() error {
			var obs engine.Observer
			if feed != nil {
				obs = feed.Match(mcfg.ID.String())
			}
			res, err := svc.Run(gctx, mcfg, obs)
			if errors.Is(err, match.ErrInvalidConfig) {
				slog.Error("match rejected", "name", mcfg.Name, "err", err)
				return nil
			}
			if err != nil {
				return fmt.Errorf("match %q: %w", mcfg.Name, err)
			}
			report(res)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if feed != nil {
		if err := feed.Err(); err != nil {
			return err
		}
	}
	return nil
}

func toMatchConfig(m config.Match) match.Config {
	entries := make([]roster.Entry, len(m.Roster))
	for i, e := range m.Roster {
		entries[i] = roster.Entry{Owner: e.Owner, Robot: e.Robot}
	}
	return match.Config{
		ID:        uuid.New(),
		Name:      m.Name,
		Games:     m.Games,
		Rounds:    m.Rounds,
		Telemetry: m.Telemetry,
		Roster:    entries,
	}
}

func report(res *match.Result) {
	winner := "none"
	if res.Winner != nil {
		winner = res.Winner.String()
	}
	slog.Info("match result", "match", res.ID, "name", res.Name, "games", len(res.Games), "winner", winner)
	for _, t := range res.Wins {
		slog.Info("games won", "match", res.ID, "robot", t.Robot.String(), "wins", t.Wins)
	}
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
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
