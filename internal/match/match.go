// Package match runs configured matches on the combat engine and turns the
// per-game winners into a match winner and robot statistics.
package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/robocombat/internal/engine"
	"github.com/udisondev/robocombat/internal/robot"
	"github.com/udisondev/robocombat/internal/roster"
)

// Bounds accepted for a match.
const (
	MinSeats  = 2
	MaxSeats  = 4
	MinRounds = 1
	MaxRounds = 10000
	MinGames  = 1
	MaxGames  = 200
)

// ErrInvalidConfig is returned for configurations rejected before a match starts.
var ErrInvalidConfig = errors.New("invalid match configuration")

// Config describes one match.
type Config struct {
	ID        uuid.UUID // generated when zero
	Name      string
	Games     int
	Rounds    int
	Telemetry bool
	Roster    []roster.Entry
}

// Validate checks cfg against the match bounds.
func (c Config) Validate() error {
	switch {
	case len(c.Roster) < MinSeats:
		return fmt.Errorf("%w: at least %d robots required, got %d", ErrInvalidConfig, MinSeats, len(c.Roster))
	case len(c.Roster) > MaxSeats:
		return fmt.Errorf("%w: at most %d robots allowed, got %d", ErrInvalidConfig, MaxSeats, len(c.Roster))
	case c.Rounds < MinRounds || c.Rounds > MaxRounds:
		return fmt.Errorf("%w: rounds must be between %d and %d, got %d", ErrInvalidConfig, MinRounds, MaxRounds, c.Rounds)
	case c.Games < MinGames || c.Games > MaxGames:
		return fmt.Errorf("%w: games must be between %d and %d, got %d", ErrInvalidConfig, MinGames, MaxGames, c.Games)
	}
	return nil
}

// Tally is the number of games won by one robot.
type Tally struct {
	Robot robot.Identity `json:"robot"`
	Wins  int            `json:"wins"`
}

// Result is the outcome of a match.
type Result struct {
	ID       uuid.UUID           `json:"id"`
	Name     string              `json:"name"`
	Rounds   int                 `json:"rounds_per_game"`
	Games    []engine.GameResult `json:"games"`
	Wins     []Tally             `json:"wins"`
	Winner   *robot.Identity     `json:"winner"`
	Started  time.Time           `json:"started_at"`
	Finished time.Time           `json:"finished_at"`
}

// StatsRecorder persists robot statistics. Implemented by db.StatsRepository.
type StatsRecorder interface {
	RecordPlayed(ctx context.Context, robots []robot.Identity) error
	RecordWon(ctx context.Context, winner robot.Identity) error
}

// ResultSaver persists finished matches. Implemented by db.MatchRepository.
type ResultSaver interface {
	SaveResult(ctx context.Context, res *Result) error
}

// Service runs matches.
type Service struct {
	registry *roster.Registry
	budget   time.Duration
	seed     uint64

	stats   StatsRecorder
	results ResultSaver
}

// Option configures a Service.
type Option func(*Service)

// WithTurnBudget overrides the per-hook budget.
func WithTurnBudget(d time.Duration) Option {
	return func(s *Service) { s.budget = d }
}

// WithSeed makes spawn positions reproducible. Zero means random.
func WithSeed(seed uint64) Option {
	return func(s *Service) { s.seed = seed }
}

// WithStats records played/won counters.
func WithStats(r StatsRecorder) Option {
	return func(s *Service) { s.stats = r }
}

// WithResults persists every finished match.
func WithResults(r ResultSaver) Option {
	return func(s *Service) { s.results = r }
}

// NewService creates a match service resolving robots from registry.
func NewService(registry *roster.Registry, opts ...Option) *Service {
	s := &Service{registry: registry, budget: engine.DefaultTurnBudget}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run validates cfg, plays the match and records statistics. The observer,
// if not nil, receives the match telemetry.
func (s *Service) Run(ctx context.Context, cfg Config, obs engine.Observer) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.ID == uuid.Nil {
		cfg.ID = uuid.New()
	}
	res := &Result{ID: cfg.ID, Name: cfg.Name, Rounds: cfg.Rounds, Started: time.Now()}
	seats := s.registry.Resolve(cfg.Roster)

	if s.stats != nil {
		ids := make([]robot.Identity, len(seats))
		for i, seat := range seats {
			ids[i] = seat.Identity
		}
		if err := s.stats.RecordPlayed(ctx, ids); err != nil {
			return nil, fmt.Errorf("recording played stats for match %s: %w", res.ID, err)
		}
	}

	slog.Info("match started",
		"match", res.ID,
		"name", cfg.Name,
		"robots", len(seats),
		"games", cfg.Games,
		"rounds", cfg.Rounds)

	eng := engine.New(seats, engine.Options{
		Rounds:     cfg.Rounds,
		Games:      cfg.Games,
		Telemetry:  cfg.Telemetry,
		TurnBudget: s.budget,
		Rand:       s.spawnRand(),
		Observer:   obs,
	})
	res.Games = eng.Play()
	res.Finished = time.Now()
	res.Wins, res.Winner = Winner(res.Games)

	slog.Info("match finished",
		"match", res.ID,
		"name", cfg.Name,
		"winner", res.Winner,
		"elapsed", res.Finished.Sub(res.Started))

	if res.Winner != nil && s.stats != nil {
		if err := s.stats.RecordWon(ctx, *res.Winner); err != nil {
			return res, fmt.Errorf("recording win for match %s: %w", res.ID, err)
		}
	}
	if s.results != nil {
		if err := s.results.SaveResult(ctx, res); err != nil {
			return res, fmt.Errorf("saving match %s: %w", res.ID, err)
		}
	}
	return res, nil
}

// Simulate plays a single game with telemetry and no statistics, the way
// players test robots before entering a match.
func (s *Service) Simulate(ctx context.Context, rounds int, entries []roster.Entry, obs engine.Observer) (*Result, error) {
	cfg := Config{Name: "simulation", Games: 1, Rounds: rounds, Telemetry: true, Roster: entries}
	sim := *s
	sim.stats = nil
	sim.results = nil
	return sim.Run(ctx, cfg, obs)
}

func (s *Service) spawnRand() *rand.Rand {
	if s.seed == 0 {
		return nil
	}
	return rand.New(rand.NewPCG(s.seed, s.seed^0x9e3779b97f4a7c15))
}

// Winner counts game wins per robot in order of first win and returns the
// robot with the most. Ties go to the robot that won first.
func Winner(games []engine.GameResult) ([]Tally, *robot.Identity) {
	var tallies []Tally
	index := make(map[robot.Identity]int)
	for _, g := range games {
		if g.Winner == nil {
			continue
		}
		i, ok := index[*g.Winner]
		if !ok {
			i = len(tallies)
			index[*g.Winner] = i
			tallies = append(tallies, Tally{Robot: *g.Winner})
		}
		tallies[i].Wins++
	}

	if len(tallies) == 0 {
		return tallies, nil
	}
	best := 0
	for i, t := range tallies {
		if t.Wins > tallies[best].Wins {
			best = i
		}
	}
	winner := tallies[best].Robot
	return tallies, &winner
}
