// Package engine runs combat matches between robots: games of rounds, each
// round a fixed pipeline of respond, scan, fire, missile flight, detonation,
// movement and collision resolution.
//
// An Engine is single-threaded and owns all robot and missile state. Robot
// logic runs one hook at a time on a separate goroutine under a turn budget
// and never receives references to engine collections.
package engine

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/udisondev/robocombat/internal/geom"
	"github.com/udisondev/robocombat/internal/missile"
	"github.com/udisondev/robocombat/internal/robot"
)

// Arena constants.
const (
	ScannerDistance = 1500
	CollisionDamage = 2
)

// Seat is one roster entry handed to the engine. A nil Robot means the
// caller failed to load the logic; the seat plays dead in every game.
type Seat struct {
	Identity robot.Identity
	Robot    robot.Robot
}

// Loaded reports whether the seat carries robot logic.
func (s Seat) Loaded() bool {
	return s.Robot != nil
}

// Options configures a match.
type Options struct {
	Rounds     int           // rounds per game
	Games      int           // games per match
	Telemetry  bool          // collect per-round snapshots
	TurnBudget time.Duration // per-hook wall-clock limit, DefaultTurnBudget if zero
	Rand       *rand.Rand    // spawn positions; random source if nil
	Observer   Observer      // optional
}

type entity struct {
	id          robot.Identity
	logic       robot.Robot
	startDamage int
	state       robot.State
}

// Engine plays one match. It is not safe for concurrent use.
type Engine struct {
	robots   []*entity
	missiles []*missile.Missile

	rounds    int
	games     int
	telemetry bool
	budget    time.Duration
	rng       *rand.Rand
	observer  Observer

	game   int
	round  int
	faults []Fault
}

// New builds an engine for seats. Seats without logic start every game
// with full damage.
func New(seats []Seat, opts Options) *Engine {
	e := &Engine{
		robots:    make([]*entity, 0, len(seats)),
		rounds:    opts.Rounds,
		games:     opts.Games,
		telemetry: opts.Telemetry,
		budget:    opts.TurnBudget,
		rng:       opts.Rand,
		observer:  opts.Observer,
	}
	if e.budget <= 0 {
		e.budget = DefaultTurnBudget
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	for _, s := range seats {
		ent := &entity{id: s.Identity, logic: s.Robot}
		if !s.Loaded() {
			ent.startDamage = robot.MaxDamage
		}
		ent.state = robot.Fresh(geom.Point{}, ent.startDamage)
		e.robots = append(e.robots, ent)
	}
	return e
}

// Play runs every game of the match and returns one result per game.
func (e *Engine) Play() []GameResult {
	results := make([]GameResult, 0, max(e.games, 0))
	for g := range max(e.games, 0) {
		res := e.playGame(g + 1)
		results = append(results, res)
	}
	return results
}

func (e *Engine) playGame(game int) GameResult {
	e.game = game
	e.round = 0
	e.faults = nil
	e.missiles = e.missiles[:0]
	e.resetRobots()

	for _, ent := range e.robots {
		if ent.state.Alive() {
			e.invoke(ent, hookInitialize)
		}
	}

	res := GameResult{Game: game}
	for r := range max(e.rounds, 0) {
		e.round = r + 1
		snap, ok := e.playRound()
		res.Rounds++
		if ok {
			res.Snapshots = append(res.Snapshots, snap)
			if e.observer != nil {
				e.observer.ObserveRound(game, snap)
			}
		}
		if e.aliveCount() < 2 {
			break
		}
	}

	if res.Rounds > 0 {
		res.Winner = e.winner()
	}
	res.Faults = e.faults

	slog.Debug("game finished",
		"game", game,
		"rounds", res.Rounds,
		"winner", res.Winner,
		"faults", len(res.Faults))

	if e.observer != nil {
		e.observer.ObserveGame(res)
	}
	return res
}

// resetRobots gives every robot a clean state at a distinct random position.
func (e *Engine) resetRobots() {
	taken := make(map[geom.Point]struct{}, len(e.robots))
	for _, ent := range e.robots {
		var p geom.Point
		for {
			p = geom.Point{X: e.rng.IntN(geom.Max + 1), Y: e.rng.IntN(geom.Max + 1)}
			if _, ok := taken[p]; !ok {
				break
			}
		}
		taken[p] = struct{}{}
		ent.state = robot.Fresh(p, ent.startDamage)
	}
}

// playRound applies the round pipeline once. The snapshot is only built when
// telemetry is enabled.
func (e *Engine) playRound() (RoundSnapshot, bool) {
	for _, ent := range e.robots {
		if ent.state.Alive() {
			e.invoke(ent, hookRespond)
		}
	}

	for _, ent := range e.robots {
		if ent.state.Alive() {
			e.scan(ent)
		}
	}

	for _, ent := range e.robots {
		if ent.state.Alive() {
			e.fire(ent)
		}
	}

	for _, m := range e.missiles {
		m.Move()
	}
	e.detonate()

	moves := e.computeMoves()
	passes := resolveCollisions(e.robots, moves)
	for i, ent := range e.robots {
		ent.state.MoveTo(moves[i].to)
	}

	if IsDebugEnabled() {
		slog.Debug("round played",
			"game", e.game,
			"round", e.round,
			"alive", e.aliveCount(),
			"missiles", len(e.missiles),
			"collision_passes", passes)
	}

	var snap RoundSnapshot
	if e.telemetry {
		snap = e.snapshot()
	}

	e.pruneMissiles()
	return snap, e.telemetry
}

func (e *Engine) pruneMissiles() {
	live := e.missiles[:0]
	for _, m := range e.missiles {
		if m.Active {
			live = append(live, m)
		}
	}
	clear(e.missiles[len(live):])
	e.missiles = live
}

func (e *Engine) aliveCount() int {
	n := 0
	for _, ent := range e.robots {
		if ent.state.Alive() {
			n++
		}
	}
	return n
}

// winner returns the only robot left alive, or nil.
func (e *Engine) winner() *robot.Identity {
	var last *entity
	for _, ent := range e.robots {
		if ent.state.Alive() {
			if last != nil {
				return nil
			}
			last = ent
		}
	}
	if last == nil {
		return nil
	}
	id := last.id
	return &id
}
