package engine

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/udisondev/robocombat/internal/geom"
	"github.com/udisondev/robocombat/internal/robot"
)

// scripted is robot logic built from closures.
type scripted struct {
	init    func(ctx context.Context, c *robot.Control)
	respond func(ctx context.Context, c *robot.Control)
}

func (s *scripted) Initialize(ctx context.Context, c *robot.Control) {
	if s.init != nil {
		s.init(ctx, c)
	}
}

func (s *scripted) Respond(ctx context.Context, c *robot.Control) {
	if s.respond != nil {
		s.respond(ctx, c)
	}
}

func idle() robot.Robot { return robot.Base{} }

func seat(name string, r robot.Robot) Seat {
	return Seat{Identity: robot.Identity{Owner: "tester", Name: name}, Robot: r}
}

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(7, 11))
}

// newArena builds an engine with fresh robots placed at the given positions,
// ready for playRound.
func newArena(t *testing.T, seats []Seat, positions ...geom.Point) *Engine {
	t.Helper()
	if len(positions) != len(seats) {
		t.Fatalf("newArena: %d seats, %d positions", len(seats), len(positions))
	}
	e := New(seats, Options{Rounds: 100, Games: 1, Telemetry: true, Rand: testRand()})
	e.game = 1
	e.resetRobots()
	for i, p := range positions {
		e.robots[i].state.Position = p
	}
	return e
}
