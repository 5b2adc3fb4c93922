package engine

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/robocombat/internal/geom"
)

func collisionRobots(t *testing.T, directions ...int) []*entity {
	t.Helper()
	seats := make([]Seat, len(directions))
	for i := range directions {
		seats[i] = seat(string(rune('a'+i)), idle())
	}
	e := New(seats, Options{Rand: testRand()})
	for i, d := range directions {
		e.robots[i].state.Direction = d
	}
	return e.robots
}

func TestResolveCollisions_HeadOn(t *testing.T) {
	robots := collisionRobots(t, 0, 180)
	moves := []move{
		{from: geom.Point{X: 290, Y: 300}, to: geom.Point{X: 300, Y: 300}},
		{from: geom.Point{X: 310, Y: 300}, to: geom.Point{X: 300, Y: 300}},
	}

	fixes := resolveCollisions(robots, moves)

	assert.Equal(t, 1, fixes)
	assert.Equal(t, CollisionDamage, robots[0].state.Damage)
	assert.Equal(t, CollisionDamage, robots[1].state.Damage)
	assert.Equal(t, geom.Point{X: 300, Y: 300}, moves[0].to)
	assert.Equal(t, geom.Point{X: 301, Y: 300}, moves[1].to, "second mover backs off against its heading")
}

func TestResolveCollisions_StationarySecondBacksOffFirst(t *testing.T) {
	robots := collisionRobots(t, 90, 0)
	moves := []move{
		{from: geom.Point{X: 300, Y: 295}, to: geom.Point{X: 300, Y: 300}},
		{from: geom.Point{X: 300, Y: 300}, to: geom.Point{X: 300, Y: 300}},
	}

	resolveCollisions(robots, moves)

	assert.Equal(t, geom.Point{X: 300, Y: 299}, moves[0].to)
	assert.Equal(t, geom.Point{X: 300, Y: 300}, moves[1].to)
	assert.Equal(t, CollisionDamage, robots[0].state.Damage)
	assert.Equal(t, CollisionDamage, robots[1].state.Damage)
}

func TestResolveCollisions_Cascade(t *testing.T) {
	// c backs off into b's destination, which then pushes c again.
	robots := collisionRobots(t, 0, 0, 0)
	moves := []move{
		{from: geom.Point{X: 290, Y: 300}, to: geom.Point{X: 300, Y: 300}},
		{from: geom.Point{X: 289, Y: 300}, to: geom.Point{X: 299, Y: 300}},
		{from: geom.Point{X: 288, Y: 300}, to: geom.Point{X: 300, Y: 300}},
	}

	fixes := resolveCollisions(robots, moves)

	assert.Equal(t, 2, fixes)
	assert.Equal(t, geom.Point{X: 298, Y: 300}, moves[2].to)
	assertDistinct(t, moves)
	assert.Equal(t, CollisionDamage, robots[0].state.Damage)
	assert.Equal(t, CollisionDamage, robots[1].state.Damage)
	assert.Equal(t, 2*CollisionDamage, robots[2].state.Damage)
}

func TestResolveCollisions_NoConflictNoChange(t *testing.T) {
	robots := collisionRobots(t, 0, 90)
	moves := []move{
		{from: geom.Point{X: 10, Y: 10}, to: geom.Point{X: 20, Y: 10}},
		{from: geom.Point{X: 50, Y: 50}, to: geom.Point{X: 50, Y: 60}},
	}
	want := append([]move(nil), moves...)

	assert.Zero(t, resolveCollisions(robots, moves))
	assert.Equal(t, want, moves)
	assert.Zero(t, robots[0].state.Damage)
}

// Random clusters of up to four robots crowding the same few cells.
func TestResolveCollisions_ConvergesAndIsIdempotent(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 99))
	maxFixes := 0

	for iter := range 5000 {
		n := 2 + rng.IntN(3)
		directions := make([]int, n)
		for i := range directions {
			directions[i] = rng.IntN(360)
		}
		robots := collisionRobots(t, directions...)

		starts := make(map[geom.Point]bool)
		moves := make([]move, n)
		for i := range moves {
			var from geom.Point
			for {
				from = geom.Point{X: 495 + rng.IntN(10), Y: 495 + rng.IntN(10)}
				if !starts[from] {
					break
				}
			}
			starts[from] = true
			to := geom.Point{X: 499 + rng.IntN(3), Y: 499 + rng.IntN(3)}
			if rng.IntN(4) == 0 {
				to = from
			}
			moves[i] = move{from: from, to: to}
		}

		fixes := resolveCollisions(robots, moves)
		require.LessOrEqual(t, fixes, maxCollisionFixes, "iteration %d", iter)
		maxFixes = max(maxFixes, fixes)
		assertDistinct(t, moves)

		resolved := append([]move(nil), moves...)
		assert.Zero(t, resolveCollisions(robots, moves), "iteration %d: second pass must be a no-op", iter)
		assert.Equal(t, resolved, moves)
	}
	t.Logf("max collision fixes over random clusters: %d", maxFixes)
}

func assertDistinct(t *testing.T, moves []move) {
	t.Helper()
	seen := make(map[geom.Point]int, len(moves))
	for i, m := range moves {
		if j, ok := seen[m.to]; ok {
			t.Fatalf("robots %d and %d share destination %v", j, i, m.to)
		}
		seen[m.to] = i
	}
}
