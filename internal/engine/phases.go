package engine

import (
	"github.com/udisondev/robocombat/internal/geom"
	"github.com/udisondev/robocombat/internal/missile"
	"github.com/udisondev/robocombat/internal/robot"
)

// scan sets the scanner result of ent to the distance of the nearest other
// robot strictly inside its scanner triangle, or -1.
func (e *Engine) scan(ent *entity) {
	s := &ent.state
	cone := geom.Triangle{
		A: s.Position,
		B: geom.Project(s.Position, s.ScannerDirection+s.ScannerResolution, ScannerDistance),
		C: geom.Project(s.Position, s.ScannerDirection-s.ScannerResolution, ScannerDistance),
	}

	result := -1
	for _, other := range e.robots {
		if other == ent || !cone.Contains(other.state.Position) {
			continue
		}
		d := geom.Distance(s.Position, other.state.Position)
		if result < 0 || d < result {
			result = d
		}
	}
	s.ScannerResult = result
}

// fire launches a missile when the cannon is ready and a shot was requested,
// otherwise advances the reload countdown.
func (e *Engine) fire(ent *entity) {
	s := &ent.state
	switch {
	case s.CannonReady && s.CannonFired:
		e.missiles = append(e.missiles, missile.New(s.Position, s.CannonDirection, s.CannonDistance))
		s.RoundsToCannonReady = robot.CannonCooldown
		s.CannonReady = false
		s.CannonFired = false
	case !s.CannonReady:
		if s.RoundsToCannonReady > 0 {
			s.RoundsToCannonReady--
		}
		if s.RoundsToCannonReady == 0 {
			s.CannonReady = true
		}
	}
}

// detonate applies the damage of every missile that arrived this round to
// all living robots in range. Each missile detonates once.
func (e *Engine) detonate() {
	for _, m := range e.missiles {
		if !m.Detonating() {
			continue
		}
		for _, ent := range e.robots {
			if ent.state.Alive() {
				ent.state.TakeDamage(m.DamageAt(ent.state.Position))
			}
		}
		m.Active = false
	}
}

type move struct {
	from, to geom.Point
}

func (m move) moved() bool {
	return m.from != m.to
}

// computeMoves returns the candidate destination of every robot, in roster
// order. Living robots ramp accel towards velocity and travel accel units
// along their heading; leaving the grid costs CollisionDamage and the
// destination is clamped. Dead robots stay put.
func (e *Engine) computeMoves() []move {
	moves := make([]move, len(e.robots))
	for i, ent := range e.robots {
		s := &ent.state
		moves[i] = move{from: s.Position, to: s.Position}
		if !s.Alive() {
			continue
		}

		s.UpdateAccel()
		next := geom.Project(s.Position, s.Direction, s.Accel)
		if !next.InBounds() {
			s.TakeDamage(CollisionDamage)
		}
		moves[i].to = geom.ClampPoint(next)
	}
	return moves
}
