// Package missile implements the projectile fired by a robot cannon.
package missile

import (
	"github.com/udisondev/robocombat/internal/geom"
)

// StepDistance is how far a missile travels per round.
const StepDistance = 10

// Proximity damage on detonation.
const (
	DamageMin = 3  // (20, 40]
	DamageMed = 5  // (5, 20]
	DamageMax = 10 // [0, 5]

	RadiusMin = 40
	RadiusMed = 20
	RadiusMax = 5
)

// Missile flies in a straight line and detonates at its final position.
type Missile struct {
	Direction     int
	Remaining     int
	Position      geom.Point
	FinalPosition geom.Point
	Active        bool
}

// New fires a missile from origin towards direction, aimed distance units
// away. The target is clamped to the grid.
func New(origin geom.Point, direction, distance int) *Missile {
	return &Missile{
		Direction:     geom.NormalizeAngle(direction),
		Remaining:     distance,
		Position:      origin,
		FinalPosition: geom.ClampPoint(geom.Project(origin, direction, distance)),
		Active:        true,
	}
}

// Move advances the missile one step. Once the remaining distance is spent
// the missile snaps to its final position.
func (m *Missile) Move() {
	m.Remaining -= StepDistance
	if m.Remaining <= 0 {
		m.Position = m.FinalPosition
		return
	}
	m.Position = geom.ClampPoint(geom.Project(m.Position, m.Direction, StepDistance))
}

// Detonating reports whether the missile is live and has arrived.
func (m *Missile) Detonating() bool {
	return m.Active && m.Position == m.FinalPosition
}

// DamageAt returns the damage dealt to a robot at p by this missile's
// detonation, or 0 when p is out of range.
func (m *Missile) DamageAt(p geom.Point) int {
	d := geom.Distance(m.FinalPosition, p)
	switch {
	case d <= RadiusMax:
		return DamageMax
	case d <= RadiusMed:
		return DamageMed
	case d <= RadiusMin:
		return DamageMin
	default:
		return 0
	}
}
