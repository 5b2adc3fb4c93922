// Package robot defines the combat robot: its identity, its mutable kinematic,
// weapon and sensor state, and the capability surface handed to robot logic.
package robot

import (
	"fmt"

	"github.com/udisondev/robocombat/internal/geom"
)

// Limits applied on every write to robot state.
const (
	MaxDamage            = 100
	MaxVelocity          = 100
	MaxAccel             = 100
	MaxAccelToTurn       = 50 // drive() keeps the heading above this accel
	AccelStep            = 2  // accel change per round
	MaxScannerResolution = 10
	MaxCannonDistance    = 700
	CannonCooldown       = 3 // rounds between shots
)

// Identity attributes a robot to its owner. It plays no part in physics.
type Identity struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

func (id Identity) String() string {
	return fmt.Sprintf("%s/%s", id.Owner, id.Name)
}

// State is the full mutable state of a robot during a game.
type State struct {
	Position  geom.Point
	Direction int
	Velocity  int
	Accel     int
	Damage    int

	CannonDirection     int
	CannonDistance      int
	CannonFired         bool
	CannonReady         bool
	RoundsToCannonReady int

	ScannerDirection  int
	ScannerResolution int
	ScannerResult     int
}

// Fresh returns the state a robot starts a game with.
func Fresh(pos geom.Point, damage int) State {
	return State{
		Position:            geom.ClampPoint(pos),
		Damage:              geom.Clamp(0, damage, MaxDamage),
		RoundsToCannonReady: CannonCooldown,
		ScannerResult:       -1,
	}
}

// Alive reports whether the robot can still act.
func (s *State) Alive() bool {
	return s.Damage < MaxDamage
}

// TakeDamage adds n points of damage, saturating at MaxDamage.
func (s *State) TakeDamage(n int) {
	s.Damage = geom.Clamp(0, s.Damage+n, MaxDamage)
}

// Kill forces the robot dead.
func (s *State) Kill() {
	s.Damage = MaxDamage
}

// MoveTo commits a new position, clamped to the grid.
func (s *State) MoveTo(p geom.Point) {
	s.Position = geom.ClampPoint(p)
}

// UpdateAccel moves accel towards velocity by at most AccelStep.
func (s *State) UpdateAccel() {
	switch {
	case s.Accel-AccelStep > s.Velocity:
		s.Accel -= AccelStep
	case s.Accel+AccelStep < s.Velocity:
		s.Accel += AccelStep
	default:
		s.Accel = s.Velocity
	}
}

// ApplyRequests copies the fields robot logic is allowed to set from req.
// Position, damage, accel and cannon readiness stay engine-owned.
func (s *State) ApplyRequests(req State) {
	s.Direction = geom.NormalizeAngle(req.Direction)
	s.Velocity = geom.Clamp(0, req.Velocity, MaxVelocity)
	s.ScannerDirection = geom.NormalizeAngle(req.ScannerDirection)
	s.ScannerResolution = geom.Clamp(0, req.ScannerResolution, MaxScannerResolution)
	s.CannonDirection = geom.NormalizeAngle(req.CannonDirection)
	s.CannonDistance = geom.Clamp(0, req.CannonDistance, MaxCannonDistance)
	s.CannonFired = req.CannonFired
}
