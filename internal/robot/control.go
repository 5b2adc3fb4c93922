package robot

import (
	"context"
	"sync"

	"github.com/udisondev/robocombat/internal/geom"
)

// Robot is the logic a player supplies. Both hooks run under the engine's
// turn budget; ctx expires when the budget does.
//
// Initialize is called once at the start of every game, Respond once per
// round while the robot is alive. Requests are issued through c.
type Robot interface {
	Initialize(ctx context.Context, c *Control)
	Respond(ctx context.Context, c *Control)
}

// Base implements Robot with no-op hooks. Embed it to supply only one hook.
type Base struct{}

func (Base) Initialize(context.Context, *Control) {}
func (Base) Respond(context.Context, *Control)    {}

// Control is the capability handle given to one hook invocation. It works
// on a private copy of the robot state; the engine reads the requests back
// with Seal once the hook returns. After Seal every request is a no-op, so
// logic that outlives its budget cannot reach engine state.
type Control struct {
	mu     sync.Mutex
	sealed bool
	state  State
}

// NewControl returns a handle over a copy of s.
func NewControl(s State) *Control {
	return &Control{state: s}
}

// Seal freezes the handle and returns the requested state.
func (c *Control) Seal() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sealed = true
	return c.state
}

func (c *Control) read(fn func(s *State) int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(&c.state)
}

// Direction returns the current heading in degrees.
func (c *Control) Direction() int {
	return c.read(func(s *State) int { return s.Direction })
}

// Velocity returns the requested velocity.
func (c *Control) Velocity() int {
	return c.read(func(s *State) int { return s.Velocity })
}

// Damage returns accumulated damage, 0..100.
func (c *Control) Damage() int {
	return c.read(func(s *State) int { return s.Damage })
}

// Scanned returns the distance to the nearest robot found by the last scan,
// or -1.
func (c *Control) Scanned() int {
	return c.read(func(s *State) int { return s.ScannerResult })
}

// Position returns the robot position.
func (c *Control) Position() geom.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Position
}

// CannonReady reports whether a shot requested now would be fired.
func (c *Control) CannonReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.CannonReady
}

// Drive requests a heading and a velocity. The heading is ignored while the
// robot accelerates harder than MaxAccelToTurn.
func (c *Control) Drive(direction, velocity int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sealed {
		return
	}
	if c.state.Accel <= MaxAccelToTurn {
		c.state.Direction = geom.NormalizeAngle(direction)
	}
	c.state.Velocity = geom.Clamp(0, velocity, MaxVelocity)
}

// PointScanner aims the scanner. The cone spans direction±resolution.
func (c *Control) PointScanner(direction, resolution int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sealed {
		return
	}
	c.state.ScannerDirection = geom.NormalizeAngle(direction)
	c.state.ScannerResolution = geom.Clamp(0, resolution, MaxScannerResolution)
}

// Cannon requests a shot this round. Ignored while the cannon reloads.
func (c *Control) Cannon(direction, distance int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sealed || !c.state.CannonReady {
		return
	}
	c.state.CannonFired = true
	c.state.CannonDirection = geom.NormalizeAngle(direction)
	c.state.CannonDistance = geom.Clamp(0, distance, MaxCannonDistance)
}
