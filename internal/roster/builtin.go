package roster

import (
	"context"

	"github.com/udisondev/robocombat/internal/geom"
	"github.com/udisondev/robocombat/internal/robot"
)

// Names of the robots every player starts with.
const (
	Wanderer = "Default1"
	Gunner   = "Default2"
)

// RegisterBuiltins registers the default robots as shared robots.
func RegisterBuiltins(r *Registry) error {
	builtins := map[string]Factory{
		Wanderer: func() (robot.Robot, error) { return &wanderer{}, nil },
		Gunner:   func() (robot.Robot, error) { return &gunner{}, nil },
	}
	for name, f := range builtins {
		if err := r.Register(Shared, name, f); err != nil {
			return err
		}
	}
	return nil
}

// wanderer turns 45° every ten rounds, oscillates its speed between 15 and
// 75 and reverses when it finds itself stuck.
type wanderer struct {
	tick         int
	deltaVel     int
	lastPosition geom.Point
}

func (w *wanderer) Initialize(_ context.Context, c *robot.Control) {
	w.tick = 0
	w.deltaVel = 100 - c.Damage()
	w.lastPosition = c.Position()
}

func (w *wanderer) Respond(_ context.Context, c *robot.Control) {
	if w.tick%10 == 0 {
		c.Drive(c.Direction()+45, c.Velocity()+w.deltaVel)
	}
	w.tick++

	pos := c.Position()
	if w.tick > 1 && pos == w.lastPosition {
		c.Drive(c.Direction()+180, 35)
	}
	w.lastPosition = pos

	switch v := c.Velocity(); {
	case v > 75:
		w.deltaVel = -5
	case v < 15:
		w.deltaVel = 5
	}
}

// gunner sweeps its scanner 10° per round and fires at whatever it saw.
type gunner struct {
	lastDirection int
}

func (g *gunner) Initialize(context.Context, *robot.Control) {
	g.lastDirection = 0
}

func (g *gunner) Respond(_ context.Context, c *robot.Control) {
	if d := c.Scanned(); d != -1 {
		c.Cannon(g.lastDirection, d)
	}
	g.lastDirection = geom.NormalizeAngle(g.lastDirection + 10)
	c.PointScanner(g.lastDirection, 10)
}
