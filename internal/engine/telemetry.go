package engine

import (
	"github.com/udisondev/robocombat/internal/geom"
	"github.com/udisondev/robocombat/internal/robot"
)

// Observer receives match telemetry as it is produced. ObserveRound is only
// called when telemetry is enabled; ObserveGame is called after every game.
// Implementations must not retain the engine goroutine.
type Observer interface {
	ObserveRound(game int, snap RoundSnapshot)
	ObserveGame(res GameResult)
}

// RobotSnapshot is the visible state of one robot after a round.
type RobotSnapshot struct {
	Owner             string     `json:"owner"`
	Name              string     `json:"name"`
	Damage            int        `json:"damage"`
	Direction         int        `json:"direction"`
	Velocity          int        `json:"velocity"`
	Position          geom.Point `json:"position"`
	ScannerDirection  int        `json:"scanner_direction"`
	ScannerResolution int        `json:"scanner_resolution"`
	ScannerResult     int        `json:"scanner_result"`
}

// MissileSnapshot is the visible state of one missile after a round.
type MissileSnapshot struct {
	Direction int        `json:"direction"`
	Position  geom.Point `json:"position"`
	Active    bool       `json:"is_active"`
}

// RoundSnapshot captures every robot and missile after a round's movement,
// before spent missiles are pruned.
type RoundSnapshot struct {
	Round    int               `json:"round"`
	Robots   []RobotSnapshot   `json:"robots"`
	Missiles []MissileSnapshot `json:"missiles"`
}

// Fault records a robot killed by the sandbox.
type Fault struct {
	Robot robot.Identity `json:"robot"`
	Hook  string         `json:"hook"`
	Round int            `json:"round"` // 0 for initialize
	Err   string         `json:"error"`
}

// GameResult is the outcome of one game. Winner is nil unless exactly one
// robot survived.
type GameResult struct {
	Game      int             `json:"game"`
	Rounds    int             `json:"rounds_played"`
	Snapshots []RoundSnapshot `json:"rounds,omitempty"`
	Winner    *robot.Identity `json:"winner"`
	Faults    []Fault         `json:"faults,omitempty"`
}

func (e *Engine) snapshot() RoundSnapshot {
	snap := RoundSnapshot{
		Round:    e.round,
		Robots:   make([]RobotSnapshot, 0, len(e.robots)),
		Missiles: make([]MissileSnapshot, 0, len(e.missiles)),
	}
	for _, ent := range e.robots {
		s := ent.state
		snap.Robots = append(snap.Robots, RobotSnapshot{
			Owner:             ent.id.Owner,
			Name:              ent.id.Name,
			Damage:            s.Damage,
			Direction:         s.Direction,
			Velocity:          s.Velocity,
			Position:          s.Position,
			ScannerDirection:  s.ScannerDirection,
			ScannerResolution: s.ScannerResolution,
			ScannerResult:     s.ScannerResult,
		})
	}
	for _, m := range e.missiles {
		snap.Missiles = append(snap.Missiles, MissileSnapshot{
			Direction: m.Direction,
			Position:  m.Position,
			Active:    m.Active,
		})
	}
	return snap
}
