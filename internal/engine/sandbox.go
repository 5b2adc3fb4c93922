package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/udisondev/robocombat/internal/robot"
)

// DefaultTurnBudget is the wall-clock limit for one hook invocation.
const DefaultTurnBudget = 50 * time.Millisecond

var (
	// ErrTimeout is the fault recorded when a hook exceeds its budget.
	ErrTimeout = errors.New("turn budget exceeded")
	// ErrPanic is the fault recorded when a hook panics.
	ErrPanic = errors.New("robot panicked")
)

// hook names used in faults and logs.
const (
	hookInitialize = "initialize"
	hookRespond    = "respond"
)

// invoke runs one hook of ent's logic on its own goroutine with a deadline.
// The hook only sees a Control over a copy of the robot state. On success the
// requests are applied; on timeout or panic the goroutine is abandoned, its
// Control sealed and the robot killed.
func (e *Engine) invoke(ent *entity, hook string) {
	logic := ent.logic
	ctrl := robot.NewControl(ent.state)

	ctx, cancel := context.WithTimeout(context.Background(), e.budget)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("%w: %v", ErrPanic, r)
			}
		}()
		switch hook {
		case hookInitialize:
			logic.Initialize(ctx, ctrl)
		default:
			logic.Respond(ctx, ctrl)
		}
		done <- nil
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ErrTimeout
	}

	req := ctrl.Seal()
	if err != nil {
		ent.state.Kill()
		e.fault(ent, hook, err)
		return
	}
	ent.state.ApplyRequests(req)
}

func (e *Engine) fault(ent *entity, hook string, err error) {
	e.faults = append(e.faults, Fault{
		Robot: ent.id,
		Hook:  hook,
		Round: e.round,
		Err:   err.Error(),
	})
	slog.Warn("robot fault",
		"robot", ent.id.Name,
		"owner", ent.id.Owner,
		"hook", hook,
		"game", e.game,
		"round", e.round,
		"err", err)
}
