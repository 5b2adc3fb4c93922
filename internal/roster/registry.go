// Package roster resolves roster entries to robot logic before a match.
// Resolution failures never abort a match: the seat is handed to the engine
// without logic and plays dead.
package roster

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/udisondev/robocombat/internal/engine"
	"github.com/udisondev/robocombat/internal/robot"
)

// Shared is the owner under which robots available to every player are
// registered.
const Shared = ""

var (
	ErrUnknownRobot = errors.New("unknown robot")
	ErrDuplicate    = errors.New("robot already registered")
	ErrFactory      = errors.New("robot factory failed")
)

// Entry names one roster seat.
type Entry struct {
	Owner string `yaml:"owner" json:"owner"`
	Robot string `yaml:"robot" json:"robot"`
}

// Identity returns the identity the seat plays under.
func (e Entry) Identity() robot.Identity {
	return robot.Identity{Owner: e.Owner, Name: e.Robot}
}

// Factory builds a fresh robot instance for one match.
type Factory func() (robot.Robot, error)

type key struct {
	owner, name string
}

// Registry maps (owner, robot name) to factories. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[key]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[key]Factory)}
}

// Register adds a factory for owner's robot name. Use Shared as owner to make
// the robot available to everyone.
func (r *Registry) Register(owner, name string, f Factory) error {
	if name == "" || f == nil {
		return fmt.Errorf("registering %q for %q: empty name or factory", name, owner)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{owner: owner, name: name}
	if _, ok := r.factories[k]; ok {
		return fmt.Errorf("registering %q for %q: %w", name, owner, ErrDuplicate)
	}
	r.factories[k] = f
	return nil
}

// Names returns the robot names available to owner, sorted.
func (r *Registry) Names(owner string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := make(map[string]struct{})
	for k := range r.factories {
		if k.owner == owner || k.owner == Shared {
			set[k.name] = struct{}{}
		}
	}
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Instantiate builds the robot for entry. Owner-specific robots shadow shared
// ones with the same name. A panicking factory is reported as ErrFactory.
func (r *Registry) Instantiate(entry Entry) (rb robot.Robot, err error) {
	r.mu.RLock()
	f, ok := r.factories[key{owner: entry.Owner, name: entry.Robot}]
	if !ok {
		f, ok = r.factories[key{owner: Shared, name: entry.Robot}]
	}
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("resolving %s: %w", entry.Identity(), ErrUnknownRobot)
	}

	defer func() {
		if p := recover(); p != nil {
			rb, err = nil, fmt.Errorf("instantiating %s: %w: %v", entry.Identity(), ErrFactory, p)
		}
	}()
	rb, err = f()
	if err != nil {
		return nil, fmt.Errorf("instantiating %s: %w", entry.Identity(), err)
	}
	if rb == nil {
		return nil, fmt.Errorf("instantiating %s: %w: nil robot", entry.Identity(), ErrFactory)
	}
	return rb, nil
}

// Resolve turns entries into engine seats, in order. Entries that cannot be
// instantiated become seats without logic.
func (r *Registry) Resolve(entries []Entry) []engine.Seat {
	seats := make([]engine.Seat, 0, len(entries))
	for _, entry := range entries {
		rb, err := r.Instantiate(entry)
		if err != nil {
			slog.Warn("robot failed to load, seat plays dead",
				"robot", entry.Robot,
				"owner", entry.Owner,
				"err", err)
		}
		seats = append(seats, engine.Seat{Identity: entry.Identity(), Robot: rb})
	}
	return seats
}
