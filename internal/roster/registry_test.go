package roster

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/robocombat/internal/engine"
	"github.com/udisondev/robocombat/internal/geom"
	"github.com/udisondev/robocombat/internal/robot"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	require.NoError(t, RegisterBuiltins(r))
	return r
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := newTestRegistry(t)

	err := r.Register(Shared, Wanderer, func() (robot.Robot, error) { return robot.Base{}, nil })
	assert.ErrorIs(t, err, ErrDuplicate)

	// an owner may shadow a shared name
	require.NoError(t, r.Register("alice", Wanderer, func() (robot.Robot, error) { return robot.Base{}, nil }))

	assert.Error(t, r.Register("alice", "", func() (robot.Robot, error) { return robot.Base{}, nil }))
	assert.Error(t, r.Register("alice", "Nil", nil))
}

func TestRegistry_Names(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Register("alice", "Sniper", func() (robot.Robot, error) { return robot.Base{}, nil }))

	assert.Equal(t, []string{Wanderer, Gunner, "Sniper"}, r.Names("alice"))
	assert.Equal(t, []string{Wanderer, Gunner}, r.Names("bob"))
}

func TestRegistry_InstantiateShadowing(t *testing.T) {
	r := newTestRegistry(t)
	custom := &struct{ robot.Base }{}
	require.NoError(t, r.Register("alice", Wanderer, func() (robot.Robot, error) { return custom, nil }))

	got, err := r.Instantiate(Entry{Owner: "alice", Robot: Wanderer})
	require.NoError(t, err)
	assert.Same(t, custom, got)

	got, err = r.Instantiate(Entry{Owner: "bob", Robot: Wanderer})
	require.NoError(t, err)
	assert.IsType(t, &wanderer{}, got)
}

func TestRegistry_InstantiateFailures(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Register("alice", "Broken", func() (robot.Robot, error) {
		return nil, errors.New("syntax error")
	}))
	require.NoError(t, r.Register("alice", "Panicky", func() (robot.Robot, error) {
		panic("init")
	}))
	require.NoError(t, r.Register("alice", "Empty", func() (robot.Robot, error) {
		return nil, nil
	}))

	tests := []struct {
		name    string
		entry   Entry
		wantErr error
	}{
		{"unknown", Entry{Owner: "alice", Robot: "Ghost"}, ErrUnknownRobot},
		{"other owner's robot", Entry{Owner: "bob", Robot: "Broken"}, ErrUnknownRobot},
		{"factory error", Entry{Owner: "alice", Robot: "Broken"}, nil},
		{"factory panic", Entry{Owner: "alice", Robot: "Panicky"}, ErrFactory},
		{"nil robot", Entry{Owner: "alice", Robot: "Empty"}, ErrFactory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rb, err := r.Instantiate(tt.entry)
			require.Error(t, err)
			assert.Nil(t, rb)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestRegistry_ResolveKeepsOrderAndFailedSeats(t *testing.T) {
	r := newTestRegistry(t)

	seats := r.Resolve([]Entry{
		{Owner: "alice", Robot: Gunner},
		{Owner: "bob", Robot: "Ghost"},
		{Owner: "carol", Robot: Wanderer},
	})

	require.Len(t, seats, 3)
	assert.Equal(t, robot.Identity{Owner: "alice", Name: Gunner}, seats[0].Identity)
	assert.True(t, seats[0].Loaded())
	assert.Equal(t, robot.Identity{Owner: "bob", Name: "Ghost"}, seats[1].Identity)
	assert.False(t, seats[1].Loaded())
	assert.True(t, seats[2].Loaded())
}

func TestRegistry_ResolveFreshInstances(t *testing.T) {
	r := newTestRegistry(t)

	a := r.Resolve([]Entry{{Owner: "a", Robot: Gunner}})
	b := r.Resolve([]Entry{{Owner: "a", Robot: Gunner}})

	assert.NotSame(t, a[0].Robot, b[0].Robot)
}

func TestGunner_FiresAtScannedDistance(t *testing.T) {
	g := &gunner{}
	s := robot.Fresh(geom.Point{X: 500, Y: 500}, 0)
	c := robot.NewControl(s)
	g.Initialize(context.Background(), c)
	g.Respond(context.Background(), c)
	got := c.Seal()

	assert.Equal(t, 10, got.ScannerDirection)
	assert.Equal(t, 10, got.ScannerResolution)
	assert.False(t, got.CannonFired)

	s = got
	s.ScannerResult = 120
	s.CannonReady = true
	c = robot.NewControl(s)
	g.Respond(context.Background(), c)
	got = c.Seal()

	assert.True(t, got.CannonFired)
	assert.Equal(t, 10, got.CannonDirection)
	assert.Equal(t, 120, got.CannonDistance)
	assert.Equal(t, 20, got.ScannerDirection)
}

func TestWanderer_DrivesAndTurns(t *testing.T) {
	w := &wanderer{}
	s := robot.Fresh(geom.Point{X: 500, Y: 500}, 0)
	c := robot.NewControl(s)
	w.Initialize(context.Background(), c)
	w.Respond(context.Background(), c)
	got := c.Seal()

	assert.Equal(t, 45, got.Direction)
	assert.Equal(t, robot.MaxVelocity, got.Velocity)
	assert.Equal(t, -5, w.deltaVel)
}

func TestBuiltins_PlayAFullMatch(t *testing.T) {
	r := newTestRegistry(t)
	seats := r.Resolve([]Entry{
		{Owner: "a", Robot: Wanderer},
		{Owner: "b", Robot: Gunner},
		{Owner: "c", Robot: Gunner},
	})

	results := engine.New(seats, engine.Options{Rounds: 200, Games: 3}).Play()

	require.Len(t, results, 3)
	for _, res := range results {
		assert.Empty(t, res.Faults)
		assert.Positive(t, res.Rounds)
	}
}
