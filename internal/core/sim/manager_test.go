package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zeusync/planetoid/internal/core/events/bus"
	"github.com/zeusync/planetoid/internal/core/observability/log"
)

func newTestManager(cfg ManagerConfig) *Manager {
	return NewManager(cfg, bus.New(), log.NewNop())
}

func TestManagerCreateGetRemove(t *testing.T) {
	m := newTestManager(DefaultManagerConfig())

	s, err := m.Create(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())

	got, err := m.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, m.Remove(s.ID()))
	assert.Equal(t, 0, m.Len())

	_, err = m.Get(s.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Remove(s.ID()), ErrSessionNotFound)
}

func TestManagerMaxSessions(t *testing.T) {
	cfg := DefaultManagerConfig()
	cfg.MaxSessions = 2
	m := newTestManager(cfg)

	for i := 0; i < 2; i++ {
		_, err := m.Create(DefaultConfig())
		require.NoError(t, err)
	}
	_, err := m.Create(DefaultConfig())
	assert.ErrorIs(t, err, ErrMaxSessionsReached)
	assert.Equal(t, 2, m.Len())

	m.Close()
	assert.Equal(t, 0, m.Len())
	_, err = m.Create(DefaultConfig())
	assert.NoError(t, err)
}

func TestManagerCreateInvalidConfigKeepsCount(t *testing.T) {
	m := newTestManager(DefaultManagerConfig())
	cfg := DefaultConfig()
	cfg.Height = 0

	_, err := m.Create(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, 0, m.Len())
}

func TestManagerStepAll(t *testing.T) {
	cfg := DefaultManagerConfig()
	cfg.Workers = 2
	m := newTestManager(cfg)

	var sessions []*Session
	for i := 0; i < 5; i++ {
		s, err := m.Create(DefaultConfig())
		require.NoError(t, err)
		sessions = append(sessions, s)
	}

	for i := 0; i < 3; i++ {
		require.NoError(t, m.StepAll(context.Background()))
	}

	for _, s := range sessions {
		assert.Equal(t, uint64(3), s.Latest().Tick)
	}
	assert.Equal(t, uint64(3), m.GetStats().Ticks)
	assert.Equal(t, int64(5), m.GetStats().Sessions)
	assert.Equal(t, int64(5), m.GetStats().Airborne)
}

func TestManagerPublishesLifecycle(t *testing.T) {
	b := bus.New()
	m := NewManager(DefaultManagerConfig(), b, log.NewNop())

	var got []string
	sub, err := b.Subscribe(bus.Wildcard, func(e bus.Event) error {
		got = append(got, e.Type()+" "+e.Data().(string))
		return nil
	})
	require.NoError(t, err)

	s, err := m.Create(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, m.Remove(s.ID()))
	assert.ErrorIs(t, m.Remove(s.ID()), ErrSessionNotFound)

	assert.Equal(t, []string{
		EventSessionCreated + " " + s.ID(),
		EventSessionRemoved + " " + s.ID(),
	}, got)

	require.NoError(t, b.Unsubscribe(sub))
	_, err = m.Create(DefaultConfig())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestManagerStepAllCancelled(t *testing.T) {
	m := newTestManager(DefaultManagerConfig())
	_, err := m.Create(DefaultConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.StepAll(ctx), context.Canceled)
	assert.Equal(t, uint64(0), m.GetStats().Ticks)
}

func TestManagerRun(t *testing.T) {
	cfg := DefaultManagerConfig()
	cfg.TickRate = 200
	m := newTestManager(cfg)
	s, err := m.Create(DefaultConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	assert.Eventually(t, func() bool { return s.Latest().Tick >= 3 }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, m.GetStats().Running)
	assert.ErrorIs(t, m.Run(ctx), ErrManagerRunning)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, m.GetStats().Running)
}

func TestManagerRunLogsFinalTickCount(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	cfg := DefaultManagerConfig()
	cfg.TickRate = 200
	m := NewManager(cfg, bus.New(), log.NewWithCore(core))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	require.Eventually(t, func() bool { return m.GetStats().Ticks >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	stopped := logs.FilterMessage("Simulation loop stopped").All()
	require.Len(t, stopped, 1)
	ticks, ok := stopped[0].ContextMap()["ticks"].(uint64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, ticks, uint64(3))
	assert.Equal(t, m.GetStats().Ticks, ticks)
}

func TestManagerRunInvalidTickRate(t *testing.T) {
	m := newTestManager(ManagerConfig{TickRate: 0})
	assert.ErrorIs(t, m.Run(context.Background()), ErrInvalidTickRate)
}

func TestManagerConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultManagerConfig().Validate())
	assert.ErrorIs(t, ManagerConfig{TickRate: -1}.Validate(), ErrInvalidTickRate)
	assert.ErrorIs(t, ManagerConfig{TickRate: 60, Workers: -1}.Validate(), ErrInvalidConfig)
}
