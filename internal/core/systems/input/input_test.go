package input

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/planetoid/internal/core/systems/physics"
)

func TestJoystickNormalized(t *testing.T) {
	j := NewJoystick(50)
	assert.Equal(t, physics.Vec2{}, j.Normalized())

	j.Start(100, 100)
	j.Move(125, 100)
	assert.Equal(t, physics.Vec2{X: 0.5}, j.Normalized())

	// Pushing up on screen is forward.
	j.Move(100, 50)
	assert.Equal(t, physics.Vec2{Y: 1}, j.Normalized())

	// Beyond the radius the vector is clamped.
	j.Move(400, 500)
	assert.InDelta(t, 1, j.Normalized().Length(), 1e-12)
	assert.Equal(t, physics.Vec2{X: 300, Y: 400}, j.Displacement())

	j.End()
	assert.False(t, j.Active())
	assert.Equal(t, physics.Vec2{}, j.Displacement())

	// Moves without a touch are ignored.
	j.Move(10, 10)
	assert.Equal(t, physics.Vec2{}, j.Displacement())
}

func TestSamplerSticks(t *testing.T) {
	s := NewSampler(40)

	require.NoError(t, s.Apply(Event{Kind: EventStart, Stick: StickMove, X: 10, Y: 10}))
	require.NoError(t, s.Apply(Event{Kind: EventMove, Stick: StickMove, X: 30, Y: 10}))
	require.NoError(t, s.Apply(Event{Kind: EventStart, Stick: StickLook, X: 200, Y: 200}))
	require.NoError(t, s.Apply(Event{Kind: EventMove, Stick: StickLook, X: 190, Y: 230}))

	sample := s.Snapshot()
	assert.Equal(t, physics.Vec2{X: 0.5}, sample.Move)
	assert.Equal(t, physics.Vec2{X: -10, Y: 30}, sample.Look)

	require.NoError(t, s.Apply(Event{Kind: EventEnd, Stick: StickMove}))
	assert.True(t, s.Snapshot().Move.IsZero())
}

func TestSamplerJumpIsEdgeTriggered(t *testing.T) {
	s := NewSampler(40)
	require.NoError(t, s.Apply(Event{Kind: EventJump}))
	require.NoError(t, s.Apply(Event{Kind: EventJump}))

	assert.True(t, s.Snapshot().Jump)
	assert.False(t, s.Snapshot().Jump)
}

func TestSamplerJetpackIsLevelTriggered(t *testing.T) {
	s := NewSampler(40)
	require.NoError(t, s.Apply(Event{Kind: EventJetpackOn}))
	assert.True(t, s.Snapshot().Jetpack)
	assert.True(t, s.Snapshot().Jetpack)
	require.NoError(t, s.Apply(Event{Kind: EventJetpackOff}))
	assert.False(t, s.Snapshot().Jetpack)
}

func TestSamplerDirectSample(t *testing.T) {
	s := NewSampler(40)
	require.NoError(t, s.SetSample(Sample{Move: physics.Vec2{X: 3, Y: 4}, Look: physics.Vec2{X: 7}, Jump: true, Jetpack: true}))

	got := s.Snapshot()
	assert.InDelta(t, 1, got.Move.Length(), 1e-12)
	assert.Equal(t, physics.Vec2{X: 7}, got.Look)
	assert.True(t, got.Jump)
	assert.True(t, got.Jetpack)

	// Direct vectors persist across frames; the jump does not.
	got = s.Snapshot()
	assert.False(t, got.Jump)
	assert.Equal(t, physics.Vec2{X: 7}, got.Look)

	// A stick event switches back to stick mode.
	require.NoError(t, s.Apply(Event{Kind: EventStart, Stick: StickLook, X: 1, Y: 1}))
	assert.Equal(t, physics.Vec2{}, s.Snapshot().Look)
}

func TestSamplerRejectsBadEvents(t *testing.T) {
	s := NewSampler(40)
	assert.ErrorIs(t, s.Apply(Event{Kind: "wiggle"}), ErrUnknownEvent)
	assert.ErrorIs(t, s.Apply(Event{Kind: EventStart, Stick: "left"}), ErrUnknownStick)
	assert.ErrorIs(t, s.Apply(Event{Kind: EventStart, Stick: StickMove, X: math.NaN()}), ErrInvalidValue)
	assert.ErrorIs(t, s.SetSample(Sample{Look: physics.Vec2{Y: math.Inf(1)}}), ErrInvalidValue)
}

func TestSamplerReset(t *testing.T) {
	s := NewSampler(40)
	require.NoError(t, s.SetSample(Sample{Move: physics.Vec2{X: 1}, Jump: true, Jetpack: true}))
	s.Reset()
	assert.Equal(t, Sample{}, s.Snapshot())
}

func TestSamplerConcurrentWriters(t *testing.T) {
	s := NewSampler(40)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for k := 0; k < 100; k++ {
				_ = s.Apply(Event{Kind: EventStart, Stick: StickMove, X: float64(i), Y: float64(k)})
				_ = s.Apply(Event{Kind: EventJump})
				_ = s.Snapshot()
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, s.Snapshot().Move.Length(), 1.0)
}
