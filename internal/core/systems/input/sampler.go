package input

import (
	"fmt"
	"sync"

	"github.com/zeusync/planetoid/internal/core/systems/physics"
)

// Sampler collects input written by connection goroutines and hands the
// frame loop one Sample per frame. Jump is edge-triggered: a jump recorded
// between two frames is reported by exactly one Snapshot.
type Sampler struct {
	mu sync.Mutex

	move *Joystick
	look *Joystick

	// direct holds vectors sent pre-computed by the client; any stick event
	// switches back to stick mode.
	direct *Sample

	jumpPending bool
	jetpack     bool
}

func NewSampler(stickRadius float64) *Sampler {
	return &Sampler{
		move: NewJoystick(stickRadius),
		look: NewJoystick(stickRadius),
	}
}

// Apply records a single event.
func (s *Sampler) Apply(ev Event) error {
	if !(physics.Vec2{X: ev.X, Y: ev.Y}).IsFinite() {
		return ErrInvalidValue
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Kind {
	case EventJump:
		s.jumpPending = true
		return nil
	case EventJetpackOn:
		s.jetpack = true
		return nil
	case EventJetpackOff:
		s.jetpack = false
		return nil
	case EventStart, EventMove, EventEnd:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Kind)
	}

	var stick *Joystick
	switch ev.Stick {
	case StickMove:
		stick = s.move
	case StickLook:
		stick = s.look
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStick, ev.Stick)
	}

	s.direct = nil
	switch ev.Kind {
	case EventStart:
		stick.Start(ev.X, ev.Y)
	case EventMove:
		stick.Move(ev.X, ev.Y)
	case EventEnd:
		stick.End()
	}
	return nil
}

// SetSample replaces the stick state with client-computed vectors. Move is
// clamped to unit length; Jump is latched until the next Snapshot.
func (s *Sampler) SetSample(in Sample) error {
	if !in.Move.IsFinite() || !in.Look.IsFinite() {
		return ErrInvalidValue
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	in.Move = in.Move.ClampLength(1)
	s.direct = &Sample{Move: in.Move, Look: in.Look}
	s.jetpack = in.Jetpack
	if in.Jump {
		s.jumpPending = true
	}
	return nil
}

// Snapshot returns the sample for the current frame.
func (s *Sampler) Snapshot() Sample {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := Sample{Jump: s.jumpPending, Jetpack: s.jetpack}
	if s.direct != nil {
		out.Move = s.direct.Move
		out.Look = s.direct.Look
	} else {
		out.Move = s.move.Normalized()
		out.Look = s.look.Displacement()
	}
	s.jumpPending = false
	return out
}

// Reset drops all held input, as when a client disconnects.
func (s *Sampler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.move.End()
	s.look.End()
	s.direct = nil
	s.jumpPending = false
	s.jetpack = false
}
