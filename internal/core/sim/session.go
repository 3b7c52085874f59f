package sim

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/planetoid/internal/core/events/bus"
	"github.com/zeusync/planetoid/internal/core/observability/log"
	"github.com/zeusync/planetoid/internal/core/systems/camera"
	"github.com/zeusync/planetoid/internal/core/systems/input"
	"github.com/zeusync/planetoid/internal/core/systems/movement"
	"github.com/zeusync/planetoid/internal/core/systems/physics"
	"github.com/zeusync/planetoid/internal/core/systems/planetoid"
)

// Session is one independent simulation: a planetoid, the agent walking on
// it, the camera following the agent and the input feeding them. Step must
// not be called concurrently with itself; the manager guarantees that.
type Session struct {
	id          string
	surface     planetoid.Surface
	decorations []planetoid.Decoration
	sampler     *input.Sampler
	bus         bus.EventBus
	logger      log.Log
	createdAt   time.Time

	mu      sync.RWMutex
	agent   movement.Agent
	camera  *camera.Orbit
	tick    uint64
	jetpack bool
	last    Snapshot
}

// NewSession generates the world described by cfg and spawns the agent
// above the north pole. Events are published on a bus topic named after
// the session id.
func NewSession(cfg Config, eventBus bus.EventBus, logger log.Log) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	surface, decorations, err := planetoid.Generate(cfg.Surface)
	if err != nil {
		return nil, fmt.Errorf("generate planetoid: %w", err)
	}

	spawn := surface.Center().Add(physics.UnitY.Scale(surface.Radius() + cfg.SpawnAltitude))
	agent, err := movement.NewAgent(spawn, cfg.Height, cfg.Tuning)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	if err = eventBus.CreateTopic(id); err != nil {
		return nil, err
	}

	s := &Session{
		id:          id,
		surface:     surface,
		decorations: decorations,
		sampler:     input.NewSampler(cfg.JoystickRadius),
		bus:         eventBus,
		logger:      logger.With(log.Component("session"), log.String("session_id", id)),
		createdAt:   time.Now(),
		agent:       agent,
		camera:      camera.NewOrbit(physics.Vec3{Z: -1}, cfg.CameraDistance),
	}
	s.last = s.snapshotLocked()

	s.logger.Info("Session created",
		log.Uint64("seed", cfg.Surface.Seed),
		log.Float64("radius", surface.Radius()),
		log.Any("center", surface.Center()),
		log.Int("decorations", len(decorations)))

	return s, nil
}

func (s *Session) ID() string { return s.id }
func (s *Session) Surface() planetoid.Surface { return s.surface }
func (s *Session) Input() *input.Sampler { return s.sampler }
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Decorations returns a copy of the decoration layout.
func (s *Session) Decorations() []planetoid.Decoration {
	out := make([]planetoid.Decoration, len(s.decorations))
	copy(out, s.decorations)
	return out
}

func (s *Session) Agent() movement.Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.agent
}

// Latest returns the snapshot produced by the most recent Step.
func (s *Session) Latest() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Tick takes this frame's input sample and steps the simulation with it.
func (s *Session) Tick() Snapshot {
	return s.Step(s.sampler.Snapshot())
}

// Step advances the session by one frame using the given input sample.
func (s *Session) Step(sample input.Sample) Snapshot {
	s.mu.Lock()

	prev := s.agent
	up := s.surface.Up(prev.Position)
	s.camera.Follow(up)
	s.camera.Rotate(sample.Look, prev.RotationSpeed, up)

	agent := prev
	jumped := false
	if sample.Jump {
		agent = movement.Jump(agent, s.surface)
		jumped = prev.Grounded
	}
	agent = movement.Update(agent, s.surface, sample, s.camera.Forward, sample.Jetpack)

	s.agent = agent
	s.tick++

	var events []string
	if jumped {
		events = append(events, EventJumped)
	}
	if sample.Jetpack != s.jetpack {
		s.jetpack = sample.Jetpack
		events = append(events, EventJetpack)
	}
	switch {
	case !prev.Grounded && agent.Grounded:
		events = append(events, EventLanded)
	case prev.Grounded && !agent.Grounded:
		events = append(events, EventAirborne)
	}

	snap := s.snapshotLocked()
	s.last = snap
	s.mu.Unlock()

	for _, typ := range events {
		s.publish(typ, AgentEvent{
			SessionID: s.id,
			Tick:      snap.Tick,
			Position:  snap.Position,
			Active:    typ == EventJetpack && snap.Jetpack,
		})
	}
	s.publish(EventSnapshot, snap)

	return snap
}

// Close announces the end of the session and drops its bus topic.
func (s *Session) Close() {
	s.sampler.Reset()
	s.publish(EventClosed, s.Latest())
	if err := s.bus.RemoveTopic(s.id); err != nil {
		s.logger.Warn("Failed to remove session topic", log.Error(err))
	}
	s.logger.Info("Session closed", log.Uint64("ticks", s.Latest().Tick))
}

func (s *Session) publish(typ string, data any) {
	if err := s.bus.PublishToTopic(s.id, bus.NewEvent(typ, s.id, data)); err != nil {
		s.logger.Warn("Event handler failed", log.String("event", typ), log.Error(err))
	}
}

func (s *Session) snapshotLocked() Snapshot {
	up := s.surface.Up(s.agent.Position)
	return Snapshot{
		SessionID:     s.id,
		Tick:          s.tick,
		Position:      s.agent.Position,
		Velocity:      s.agent.Velocity,
		Up:            up,
		Altitude:      s.surface.Altitude(s.agent.Position) - s.agent.Clearance(),
		Grounded:      s.agent.Grounded,
		Jetpack:       s.jetpack,
		CameraForward: s.camera.Forward,
		CameraEye:     s.camera.Eye(s.agent.Position, up),
		CameraPitch:   s.camera.Pitch,
	}
}
