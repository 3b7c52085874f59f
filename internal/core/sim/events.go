package sim

import (
	"github.com/zeusync/planetoid/internal/core/systems/physics"
)

// Event types published on a session's bus topic.
const (
	EventSnapshot = "session.snapshot"
	EventClosed   = "session.closed"
	EventLanded   = "agent.landed"
	EventAirborne = "agent.airborne"
	EventJumped   = "agent.jumped"
	EventJetpack  = "agent.jetpack"
)

// Lifecycle events published by the Manager on the default topic. The
// event data is the session id.
const (
	EventSessionCreated = "manager.session_created"
	EventSessionRemoved = "manager.session_removed"
)

// Snapshot is the state of a session after one frame.
type Snapshot struct {
	SessionID     string       `json:"session_id" cbor:"session_id"`
	Tick          uint64       `json:"tick" cbor:"tick"`
	Position      physics.Vec3 `json:"position" cbor:"position"`
	Velocity      physics.Vec3 `json:"velocity" cbor:"velocity"`
	Up            physics.Vec3 `json:"up" cbor:"up"`
	Altitude      float64      `json:"altitude" cbor:"altitude"`
	Grounded      bool         `json:"grounded" cbor:"grounded"`
	Jetpack       bool         `json:"jetpack" cbor:"jetpack"`
	CameraForward physics.Vec3 `json:"camera_forward" cbor:"camera_forward"`
	CameraEye     physics.Vec3 `json:"camera_eye" cbor:"camera_eye"`
	CameraPitch   float64      `json:"camera_pitch" cbor:"camera_pitch"`
}

// AgentEvent is the payload of the agent.* events.
type AgentEvent struct {
	SessionID string       `json:"session_id" cbor:"session_id"`
	Tick      uint64       `json:"tick" cbor:"tick"`
	Position  physics.Vec3 `json:"position" cbor:"position"`
	// Active is only meaningful for agent.jetpack.
	Active bool `json:"active,omitempty" cbor:"active,omitempty"`
}
