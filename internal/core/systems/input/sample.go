// Package input turns raw touch events into the per-frame input sample read
// by the movement integrator.
package input

import "github.com/zeusync/planetoid/internal/core/systems/physics"

// Sample is one frame of input. It is produced at the frame boundary and
// passed by value.
type Sample struct {
	// Move is the normalized movement stick, length <= 1. +Y is forward.
	Move    physics.Vec2 `json:"move" cbor:"move"`
	// Look is the raw look-stick displacement in screen units.
	Look    physics.Vec2 `json:"look" cbor:"look"`
	Jump    bool         `json:"jump,omitempty" cbor:"jump,omitempty"`
	Jetpack bool         `json:"jetpack,omitempty" cbor:"jetpack,omitempty"`
}

// EventKind identifies a touch or button event.
type EventKind string

const (
	EventStart      EventKind = "start"
	EventMove       EventKind = "move"
	EventEnd        EventKind = "end"
	EventJump       EventKind = "jump"
	EventJetpackOn  EventKind = "jetpack_on"
	EventJetpackOff EventKind = "jetpack_off"
)

// Stick names one of the two on-screen joysticks.
type Stick string

const (
	StickMove Stick = "move"
	StickLook Stick = "look"
)

// Event is a single input event in screen coordinates.
type Event struct {
	Kind  EventKind `json:"kind" cbor:"kind"`
	Stick Stick     `json:"stick,omitempty" cbor:"stick,omitempty"`
	X     float64   `json:"x,omitempty" cbor:"x,omitempty"`
	Y     float64   `json:"y,omitempty" cbor:"y,omitempty"`
}
