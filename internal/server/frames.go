package server

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/gorilla/websocket"

	"github.com/zeusync/planetoid/internal/core/sim"
	"github.com/zeusync/planetoid/internal/core/systems/board"
	"github.com/zeusync/planetoid/internal/core/systems/input"
	"github.com/zeusync/planetoid/internal/core/systems/physics"
	"github.com/zeusync/planetoid/internal/core/systems/planetoid"
)

// Frame types
const (
	FrameInput    = "input"
	FrameWelcome  = "welcome"
	FrameSnapshot = "snapshot"
	FrameEvent    = "event"
	FrameError    = "error"

	FramePointerDown = "pointer_down"
	FramePointerMove = "pointer_move"
	FramePointerUp   = "pointer_up"
	FrameResize      = "resize"
	FrameBoard       = "board"
)

// InputFrame carries either raw touch events or a ready-made sample.
type InputFrame struct {
	Type   string        `json:"type" cbor:"type"`
	Events []input.Event `json:"events,omitempty" cbor:"events,omitempty"`
	Sample *input.Sample `json:"sample,omitempty" cbor:"sample,omitempty"`
}

// MaxInputEvents bounds the events carried by one input frame; it matches
// maxItems in the input schema.
const MaxInputEvents = 64

func (f InputFrame) validate() error {
	if f.Type != FrameInput {
		return fmt.Errorf("%w: unexpected type %q", ErrInvalidFrame, f.Type)
	}
	if (f.Sample == nil) == (len(f.Events) == 0) {
		return fmt.Errorf("%w: exactly one of events or sample is required", ErrInvalidFrame)
	}
	if len(f.Events) > MaxInputEvents {
		return fmt.Errorf("%w: %d events, at most %d allowed", ErrInvalidFrame, len(f.Events), MaxInputEvents)
	}
	return nil
}

type SurfaceInfo struct {
	Center physics.Vec3 `json:"center" cbor:"center"`
	Radius float64      `json:"radius" cbor:"radius"`
}

type WelcomeFrame struct {
	Type        string                 `json:"type" cbor:"type"`
	SessionID   string                 `json:"session_id" cbor:"session_id"`
	TickRate    int                    `json:"tick_rate" cbor:"tick_rate"`
	Surface     SurfaceInfo            `json:"surface" cbor:"surface"`
	Decorations []planetoid.Decoration `json:"decorations" cbor:"decorations"`
}

type SnapshotFrame struct {
	Type     string       `json:"type" cbor:"type"`
	Snapshot sim.Snapshot `json:"snapshot" cbor:"snapshot"`
}

type EventFrame struct {
	Type  string         `json:"type" cbor:"type"`
	Event string         `json:"event" cbor:"event"`
	Data  sim.AgentEvent `json:"data" cbor:"data"`
}

type ErrorFrame struct {
	Type  string `json:"type" cbor:"type"`
	Error string `json:"error" cbor:"error"`
}

// PointerFrame drives the board endpoint.
type PointerFrame struct {
	Type   string  `json:"type" cbor:"type"`
	X      float64 `json:"x" cbor:"x"`
	Y      float64 `json:"y" cbor:"y"`
	Width  float64 `json:"width,omitempty" cbor:"width,omitempty"`
	Height float64 `json:"height,omitempty" cbor:"height,omitempty"`
}

type BoardFrame struct {
	Type     string        `json:"type" cbor:"type"`
	Width    float64       `json:"width" cbor:"width"`
	Height   float64       `json:"height" cbor:"height"`
	Pieces   []board.Piece `json:"pieces" cbor:"pieces"`
	Dragging bool          `json:"dragging" cbor:"dragging"`
}

func newErrorFrame(err error) ErrorFrame {
	return ErrorFrame{Type: FrameError, Error: err.Error()}
}

// Encoding selects the wire format of a connection.
type Encoding string

const (
	EncodingJSON Encoding = "json"
	EncodingCBOR Encoding = "cbor"
)

// ParseEncoding maps a query value to an Encoding; empty means JSON.
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(s) {
	case "", EncodingJSON:
		return EncodingJSON, nil
	case EncodingCBOR:
		return EncodingCBOR, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEncoding, s)
	}
}

// Marshal encodes a frame.
func (e Encoding) Marshal(v any) ([]byte, error) {
	if e == EncodingCBOR {
		return cbor.Marshal(v)
	}
	return json.Marshal(v)
}

// Unmarshal decodes a frame.
func (e Encoding) Unmarshal(data []byte, v any) error {
	if e == EncodingCBOR {
		return cbor.Unmarshal(data, v)
	}
	return json.Unmarshal(data, v)
}

// MessageType is the websocket message type used for the encoding.
func (e Encoding) MessageType() int {
	if e == EncodingCBOR {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

// DecodeInput validates and decodes a client input frame. JSON frames are
// checked against the input schema first.
func DecodeInput(enc Encoding, data []byte) (InputFrame, error) {
	var f InputFrame
	if enc == EncodingJSON {
		if err := validateInputJSON(data); err != nil {
			return f, err
		}
	}
	if err := enc.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}
	return f, f.validate()
}
