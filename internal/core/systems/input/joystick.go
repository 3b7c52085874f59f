package input

import "github.com/zeusync/planetoid/internal/core/systems/physics"

// Joystick tracks one virtual stick: the touch origin and the current
// touch position, both in screen coordinates (Y grows downward).
type Joystick struct {
	Radius float64

	origin  physics.Vec2
	current physics.Vec2
	active  bool
}

func NewJoystick(radius float64) *Joystick {
	return &Joystick{Radius: radius}
}

func (j *Joystick) Start(x, y float64) {
	j.origin = physics.Vec2{X: x, Y: y}
	j.current = j.origin
	j.active = true
}

// Move is ignored unless a touch is in progress.
func (j *Joystick) Move(x, y float64) {
	if !j.active {
		return
	}
	j.current = physics.Vec2{X: x, Y: y}
}

func (j *Joystick) End() {
	j.active = false
	j.origin = physics.Vec2{}
	j.current = physics.Vec2{}
}

func (j *Joystick) Active() bool { return j.active }

// Displacement is the raw offset from the touch origin.
func (j *Joystick) Displacement() physics.Vec2 {
	if !j.active {
		return physics.Vec2{}
	}
	return j.current.Sub(j.origin)
}

// Normalized scales the displacement by the stick radius, clamps it to unit
// length and flips Y so that pushing up means forward.
func (j *Joystick) Normalized() physics.Vec2 {
	d := j.Displacement()
	if d.IsZero() || j.Radius <= 0 {
		return physics.Vec2{}
	}
	n := d.Scale(1 / j.Radius).ClampLength(1)
	return physics.Vec2{X: n.X, Y: -n.Y}
}
