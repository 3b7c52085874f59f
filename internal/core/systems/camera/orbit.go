// Package camera keeps the third-person camera that orbits the agent. Its
// forward vector is what the movement integrator uses to orient input.
package camera

import (
	"math"

	"github.com/zeusync/planetoid/internal/core/systems/physics"
)

const (
	DefaultMinPitch = -1.2
	DefaultMaxPitch = 1.2
)

// Orbit is a yaw/pitch camera attached to an agent. Forward always lies in
// the tangent plane of the agent's current up direction; Pitch tilts the eye
// above or below that plane.
type Orbit struct {
	Forward  physics.Vec3
	Pitch    float64
	Distance float64
	MinPitch float64
	MaxPitch float64
}

func NewOrbit(forward physics.Vec3, distance float64) *Orbit {
	return &Orbit{
		Forward:  forward.Normalize(),
		Distance: distance,
		MinPitch: DefaultMinPitch,
		MaxPitch: DefaultMaxPitch,
	}
}

// Follow transports Forward into the tangent plane of up.
func (o *Orbit) Follow(up physics.Vec3) {
	f := o.Forward.ProjectOnPlane(up).Normalize()
	if f.IsZero() {
		// Looking straight along up: pick any tangent direction.
		f = perpendicular(up)
	}
	o.Forward = f
}

// Rotate applies one frame of look input. Horizontal look yaws around up,
// vertical look changes pitch within [MinPitch, MaxPitch].
func (o *Orbit) Rotate(look physics.Vec2, rotationSpeed float64, up physics.Vec3) {
	if look.IsZero() || rotationSpeed == 0 {
		return
	}
	if look.X != 0 {
		o.Forward = o.Forward.RotateAround(up, -look.X*rotationSpeed).Normalize()
	}
	o.Pitch = math.Max(o.MinPitch, math.Min(o.MaxPitch, o.Pitch+look.Y*rotationSpeed))
}

// Eye returns the camera position for a target standing on a surface with
// the given up direction: behind the target along Forward, raised by Pitch.
func (o *Orbit) Eye(target, up physics.Vec3) physics.Vec3 {
	back := o.Forward.Neg().Scale(math.Cos(o.Pitch))
	lift := up.Scale(math.Sin(o.Pitch))
	return target.Add(back.Add(lift).Scale(o.Distance))
}

func perpendicular(up physics.Vec3) physics.Vec3 {
	axis := physics.UnitZ
	if math.Abs(up.Z) >= 0.9 {
		axis = physics.UnitX
	}
	return up.Cross(axis).Cross(up).Normalize()
}
