package physics

import "github.com/go-gl/mathgl/mgl64"

// Vec2 is a 2D vector, used for joystick and screen-space values.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func fromMgl2(v mgl64.Vec2) Vec2 { return Vec2{X: v[0], Y: v[1]} }

// Mgl returns v as an mgl64 vector.
func (v Vec2) Mgl() mgl64.Vec2 { return mgl64.Vec2{v.X, v.Y} }

func (v Vec2) Add(o Vec2) Vec2 { return fromMgl2(v.Mgl().Add(o.Mgl())) }
func (v Vec2) Sub(o Vec2) Vec2 { return fromMgl2(v.Mgl().Sub(o.Mgl())) }
func (v Vec2) Scale(s float64) Vec2 { return fromMgl2(v.Mgl().Mul(s)) }
func (v Vec2) Length() float64 { return v.Mgl().Len() }
func (v Vec2) IsZero() bool { return v.X == 0 && v.Y == 0 }
func (v Vec2) IsFinite() bool { return Finite(v.X) && Finite(v.Y) }

// Normalize returns the unit vector of v, or zero for a zero vector.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l <= Epsilon {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// ClampLength shortens v to at most limit, keeping its direction.
func (v Vec2) ClampLength(limit float64) Vec2 {
	l := v.Length()
	if l <= limit || l == 0 {
		return v
	}
	return v.Scale(limit / l)
}
