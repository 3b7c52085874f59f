package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the length below which a vector is treated as zero.
const Epsilon = 1e-12

// Vec3 is a 3D vector or point. All operations return new values; the
// arithmetic is delegated to mgl64, the struct form keeps the wire shape
// {"x","y","z"} stable.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

var (
	Zero3 = Vec3{}
	UnitX = Vec3{X: 1}
	UnitY = Vec3{Y: 1}
	UnitZ = Vec3{Z: 1}
)

// FromMgl converts an mgl64 vector.
func FromMgl(v mgl64.Vec3) Vec3 { return Vec3{X: v[0], Y: v[1], Z: v[2]} }

// Mgl returns v as an mgl64 vector.
func (v Vec3) Mgl() mgl64.Vec3 { return mgl64.Vec3{v.X, v.Y, v.Z} }

func (v Vec3) Add(o Vec3) Vec3 { return FromMgl(v.Mgl().Add(o.Mgl())) }
func (v Vec3) Sub(o Vec3) Vec3 { return FromMgl(v.Mgl().Sub(o.Mgl())) }
func (v Vec3) Scale(s float64) Vec3 { return FromMgl(v.Mgl().Mul(s)) }
func (v Vec3) Neg() Vec3 { return FromMgl(v.Mgl().Mul(-1)) }
func (v Vec3) Dot(o Vec3) float64 { return v.Mgl().Dot(o.Mgl()) }
func (v Vec3) LengthSq() float64 { return v.Mgl().LenSqr() }
func (v Vec3) Length() float64 { return v.Mgl().Len() }
func (v Vec3) IsZero() bool { return v.LengthSq() <= Epsilon*Epsilon }
func (v Vec3) DistanceTo(o Vec3) float64 { return o.Mgl().Sub(v.Mgl()).Len() }

// Cross returns v × o (right-handed).
func (v Vec3) Cross(o Vec3) Vec3 { return FromMgl(v.Mgl().Cross(o.Mgl())) }

// Normalize returns the unit vector in the direction of v, or the zero
// vector when v has no usable length. mgl64's Normalize divides by zero,
// so the length is checked first. Components are divided rather than scaled
// by the reciprocal so axis-aligned inputs come out exact.
func (v Vec3) Normalize() Vec3 {
	m := v.Mgl()
	l := m.Len()
	if l <= Epsilon {
		return Zero3
	}
	return Vec3{X: m[0] / l, Y: m[1] / l, Z: m[2] / l}
}

// ProjectOnPlane removes the component of v along the unit normal n.
func (v Vec3) ProjectOnPlane(n Vec3) Vec3 {
	m, nm := v.Mgl(), n.Mgl()
	return FromMgl(m.Sub(nm.Mul(m.Dot(nm))))
}

// RotateAround rotates v by angle radians around the unit axis.
func (v Vec3) RotateAround(axis Vec3, angle float64) Vec3 {
	return FromMgl(mgl64.QuatRotate(angle, axis.Mgl()).Rotate(v.Mgl()))
}

// ApproxEqual reports whether every component differs by at most tol.
// mgl64's ApproxEqualThreshold is relative away from zero, which is not
// what position checks want.
func (v Vec3) ApproxEqual(o Vec3, tol float64) bool {
	d := v.Mgl().Sub(o.Mgl())
	return math.Abs(d[0]) <= tol && math.Abs(d[1]) <= tol && math.Abs(d[2]) <= tol
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vec3) IsFinite() bool {
	return Finite(v.X) && Finite(v.Y) && Finite(v.Z)
}

// Finite reports whether f is neither NaN nor infinite.
func Finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
