package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeZeroVector(t *testing.T) {
	assert.Equal(t, Zero3, Vec3{}.Normalize())
	assert.Equal(t, Vec2{}, Vec2{}.Normalize())

	n := Vec3{X: 3, Y: 4}.Normalize()
	assert.InDelta(t, 1.0, n.Length(), 1e-12)
	assert.True(t, n.IsFinite())
}

func TestCrossIsRightHanded(t *testing.T) {
	assert.Equal(t, UnitZ, UnitX.Cross(UnitY))
	assert.Equal(t, UnitX, UnitY.Cross(UnitZ))
	assert.Equal(t, UnitZ.Neg(), UnitY.Cross(UnitX))
}

func TestProjectOnPlane(t *testing.T) {
	v := Vec3{X: 2, Y: 5, Z: -1}
	p := v.ProjectOnPlane(UnitY)
	assert.Equal(t, Vec3{X: 2, Z: -1}, p)
	assert.InDelta(t, 0, p.Dot(UnitY), 1e-12)
}

func TestRotateAround(t *testing.T) {
	r := UnitX.RotateAround(UnitY, math.Pi/2)
	assert.True(t, r.ApproxEqual(UnitZ.Neg(), 1e-12), "got %+v", r)

	// Rotation preserves length.
	v := Vec3{X: 1, Y: 2, Z: 3}
	assert.InDelta(t, v.Length(), v.RotateAround(UnitZ, 0.7).Length(), 1e-12)
}

func TestClampLength(t *testing.T) {
	v := Vec2{X: 30, Y: 40}
	c := v.ClampLength(5)
	assert.InDelta(t, 5, c.Length(), 1e-12)
	assert.InDelta(t, 0.6, c.Normalize().X, 1e-12)

	short := Vec2{X: 0.1}
	assert.Equal(t, short, short.ClampLength(1))
}

func TestNormalizeAxisAlignedIsExact(t *testing.T) {
	assert.Equal(t, UnitX, Vec3{X: 49}.Normalize())
	assert.Equal(t, UnitY.Neg(), Vec3{Y: -4}.Normalize())
	assert.Equal(t, Vec2{Y: 1}, Vec2{Y: 49}.Normalize())
}

func TestMglRoundTrip(t *testing.T) {
	v := Vec3{X: 1, Y: -2, Z: 3.5}
	assert.Equal(t, v, FromMgl(v.Mgl()))
	assert.Equal(t, mgl64.Vec3{1, -2, 3.5}, v.Mgl())
	assert.InDelta(t, 3, v.DistanceTo(v.Add(Vec3{Z: 3})), 1e-12)
}

func TestFinite(t *testing.T) {
	assert.True(t, Finite(0))
	assert.False(t, Finite(math.NaN()))
	assert.False(t, Finite(math.Inf(-1)))
	assert.False(t, Vec3{Y: math.Inf(1)}.IsFinite())
	assert.False(t, Vec2{X: math.NaN()}.IsFinite())
}
