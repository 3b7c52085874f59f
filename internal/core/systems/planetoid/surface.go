// Package planetoid describes the spherical surface agents walk on and the
// procedural decoration layout placed on it.
package planetoid

import "github.com/zeusync/planetoid/internal/core/systems/physics"

// Surface is a sphere of fixed radius around a world position. The zero
// value is not usable; construct it with NewSurface or Generate.
type Surface struct {
	center physics.Vec3
	radius float64
}

// NewSurface validates and returns an immutable surface descriptor.
func NewSurface(center physics.Vec3, radius float64) (Surface, error) {
	if !center.IsFinite() {
		return Surface{}, ErrInvalidCenter
	}
	if radius <= 0 || !physics.Finite(radius) {
		return Surface{}, ErrInvalidRadius
	}
	return Surface{center: center, radius: radius}, nil
}

func (s Surface) Center() physics.Vec3 { return s.center }
func (s Surface) Radius() float64 { return s.radius }

// Up returns the radial direction at p. A point exactly at the center has no
// radial direction, so UnitY is used instead.
func (s Surface) Up(p physics.Vec3) physics.Vec3 {
	up := p.Sub(s.center).Normalize()
	if up.IsZero() {
		return physics.UnitY
	}
	return up
}

// Distance is the distance from p to the surface center.
func (s Surface) Distance(p physics.Vec3) float64 {
	return p.DistanceTo(s.center)
}

// Altitude is the signed height of p above the surface.
func (s Surface) Altitude(p physics.Vec3) float64 {
	return s.Distance(p) - s.radius
}

// Project places p on the shell radius+offset along its radial direction.
func (s Surface) Project(p physics.Vec3, offset float64) physics.Vec3 {
	return s.Up(p).Scale(s.radius + offset).Add(s.center)
}

// PointAt returns the surface point in direction dir (need not be unit length).
func (s Surface) PointAt(dir physics.Vec3) physics.Vec3 {
	return s.Project(s.center.Add(dir), 0)
}
