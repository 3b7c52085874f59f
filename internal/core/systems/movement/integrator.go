// Package movement integrates an agent walking, jumping and flying over a
// spherical surface. All functions take and return values and never fail.
package movement

import (
	"math"

	"github.com/zeusync/planetoid/internal/core/systems/input"
	"github.com/zeusync/planetoid/internal/core/systems/physics"
	"github.com/zeusync/planetoid/internal/core/systems/planetoid"
)

// contactTolerance absorbs rounding so an agent already projected onto the
// ground stays in contact.
const contactTolerance = 1e-9

// Update advances the agent by one frame.
func Update(a Agent, s planetoid.Surface, in input.Sample, cameraForward physics.Vec3, jetpack bool) Agent {
	up := s.Up(a.Position)
	right, forward := TangentBasis(up, cameraForward)

	if !in.Move.IsZero() {
		dir := right.Scale(in.Move.X).Add(forward.Scale(in.Move.Y)).Normalize()
		a.Position = a.Position.Add(dir.Scale(a.Speed))
	}

	if jetpack {
		a.Velocity = a.Velocity.Add(up.Scale(a.JetpackAcceleration))
		if a.Velocity.Length() > a.JetpackSpeed {
			a.Velocity = a.Velocity.Normalize().Scale(a.JetpackSpeed)
		}
	} else {
		a.Velocity = a.Velocity.Add(up.Scale(-a.GravityForce))
	}

	a.Position = a.Position.Add(a.Velocity)

	return Clamp(a, s)
}

// Clamp resolves contact with the surface: a penetrating agent is pushed out
// along the radial direction, stopped and marked grounded.
func Clamp(a Agent, s planetoid.Surface) Agent {
	if s.Distance(a.Position)-a.Clearance() <= s.Radius()+contactTolerance {
		a.Position = s.Project(a.Position, a.Clearance())
		a.Velocity = physics.Zero3
		a.Grounded = true
		return a
	}
	a.Grounded = false
	return a
}

// Jump adds an outward impulse. Airborne agents are returned unchanged.
func Jump(a Agent, s planetoid.Surface) Agent {
	if !a.Grounded {
		return a
	}
	a.Velocity = a.Velocity.Add(s.Up(a.Position).Scale(a.JumpVelocity))
	return a
}

// TangentBasis builds right/forward vectors in the tangent plane at up,
// oriented by forwardHint. If the hint is parallel to up, another axis is
// used so the basis never collapses.
func TangentBasis(up, forwardHint physics.Vec3) (right, forward physics.Vec3) {
	right = forwardHint.Cross(up).Normalize()
	if right.IsZero() {
		right = fallbackAxis(up).Cross(up).Normalize()
	}
	forward = up.Cross(right)
	return right, forward
}

// RadialSpeed is the velocity component along the outward radial direction.
func RadialSpeed(a Agent, s planetoid.Surface) float64 {
	return a.Velocity.Dot(s.Up(a.Position))
}

func fallbackAxis(up physics.Vec3) physics.Vec3 {
	if math.Abs(up.Z) < 0.9 {
		return physics.UnitZ
	}
	return physics.UnitX
}

