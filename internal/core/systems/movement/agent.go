package movement

import (
	"math"

	"github.com/zeusync/planetoid/internal/core/systems/physics"
)

// Agent is the player body moving over a planetoid surface. Height is the
// full extent; the body's center rests Height/2 above the ground.
type Agent struct {
	Position physics.Vec3
	Velocity physics.Vec3
	Height   float64
	Grounded bool
	Tuning
}

func NewAgent(position physics.Vec3, height float64, tuning Tuning) (Agent, error) {
	if height <= 0 || math.IsNaN(height) || math.IsInf(height, 0) {
		return Agent{}, ErrInvalidHeight
	}
	if err := tuning.Validate(); err != nil {
		return Agent{}, err
	}
	return Agent{Position: position, Height: height, Tuning: tuning}, nil
}

// Clearance is the distance between the surface and the agent's center
// when standing.
func (a Agent) Clearance() float64 { return a.Height / 2 }
