package movement

import (
	"fmt"
	"math"
)

// Tuning holds per-agent movement constants. Values are per frame.
type Tuning struct {
	Speed               float64 `yaml:"speed"`
	RotationSpeed       float64 `yaml:"rotation_speed"`
	JetpackAcceleration float64 `yaml:"jetpack_acceleration"`
	JetpackSpeed        float64 `yaml:"jetpack_speed"`
	JumpVelocity        float64 `yaml:"jump_velocity"`
	GravityForce        float64 `yaml:"gravity_force"`
}

func DefaultTuning() Tuning {
	return Tuning{
		Speed:               0.5,
		RotationSpeed:       0.002,
		JetpackAcceleration: 0.05,
		JetpackSpeed:        1,
		JumpVelocity:        1.5,
		GravityForce:        0.05,
	}
}

func (t Tuning) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"speed", t.Speed},
		{"rotation_speed", t.RotationSpeed},
		{"jetpack_acceleration", t.JetpackAcceleration},
		{"jetpack_speed", t.JetpackSpeed},
		{"jump_velocity", t.JumpVelocity},
		{"gravity_force", t.GravityForce},
	}
	for _, f := range fields {
		if f.value < 0 || math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s = %v", ErrInvalidTuning, f.name, f.value)
		}
	}
	if t.JetpackSpeed == 0 {
		return fmt.Errorf("%w: jetpack_speed must be positive", ErrInvalidTuning)
	}
	return nil
}
