package sim

import (
	"fmt"

	"github.com/zeusync/planetoid/internal/core/systems/movement"
	"github.com/zeusync/planetoid/internal/core/systems/physics"
	"github.com/zeusync/planetoid/internal/core/systems/planetoid"
)

// Config describes how a session's world and agent are created.
type Config struct {
	Surface planetoid.GenerateConfig `yaml:"surface"`
	Tuning  movement.Tuning          `yaml:"tuning"`
	// Height is the agent's full height.
	Height float64 `yaml:"height"`
	// SpawnAltitude is the initial height of the agent's center above the ground.
	SpawnAltitude  float64 `yaml:"spawn_altitude"`
	CameraDistance float64 `yaml:"camera_distance"`
	JoystickRadius float64 `yaml:"joystick_radius"`
}

func DefaultConfig() Config {
	return Config{
		Surface:        planetoid.DefaultGenerateConfig(),
		Tuning:         movement.DefaultTuning(),
		Height:         10,
		SpawnAltitude:  50,
		CameraDistance: 30,
		JoystickRadius: 50,
	}
}

func (c Config) Validate() error {
	if err := c.Surface.Validate(); err != nil {
		return err
	}
	if err := c.Tuning.Validate(); err != nil {
		return err
	}
	for name, v := range map[string]float64{
		"height":          c.Height,
		"spawn altitude":  c.SpawnAltitude,
		"camera distance": c.CameraDistance,
		"joystick radius": c.JoystickRadius,
	} {
		if !physics.Finite(v) {
			return fmt.Errorf("%w: %s %g", ErrInvalidConfig, name, v)
		}
	}
	if c.Height <= 0 {
		return fmt.Errorf("%w: height %g", ErrInvalidConfig, c.Height)
	}
	if c.SpawnAltitude < c.Height/2 {
		return fmt.Errorf("%w: spawn altitude %g is below the agent's clearance", ErrInvalidConfig, c.SpawnAltitude)
	}
	if c.CameraDistance < 0 || c.JoystickRadius <= 0 {
		return fmt.Errorf("%w: camera distance %g, joystick radius %g", ErrInvalidConfig, c.CameraDistance, c.JoystickRadius)
	}
	return nil
}
