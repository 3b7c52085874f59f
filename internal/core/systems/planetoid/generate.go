package planetoid

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/zeusync/planetoid/internal/core/systems/physics"
)

// GenerateConfig controls the procedural planetoid layout.
type GenerateConfig struct {
	Seed        uint64       `yaml:"seed"`
	Center      physics.Vec3 `yaml:"center"`
	Radius      float64      `yaml:"radius"`
	Decorations int          `yaml:"decorations"`
	Kinds       []string     `yaml:"kinds"`
	MinScale    float64      `yaml:"min_scale"`
	MaxScale    float64      `yaml:"max_scale"`
	// Sink lowers every decoration into the ground along its normal.
	Sink float64 `yaml:"sink"`
}

// DefaultGenerateConfig returns the layout used by the demo planetoid.
func DefaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		Seed:        1,
		Radius:      100,
		Decorations: 64,
		Kinds:       []string{"tree", "rock", "crystal"},
		MinScale:    0.5,
		MaxScale:    2,
		Sink:        0.25,
	}
}

// Decoration is a purely visual element resting on the surface.
type Decoration struct {
	ID       int          `json:"id" cbor:"id"`
	Kind     string       `json:"kind" cbor:"kind"`
	Position physics.Vec3 `json:"position" cbor:"position"`
	Normal   physics.Vec3 `json:"normal" cbor:"normal"`
	Scale    float64      `json:"scale" cbor:"scale"`
}

// Validate checks the configuration without generating anything.
func (c GenerateConfig) Validate() error {
	if !c.Center.IsFinite() {
		return ErrInvalidCenter
	}
	if c.Radius <= 0 || !physics.Finite(c.Radius) {
		return ErrInvalidRadius
	}
	if !physics.Finite(c.Sink) {
		return fmt.Errorf("%w: sink %g", ErrInvalidConfig, c.Sink)
	}
	if c.Decorations < 0 {
		return fmt.Errorf("%w: negative decoration count %d", ErrInvalidConfig, c.Decorations)
	}
	if c.Decorations > 0 && len(c.Kinds) == 0 {
		return fmt.Errorf("%w: decorations requested without kinds", ErrInvalidConfig)
	}
	if c.MinScale < 0 || c.MinScale > c.MaxScale || !physics.Finite(c.MaxScale) {
		return fmt.Errorf("%w: scale range [%g, %g]", ErrInvalidConfig, c.MinScale, c.MaxScale)
	}
	return nil
}

// Generate builds the surface descriptor and its decorations. The result is
// fully determined by the configuration, seed included.
func Generate(cfg GenerateConfig) (Surface, []Decoration, error) {
	if err := cfg.Validate(); err != nil {
		return Surface{}, nil, err
	}
	surface, err := NewSurface(cfg.Center, cfg.Radius)
	if err != nil {
		return Surface{}, nil, err
	}

	decorations := make([]Decoration, 0, cfg.Decorations)
	for i := 0; i < cfg.Decorations; i++ {
		normal := sphereDirection(cfg.Seed, uint64(i))
		kind := cfg.Kinds[int(hash(cfg.Seed, uint64(i), channelKind)%uint64(len(cfg.Kinds)))]
		scale := cfg.MinScale + (cfg.MaxScale-cfg.MinScale)*unit(cfg.Seed, uint64(i), channelScale)

		decorations = append(decorations, Decoration{
			ID:       i,
			Kind:     kind,
			Position: surface.PointAt(normal).Sub(normal.Scale(cfg.Sink)),
			Normal:   normal,
			Scale:    scale,
		})
	}

	return surface, decorations, nil
}

const (
	channelHeight byte = iota
	channelAzimuth
	channelKind
	channelScale
)

// sphereDirection maps two hashed uniforms to a uniformly distributed unit
// vector (Archimedes' hat-box projection).
func sphereDirection(seed, index uint64) physics.Vec3 {
	y := 2*unit(seed, index, channelHeight) - 1
	phi := 2 * math.Pi * unit(seed, index, channelAzimuth)
	r := math.Sqrt(1 - y*y)
	return physics.Vec3{X: r * math.Cos(phi), Y: y, Z: r * math.Sin(phi)}
}

func hash(seed, index uint64, channel byte) uint64 {
	var buf [17]byte
	binary.LittleEndian.PutUint64(buf[0:8], seed)
	binary.LittleEndian.PutUint64(buf[8:16], index)
	buf[16] = channel
	return xxhash.Sum64(buf[:])
}

// unit returns a value in [0, 1) using the top 53 bits of the hash.
func unit(seed, index uint64, channel byte) float64 {
	return float64(hash(seed, index, channel)>>11) / (1 << 53)
}
