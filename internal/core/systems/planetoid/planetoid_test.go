package planetoid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/planetoid/internal/core/systems/physics"
)

func TestNewSurfaceRejectsBadRadius(t *testing.T) {
	for _, r := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := NewSurface(physics.Vec3{}, r)
		assert.ErrorIs(t, err, ErrInvalidRadius, "radius %v", r)
	}
	_, err := NewSurface(physics.Vec3{X: math.NaN()}, 1)
	assert.ErrorIs(t, err, ErrInvalidCenter)
}

func TestProjectIsIdempotent(t *testing.T) {
	s, err := NewSurface(physics.Vec3{X: 10, Y: -4, Z: 2}, 100)
	require.NoError(t, err)

	p := physics.Vec3{X: 33, Y: 12, Z: -70}
	once := s.Project(p, 5)
	twice := s.Project(once, 5)

	assert.True(t, once.ApproxEqual(twice, 1e-9), "%+v != %+v", once, twice)
	assert.InDelta(t, 105, s.Distance(once), 1e-9)
}

func TestUpAtCenterFallsBack(t *testing.T) {
	s, err := NewSurface(physics.Vec3{X: 1, Y: 1, Z: 1}, 10)
	require.NoError(t, err)
	assert.Equal(t, physics.UnitY, s.Up(s.Center()))
	assert.True(t, s.Up(physics.Vec3{X: 50, Y: 1, Z: 1}).ApproxEqual(physics.UnitX, 1e-12))
}

func TestGenerateIsDeterministic(t *testing.T) {
	cfg := DefaultGenerateConfig()
	cfg.Seed = 42

	s1, d1, err := Generate(cfg)
	require.NoError(t, err)
	s2, d2, err := Generate(cfg)
	require.NoError(t, err)

	assert.Equal(t, s1, s2)
	assert.Equal(t, d1, d2)
	require.Len(t, d1, cfg.Decorations)

	cfg.Seed = 43
	_, d3, err := Generate(cfg)
	require.NoError(t, err)
	assert.NotEqual(t, d1[0].Position, d3[0].Position)
}

func TestGeneratePlacesDecorationsOnSurface(t *testing.T) {
	cfg := DefaultGenerateConfig()
	cfg.Center = physics.Vec3{X: 5, Y: 5, Z: 5}

	s, decorations, err := Generate(cfg)
	require.NoError(t, err)

	kinds := map[string]bool{}
	for _, d := range decorations {
		assert.InDelta(t, 1, d.Normal.Length(), 1e-9)
		assert.InDelta(t, cfg.Radius-cfg.Sink, s.Distance(d.Position), 1e-9)
		assert.GreaterOrEqual(t, d.Scale, cfg.MinScale)
		assert.LessOrEqual(t, d.Scale, cfg.MaxScale)
		kinds[d.Kind] = true
	}
	assert.Len(t, kinds, len(cfg.Kinds))
}

func TestGenerateValidation(t *testing.T) {
	cfg := DefaultGenerateConfig()
	cfg.Decorations = -1
	_, _, err := Generate(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg = DefaultGenerateConfig()
	cfg.Kinds = nil
	_, _, err = Generate(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg = DefaultGenerateConfig()
	cfg.MinScale, cfg.MaxScale = 3, 1
	_, _, err = Generate(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg = DefaultGenerateConfig()
	cfg.Radius = 0
	_, _, err = Generate(cfg)
	assert.ErrorIs(t, err, ErrInvalidRadius)

	cfg = DefaultGenerateConfig()
	cfg.Decorations, cfg.Kinds = 0, nil
	_, decorations, err := Generate(cfg)
	require.NoError(t, err)
	assert.Empty(t, decorations)
}

func TestValidateChecksSurface(t *testing.T) {
	cfg := DefaultGenerateConfig()
	cfg.Radius = -1
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidRadius)

	cfg = DefaultGenerateConfig()
	cfg.Radius = math.Inf(1)
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidRadius)

	cfg = DefaultGenerateConfig()
	cfg.Center = physics.Vec3{Z: math.NaN()}
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidCenter)

	cfg = DefaultGenerateConfig()
	cfg.Sink = math.NaN()
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultGenerateConfig()
	cfg.MaxScale = math.Inf(1)
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	assert.NoError(t, DefaultGenerateConfig().Validate())
}
