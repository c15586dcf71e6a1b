package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultPlacement() PlacementConfig {
	return PlacementConfig{
		MaxCount:        100,
		RadiusMin:       3,
		RadiusMax:       8,
		PlacementRadius: 100,
		Seed:            7,
	}
}

func TestPlaceSpheres_NoOverlap(t *testing.T) {
	for seed := int64(0); seed < 25; seed++ {
		cfg := defaultPlacement()
		cfg.Seed = seed
		cfg.MaxCount = 250

		p, err := PlaceSpheres(cfg)
		require.NoError(t, err)
		require.NotEmpty(t, p.Spheres)

		for i := range p.Spheres {
			for j := i + 1; j < len(p.Spheres); j++ {
				a, b := p.Spheres[i], p.Spheres[j]
				dist := a.Position.Sub(b.Position).Len()
				assert.GreaterOrEqualf(t, dist, a.Radius+b.Radius-1e-4,
					"seed %d: spheres %d and %d overlap", seed, i, j)
			}
		}
	}
}

func TestPlaceSpheres_Deterministic(t *testing.T) {
	cfg := defaultPlacement()

	first, err := PlaceSpheres(cfg)
	require.NoError(t, err)
	second, err := PlaceSpheres(cfg)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	cfg.Seed++
	other, err := PlaceSpheres(cfg)
	require.NoError(t, err)
	assert.NotEqual(t, first.Spheres, other.Spheres)
}

func TestPlaceSpheres_Counts(t *testing.T) {
	cfg := defaultPlacement()
	cfg.MaxCount = 400

	p, err := PlaceSpheres(cfg)
	require.NoError(t, err)

	assert.Equal(t, 400, p.Attempts)
	assert.Equal(t, p.Attempts, len(p.Spheres)+p.Rejected)
	assert.Greater(t, p.Rejected, 0, "a crowded disk should reject some candidates")
	assert.LessOrEqual(t, len(p.Spheres), int(cfg.MaxCount))
}

func TestPlaceSpheres_RestOnGround(t *testing.T) {
	cfg := defaultPlacement()
	p, err := PlaceSpheres(cfg)
	require.NoError(t, err)

	for _, s := range p.Spheres {
		assert.Equal(t, s.Radius, s.Position.Y())
		assert.GreaterOrEqual(t, s.Radius, cfg.RadiusMin)
		assert.LessOrEqual(t, s.Radius, cfg.RadiusMax)

		horizontal := s.Position.X()*s.Position.X() + s.Position.Z()*s.Position.Z()
		assert.LessOrEqual(t, horizontal, cfg.PlacementRadius*cfg.PlacementRadius+1e-3)
	}
}

func TestPlaceSpheres_Materials(t *testing.T) {
	cfg := defaultPlacement()
	cfg.MaxCount = 2000
	cfg.PlacementRadius = 2000

	p, err := PlaceSpheres(cfg)
	require.NoError(t, err)

	var metals, diffuse, emitters int
	for _, s := range p.Spheres {
		assert.GreaterOrEqual(t, s.Smoothness, float32(0))
		assert.LessOrEqual(t, s.Smoothness, float32(1))

		switch {
		case s.Emissive():
			emitters++
			assert.Zero(t, s.Albedo)
			assert.Zero(t, s.Specular)
			assert.Greater(t, s.Emission.X()+s.Emission.Y()+s.Emission.Z(), float32(1), "emitters are bright")
		case s.Metallic():
			metals++
			assert.NotZero(t, s.Specular)
		default:
			diffuse++
			assert.InDelta(t, 0.1, s.Specular.X(), 1e-6)
			assert.InDelta(t, 0.1, s.Specular.Y(), 1e-6)
			assert.InDelta(t, 0.1, s.Specular.Z(), 1e-6)
		}
	}

	total := float64(len(p.Spheres))
	require.Greater(t, total, 500.0)
	assert.InDelta(t, 0.2, float64(emitters)/total, 0.06)
	assert.InDelta(t, 0.4, float64(metals)/total, 0.06)
	assert.InDelta(t, 0.4, float64(diffuse)/total, 0.06)
}

func TestPlaceSpheres_EmptyResults(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	tests := []struct {
		name    string
		mutate  func(*PlacementConfig)
		wantErr error
	}{
		{"zero max count", func(c *PlacementConfig) { c.MaxCount = 0 }, nil},
		{"zero placement radius", func(c *PlacementConfig) { c.PlacementRadius = 0 }, ErrInvalidPlacementRadius},
		{"negative placement radius", func(c *PlacementConfig) { c.PlacementRadius = -5 }, ErrInvalidPlacementRadius},
		{"inverted radius range", func(c *PlacementConfig) { c.RadiusMin, c.RadiusMax = 8, 3 }, ErrInvalidRadiusRange},
		{"zero radius", func(c *PlacementConfig) { c.RadiusMin = 0 }, ErrInvalidRadiusRange},
		{"nan min radius", func(c *PlacementConfig) { c.RadiusMin = nan }, ErrInvalidRadiusRange},
		{"nan max radius", func(c *PlacementConfig) { c.RadiusMax = nan }, ErrInvalidRadiusRange},
		{"infinite max radius", func(c *PlacementConfig) { c.RadiusMax = inf }, ErrInvalidRadiusRange},
		{"nan placement radius", func(c *PlacementConfig) { c.PlacementRadius = nan }, ErrInvalidPlacementRadius},
		{"infinite placement radius", func(c *PlacementConfig) { c.PlacementRadius = inf }, ErrInvalidPlacementRadius},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultPlacement()
			tt.mutate(&cfg)

			p, err := PlaceSpheres(cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Empty(t, p.Spheres)
		})
	}
}

func TestHSVToRGB(t *testing.T) {
	assert.Equal(t, [3]float32{1, 0, 0}, [3]float32(hsvToRGB(0, 1, 1)))
	assert.Equal(t, [3]float32{0.5, 0.5, 0.5}, [3]float32(hsvToRGB(0.3, 0, 0.5)))

	green := hsvToRGB(1.0/3.0, 1, 1)
	assert.InDelta(t, 0, green.X(), 1e-5)
	assert.InDelta(t, 1, green.Y(), 1e-5)
	assert.InDelta(t, 0, green.Z(), 1e-5)

	hdr := hsvToRGB(0, 0, 4)
	assert.Equal(t, float32(4), hdr.X())
}
