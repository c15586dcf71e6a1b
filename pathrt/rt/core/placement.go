package core

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrInvalidRadiusRange     = errors.New("invalid sphere radius range")
	ErrInvalidPlacementRadius = errors.New("placement radius must be positive")
)

// pcgStream is fixed so a seed alone selects the sequence.
const pcgStream = 0x9e3779b97f4a7c15

// PlacementConfig drives procedural sphere placement.
type PlacementConfig struct {
	MaxCount        uint32
	RadiusMin       float32
	RadiusMax       float32
	PlacementRadius float32
	Seed            int64
}

// Validate rejects ranges that cannot yield finite, positive radii. The
// comparisons are written so that NaN fails them.
func (c PlacementConfig) Validate() error {
	if !finite(c.RadiusMin) || !finite(c.RadiusMax) || !(c.RadiusMin > 0) || !(c.RadiusMin <= c.RadiusMax) {
		return fmt.Errorf("%w: [%g, %g]", ErrInvalidRadiusRange, c.RadiusMin, c.RadiusMax)
	}
	if !finite(c.PlacementRadius) || !(c.PlacementRadius > 0) {
		return fmt.Errorf("%w: %g", ErrInvalidPlacementRadius, c.PlacementRadius)
	}
	return nil
}

func finite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

// Placement is the outcome of one generation run.
type Placement struct {
	Spheres  []Sphere
	Attempts int
	Rejected int
}

// PlaceSpheres scatters up to cfg.MaxCount spheres on the y=0 ground plane
// inside a disk of cfg.PlacementRadius. Candidates intersecting an already
// accepted sphere are dropped without retry, so fewer than MaxCount spheres
// may come back. The result depends only on cfg.
//
// An invalid config yields an empty placement together with the
// validation error; callers are expected to render an empty scene.
func PlaceSpheres(cfg PlacementConfig) (Placement, error) {
	if err := cfg.Validate(); err != nil {
		return Placement{}, err
	}

	rng := rand.New(rand.NewPCG(uint64(cfg.Seed), pcgStream))
	p := Placement{Spheres: make([]Sphere, 0, min(int(cfg.MaxCount), 1024))}

	for i := uint32(0); i < cfg.MaxCount; i++ {
		p.Attempts++

		radius := cfg.RadiusMin + rng.Float32()*(cfg.RadiusMax-cfg.RadiusMin)
		x, z := insideDisk(rng, cfg.PlacementRadius)
		candidate := Sphere{
			Position: mgl32.Vec3{x, radius, z},
			Radius:   radius,
		}

		if overlapsAny(candidate, p.Spheres) {
			p.Rejected++
			continue
		}

		assignMaterial(rng, &candidate)
		p.Spheres = append(p.Spheres, candidate)
	}
	return p, nil
}

func overlapsAny(s Sphere, accepted []Sphere) bool {
	for _, other := range accepted {
		if s.Overlaps(other) {
			return true
		}
	}
	return false
}

// insideDisk samples a point uniformly inside a disk of the given radius.
func insideDisk(rng *rand.Rand, radius float32) (float32, float32) {
	r := radius * float32(math.Sqrt(rng.Float64()))
	theta := 2 * math.Pi * rng.Float64()
	return r * float32(math.Cos(theta)), r * float32(math.Sin(theta))
}

func assignMaterial(rng *rand.Rand, s *Sphere) {
	chance := rng.Float32()
	if chance >= 0.8 {
		s.Emission = randomColorHSV(rng, 0, 1, 0, 1, 3, 6)
		return
	}

	color := randomColorHSV(rng, 0.2, 1, 0.4, 1, 0.2, 1)
	if chance < 0.4 {
		s.Specular = color
	} else {
		s.Albedo = color
		s.Specular = mgl32.Vec3{0.1, 0.1, 0.1}
	}
	s.Smoothness = rng.Float32()
}

// randomColorHSV draws hue, saturation and value uniformly from the given
// ranges. Values above 1 are kept, giving HDR colors for emitters.
func randomColorHSV(rng *rand.Rand, hMin, hMax, sMin, sMax, vMin, vMax float32) mgl32.Vec3 {
	h := hMin + rng.Float32()*(hMax-hMin)
	s := sMin + rng.Float32()*(sMax-sMin)
	v := vMin + rng.Float32()*(vMax-vMin)
	return hsvToRGB(h, s, v)
}

func hsvToRGB(h, s, v float32) mgl32.Vec3 {
	if s <= 0 {
		return mgl32.Vec3{v, v, v}
	}
	h = h - float32(math.Floor(float64(h)))
	h6 := h * 6
	sector := int(h6) % 6
	f := h6 - float32(math.Floor(float64(h6)))
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	switch sector {
	case 0:
		return mgl32.Vec3{v, t, p}
	case 1:
		return mgl32.Vec3{q, v, p}
	case 2:
		return mgl32.Vec3{p, v, t}
	case 3:
		return mgl32.Vec3{p, q, v}
	case 4:
		return mgl32.Vec3{t, p, v}
	default:
		return mgl32.Vec3{v, p, q}
	}
}
