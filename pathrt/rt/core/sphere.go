package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Sphere is an analytic primitive with its material. Metals carry a zero
// albedo, emitters carry zero albedo and specular.
type Sphere struct {
	Position   mgl32.Vec3
	Radius     float32
	Albedo     mgl32.Vec3
	Specular   mgl32.Vec3
	Smoothness float32
	Emission   mgl32.Vec3
}

func (Sphere) Stride() int { return SphereStride }

func (s Sphere) AppendTo(buf []byte) []byte {
	buf = appendVec3(buf, s.Position)
	buf = appendFloat32(buf, s.Radius)
	buf = appendVec3(buf, s.Albedo)
	buf = appendVec3(buf, s.Specular)
	buf = appendFloat32(buf, s.Smoothness)
	return appendVec3(buf, s.Emission)
}

// Overlaps reports whether the two spheres intersect. Touching spheres do
// not overlap.
func (s Sphere) Overlaps(o Sphere) bool {
	minDist := s.Radius + o.Radius
	d := s.Position.Sub(o.Position)
	return d.Dot(d) < minDist*minDist
}

func (s Sphere) Emissive() bool {
	return s.Emission != (mgl32.Vec3{})
}

func (s Sphere) Metallic() bool {
	return !s.Emissive() && s.Albedo == (mgl32.Vec3{})
}
