package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// TriangleMesh builds a single triangle with counter-clockwise winding.
func TriangleMesh(a, b, c mgl32.Vec3) *Mesh {
	return &Mesh{
		Vertices: []mgl32.Vec3{a, b, c},
		Indices:  []uint32{0, 1, 2},
	}
}

// QuadMesh builds a square in the XZ plane centered on the origin, facing +Y.
func QuadMesh(size float32) *Mesh {
	h := size / 2
	return &Mesh{
		Vertices: []mgl32.Vec3{
			{-h, 0, -h},
			{h, 0, -h},
			{h, 0, h},
			{-h, 0, h},
		},
		Indices: []uint32{0, 2, 1, 0, 3, 2},
	}
}

// CubeMesh builds an axis-aligned cube centered on the origin. Faces do not
// share vertices so each face can be shaded flat.
func CubeMesh(size float32) *Mesh {
	h := size / 2
	faces := [6][4]mgl32.Vec3{
		{{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h}},     // +Z
		{{h, -h, -h}, {-h, -h, -h}, {-h, h, -h}, {h, h, -h}}, // -Z
		{{h, -h, h}, {h, -h, -h}, {h, h, -h}, {h, h, h}},     // +X
		{{-h, -h, -h}, {-h, -h, h}, {-h, h, h}, {-h, h, -h}}, // -X
		{{-h, h, h}, {h, h, h}, {h, h, -h}, {-h, h, -h}},     // +Y
		{{-h, -h, -h}, {h, -h, -h}, {h, -h, h}, {-h, -h, h}}, // -Y
	}

	m := &Mesh{
		Vertices: make([]mgl32.Vec3, 0, 24),
		Indices:  make([]uint32, 0, 36),
	}
	for _, f := range faces {
		base := uint32(len(m.Vertices))
		m.Vertices = append(m.Vertices, f[:]...)
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}

// PyramidMesh builds a square pyramid resting on y=0 with its apex at
// (0, height, 0).
func PyramidMesh(base, height float32) *Mesh {
	h := base / 2
	return &Mesh{
		Vertices: []mgl32.Vec3{
			{-h, 0, h},
			{h, 0, h},
			{h, 0, -h},
			{-h, 0, -h},
			{0, height, 0},
		},
		Indices: []uint32{
			0, 1, 4,
			1, 2, 4,
			2, 3, 4,
			3, 0, 4,
			0, 3, 2,
			0, 2, 1,
		},
	}
}
