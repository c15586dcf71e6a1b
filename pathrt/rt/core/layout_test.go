package core

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFloat(data []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
}

func TestSphereLayout(t *testing.T) {
	s := Sphere{
		Position:   mgl32.Vec3{1, 2, 3},
		Radius:     4,
		Albedo:     mgl32.Vec3{5, 6, 7},
		Specular:   mgl32.Vec3{8, 9, 10},
		Smoothness: 11,
		Emission:   mgl32.Vec3{12, 13, 14},
	}

	data := Pack([]Sphere{s, s})
	require.Len(t, data, 2*SphereStride)

	// struct Sphere in raytrace.wgsl is 14 consecutive f32 fields.
	for i := 0; i < 14; i++ {
		assert.Equal(t, float32(i+1), readFloat(data, i*4))
		assert.Equal(t, float32(i+1), readFloat(data, SphereStride+i*4))
	}
}

func TestMeshObjectLayout(t *testing.T) {
	tr := NewTransform()
	tr.SetPosition(mgl32.Vec3{7, 8, 9})
	rec := MeshObjectRecord{LocalToWorld: tr.ObjectToWorld(), IndexOffset: 36, IndexCount: 12}

	data := Pack([]MeshObjectRecord{rec})
	require.Len(t, data, MeshObjectStride)

	// Translation lives in the fourth column.
	assert.Equal(t, float32(7), readFloat(data, 48))
	assert.Equal(t, float32(8), readFloat(data, 52))
	assert.Equal(t, float32(9), readFloat(data, 56))
	assert.Equal(t, uint32(36), binary.LittleEndian.Uint32(data[64:]))
	assert.Equal(t, uint32(12), binary.LittleEndian.Uint32(data[68:]))
}

func TestVertexAndIndexLayout(t *testing.T) {
	verts := Pack([]Vertex{{1, 2, 3}, {4, 5, 6}})
	require.Len(t, verts, 2*VertexStride)
	assert.Equal(t, float32(4), readFloat(verts, VertexStride))

	idx := Pack([]Index{9, 10})
	require.Len(t, idx, 2*IndexStride)
	assert.Equal(t, uint32(10), binary.LittleEndian.Uint32(idx[4:]))

	assert.Nil(t, Pack([]Index(nil)))
}

type badRecord struct{}

func (badRecord) Stride() int                { return 8 }
func (badRecord) AppendTo(buf []byte) []byte { return append(buf, 1, 2, 3) }

func TestPackPanicsOnStrideMismatch(t *testing.T) {
	assert.Panics(t, func() {
		Pack([]badRecord{{}})
	})
}

func TestSphereOverlaps(t *testing.T) {
	a := Sphere{Position: mgl32.Vec3{0, 1, 0}, Radius: 1}
	touching := Sphere{Position: mgl32.Vec3{2, 1, 0}, Radius: 1}
	inside := Sphere{Position: mgl32.Vec3{1.5, 1, 0}, Radius: 1}

	assert.False(t, a.Overlaps(touching))
	assert.True(t, a.Overlaps(inside))
	assert.True(t, inside.Overlaps(a))
}
