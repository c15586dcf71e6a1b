package gpu_test

import (
	"testing"

	"github.com/gekko3d/raymaster/pathrt/rt/core"
	"github.com/gekko3d/raymaster/pathrt/rt/gpu"
	"github.com/gekko3d/raymaster/pathrt/rt/gpu/gputest"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinder_SkipsAbsentBuffers(t *testing.T) {
	dev := &gputest.Device{}
	spheres := gpu.NewBufferHandle(dev, "SpheresBuf")
	require.NoError(t, gpu.Store(spheres, []core.Sphere{{Radius: 1}}))

	b := gpu.Binder{
		Spheres:     spheres,
		MeshObjects: gpu.NewBufferHandle(dev, "MeshObjectsBuf"),
	}
	k := gputest.NewKernel()
	n := b.Bind(k, gpu.FrameParams{Light: mgl32.Vec4{0, -1, 0, 1}})

	assert.Equal(t, 1, n)
	assert.Contains(t, k.Buffers, gpu.SlotSpheres)
	assert.NotContains(t, k.Buffers, gpu.SlotMeshObjects)
	assert.NotContains(t, k.Buffers, gpu.SlotVertices)
	assert.NotContains(t, k.Buffers, gpu.SlotIndices)
}

func TestBinder_FrameParams(t *testing.T) {
	sky := gputest.NewTexture("sky", 4, 2)
	cam := mgl32.Translate3D(1, 2, 3)
	inv := mgl32.Perspective(1, 1.5, 0.1, 100).Inv()

	k := gputest.NewKernel()
	gpu.Binder{}.Bind(k, gpu.FrameParams{
		Seed:              0.25,
		CameraToWorld:     cam,
		InverseProjection: inv,
		Skybox:            sky,
		PixelOffset:       mgl32.Vec2{0.3, 0.7},
		Light:             mgl32.Vec4{0, -1, 0, 2},
	})

	assert.Equal(t, float32(0.25), k.Floats[gpu.SlotSeed])
	assert.Equal(t, cam, k.Matrices[gpu.SlotCameraToWorld])
	assert.Equal(t, inv, k.Matrices[gpu.SlotInverseProjection])
	assert.Equal(t, gpu.Texture(sky), k.Textures[gpu.SlotSkybox])
	assert.Equal(t, mgl32.Vec4{0.3, 0.7, 0, 0}, k.Vectors[gpu.SlotPixelOffset])
	assert.Equal(t, mgl32.Vec4{0, -1, 0, 2}, k.Vectors[gpu.SlotDirectionalLight])
	assert.Empty(t, k.Buffers)
}

func TestBinder_AllBuffers(t *testing.T) {
	dev := &gputest.Device{}
	agg := gpu.NewMeshAggregator(dev)
	reg := core.NewRegistry()
	reg.Register(core.NewSceneObject("cube", core.CubeMesh(2)))
	_, err := agg.RebuildIfDirty(reg)
	require.NoError(t, err)

	spheres := gpu.NewBufferHandle(dev, "SpheresBuf")
	require.NoError(t, gpu.Store(spheres, []core.Sphere{{Radius: 1}}))

	b := gpu.Binder{Spheres: spheres, MeshObjects: agg.Objects, Vertices: agg.Vertices, Indices: agg.Indices}
	k := gputest.NewKernel()
	assert.Equal(t, 4, b.Bind(k, gpu.FrameParams{}))

	require.NoError(t, k.Dispatch(1, 1))
	assert.Len(t, k.Last().Buffers, 4)
	assert.Empty(t, k.Buffers, "buffer slots are consumed by dispatch")
}
