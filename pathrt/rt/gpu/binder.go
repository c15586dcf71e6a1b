package gpu

import (
	"github.com/go-gl/mathgl/mgl32"
)

// FrameParams are the per-frame scalar inputs of the tracing kernel.
type FrameParams struct {
	Seed              float32
	CameraToWorld     mgl32.Mat4
	InverseProjection mgl32.Mat4
	Skybox            Texture
	PixelOffset       mgl32.Vec2
	Light             mgl32.Vec4 // xyz direction, w intensity
}

// Binder maps the scene buffers onto kernel slots. Any handle may be nil or
// absent; it is then left unbound.
type Binder struct {
	Spheres     *BufferHandle
	MeshObjects *BufferHandle
	Vertices    *BufferHandle
	Indices     *BufferHandle
}

// Bind sets every frame parameter and every present buffer on k. It returns
// the number of buffers bound.
func (b Binder) Bind(k Kernel, p FrameParams) int {
	k.SetFloat(SlotSeed, p.Seed)
	k.SetMatrix(SlotCameraToWorld, p.CameraToWorld)
	k.SetMatrix(SlotInverseProjection, p.InverseProjection)
	if p.Skybox != nil {
		k.SetTexture(SlotSkybox, p.Skybox)
	}
	k.SetVector(SlotPixelOffset, mgl32.Vec4{p.PixelOffset.X(), p.PixelOffset.Y(), 0, 0})
	k.SetVector(SlotDirectionalLight, p.Light)

	bound := 0
	for _, e := range [...]struct {
		slot   Slot
		handle *BufferHandle
	}{
		{SlotSpheres, b.Spheres},
		{SlotMeshObjects, b.MeshObjects},
		{SlotVertices, b.Vertices},
		{SlotIndices, b.Indices},
	} {
		buf, ok := e.handle.Buffer()
		if !ok {
			continue
		}
		k.SetBuffer(e.slot, buf)
		bound++
	}
	return bound
}
