package gpu

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrAllocation is wrapped by every Device error caused by the driver
// refusing a buffer or texture.
var ErrAllocation = errors.New("gpu: allocation failed")

// Buffer is a device storage buffer. Sizes are in bytes.
type Buffer interface {
	Size() uint64
	Write(data []byte)
	Release()
}

// Texture is a 2D image living on the device.
type Texture interface {
	Width() uint32
	Height() uint32
	Release()
}

// Device allocates GPU resources. Render targets are float textures the
// compute stage can write to and the compositor can sample and blend into.
type Device interface {
	CreateBuffer(label string, size uint64) (Buffer, error)
	CreateTarget(label string, width, height uint32) (Texture, error)
	CreateTexture(label string, width, height uint32, rgba []byte) (Texture, error)
}

// Slot names an input or output of the tracing kernel.
type Slot string

const (
	SlotSeed              Slot = "seed"
	SlotCameraToWorld     Slot = "camera_to_world"
	SlotInverseProjection Slot = "camera_inverse_projection"
	SlotSkybox            Slot = "skybox"
	SlotPixelOffset       Slot = "pixel_offset"
	SlotDirectionalLight  Slot = "directional_light"
	SlotSpheres           Slot = "spheres"
	SlotMeshObjects       Slot = "mesh_objects"
	SlotVertices          Slot = "vertices"
	SlotIndices           Slot = "indices"
	SlotResult            Slot = "result"
)

// Kernel is the compute stage that traces one sample per pixel. Buffer slots
// only hold for the next Dispatch; a slot not set before it is treated as
// absent.
type Kernel interface {
	SetFloat(slot Slot, v float32)
	SetVector(slot Slot, v mgl32.Vec4)
	SetMatrix(slot Slot, m mgl32.Mat4)
	SetTexture(slot Slot, t Texture)
	SetBuffer(slot Slot, b Buffer)
	Dispatch(groupsX, groupsY uint32) error
}

// Blender folds a fresh sample into the converged image and shows it.
type Blender interface {
	// Blend computes dst = src*weight + dst*(1-weight).
	Blend(src, dst Texture, weight float32) error
	Present(src Texture) error
}

// WorkgroupSize is the edge of the kernel's square thread group.
const WorkgroupSize = 8

// GroupCount is the number of thread groups needed to cover every pixel.
func GroupCount(width, height uint32) (uint32, uint32) {
	return (width + WorkgroupSize - 1) / WorkgroupSize, (height + WorkgroupSize - 1) / WorkgroupSize
}
