package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/raymaster/pathrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// Params uniform layout, see struct Params in raytrace.wgsl.
const (
	paramsSize              = 160
	offsetCameraToWorld     = 0
	offsetInverseProjection = 64
	offsetLight             = 128
	offsetPixelOffset       = 144
	offsetSeed              = 152
	offsetInputs            = 156
)

// storage bindings of group 1, in binding order
var storageSlots = [...]Slot{SlotSpheres, SlotMeshObjects, SlotVertices, SlotIndices}

// WGPUKernel runs raytrace.wgsl. Absent storage buffers are replaced by a
// small zeroed buffer and flagged in Params.inputs so the shader skips them.
type WGPUKernel struct {
	device   *WGPUDevice
	pipeline *wgpu.ComputePipeline
	sampler  *wgpu.Sampler
	params   *wgpu.Buffer
	dummy    *wgpu.Buffer

	uniform [paramsSize]byte
	skybox  Texture
	result  Texture
	buffers [len(storageSlots)]Buffer

	group0    *wgpu.BindGroup
	group0Key [2]*wgpu.TextureView
	group1    *wgpu.BindGroup
	group1Key [len(storageSlots)]*wgpu.Buffer
}

func NewWGPUKernel(device *WGPUDevice, wgsl string) (*WGPUKernel, error) {
	module, err := device.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Raytrace CS",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: wgsl},
	})
	if err != nil {
		return nil, fmt.Errorf("raytrace shader: %w", err)
	}
	defer module.Release()

	k := &WGPUKernel{device: device}
	k.pipeline, err = device.Device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: "Raytrace Pipeline",
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: "main",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("raytrace pipeline: %w", err)
	}

	k.sampler, err = device.Device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		k.Release()
		return nil, fmt.Errorf("skybox sampler: %w", err)
	}

	k.params, err = device.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "ParamsBuf",
		Size:  paramsSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		k.Release()
		return nil, fmt.Errorf("%w: params buffer: %v", ErrAllocation, err)
	}

	// Large enough for one record of every storage struct.
	k.dummy, err = device.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "EmptyStorageBuf",
		Size:  core.MeshObjectStride,
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		k.Release()
		return nil, fmt.Errorf("%w: empty storage buffer: %v", ErrAllocation, err)
	}
	return k, nil
}

func (k *WGPUKernel) SetFloat(slot Slot, v float32) {
	switch slot {
	case SlotSeed:
		putFloat(k.uniform[offsetSeed:], v)
	default:
		panic(fmt.Sprintf("gpu: %q is not a float slot", slot))
	}
}

func (k *WGPUKernel) SetVector(slot Slot, v mgl32.Vec4) {
	switch slot {
	case SlotDirectionalLight:
		for i := 0; i < 4; i++ {
			putFloat(k.uniform[offsetLight+i*4:], v[i])
		}
	case SlotPixelOffset:
		putFloat(k.uniform[offsetPixelOffset:], v[0])
		putFloat(k.uniform[offsetPixelOffset+4:], v[1])
	default:
		panic(fmt.Sprintf("gpu: %q is not a vector slot", slot))
	}
}

func (k *WGPUKernel) SetMatrix(slot Slot, m mgl32.Mat4) {
	var off int
	switch slot {
	case SlotCameraToWorld:
		off = offsetCameraToWorld
	case SlotInverseProjection:
		off = offsetInverseProjection
	default:
		panic(fmt.Sprintf("gpu: %q is not a matrix slot", slot))
	}
	for i, f := range m {
		putFloat(k.uniform[off+i*4:], f)
	}
}

func (k *WGPUKernel) SetTexture(slot Slot, t Texture) {
	switch slot {
	case SlotSkybox:
		k.skybox = t
	case SlotResult:
		k.result = t
	default:
		panic(fmt.Sprintf("gpu: %q is not a texture slot", slot))
	}
}

func (k *WGPUKernel) SetBuffer(slot Slot, b Buffer) {
	for i, s := range storageSlots {
		if s == slot {
			k.buffers[i] = b
			return
		}
	}
	panic(fmt.Sprintf("gpu: %q is not a buffer slot", slot))
}

func (k *WGPUKernel) Dispatch(groupsX, groupsY uint32) error {
	defer clear(k.buffers[:])

	if k.result == nil || k.skybox == nil {
		return errors.New("gpu: dispatch without result or skybox texture")
	}

	var inputs uint32
	for i, b := range k.buffers {
		if b != nil {
			inputs |= 1 << i
		}
	}
	binary.LittleEndian.PutUint32(k.uniform[offsetInputs:], inputs)
	k.device.Queue.WriteBuffer(k.params, 0, k.uniform[:])

	if err := k.updateGroup0(); err != nil {
		return err
	}
	if err := k.updateGroup1(); err != nil {
		return err
	}

	encoder, err := k.device.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("raytrace encoder: %w", err)
	}
	defer encoder.Release()

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(k.pipeline)
	pass.SetBindGroup(0, k.group0, nil)
	pass.SetBindGroup(1, k.group1, nil)
	pass.DispatchWorkgroups(groupsX, groupsY, 1)
	if err := pass.End(); err != nil {
		return fmt.Errorf("raytrace pass: %w", err)
	}
	pass.Release()

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("raytrace finish: %w", err)
	}
	defer cmd.Release()
	k.device.Queue.Submit(cmd)
	return nil
}

func (k *WGPUKernel) updateGroup0() error {
	sky, err := textureView(k.skybox)
	if err != nil {
		return err
	}
	out, err := textureView(k.result)
	if err != nil {
		return err
	}
	key := [2]*wgpu.TextureView{sky, out}
	if k.group0 != nil && k.group0Key == key {
		return nil
	}

	group, err := k.device.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: k.pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: k.params, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: sky},
			{Binding: 2, Sampler: k.sampler},
			{Binding: 3, TextureView: out},
		},
	})
	if err != nil {
		return fmt.Errorf("raytrace bind group 0: %w", err)
	}
	if k.group0 != nil {
		k.group0.Release()
	}
	k.group0, k.group0Key = group, key
	return nil
}

func (k *WGPUKernel) updateGroup1() error {
	var key [len(storageSlots)]*wgpu.Buffer
	for i, b := range k.buffers {
		key[i] = k.dummy
		if wb := bufferOf(b); wb != nil {
			key[i] = wb
		}
	}
	if k.group1 != nil && k.group1Key == key {
		return nil
	}

	entries := make([]wgpu.BindGroupEntry, len(key))
	for i, b := range key {
		entries[i] = wgpu.BindGroupEntry{Binding: uint32(i), Buffer: b, Size: wgpu.WholeSize}
	}
	group, err := k.device.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout:  k.pipeline.GetBindGroupLayout(1),
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("raytrace bind group 1: %w", err)
	}
	if k.group1 != nil {
		k.group1.Release()
	}
	k.group1, k.group1Key = group, key
	return nil
}

func (k *WGPUKernel) Release() {
	if k.group0 != nil {
		k.group0.Release()
		k.group0 = nil
	}
	if k.group1 != nil {
		k.group1.Release()
		k.group1 = nil
	}
	if k.dummy != nil {
		k.dummy.Release()
		k.dummy = nil
	}
	if k.params != nil {
		k.params.Release()
		k.params = nil
	}
	if k.sampler != nil {
		k.sampler.Release()
		k.sampler = nil
	}
	if k.pipeline != nil {
		k.pipeline.Release()
		k.pipeline = nil
	}
}

func putFloat(buf []byte, f float32) {
	binary.LittleEndian.PutUint32(buf, math.Float32bits(f))
}
