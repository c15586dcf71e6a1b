// Package gputest provides in-memory stand-ins for the gpu interfaces. They
// record every allocation, binding and dispatch so tests can assert on them.
package gputest

import (
	"fmt"

	"github.com/gekko3d/raymaster/pathrt/rt/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

type Buffer struct {
	Label    string
	Data     []byte
	Writes   int
	Released bool

	size uint64
}

func (b *Buffer) Size() uint64 { return b.size }

func (b *Buffer) Write(data []byte) {
	if b.Released {
		panic(fmt.Sprintf("gputest: write to released buffer %s", b.Label))
	}
	b.Data = append(b.Data[:0], data...)
	b.Writes++
}

func (b *Buffer) Release() {
	if b.Released {
		panic(fmt.Sprintf("gputest: double release of buffer %s", b.Label))
	}
	b.Released = true
}

type Texture struct {
	Label    string
	Pixels   []byte
	Released bool

	width, height uint32
}

func NewTexture(label string, width, height uint32) *Texture {
	return &Texture{Label: label, width: width, height: height}
}

func (t *Texture) Width() uint32  { return t.width }
func (t *Texture) Height() uint32 { return t.height }

func (t *Texture) Release() {
	if t.Released {
		panic(fmt.Sprintf("gputest: double release of texture %s", t.Label))
	}
	t.Released = true
}

// Device hands out fake resources. Setting FailBuffers or FailTargets makes
// that many following allocations of the kind fail with gpu.ErrAllocation.
type Device struct {
	Buffers  []*Buffer
	Targets  []*Texture
	Textures []*Texture

	FailBuffers int
	FailTargets int
}

func (d *Device) CreateBuffer(label string, size uint64) (gpu.Buffer, error) {
	if d.FailBuffers > 0 {
		d.FailBuffers--
		return nil, fmt.Errorf("%w: %s", gpu.ErrAllocation, label)
	}
	b := &Buffer{Label: label, size: size}
	d.Buffers = append(d.Buffers, b)
	return b, nil
}

func (d *Device) CreateTarget(label string, width, height uint32) (gpu.Texture, error) {
	if d.FailTargets > 0 {
		d.FailTargets--
		return nil, fmt.Errorf("%w: %s", gpu.ErrAllocation, label)
	}
	t := NewTexture(label, width, height)
	d.Targets = append(d.Targets, t)
	return t, nil
}

func (d *Device) CreateTexture(label string, width, height uint32, rgba []byte) (gpu.Texture, error) {
	t := NewTexture(label, width, height)
	t.Pixels = append([]byte(nil), rgba...)
	d.Textures = append(d.Textures, t)
	return t, nil
}

// LiveBuffers counts buffers not yet released.
func (d *Device) LiveBuffers() int {
	n := 0
	for _, b := range d.Buffers {
		if !b.Released {
			n++
		}
	}
	return n
}

// LiveTargets counts render targets not yet released.
func (d *Device) LiveTargets() int {
	n := 0
	for _, t := range d.Targets {
		if !t.Released {
			n++
		}
	}
	return n
}

// Dispatch is a snapshot of the kernel inputs at dispatch time.
type Dispatch struct {
	GroupsX, GroupsY uint32

	Floats   map[gpu.Slot]float32
	Vectors  map[gpu.Slot]mgl32.Vec4
	Matrices map[gpu.Slot]mgl32.Mat4
	Textures map[gpu.Slot]gpu.Texture
	Buffers  map[gpu.Slot]gpu.Buffer
}

// Kernel records bindings. Buffer slots are cleared after each dispatch the
// same way the wgpu kernel forgets them.
type Kernel struct {
	Floats   map[gpu.Slot]float32
	Vectors  map[gpu.Slot]mgl32.Vec4
	Matrices map[gpu.Slot]mgl32.Mat4
	Textures map[gpu.Slot]gpu.Texture
	Buffers  map[gpu.Slot]gpu.Buffer

	Dispatches []Dispatch
	Fail       error
}

func NewKernel() *Kernel {
	return &Kernel{
		Floats:   map[gpu.Slot]float32{},
		Vectors:  map[gpu.Slot]mgl32.Vec4{},
		Matrices: map[gpu.Slot]mgl32.Mat4{},
		Textures: map[gpu.Slot]gpu.Texture{},
		Buffers:  map[gpu.Slot]gpu.Buffer{},
	}
}

func (k *Kernel) SetFloat(slot gpu.Slot, v float32)       { k.Floats[slot] = v }
func (k *Kernel) SetVector(slot gpu.Slot, v mgl32.Vec4)   { k.Vectors[slot] = v }
func (k *Kernel) SetMatrix(slot gpu.Slot, m mgl32.Mat4)   { k.Matrices[slot] = m }
func (k *Kernel) SetTexture(slot gpu.Slot, t gpu.Texture) { k.Textures[slot] = t }
func (k *Kernel) SetBuffer(slot gpu.Slot, b gpu.Buffer)   { k.Buffers[slot] = b }

func (k *Kernel) Dispatch(groupsX, groupsY uint32) error {
	if k.Fail != nil {
		return k.Fail
	}
	k.Dispatches = append(k.Dispatches, Dispatch{
		GroupsX:  groupsX,
		GroupsY:  groupsY,
		Floats:   clone(k.Floats),
		Vectors:  clone(k.Vectors),
		Matrices: clone(k.Matrices),
		Textures: clone(k.Textures),
		Buffers:  clone(k.Buffers),
	})
	clear(k.Buffers)
	return nil
}

// Last returns the most recent dispatch.
func (k *Kernel) Last() Dispatch {
	if len(k.Dispatches) == 0 {
		panic("gputest: no dispatch recorded")
	}
	return k.Dispatches[len(k.Dispatches)-1]
}

func clone[V any](m map[gpu.Slot]V) map[gpu.Slot]V {
	out := make(map[gpu.Slot]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type Blend struct {
	Src, Dst gpu.Texture
	Weight   float32
}

type Blender struct {
	Blends   []Blend
	Presents []gpu.Texture

	FailBlend   error
	FailPresent error
}

func (b *Blender) Blend(src, dst gpu.Texture, weight float32) error {
	if b.FailBlend != nil {
		return b.FailBlend
	}
	b.Blends = append(b.Blends, Blend{Src: src, Dst: dst, Weight: weight})
	return nil
}

func (b *Blender) Present(src gpu.Texture) error {
	if b.FailPresent != nil {
		return b.FailPresent
	}
	b.Presents = append(b.Presents, src)
	return nil
}

// Weights lists the blend weights in call order.
func (b *Blender) Weights() []float32 {
	out := make([]float32, len(b.Blends))
	for i, bl := range b.Blends {
		out[i] = bl.Weight
	}
	return out
}
