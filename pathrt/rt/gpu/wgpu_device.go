package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// TargetFormat is the format of the accumulation targets. Half floats keep
// enough precision for hundreds of blended samples.
const TargetFormat = wgpu.TextureFormatRGBA16Float

// WGPUDevice implements Device on a wgpu device.
type WGPUDevice struct {
	Device *wgpu.Device
	Queue  *wgpu.Queue
}

func NewWGPUDevice(device *wgpu.Device) *WGPUDevice {
	return &WGPUDevice{Device: device, Queue: device.GetQueue()}
}

func (d *WGPUDevice) CreateBuffer(label string, size uint64) (Buffer, error) {
	// Storage bindings must be 4 byte aligned.
	if size%4 != 0 {
		size += 4 - size%4
	}
	buf, err := d.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             size,
		Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: buffer %s: %v", ErrAllocation, label, err)
	}
	return &wgpuBuffer{buf: buf, queue: d.Queue, size: size}, nil
}

func (d *WGPUDevice) CreateTarget(label string, width, height uint32) (Texture, error) {
	return d.createTexture(label, width, height, TargetFormat,
		wgpu.TextureUsageStorageBinding|wgpu.TextureUsageTextureBinding|wgpu.TextureUsageRenderAttachment)
}

func (d *WGPUDevice) CreateTexture(label string, width, height uint32, rgba []byte) (Texture, error) {
	if len(rgba) != int(width*height*4) {
		panic(fmt.Sprintf("gpu: texture %s: %d bytes for %dx%d RGBA", label, len(rgba), width, height))
	}
	t, err := d.createTexture(label, width, height, wgpu.TextureFormatRGBA8Unorm,
		wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopyDst)
	if err != nil {
		return nil, err
	}
	d.Queue.WriteTexture(t.tex.AsImageCopy(), rgba, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  width * 4,
		RowsPerImage: height,
	}, &wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1})
	return t, nil
}

func (d *WGPUDevice) createTexture(label string, width, height uint32, format wgpu.TextureFormat, usage wgpu.TextureUsage) (*wgpuTexture, error) {
	tex, err := d.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: texture %s: %v", ErrAllocation, label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("%w: texture view %s: %v", ErrAllocation, label, err)
	}
	return &wgpuTexture{tex: tex, view: view, width: width, height: height}, nil
}

type wgpuBuffer struct {
	buf   *wgpu.Buffer
	queue *wgpu.Queue
	size  uint64
}

func (b *wgpuBuffer) Size() uint64 { return b.size }

func (b *wgpuBuffer) Write(data []byte) {
	if len(data) == 0 {
		return
	}
	b.queue.WriteBuffer(b.buf, 0, data)
}

func (b *wgpuBuffer) Release() {
	if b.buf != nil {
		b.buf.Release()
		b.buf = nil
	}
}

type wgpuTexture struct {
	tex    *wgpu.Texture
	view   *wgpu.TextureView
	width  uint32
	height uint32
}

func (t *wgpuTexture) Width() uint32  { return t.width }
func (t *wgpuTexture) Height() uint32 { return t.height }

func (t *wgpuTexture) Release() {
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.tex != nil {
		t.tex.Release()
		t.tex = nil
	}
}

func textureView(t Texture) (*wgpu.TextureView, error) {
	wt, ok := t.(*wgpuTexture)
	if !ok || wt.view == nil {
		return nil, fmt.Errorf("gpu: %T is not a live wgpu texture", t)
	}
	return wt.view, nil
}

func bufferOf(b Buffer) *wgpu.Buffer {
	if wb, ok := b.(*wgpuBuffer); ok {
		return wb.buf
	}
	return nil
}
