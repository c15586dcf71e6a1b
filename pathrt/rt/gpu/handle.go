package gpu

import (
	"fmt"

	"github.com/gekko3d/raymaster/pathrt/rt/core"
)

// BufferHandle owns at most one device buffer holding count records of a
// fixed stride. A handle with count 0 holds nothing and is reported absent.
type BufferHandle struct {
	device Device
	label  string

	buf    Buffer
	count  int
	stride int
}

func NewBufferHandle(device Device, label string) *BufferHandle {
	return &BufferHandle{device: device, label: label}
}

// Ensure sizes the handle for count records of stride bytes. An existing
// allocation is kept only if both count and stride match; otherwise it is
// released before anything new is created. It reports whether a new buffer
// was allocated.
func (h *BufferHandle) Ensure(count, stride int) (bool, error) {
	if count < 0 || stride <= 0 {
		panic(fmt.Sprintf("gpu: %s: invalid shape %d x %d", h.label, count, stride))
	}

	if h.buf != nil && (h.count != count || h.stride != stride) {
		h.Release()
	}
	if count == 0 {
		return false, nil
	}
	if h.buf != nil {
		return false, nil
	}

	buf, err := h.device.CreateBuffer(h.label, uint64(count)*uint64(stride))
	if err != nil {
		return false, fmt.Errorf("%s (%d x %d bytes): %w", h.label, count, stride, err)
	}
	h.buf = buf
	h.count = count
	h.stride = stride
	return true, nil
}

// Upload replaces the buffer contents. The data must cover the allocation
// exactly.
func (h *BufferHandle) Upload(data []byte) {
	if h.buf == nil {
		panic(fmt.Sprintf("gpu: %s: upload to absent buffer", h.label))
	}
	if want := h.count * h.stride; len(data) != want {
		panic(fmt.Sprintf("gpu: %s: upload of %d bytes, buffer holds %d", h.label, len(data), want))
	}
	h.buf.Write(data)
}

// Release frees the buffer. Releasing an absent handle does nothing.
func (h *BufferHandle) Release() {
	if h.buf == nil {
		return
	}
	h.buf.Release()
	h.buf = nil
	h.count = 0
	h.stride = 0
}

func (h *BufferHandle) Present() bool { return h.buf != nil }
func (h *BufferHandle) Count() int    { return h.count }
func (h *BufferHandle) Stride() int   { return h.stride }
func (h *BufferHandle) Label() string { return h.label }

// Buffer returns the underlying buffer and whether there is one.
func (h *BufferHandle) Buffer() (Buffer, bool) {
	if h == nil || h.buf == nil {
		return nil, false
	}
	return h.buf, true
}

// Store sizes h for records and uploads them. An empty slice leaves the
// handle absent.
func Store[T core.Record](h *BufferHandle, records []T) error {
	var zero T
	if _, err := h.Ensure(len(records), zero.Stride()); err != nil {
		return err
	}
	if len(records) > 0 {
		h.Upload(core.Pack(records))
	}
	return nil
}
