package core

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Byte strides of the records the compute stage reads. They must match the
// WGSL struct layouts exactly.
const (
	SphereStride     = 56 // 14 x f32
	MeshObjectStride = 72 // mat4 + offset + count
	VertexStride     = 12 // 3 x f32
	IndexStride      = 4  // u32
)

// Record is a fixed-stride element of a GPU buffer.
type Record interface {
	Stride() int
	AppendTo(buf []byte) []byte
}

// Pack serializes records back to back. A record whose encoding does not
// match its declared stride is a layout bug and panics.
func Pack[T Record](records []T) []byte {
	if len(records) == 0 {
		return nil
	}
	stride := records[0].Stride()
	buf := make([]byte, 0, len(records)*stride)
	for i, r := range records {
		before := len(buf)
		buf = r.AppendTo(buf)
		if n := len(buf) - before; n != stride {
			panic(fmt.Sprintf("core.Pack: record %d (%T) encoded %d bytes, stride is %d", i, r, n, stride))
		}
	}
	return buf
}

func appendFloat32(buf []byte, f float32) []byte {
	return binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
}

func appendUint32(buf []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(buf, v)
}

func appendVec3(buf []byte, v mgl32.Vec3) []byte {
	buf = appendFloat32(buf, v[0])
	buf = appendFloat32(buf, v[1])
	return appendFloat32(buf, v[2])
}

// appendMat4 writes the matrix column-major, which is both mgl32's memory
// order and what WGSL expects.
func appendMat4(buf []byte, m mgl32.Mat4) []byte {
	for _, v := range m {
		buf = appendFloat32(buf, v)
	}
	return buf
}
