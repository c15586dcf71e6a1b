package core

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Mesh is shared triangle data. Indices are 0-based and local to the mesh.
type Mesh struct {
	Vertices []mgl32.Vec3
	Indices  []uint32
}

func (m *Mesh) Empty() bool {
	return m == nil || len(m.Vertices) == 0 || len(m.Indices) == 0
}

// SceneObject is a mesh instance. Several objects may point at the same Mesh.
type SceneObject struct {
	ID        uuid.UUID
	Name      string
	Mesh      *Mesh
	Transform *Transform
}

func NewSceneObject(name string, mesh *Mesh) *SceneObject {
	return &SceneObject{
		ID:        uuid.New(),
		Name:      name,
		Mesh:      mesh,
		Transform: NewTransform(),
	}
}

// Vertex is one position in the flattened vertex buffer.
type Vertex mgl32.Vec3

func (Vertex) Stride() int { return VertexStride }

func (v Vertex) AppendTo(buf []byte) []byte {
	return appendVec3(buf, mgl32.Vec3(v))
}

// Index is one entry of the flattened index buffer.
type Index uint32

func (Index) Stride() int { return IndexStride }

func (i Index) AppendTo(buf []byte) []byte {
	return appendUint32(buf, uint32(i))
}

// MeshObjectRecord tells the compute stage where an object's triangles live
// in the flattened index buffer and how to place them in the world.
type MeshObjectRecord struct {
	LocalToWorld mgl32.Mat4
	IndexOffset  uint32
	IndexCount   uint32
}

func (MeshObjectRecord) Stride() int { return MeshObjectStride }

func (r MeshObjectRecord) AppendTo(buf []byte) []byte {
	buf = appendMat4(buf, r.LocalToWorld)
	buf = appendUint32(buf, r.IndexOffset)
	return appendUint32(buf, r.IndexCount)
}
