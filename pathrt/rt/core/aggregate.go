package core

// MeshBatch holds the flattened geometry of every aggregated scene object.
// The slices are reused across rebuilds.
type MeshBatch struct {
	Vertices []Vertex
	Indices  []Index
	Objects  []MeshObjectRecord

	// Skipped counts objects left out because they had no mesh data.
	Skipped int
}

// Rebuild flattens objects in order. Each object's indices are shifted by
// the number of vertices already in the batch so they stay valid against the
// single concatenated vertex buffer. Transforms are sampled now; later moves
// are not picked up until the next rebuild.
func (b *MeshBatch) Rebuild(objects []*SceneObject) {
	b.Vertices = b.Vertices[:0]
	b.Indices = b.Indices[:0]
	b.Objects = b.Objects[:0]
	b.Skipped = 0

	for _, obj := range objects {
		if obj == nil || obj.Mesh.Empty() {
			b.Skipped++
			continue
		}
		mesh := obj.Mesh

		firstVertex := uint32(len(b.Vertices))
		for _, v := range mesh.Vertices {
			b.Vertices = append(b.Vertices, Vertex(v))
		}

		firstIndex := uint32(len(b.Indices))
		for _, idx := range mesh.Indices {
			b.Indices = append(b.Indices, Index(idx+firstVertex))
		}

		transform := obj.Transform
		if transform == nil {
			transform = NewTransform()
		}
		b.Objects = append(b.Objects, MeshObjectRecord{
			LocalToWorld: transform.ObjectToWorld(),
			IndexOffset:  firstIndex,
			IndexCount:   uint32(len(mesh.Indices)),
		})
	}
}
