package gpu

import (
	"fmt"

	"github.com/gekko3d/raymaster/pathrt/rt/core"
)

// MeshAggregator keeps the flattened mesh buffers in sync with a registry.
type MeshAggregator struct {
	Objects  *BufferHandle
	Vertices *BufferHandle
	Indices  *BufferHandle

	batch    core.MeshBatch
	rebuilds int
}

func NewMeshAggregator(device Device) *MeshAggregator {
	return &MeshAggregator{
		Objects:  NewBufferHandle(device, "MeshObjectsBuf"),
		Vertices: NewBufferHandle(device, "VerticesBuf"),
		Indices:  NewBufferHandle(device, "IndicesBuf"),
	}
}

// RebuildIfDirty flattens the registered objects and uploads them when the
// registry changed since the last rebuild. It reports whether a rebuild
// happened. On failure the registry is marked dirty again so the next call
// retries.
func (a *MeshAggregator) RebuildIfDirty(reg *core.Registry) (bool, error) {
	objects, dirty := reg.TakeDirty()
	if !dirty {
		return false, nil
	}

	a.batch.Rebuild(objects)

	if err := Store(a.Objects, a.batch.Objects); err != nil {
		reg.MarkDirty()
		return false, fmt.Errorf("rebuild mesh objects: %w", err)
	}
	if err := Store(a.Vertices, a.batch.Vertices); err != nil {
		reg.MarkDirty()
		return false, fmt.Errorf("rebuild vertices: %w", err)
	}
	if err := Store(a.Indices, a.batch.Indices); err != nil {
		reg.MarkDirty()
		return false, fmt.Errorf("rebuild indices: %w", err)
	}

	a.rebuilds++
	return true, nil
}

// Batch is the host copy of the last rebuild.
func (a *MeshAggregator) Batch() *core.MeshBatch { return &a.batch }

func (a *MeshAggregator) Rebuilds() int { return a.rebuilds }

func (a *MeshAggregator) Release() {
	a.Objects.Release()
	a.Vertices.Release()
	a.Indices.Release()
}
