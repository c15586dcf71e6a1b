package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_StartsDirty(t *testing.T) {
	r := NewRegistry()
	objs, dirty := r.TakeDirty()
	assert.True(t, dirty)
	assert.Empty(t, objs)

	_, dirty = r.TakeDirty()
	assert.False(t, dirty)
}

func TestRegistry_RegisterUnregister(t *testing.T) {
	r := NewRegistry()
	r.TakeDirty()

	a := NewSceneObject("a", QuadMesh(1))
	b := NewSceneObject("b", QuadMesh(1))

	assert.True(t, r.Register(a))
	assert.True(t, r.Register(b))
	assert.False(t, r.Register(a), "double register is ignored")

	objs, dirty := r.TakeDirty()
	require.True(t, dirty)
	assert.Equal(t, []*SceneObject{a, b}, objs)

	assert.True(t, r.Unregister(a))
	objs, dirty = r.TakeDirty()
	require.True(t, dirty)
	assert.Equal(t, []*SceneObject{b}, objs)

	assert.False(t, r.Unregister(a), "double unregister is a no-op")
	assert.False(t, r.Dirty())
	assert.False(t, r.Unregister(nil))
	assert.False(t, r.Register(nil))
}

func TestRegistry_SnapshotIsolation(t *testing.T) {
	r := NewRegistry()
	a := NewSceneObject("a", QuadMesh(1))
	r.Register(a)

	objs, _ := r.TakeDirty()
	r.Register(NewSceneObject("b", QuadMesh(1)))

	assert.Len(t, objs, 1)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_Clear(t *testing.T) {
	r := NewRegistry()
	r.Register(NewSceneObject("a", QuadMesh(1)))
	r.TakeDirty()

	r.Clear()
	assert.Equal(t, 0, r.Len())
	assert.True(t, r.Dirty())
}

func TestRegistry_ConcurrentRegistration(t *testing.T) {
	r := NewRegistry()
	objs := make([]*SceneObject, 64)
	for i := range objs {
		objs[i] = NewSceneObject("obj", QuadMesh(1))
	}

	var wg sync.WaitGroup
	for _, o := range objs {
		wg.Add(1)
		go func(o *SceneObject) {
			defer wg.Done()
			r.Register(o)
			r.Register(o)
		}(o)
	}
	wg.Wait()

	assert.Equal(t, len(objs), r.Len())

	for i, o := range objs {
		if i%2 == 0 {
			wg.Add(1)
			go func(o *SceneObject) {
				defer wg.Done()
				r.Unregister(o)
				r.Unregister(o)
			}(o)
		}
	}
	wg.Wait()

	assert.Equal(t, len(objs)/2, r.Len())
}
