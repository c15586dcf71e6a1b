package core

import (
	"sync"

	"github.com/google/uuid"
)

// Registry is the set of mesh objects taking part in the scene, kept in
// registration order. Registration may come from any goroutine; the render
// loop consumes changes through TakeDirty.
type Registry struct {
	mu      sync.Mutex
	objects []*SceneObject
	dirty   bool
}

// NewRegistry returns an empty registry that is already dirty, so the first
// frame always builds the mesh buffers.
func NewRegistry() *Registry {
	return &Registry{dirty: true}
}

// Register appends obj. Nil objects and objects already registered are
// ignored and leave the registry clean.
func (r *Registry) Register(obj *SceneObject) bool {
	if obj == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(obj) >= 0 {
		return false
	}
	r.objects = append(r.objects, obj)
	r.dirty = true
	return true
}

// Unregister removes obj. Removing an object that is not registered is a
// no-op.
func (r *Registry) Unregister(obj *SceneObject) bool {
	if obj == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(obj)
	if i < 0 {
		return false
	}
	r.objects = append(r.objects[:i], r.objects[i+1:]...)
	r.dirty = true
	return true
}

// indexOf matches by pointer, or by ID when the object carries one.
func (r *Registry) indexOf(obj *SceneObject) int {
	for i, o := range r.objects {
		if o == obj || (obj.ID != uuid.Nil && o.ID == obj.ID) {
			return i
		}
	}
	return -1
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.objects)
}

// Objects returns a copy of the registered objects in registration order.
func (r *Registry) Objects() []*SceneObject {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*SceneObject(nil), r.objects...)
}

func (r *Registry) Dirty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dirty
}

func (r *Registry) MarkDirty() {
	r.mu.Lock()
	r.dirty = true
	r.mu.Unlock()
}

// TakeDirty returns a snapshot of the objects and clears the dirty flag when
// the registry changed since the last call. A clean registry returns nil,
// false.
func (r *Registry) TakeDirty() ([]*SceneObject, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.dirty {
		return nil, false
	}
	r.dirty = false
	return append([]*SceneObject(nil), r.objects...), true
}

// Clear drops every object. Used at scene teardown.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects = nil
	r.dirty = true
}
