package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a TRS transform. Dirty is raised by every setter and stays
// raised until the owner consumes it, so mutating the public fields directly
// must be followed by MarkDirty.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	Dirty    bool
}

func NewTransform() *Transform {
	return &Transform{
		Position: mgl32.Vec3{0, 0, 0},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
		Dirty:    true,
	}
}

func (t *Transform) SetPosition(p mgl32.Vec3) {
	t.Position = p
	t.Dirty = true
}

func (t *Transform) SetRotation(q mgl32.Quat) {
	t.Rotation = q.Normalize()
	t.Dirty = true
}

func (t *Transform) SetScale(s mgl32.Vec3) {
	t.Scale = s
	t.Dirty = true
}

func (t *Transform) MarkDirty() {
	t.Dirty = true
}

// TakeDirty reports whether the transform changed since the last call and
// clears the flag.
func (t *Transform) TakeDirty() bool {
	d := t.Dirty
	t.Dirty = false
	return d
}

func (t *Transform) ObjectToWorld() mgl32.Mat4 {
	// M = T * R * S
	translate := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rotate := t.Rotation.Mat4()
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())

	return translate.Mul4(rotate).Mul4(scale)
}

func (t *Transform) WorldToObject() mgl32.Mat4 {
	// inv(M) = inv(S) * inv(R) * inv(T)
	invScale := mgl32.Scale3D(1.0/t.Scale.X(), 1.0/t.Scale.Y(), 1.0/t.Scale.Z())
	invRotate := t.Rotation.Conjugate().Mat4()
	invTranslate := mgl32.Translate3D(-t.Position.X(), -t.Position.Y(), -t.Position.Z())

	return invScale.Mul4(invRotate).Mul4(invTranslate)
}

// Forward is the -Z axis rotated into world space.
func (t *Transform) Forward() mgl32.Vec3 {
	return t.Rotation.Rotate(mgl32.Vec3{0, 0, -1}).Normalize()
}

// yawPitch builds a Y-up orientation: yaw around +Y, then pitch around the
// local +X axis. Angles are in radians.
func yawPitch(yaw, pitch float32) mgl32.Quat {
	qYaw := mgl32.QuatRotate(yaw, mgl32.Vec3{0, 1, 0})
	qPitch := mgl32.QuatRotate(pitch, mgl32.Vec3{1, 0, 0})
	return qYaw.Mul(qPitch).Normalize()
}
