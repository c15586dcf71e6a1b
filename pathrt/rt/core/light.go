package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// DirectionalLight is the single sun light of the scene. The shader receives
// it packed as (direction.xyz, intensity).
type DirectionalLight struct {
	Transform *Transform
	Intensity float32

	intensityChanged bool
}

func NewDirectionalLight(yaw, pitch, intensity float32) *DirectionalLight {
	l := &DirectionalLight{
		Transform: NewTransform(),
		Intensity: intensity,
	}
	l.Transform.SetRotation(yawPitch(yaw, pitch))
	return l
}

func (l *DirectionalLight) SetYawPitch(yaw, pitch float32) {
	l.Transform.SetRotation(yawPitch(yaw, pitch))
}

func (l *DirectionalLight) SetIntensity(intensity float32) {
	if intensity == l.Intensity {
		return
	}
	l.Intensity = intensity
	l.intensityChanged = true
}

// Direction is the normalized direction the light travels in.
func (l *DirectionalLight) Direction() mgl32.Vec3 {
	return l.Transform.Forward()
}

func (l *DirectionalLight) Packed() mgl32.Vec4 {
	d := l.Direction()
	return mgl32.Vec4{d.X(), d.Y(), d.Z(), l.Intensity}
}

// TakeChanged reports whether the light moved or changed intensity since the
// previous call and clears the flags.
func (l *DirectionalLight) TakeChanged() bool {
	moved := l.Transform.TakeDirty()
	changed := l.intensityChanged
	l.intensityChanged = false
	return moved || changed
}
