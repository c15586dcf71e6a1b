package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is the view the compute stage traces from. It only carries the
// state the tracer needs; moving it around is left to whoever owns input.
type Camera struct {
	Transform *Transform
	FovY      float32 // degrees
	Near      float32
	Far       float32

	Yaw   float32
	Pitch float32

	projChanged bool
}

func NewCamera() *Camera {
	c := &Camera{
		Transform: NewTransform(),
		FovY:      60,
		Near:      0.1,
		Far:       1000,
	}
	c.Transform.SetPosition(mgl32.Vec3{0, 10, 40})
	return c
}

// SetYawPitch orients the camera. Angles are in radians; pitch is clamped
// just short of straight up/down.
func (c *Camera) SetYawPitch(yaw, pitch float32) {
	const limit = 1.55
	if pitch > limit {
		pitch = limit
	}
	if pitch < -limit {
		pitch = -limit
	}
	c.Yaw, c.Pitch = yaw, pitch
	c.Transform.SetRotation(yawPitch(yaw, pitch))
}

func (c *Camera) SetPerspective(fovY, near, far float32) {
	c.FovY, c.Near, c.Far = fovY, near, far
	c.projChanged = true
}

// TakeChanged reports whether the transform or projection changed since the
// previous call and clears both flags.
func (c *Camera) TakeChanged() bool {
	moved := c.Transform.TakeDirty()
	proj := c.projChanged
	c.projChanged = false
	return moved || proj
}

func (c *Camera) CameraToWorld() mgl32.Mat4 {
	return c.Transform.ObjectToWorld()
}

func (c *Camera) Projection(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1.0
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
}

func (c *Camera) InverseProjection(aspect float32) mgl32.Mat4 {
	return c.Projection(aspect).Inv()
}

func (c *Camera) Forward() mgl32.Vec3 {
	return c.Transform.Forward()
}
