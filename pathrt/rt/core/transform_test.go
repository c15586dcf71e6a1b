package core

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func closeEnough(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}

func TestTransformComposition(t *testing.T) {
	tr := NewTransform()
	tr.Position = mgl32.Vec3{10, 20, 30}
	tr.Scale = mgl32.Vec3{2, 2, 2}
	tr.Rotation = mgl32.QuatRotate(0.7, mgl32.Vec3{0, 1, 0})

	identity := tr.ObjectToWorld().Mul4(tr.WorldToObject())

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			want := float32(0)
			if i == j {
				want = 1
			}
			if !closeEnough(identity.At(i, j), want, 0.001) {
				t.Errorf("identity[%d,%d] = %f, want %f", i, j, identity.At(i, j), want)
			}
		}
	}
}

func TestTransformDirty(t *testing.T) {
	tr := NewTransform()
	if !tr.TakeDirty() {
		t.Fatal("new transform should start dirty")
	}
	if tr.TakeDirty() {
		t.Fatal("TakeDirty should clear the flag")
	}

	tr.SetPosition(mgl32.Vec3{1, 0, 0})
	if !tr.TakeDirty() {
		t.Error("SetPosition should mark the transform dirty")
	}
	tr.SetScale(mgl32.Vec3{2, 2, 2})
	if !tr.TakeDirty() {
		t.Error("SetScale should mark the transform dirty")
	}
	tr.SetRotation(mgl32.QuatRotate(1, mgl32.Vec3{1, 0, 0}))
	if !tr.TakeDirty() {
		t.Error("SetRotation should mark the transform dirty")
	}
}

func TestCameraChanges(t *testing.T) {
	cam := NewCamera()
	if !cam.TakeChanged() {
		t.Fatal("new camera should report a change")
	}
	if cam.TakeChanged() {
		t.Fatal("TakeChanged should clear the flag")
	}

	cam.SetYawPitch(0.5, 0.1)
	if !cam.TakeChanged() {
		t.Error("rotation should count as a change")
	}

	cam.SetPerspective(45, 0.1, 500)
	if !cam.TakeChanged() {
		t.Error("projection should count as a change")
	}
	if cam.TakeChanged() {
		t.Error("no change expected")
	}
}

func TestCameraForwardAndPitchClamp(t *testing.T) {
	cam := NewCamera()
	f := cam.Forward()
	if !closeEnough(f.Z(), -1, 1e-5) {
		t.Errorf("default forward should be -Z, got %v", f)
	}

	cam.SetYawPitch(0, 10)
	if cam.Pitch > 1.55 {
		t.Errorf("pitch not clamped: %f", cam.Pitch)
	}
}

func TestCameraInverseProjection(t *testing.T) {
	cam := NewCamera()
	id := cam.Projection(16.0 / 9.0).Mul4(cam.InverseProjection(16.0 / 9.0))
	if !id.ApproxEqualThreshold(mgl32.Ident4(), 1e-3) {
		t.Errorf("projection * inverse should be identity, got %v", id)
	}
}

func TestDirectionalLight(t *testing.T) {
	l := NewDirectionalLight(0, -math.Pi/4, 1.5)
	if !l.TakeChanged() {
		t.Fatal("new light should report a change")
	}

	p := l.Packed()
	dir := mgl32.Vec3{p.X(), p.Y(), p.Z()}
	if !closeEnough(dir.Len(), 1, 1e-5) {
		t.Errorf("direction should be normalized, len=%f", dir.Len())
	}
	if p.Y() >= 0 {
		t.Errorf("light pitched down should point downwards, got %v", dir)
	}
	if p.W() != 1.5 {
		t.Errorf("intensity should be packed in w, got %f", p.W())
	}

	l.SetIntensity(1.5)
	if l.TakeChanged() {
		t.Error("same intensity should not count as a change")
	}
	l.SetIntensity(2)
	if !l.TakeChanged() {
		t.Error("intensity change should count as a change")
	}
	l.SetYawPitch(1, -1)
	if !l.TakeChanged() {
		t.Error("rotation should count as a change")
	}
}
