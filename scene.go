package raymaster

import (
	"github.com/gekko3d/raymaster/pathrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// DemoObjects builds the mesh objects of the default scene: two cubes
// sharing one mesh and a pyramid, floating above the sphere field.
func DemoObjects() []*core.SceneObject {
	cube := core.CubeMesh(12)

	left := core.NewSceneObject("cube-left", cube)
	left.Transform.SetPosition(mgl32.Vec3{-24, 30, -10})
	left.Transform.SetRotation(mgl32.QuatRotate(mgl32.DegToRad(35), mgl32.Vec3{0, 1, 0}))

	right := core.NewSceneObject("cube-right", cube)
	right.Transform.SetPosition(mgl32.Vec3{24, 30, -10})
	right.Transform.SetRotation(mgl32.QuatRotate(mgl32.DegToRad(-20), mgl32.Vec3{1, 1, 0}.Normalize()))

	pyramid := core.NewSceneObject("pyramid", core.PyramidMesh(16, 14))
	pyramid.Transform.SetPosition(mgl32.Vec3{0, 24, -30})

	return []*core.SceneObject{left, right, pyramid}
}
