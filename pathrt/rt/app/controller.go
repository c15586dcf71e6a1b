package app

import (
	"fmt"
	"math/rand/v2"

	"github.com/gekko3d/raymaster/pathrt/rt/core"
	"github.com/gekko3d/raymaster/pathrt/rt/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Logger is the subset of raymaster.Logger the renderer writes to.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// Profiler stage names.
const (
	StageRebuild  = "Rebuild"
	StageBind     = "Bind"
	StageDispatch = "Dispatch"
	StageBlend    = "Blend"
)

type Options struct {
	Registry *core.Registry
	Camera   *core.Camera
	Light    *core.DirectionalLight
	Logger   Logger
	Profiler *Profiler

	// Skybox is sampled for rays leaving the scene. The controller does not
	// own it.
	Skybox gpu.Texture

	// Seed drives the per-frame shader seed and pixel jitter.
	Seed uint64
}

// FrameStats describes one call to Controller.Frame.
type FrameStats struct {
	Frame   uint64  `json:"frame"`
	Sample  uint32  `json:"sample"` // samples accumulated after this frame
	Weight  float32 `json:"weight"`
	Reset   bool    `json:"reset"`
	Rebuilt bool    `json:"rebuilt"`
	Skipped bool    `json:"skipped"`

	Width   uint32 `json:"width"`
	Height  uint32 `json:"height"`
	GroupsX uint32 `json:"groups_x"`
	GroupsY uint32 `json:"groups_y"`
}

// Controller drives progressive accumulation: every frame traces one noisy
// sample into the working target and folds it into the converged target
// with weight 1/(n+1). Anything that changes what the camera sees restarts
// the average.
//
// A Controller is not safe for concurrent use. Only the registry may be
// touched from other goroutines between frames.
type Controller struct {
	device  gpu.Device
	kernel  gpu.Kernel
	blender gpu.Blender

	registry *core.Registry
	camera   *core.Camera
	light    *core.DirectionalLight
	skybox   gpu.Texture
	log      Logger
	profiler *Profiler

	placementCfg core.PlacementConfig
	placement    core.Placement
	spheres      *gpu.BufferHandle
	spheresStale bool
	meshes       *gpu.MeshAggregator
	binder       gpu.Binder

	converged gpu.Texture
	working   gpu.Texture
	width     uint32
	height    uint32

	sample uint32
	dirty  bool
	frame  uint64
	rng    *rand.Rand
}

func NewController(device gpu.Device, kernel gpu.Kernel, blender gpu.Blender, opts Options) *Controller {
	c := &Controller{
		device:   device,
		kernel:   kernel,
		blender:  blender,
		registry: opts.Registry,
		camera:   opts.Camera,
		light:    opts.Light,
		skybox:   opts.Skybox,
		log:      opts.Logger,
		profiler: opts.Profiler,
		spheres:  gpu.NewBufferHandle(device, "SpheresBuf"),
		meshes:   gpu.NewMeshAggregator(device),
		dirty:    true,
		rng:      rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
	}
	if c.registry == nil {
		c.registry = core.NewRegistry()
	}
	if c.camera == nil {
		c.camera = core.NewCamera()
	}
	if c.light == nil {
		c.light = core.NewDirectionalLight(0.5, -0.9, 1)
	}
	if c.log == nil {
		c.log = nopLogger{}
	}
	c.binder = gpu.Binder{
		Spheres:     c.spheres,
		MeshObjects: c.meshes.Objects,
		Vertices:    c.meshes.Vertices,
		Indices:     c.meshes.Indices,
	}
	return c
}

// Activate places the spheres for cfg and uploads them. An invalid cfg is
// logged and leaves the scene without spheres. An allocation failure is
// returned and the upload is retried by the next Frame.
func (c *Controller) Activate(cfg core.PlacementConfig) error {
	c.placementCfg = cfg
	return c.placeSpheres()
}

// Reseed replaces the sphere set with one generated from seed.
func (c *Controller) Reseed(seed int64) error {
	c.placementCfg.Seed = seed
	return c.placeSpheres()
}

func (c *Controller) placeSpheres() error {
	placement, err := core.PlaceSpheres(c.placementCfg)
	if err != nil {
		c.log.Warnf("sphere placement skipped: %v", err)
	}
	c.placement = placement
	c.dirty = true
	c.log.Infof("placed %d spheres (seed %d, %d attempts, %d rejected)",
		len(placement.Spheres), c.placementCfg.Seed, placement.Attempts, placement.Rejected)
	return c.uploadSpheres()
}

func (c *Controller) uploadSpheres() error {
	if err := gpu.Store(c.spheres, c.placement.Spheres); err != nil {
		c.spheresStale = true
		c.log.Errorf("sphere upload failed: %v", err)
		return fmt.Errorf("upload spheres: %w", err)
	}
	if c.spheresStale {
		c.spheresStale = false
		c.dirty = true
	}
	return nil
}

// Frame renders one sample at the given surface size. A zero-sized surface
// is skipped without error. On error nothing is dispatched and the samples
// accumulated so far are kept unless the targets had to be reallocated.
func (c *Controller) Frame(width, height uint32) (FrameStats, error) {
	stats := FrameStats{Width: width, Height: height}
	if width == 0 || height == 0 {
		stats.Skipped = true
		return stats, nil
	}
	c.frame++
	stats.Frame = c.frame

	if c.converged == nil || width != c.width || height != c.height {
		if err := c.resizeTargets(width, height); err != nil {
			return stats, err
		}
		c.dirty = true
	}

	if c.spheresStale {
		if err := c.uploadSpheres(); err != nil {
			return stats, err
		}
	}

	c.profiler.BeginScope(StageRebuild)
	rebuilt, err := c.meshes.RebuildIfDirty(c.registry)
	c.profiler.EndScope(StageRebuild)
	if err != nil {
		c.log.Errorf("mesh rebuild failed: %v", err)
		return stats, err
	}
	if rebuilt {
		batch := c.meshes.Batch()
		c.log.Debugf("mesh rebuild: %d objects, %d vertices, %d indices, %d skipped",
			len(batch.Objects), len(batch.Vertices), len(batch.Indices), batch.Skipped)
		c.profiler.SetCount("Mesh Objects", len(batch.Objects))
		c.profiler.SetCount("Triangles", len(batch.Indices)/3)
		stats.Rebuilt = true
		c.dirty = true
	}

	if c.camera.TakeChanged() {
		c.dirty = true
	}
	if c.light.TakeChanged() {
		c.dirty = true
	}
	if c.dirty {
		c.sample = 0
		c.dirty = false
		stats.Reset = true
	}

	c.profiler.BeginScope(StageBind)
	aspect := float32(width) / float32(height)
	c.binder.Bind(c.kernel, gpu.FrameParams{
		Seed:              c.rng.Float32(),
		CameraToWorld:     c.camera.CameraToWorld(),
		InverseProjection: c.camera.InverseProjection(aspect),
		Skybox:            c.skybox,
		PixelOffset:       mgl32.Vec2{c.rng.Float32(), c.rng.Float32()},
		Light:             c.light.Packed(),
	})
	c.kernel.SetTexture(gpu.SlotResult, c.working)
	c.profiler.EndScope(StageBind)

	c.profiler.BeginScope(StageDispatch)
	stats.GroupsX, stats.GroupsY = gpu.GroupCount(width, height)
	err = c.kernel.Dispatch(stats.GroupsX, stats.GroupsY)
	c.profiler.EndScope(StageDispatch)
	if err != nil {
		return stats, fmt.Errorf("dispatch: %w", err)
	}

	c.profiler.BeginScope(StageBlend)
	defer c.profiler.EndScope(StageBlend)
	stats.Weight = BlendWeight(c.sample)
	if err := c.blender.Blend(c.working, c.converged, stats.Weight); err != nil {
		return stats, fmt.Errorf("blend: %w", err)
	}
	c.sample++
	stats.Sample = c.sample
	c.profiler.SetCount("Samples", int(c.sample))

	if err := c.blender.Present(c.converged); err != nil {
		return stats, fmt.Errorf("present: %w", err)
	}
	return stats, nil
}

// BlendWeight is the weight of the sample blended after n accumulated ones.
func BlendWeight(n uint32) float32 {
	return 1 / float32(n+1)
}

func (c *Controller) resizeTargets(width, height uint32) error {
	c.releaseTargets()

	converged, err := c.device.CreateTarget("ConvergedTex", width, height)
	if err != nil {
		c.log.Errorf("render target %dx%d: %v", width, height, err)
		return fmt.Errorf("converged target: %w", err)
	}
	working, err := c.device.CreateTarget("WorkingTex", width, height)
	if err != nil {
		converged.Release()
		c.log.Errorf("render target %dx%d: %v", width, height, err)
		return fmt.Errorf("working target: %w", err)
	}

	c.converged, c.working = converged, working
	c.width, c.height = width, height
	c.log.Debugf("render targets resized to %dx%d", width, height)
	return nil
}

func (c *Controller) releaseTargets() {
	if c.converged != nil {
		c.converged.Release()
		c.converged = nil
	}
	if c.working != nil {
		c.working.Release()
		c.working = nil
	}
	c.width, c.height = 0, 0
}

// Invalidate discards the accumulated samples on the next frame.
func (c *Controller) Invalidate() {
	c.dirty = true
}

// SetSkybox swaps the environment texture. The caller keeps ownership of
// both the old and the new texture.
func (c *Controller) SetSkybox(t gpu.Texture) {
	c.skybox = t
	c.dirty = true
}

// Deactivate releases every GPU resource the controller holds and empties
// the registry. The controller can be activated again afterwards.
func (c *Controller) Deactivate() {
	c.spheres.Release()
	c.meshes.Release()
	c.releaseTargets()
	c.registry.Clear()
	c.placement = core.Placement{}
	c.spheresStale = false
	c.sample = 0
	c.dirty = true
}

func (c *Controller) Sample() uint32                { return c.sample }
func (c *Controller) Registry() *core.Registry      { return c.registry }
func (c *Controller) Camera() *core.Camera          { return c.camera }
func (c *Controller) Light() *core.DirectionalLight { return c.light }
func (c *Controller) Placement() core.Placement     { return c.placement }
func (c *Controller) Rebuilds() int                 { return c.meshes.Rebuilds() }
func (c *Controller) Spheres() *gpu.BufferHandle    { return c.spheres }

// Converged returns the converged target, if one is allocated.
func (c *Controller) Converged() (gpu.Texture, bool) {
	return c.converged, c.converged != nil
}
