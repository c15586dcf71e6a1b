package app

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/gekko3d/raymaster/pathrt/rt/assets"
	"github.com/gekko3d/raymaster/pathrt/rt/gpu"
	"github.com/gekko3d/raymaster/pathrt/rt/shaders"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// App owns the window surface and the wgpu objects behind a Controller.
type App struct {
	Window   *glfw.Window
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Surface  *wgpu.Surface
	Config   *wgpu.SurfaceConfiguration

	GPU        *gpu.WGPUDevice
	Kernel     *gpu.WGPUKernel
	Compositor *gpu.SurfaceCompositor
	Controller *Controller
	Profiler   *Profiler

	opts       Options
	skyboxTex  gpu.Texture
	surfaceW   uint32
	surfaceH   uint32
	LastStats  FrameStats
	FrameCount int
	FPS        float64
	FPSTime    float64

	LastRenderTime float64
}

// NewApp prepares an App for window. opts.Skybox is ignored; use SetSkybox
// after Init.
func NewApp(window *glfw.Window, opts Options) *App {
	if opts.Profiler == nil {
		opts.Profiler = NewProfiler()
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}
	return &App{
		Window:   window,
		Profiler: opts.Profiler,
		opts:     opts,
	}
}

func (a *App) Init() error {
	a.Instance = wgpu.CreateInstance(nil)
	a.Surface = a.Instance.CreateSurface(GetSurfaceDescriptor(a.Window))

	adapter, err := a.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: a.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("request adapter: %w", err)
	}
	a.Adapter = adapter

	a.Device, err = adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("request device: %w", err)
	}

	width, height := a.Window.GetFramebufferSize()
	caps := a.Surface.GetCapabilities(adapter)
	format := caps.Formats[0]

	a.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	if width > 0 && height > 0 {
		a.Surface.Configure(adapter, a.Device, a.Config)
		a.surfaceW, a.surfaceH = uint32(width), uint32(height)
	}

	a.GPU = gpu.NewWGPUDevice(a.Device)
	a.Kernel, err = gpu.NewWGPUKernel(a.GPU, shaders.RaytraceWGSL)
	if err != nil {
		return err
	}
	a.Compositor, err = gpu.NewSurfaceCompositor(a.GPU, a.Surface, format, shaders.AccumulateWGSL, shaders.PresentWGSL)
	if err != nil {
		return err
	}

	opts := a.opts
	opts.Skybox = nil
	a.Controller = NewController(a.GPU, a.Kernel, a.Compositor, opts)
	a.opts.Logger.Infof("wgpu ready: surface %dx%d, format %v", width, height, format)
	return nil
}

// SetSkybox uploads sky and makes it the environment of the next frames.
func (a *App) SetSkybox(sky *assets.Skybox) error {
	tex, err := sky.Upload(a.GPU, "SkyboxTex")
	if err != nil {
		return err
	}
	if a.skyboxTex != nil {
		a.skyboxTex.Release()
	}
	a.skyboxTex = tex
	a.Controller.SetSkybox(tex)
	return nil
}

func (a *App) Resize(w, h int) {
	if w > 0 && h > 0 {
		a.Config.Width = uint32(w)
		a.Config.Height = uint32(h)
		a.Surface.Configure(a.Adapter, a.Device, a.Config)
	} else {
		w, h = 0, 0
	}
	a.surfaceW, a.surfaceH = uint32(w), uint32(h)
}

// Render runs one controller frame at the current surface size.
func (a *App) Render() (FrameStats, error) {
	stats, err := a.Controller.Frame(a.surfaceW, a.surfaceH)
	if err != nil {
		return stats, err
	}
	a.LastStats = stats

	now := glfw.GetTime()
	if a.LastRenderTime > 0 {
		a.FrameCount++
		a.FPSTime += now - a.LastRenderTime
		if a.FPSTime >= 1.0 {
			a.FPS = float64(a.FrameCount) / a.FPSTime
			a.FrameCount = 0
			a.FPSTime = 0
		}
	}
	a.LastRenderTime = now
	return stats, nil
}

func (a *App) Release() {
	if a.Controller != nil {
		a.Controller.Deactivate()
	}
	if a.skyboxTex != nil {
		a.skyboxTex.Release()
		a.skyboxTex = nil
	}
	if a.Compositor != nil {
		a.Compositor.Release()
	}
	if a.Kernel != nil {
		a.Kernel.Release()
	}
	if a.Device != nil {
		a.Device.Release()
	}
	if a.Adapter != nil {
		a.Adapter.Release()
	}
	if a.Surface != nil {
		a.Surface.Release()
	}
	if a.Instance != nil {
		a.Instance.Release()
	}
}

func GetSurfaceDescriptor(w *glfw.Window) *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(w)
}
