package raymaster

import (
	"fmt"
	"image/color"

	"github.com/gekko3d/raymaster/pathrt/rt/app"
	"github.com/gekko3d/raymaster/pathrt/rt/assets"
	"github.com/gekko3d/raymaster/pathrt/rt/core"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Engine runs the window loop around an app.App.
type Engine struct {
	Config  Config
	Log     Logger
	Window  *glfw.Window
	App     *app.App
	Monitor *Monitor

	registry *core.Registry
	demo     []*core.SceneObject
	seed     int64
}

func NewEngine(cfg Config, log Logger) *Engine {
	if log == nil {
		log = NewNopLogger()
	}
	return &Engine{Config: cfg, Log: log, registry: core.NewRegistry(), seed: cfg.Scene.Seed}
}

// subLogger tags a subsystem's lines when the engine logs through a
// DefaultLogger.
func (e *Engine) subLogger(name string) Logger {
	if l, ok := e.Log.(*DefaultLogger); ok {
		return l.With(name)
	}
	return e.Log
}

// Run blocks until the window is closed. It must be called from the main
// thread.
func (e *Engine) Run() error {
	cfg := e.Config
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer window.Destroy()
	e.Window = window

	if cfg.Scene.DemoMeshes {
		e.demo = DemoObjects()
		for _, obj := range e.demo {
			e.registry.Register(obj)
		}
	}

	e.App = app.NewApp(window, app.Options{
		Registry: e.registry,
		Camera:   cfg.Camera.Build(),
		Light:    cfg.Light.Build(),
		Logger:   e.subLogger("render"),
		Seed:     cfg.Render.FrameSeed,
	})
	if err := e.App.Init(); err != nil {
		return fmt.Errorf("renderer init: %w", err)
	}
	defer e.App.Release()

	if err := e.App.SetSkybox(e.loadSkybox()); err != nil {
		return err
	}
	if err := e.App.Controller.Activate(cfg.Scene.Placement()); err != nil {
		e.Log.Warnf("spheres not uploaded yet, retrying on the next frame: %v", err)
	}

	if cfg.Monitor.Addr != "" {
		e.Monitor = NewMonitor(e.subLogger("monitor"))
		if err := e.Monitor.Start(cfg.Monitor.Addr); err != nil {
			e.Log.Warnf("monitor disabled: %v", err)
			e.Monitor = nil
		} else {
			defer e.Monitor.Close()
		}
	}

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		e.App.Resize(width, height)
	})
	window.SetKeyCallback(e.onKey)

	failures := 0
	for !window.ShouldClose() {
		glfw.PollEvents()
		e.applyControl()

		stats, err := e.App.Render()
		if err != nil {
			// Log the first failure of a streak and every 100th after it.
			if failures%100 == 0 {
				e.Log.Errorf("frame %d: %v", stats.Frame, err)
			}
			failures++
			continue
		}
		failures = 0
		e.publish(stats)
	}
	return nil
}

func (e *Engine) loadSkybox() *assets.Skybox {
	r := e.Config.Render
	if r.Skybox != "" {
		sky, err := assets.LoadSkybox(r.Skybox, r.SkyboxMaxSize)
		if err == nil {
			e.Log.Infof("skybox %s (%dx%d)", r.Skybox, sky.Width, sky.Height)
			return sky
		}
		e.Log.Warnf("skybox fallback to gradient: %v", err)
	}
	return assets.GradientSky(512, 256, color.RGBA{R: 60, G: 110, B: 190, A: 255}, color.RGBA{R: 205, G: 220, B: 235, A: 255})
}

func (e *Engine) onKey(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	switch key {
	case glfw.KeyEscape:
		w.SetShouldClose(true)
	case glfw.KeyR:
		e.reseed(e.seed + 1)
	case glfw.KeyM:
		e.toggleDemoMeshes()
	case glfw.KeySpace:
		e.App.Controller.Invalidate()
	}
}

func (e *Engine) reseed(seed int64) {
	e.seed = seed
	if err := e.App.Controller.Reseed(seed); err != nil {
		e.Log.Errorf("reseed: %v", err)
	}
}

func (e *Engine) toggleDemoMeshes() {
	if len(e.demo) == 0 {
		e.demo = DemoObjects()
	}
	if e.registry.Len() > 0 {
		for _, obj := range e.demo {
			e.registry.Unregister(obj)
		}
		return
	}
	for _, obj := range e.demo {
		e.registry.Register(obj)
	}
}

func (e *Engine) applyControl() {
	if e.Monitor == nil {
		return
	}
	c := e.Monitor.TakeControl()
	if c.Reseed != nil {
		e.reseed(*c.Reseed)
	}
	if c.Reset {
		e.App.Controller.Invalidate()
	}
}

func (e *Engine) publish(stats app.FrameStats) {
	if e.Monitor == nil || stats.Skipped {
		return
	}
	every := uint64(max(1, e.Config.Monitor.Every))
	if stats.Frame%every != 0 && !stats.Reset {
		return
	}
	ctrl := e.App.Controller
	e.Monitor.Publish(StatsMessage{
		Frame:   stats,
		FPS:     e.App.FPS,
		Spheres: len(ctrl.Placement().Spheres),
		Objects: ctrl.Registry().Len(),
		Timings: e.App.Profiler.Millis(),
	})
}
