package raymaster

import (
	"errors"
	"fmt"
	"os"

	"github.com/gekko3d/raymaster/pathrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Scene   SceneConfig   `yaml:"scene"`
	Camera  CameraConfig  `yaml:"camera"`
	Light   LightConfig   `yaml:"light"`
	Render  RenderConfig  `yaml:"render"`
	Monitor MonitorConfig `yaml:"monitor"`
	Log     LogConfig     `yaml:"log"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type SceneConfig struct {
	MaxSpheres      uint32  `yaml:"max_spheres"`
	RadiusMin       float32 `yaml:"radius_min"`
	RadiusMax       float32 `yaml:"radius_max"`
	PlacementRadius float32 `yaml:"placement_radius"`
	Seed            int64   `yaml:"seed"`
	DemoMeshes      bool    `yaml:"demo_meshes"`
}

// Placement converts the scene section into generator input.
func (s SceneConfig) Placement() core.PlacementConfig {
	return core.PlacementConfig{
		MaxCount:        s.MaxSpheres,
		RadiusMin:       s.RadiusMin,
		RadiusMax:       s.RadiusMax,
		PlacementRadius: s.PlacementRadius,
		Seed:            s.Seed,
	}
}

type CameraConfig struct {
	Position [3]float32 `yaml:"position"`
	Yaw      float32    `yaml:"yaw"`   // degrees
	Pitch    float32    `yaml:"pitch"` // degrees
	FovY     float32    `yaml:"fov_y"`
	Near     float32    `yaml:"near"`
	Far      float32    `yaml:"far"`
}

func (c CameraConfig) Build() *core.Camera {
	cam := core.NewCamera()
	cam.Transform.SetPosition(mgl32.Vec3(c.Position))
	cam.SetYawPitch(mgl32.DegToRad(c.Yaw), mgl32.DegToRad(c.Pitch))
	cam.SetPerspective(c.FovY, c.Near, c.Far)
	return cam
}

type LightConfig struct {
	Yaw       float32 `yaml:"yaw"`   // degrees
	Pitch     float32 `yaml:"pitch"` // degrees
	Intensity float32 `yaml:"intensity"`
}

func (l LightConfig) Build() *core.DirectionalLight {
	return core.NewDirectionalLight(mgl32.DegToRad(l.Yaw), mgl32.DegToRad(l.Pitch), l.Intensity)
}

type RenderConfig struct {
	// Skybox is an image path. Empty selects the built-in gradient.
	Skybox        string `yaml:"skybox"`
	SkyboxMaxSize int    `yaml:"skybox_max_size"`
	FrameSeed     uint64 `yaml:"frame_seed"`
}

type MonitorConfig struct {
	// Addr enables the websocket monitor when set, e.g. "localhost:8090".
	Addr string `yaml:"addr"`
	// Every publishes stats once per this many frames.
	Every int `yaml:"every"`
}

type LogConfig struct {
	Prefix string `yaml:"prefix"`
	Debug  bool   `yaml:"debug"`
}

func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{Width: 1280, Height: 720, Title: "raymaster"},
		Scene: SceneConfig{
			MaxSpheres:      100,
			RadiusMin:       3,
			RadiusMax:       8,
			PlacementRadius: 100,
			Seed:            1223832719,
			DemoMeshes:      true,
		},
		Camera: CameraConfig{
			Position: [3]float32{0, 25, 90},
			Pitch:    -12,
			FovY:     60,
			Near:     0.1,
			Far:      1000,
		},
		Light:   LightConfig{Yaw: 30, Pitch: -50, Intensity: 1},
		Render:  RenderConfig{SkyboxMaxSize: 2048, FrameSeed: 1},
		Monitor: MonitorConfig{Every: 30},
		Log:     LogConfig{Prefix: "raymaster"},
	}
}

// LoadConfig reads a YAML file over the defaults. An empty path returns the
// defaults.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate reports settings the renderer cannot start with. Sphere placement
// settings are not checked here; a bad range only leaves the scene without
// spheres.
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Camera.FovY <= 0 || c.Camera.FovY >= 180 {
		errs = append(errs, fmt.Errorf("camera fov_y %.1f must be in (0, 180)", c.Camera.FovY))
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		errs = append(errs, fmt.Errorf("camera clip range [%g, %g] is invalid", c.Camera.Near, c.Camera.Far))
	}
	if c.Light.Intensity < 0 {
		errs = append(errs, fmt.Errorf("light intensity %g must not be negative", c.Light.Intensity))
	}
	if c.Monitor.Every < 0 {
		errs = append(errs, fmt.Errorf("monitor every %d must not be negative", c.Monitor.Every))
	}
	return errors.Join(errs...)
}
