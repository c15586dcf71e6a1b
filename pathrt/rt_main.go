package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/gekko3d/raymaster"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "YAML config file")
	seed := flag.Int64("seed", 0, "Sphere placement seed (0 keeps the config value)")
	spheres := flag.Int("spheres", -1, "Maximum sphere placement attempts (-1 keeps the config value)")
	skybox := flag.String("skybox", "", "Equirectangular skybox image")
	monitor := flag.String("monitor", "", "Serve live stats on this address, e.g. localhost:8090")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := raymaster.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *seed != 0 {
		cfg.Scene.Seed = *seed
	}
	if *spheres >= 0 {
		cfg.Scene.MaxSpheres = uint32(*spheres)
	}
	if *skybox != "" {
		cfg.Render.Skybox = *skybox
	}
	if *monitor != "" {
		cfg.Monitor.Addr = *monitor
	}
	if *debug {
		cfg.Log.Debug = true
	}

	logger := raymaster.NewDefaultLogger(cfg.Log.Prefix, cfg.Log.Debug)
	if err := raymaster.NewEngine(cfg, logger).Run(); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}
