// Command game drives a pallet truck around a warehouse floor.
package main

import (
	"context"
	"embed"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/axehen/hengine/engine/config"
	"github.com/axehen/hengine/engine/core"
	"github.com/axehen/hengine/engine/gpu/ebitengpu"
	"github.com/axehen/hengine/engine/host"
	"github.com/axehen/hengine/engine/input"
	"github.com/axehen/hengine/engine/linalg"
	"github.com/axehen/hengine/engine/render3d"
	"github.com/hajimehoshi/ebiten/v2"
)

//go:embed assets
var embedded embed.FS

func main() {
	configPath := flag.String("config", "", "YAML settings file (default: built-in settings)")
	writeConfig := flag.String("write-config", "", "write the effective settings to this file and exit")
	flag.Parse()

	if err := run(*configPath, *writeConfig); err != nil {
		fmt.Fprintln(os.Stderr, "game:", err)
		os.Exit(1)
	}
}

func run(configPath, writeConfig string) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}
	if writeConfig != "" {
		return config.Write(writeConfig, cfg)
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	assets, err := assetFS(cfg.Assets.Root)
	if err != nil {
		return err
	}

	dev := ebitengpu.New()
	pipeline := render3d.NewPipeline(dev, assets, cfg.PipelineOptions())
	defer pipeline.Close()
	if err := cfg.ApplyCamera(pipeline.Camera()); err != nil {
		return fmt.Errorf("camera: %w", err)
	}

	t, err := truck()
	if err != nil {
		return fmt.Errorf("truck: %w", err)
	}
	pipeline.Enqueue(t)

	ctrl, layer, err := newControls(t, cfg.UI.Scale)
	if err != nil {
		return fmt.Errorf("controls: %w", err)
	}
	pipeline.SetUI(layer)

	tick := func(dt time.Duration) {
		ctrl.keyboard()
		if err := t.Tick(dt); err != nil {
			core.Logger().Error("truck", slog.Any("err", err))
		}
		follow(pipeline.Camera(), t)
	}
	game := host.New(pipeline, dev, layer, float64(cfg.Renderer.TickRate), tick)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := buildScenery(ctx, pipeline); err != nil && !errors.Is(err, context.Canceled) {
			game.Fail(fmt.Errorf("scenery: %w", err))
		}
	}()

	return host.Run(game, cfg.Window.Title, cfg.Window.Width, cfg.Window.Height)
}

// assetFS returns root as a file system, or the embedded assets when root
// is empty.
func assetFS(root string) (fs.FS, error) {
	if root != "" {
		return os.DirFS(root), nil
	}
	return fs.Sub(embedded, "assets")
}

// follow keeps the camera over the truck with the view turned to its
// heading.
func follow(cam *render3d.Camera, t *Truck) {
	pos, rot := t.Transform()
	a := linalg.DegreesToRadians(rot[3])
	if err := cam.SetLookAt(pos); err != nil {
		core.Logger().Error("camera", slog.Any("err", err))
		return
	}
	if err := cam.SetUpVector(linalg.V(-math.Sin(a), math.Cos(a), 0)); err != nil {
		core.Logger().Error("camera", slog.Any("err", err))
	}
	if z := input.KeyAxis(ebiten.KeyMinus, ebiten.KeyEqual); z != 0 {
		if err := cam.SetZoom(math.Max(0.02, cam.Zoom()*(1-0.02*z))); err != nil {
			core.Logger().Error("camera", slog.Any("err", err))
		}
	}
}
