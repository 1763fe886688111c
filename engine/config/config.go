// Package config loads engine settings from YAML.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/axehen/hengine/engine/linalg"
	"github.com/axehen/hengine/engine/render3d"
	"gopkg.in/yaml.v3"
)

// DefaultFilename is the conventional name of a settings file.
const DefaultFilename = "hengine.yaml"

// Config holds every setting of the demo host.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Renderer RendererConfig `yaml:"renderer"`
	Camera   CameraConfig   `yaml:"camera"`
	UI       UIConfig       `yaml:"ui"`
	Log      LogConfig      `yaml:"log"`
	Assets   AssetsConfig   `yaml:"assets"`
}

// WindowConfig sizes and names the window.
type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// RendererConfig maps onto render3d.Options plus the tick rate.
type RendererConfig struct {
	ClearColor         []float32 `yaml:"clearColor,omitempty"`
	Blend              *bool     `yaml:"blend,omitempty"`
	ClipDistanceFactor float64   `yaml:"clipDistanceFactor,omitempty"`
	NearFactor         float64   `yaml:"nearFactor,omitempty"`
	FarFactor          float64   `yaml:"farFactor,omitempty"`
	TickRate           int       `yaml:"tickRate,omitempty"`
}

// CameraConfig is the initial camera.
type CameraConfig struct {
	LookFrom []float64 `yaml:"lookFrom,omitempty"`
	LookAt   []float64 `yaml:"lookAt,omitempty"`
	Up       []float64 `yaml:"up,omitempty"`
	Zoom     float64   `yaml:"zoom,omitempty"`
}

// UIConfig scales the overlay.
type UIConfig struct {
	Scale float64 `yaml:"scale,omitempty"`
}

// LogConfig names the slog level: debug, info, warn or error.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
}

// AssetsConfig locates shader sources.
type AssetsConfig struct {
	// Root is a directory overriding the embedded assets.
	Root string `yaml:"root,omitempty"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	var c Config
	c.normalize()
	return c
}

func (c *Config) normalize() {
	if c.Window.Width <= 0 {
		c.Window.Width = 1280
	}
	if c.Window.Height <= 0 {
		c.Window.Height = 720
	}
	if c.Window.Title == "" {
		c.Window.Title = "hengine"
	}

	r := &c.Renderer
	if len(r.ClearColor) != 4 {
		r.ClearColor = []float32{0.53, 0.71, 0.85, 1}
	}
	if r.Blend == nil {
		on := true
		r.Blend = &on
	}
	d := render3d.DefaultOptions()
	if r.ClipDistanceFactor <= 0 {
		r.ClipDistanceFactor = d.ClipDistanceFactor
	}
	if r.NearFactor <= 0 {
		r.NearFactor = d.NearFactor
	}
	if r.FarFactor <= r.NearFactor {
		r.FarFactor = d.FarFactor
	}
	if r.TickRate <= 0 {
		r.TickRate = 60
	}

	cam := &c.Camera
	if len(cam.LookFrom) < 3 {
		cam.LookFrom = []float64{0, 0, 10}
	}
	if len(cam.LookAt) < 3 {
		cam.LookAt = []float64{0, 0, 0}
	}
	if len(cam.Up) < 3 {
		cam.Up = []float64{0, 1, 0}
	}
	if cam.Zoom <= 0 {
		cam.Zoom = 0.1
	}

	if c.UI.Scale <= 0 {
		c.UI.Scale = 1
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Parse decodes YAML and fills unset fields with defaults.
func Parse(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	c.normalize()
	if _, err := c.LogLevel(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads and parses the YAML file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Write stores c as YAML at path.
func Write(path string, c Config) error {
	c.normalize()
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(&c); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// LogLevel parses Log.Level (debug, info, warn, error).
func (c Config) LogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(c.Log.Level))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.Log.Level, err)
	}
	return l, nil
}

// PipelineOptions converts the renderer section.
func (c Config) PipelineOptions() render3d.Options {
	r := c.Renderer
	o := render3d.Options{
		Blend:              r.Blend == nil || *r.Blend,
		ClipDistanceFactor: r.ClipDistanceFactor,
		NearFactor:         r.NearFactor,
		FarFactor:          r.FarFactor,
	}
	copy(o.ClearColor[:], r.ClearColor)
	return o
}

// ApplyCamera copies the camera section onto cam.
func (c Config) ApplyCamera(cam *render3d.Camera) error {
	if err := cam.SetLookFrom(linalg.V(c.Camera.LookFrom...)); err != nil {
		return err
	}
	if err := cam.SetLookAt(linalg.V(c.Camera.LookAt...)); err != nil {
		return err
	}
	if err := cam.SetUpVector(linalg.V(c.Camera.Up...)); err != nil {
		return err
	}
	return cam.SetZoom(c.Camera.Zoom)
}
