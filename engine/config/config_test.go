package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/axehen/hengine/engine/render3d"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.Window.Width != 1280 || c.Window.Height != 720 {
		t.Errorf("window = %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Renderer.ClipDistanceFactor != 10 {
		t.Errorf("clip distance factor = %v, want 10", c.Renderer.ClipDistanceFactor)
	}
	if l, err := c.LogLevel(); err != nil || l != slog.LevelInfo {
		t.Errorf("LogLevel = %v, %v", l, err)
	}
	o := c.PipelineOptions()
	if !o.Blend || o.ClearColor[3] != 1 {
		t.Errorf("options = %+v", o)
	}
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte(`
window:
  width: 640
  title: pallets
renderer:
  clipDistanceFactor: 20
  blend: false
camera:
  lookFrom: [0, -10, 10]
  zoom: 2
log:
  level: debug
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Window.Width != 640 || c.Window.Height != 720 || c.Window.Title != "pallets" {
		t.Errorf("window = %+v", c.Window)
	}
	o := c.PipelineOptions()
	if o.Blend || o.ClipDistanceFactor != 20 || o.NearFactor != 0.1 {
		t.Errorf("options = %+v", o)
	}
	if l, _ := c.LogLevel(); l != slog.LevelDebug {
		t.Errorf("level = %v", l)
	}

	cam := render3d.NewCamera()
	if err := c.ApplyCamera(cam); err != nil {
		t.Fatalf("ApplyCamera: %v", err)
	}
	if cam.Zoom() != 2 || cam.LookFrom()[1] != -10 {
		t.Errorf("camera zoom=%v lookFrom=%v", cam.Zoom(), cam.LookFrom())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "window: [1, 2"},
		{"bad level", "log:\n  level: loud\n"},
		{"wrong type", "window:\n  width: wide\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWriteLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFilename)
	want := Default()
	want.UI.Scale = 1.5
	if err := Write(path, want); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.UI.Scale != 1.5 || got.Window != want.Window {
		t.Errorf("round trip = %+v", got)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file err = %v", err)
	}
}
