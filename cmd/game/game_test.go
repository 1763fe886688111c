package main

import (
	"context"
	"io/fs"
	"math"
	"testing"
	"testing/fstest"
	"time"

	"github.com/axehen/hengine/engine/gpu/gputest"
	"github.com/axehen/hengine/engine/linalg"
	"github.com/axehen/hengine/engine/overlay"
	"github.com/axehen/hengine/engine/render3d"
)

func TestDriveStraight(t *testing.T) {
	tests := []struct {
		name    string
		heading float64
		want    linalg.Vector
	}{
		{"north", 0, linalg.V(0, 2, 0)},
		{"west", 90, linalg.V(-2, 0, 0)},
		{"south", 180, linalg.V(0, -2, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, heading := drive(linalg.V(0, 0, 0), tt.heading, 1, 0, 0.625, -0.375, 2)
			if !pos.EqualWithin(tt.want, 1e-9) {
				t.Errorf("position = %v, want %v", pos, tt.want)
			}
			if heading != tt.heading {
				t.Errorf("heading = %v", heading)
			}
		})
	}
}

func TestDriveTurning(t *testing.T) {
	const dt = 0.01
	pos, heading := drive(linalg.V(0, 0, 0.1), 0, 1, 30, 0.625, -0.375, dt)
	angular := math.Sin(math.Pi/6) * 360 / (2 * math.Pi * 0.375)
	if math.Abs(heading-angular*dt) > 1e-9 {
		t.Errorf("heading = %v, want %v", heading, angular*dt)
	}
	slide := 2 * math.Pi * 0.625 * angular / 360 * dt
	if math.Abs(pos[0]-slide) > 1e-9 || math.Abs(pos[1]-dt) > 1e-9 || pos[2] != 0.1 {
		t.Errorf("position = %v", pos)
	}

	_, left := drive(linalg.V(0, 0, 0), 0, 1, -30, 0.625, -0.375, dt)
	if left >= 0 {
		t.Errorf("negative wheel angle turned %v", left)
	}
}

func TestTruckControls(t *testing.T) {
	tr, err := truck()
	if err != nil {
		t.Fatalf("truck: %v", err)
	}
	tr.SetSpeedFraction(3)
	if tr.Speed() != tr.MaxSpeed {
		t.Errorf("speed = %v, want clamp to %v", tr.Speed(), tr.MaxSpeed)
	}
	if err := tr.SetWheelAngle(120); err != nil {
		t.Fatal(err)
	}
	if tr.WheelAngle() != 90 {
		t.Errorf("wheel angle = %v", tr.WheelAngle())
	}
	if rot := tr.Part(handlePart).Rotation(); rot[3] != -90 {
		t.Errorf("handle rotation = %v", rot)
	}

	if err := tr.SetWheelAngle(0); err != nil {
		t.Fatal(err)
	}
	tr.SetSpeedFraction(0.5)
	if err := tr.Tick(time.Second); err != nil {
		t.Fatal(err)
	}
	pos, _ := tr.Transform()
	if !pos.EqualWithin(linalg.V(0, 0.5, 0.1), 1e-9) {
		t.Errorf("position = %v", pos)
	}
	if tr.Heading() != 0 {
		t.Errorf("heading = %v", tr.Heading())
	}
}

func TestSteer(t *testing.T) {
	tr, err := truck()
	if err != nil {
		t.Fatal(err)
	}
	c, _, err := newControls(tr, 1)
	if err != nil {
		t.Fatal(err)
	}

	c.steer(0, -1)
	if tr.Speed() != tr.MaxSpeed || tr.WheelAngle() != 0 {
		t.Errorf("full forward: speed %v angle %v", tr.Speed(), tr.WheelAngle())
	}
	c.steer(1, 0)
	if math.Abs(tr.WheelAngle()+45) > 1e-9 || tr.Speed() != 0 {
		t.Errorf("full right: speed %v angle %v", tr.Speed(), tr.WheelAngle())
	}

	c.steer(0, -1)
	c.onBrake(overlay.Pressed)
	if tr.Speed() != 0 {
		t.Errorf("brake left speed %v", tr.Speed())
	}
}

func TestBrakeButtonHolds(t *testing.T) {
	tr, _ := truck()
	c, layer, err := newControls(tr, 1)
	if err != nil {
		t.Fatal(err)
	}
	// The brake centre is 40+30 pixels in from the bottom-right corner.
	press := overlay.Event{Pointer: 1, Phase: overlay.PhaseDown, Pointers: []overlay.Pointer{{ID: 1, X: 730, Y: 530}}}
	if !layer.Touch(press, 800, 600) || !c.brake.Pressed() {
		t.Fatal("brake not pressed")
	}
	c.steer(0, -1)
	if tr.Speed() != 0 {
		t.Errorf("drove with the brake held: %v", tr.Speed())
	}
}

func TestScenery(t *testing.T) {
	for _, build := range []func() error{
		func() error { _, err := floor(); return err },
		func() error { _, err := pallet(1, 2, 45); return err },
		func() error { _, err := truck(); return err },
	} {
		if err := build(); err != nil {
			t.Fatal(err)
		}
	}

	p := render3d.NewPipeline(gputest.New(), fstest.MapFS{}, render3d.DefaultOptions())
	if err := buildScenery(context.Background(), p); err != nil {
		t.Fatalf("buildScenery: %v", err)
	}
	if got := p.PendingCount(); got != 1+len(pallets) {
		t.Errorf("pending = %d, want %d", got, 1+len(pallets))
	}
}

func TestEmbeddedShaders(t *testing.T) {
	assets, err := assetFS("")
	if err != nil {
		t.Fatal(err)
	}
	for _, asset := range []string{litShader, floorShader, buttonShader} {
		for _, ext := range []string{".vert", ".frag"} {
			if _, err := fs.Stat(assets, asset+ext); err != nil {
				t.Errorf("%s%s: %v", asset, ext, err)
			}
		}
	}
}
