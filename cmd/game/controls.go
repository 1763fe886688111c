package main

import (
	"log/slog"
	"math"

	"github.com/axehen/hengine/engine/core"
	"github.com/axehen/hengine/engine/input"
	"github.com/axehen/hengine/engine/linalg"
	"github.com/axehen/hengine/engine/overlay"
	"github.com/axehen/hengine/engine/shader"
	"github.com/hajimehoshi/ebiten/v2"
)

// controls maps the thumbstick, the brake button and the arrow keys onto
// the truck.
type controls struct {
	truck *Truck
	stick *overlay.TouchStick
	brake *overlay.Button
	keys  bool
}

func newControls(t *Truck, uiScale float64) (*controls, *overlay.Layer, error) {
	c := &controls{truck: t, stick: overlay.NewTouchStick()}
	c.stick.DeadZone = 0.1
	c.stick.OnStick = c.steer
	c.stick.OnPinch = func(delta float64) {
		core.Logger().Debug("pinch ignored", slog.Float64("delta", delta))
	}

	q, err := overlay.NewQuad(linalg.V(60, 60), linalg.V(40, 40), overlay.BottomRight, shader.Descriptor{
		Asset:  buttonShader,
		Colors: []shader.UniformColor{{Name: "Kd", R: 0.85, G: 0.15, B: 0.15, A: 0.85}},
	})
	if err != nil {
		return nil, nil, err
	}
	c.brake = overlay.NewButton(q, overlay.CircleCollider{Radius: 60}, c.onBrake)

	layer := overlay.NewLayer(uiScale)
	layer.AddButton(c.brake)
	layer.OnTouchBackground(c.stick.Touch)
	return c, layer, nil
}

// steer turns stick deflection into a wheel angle and a speed. Pushing the
// stick up drives forward.
func (c *controls) steer(x, y float64) {
	if c.brake.Pressed() {
		c.truck.SetSpeedFraction(0)
		return
	}
	angle := linalg.RadiansToDegrees(math.Atan2(-x, 1))
	if err := c.truck.SetWheelAngle(angle); err != nil {
		core.Logger().Error("steer", slog.Any("err", err))
	}
	c.truck.SetSpeedFraction(-y)
}

func (c *controls) onBrake(a overlay.Action) {
	core.Logger().Debug("brake", slog.String("action", a.String()))
	if a == overlay.Pressed {
		c.truck.SetSpeedFraction(0)
	}
}

// keyboard steers with the arrow keys. Releasing them stops the truck.
func (c *controls) keyboard() {
	turn := input.KeyAxis(ebiten.KeyLeft, ebiten.KeyRight)
	drive := input.KeyAxis(ebiten.KeyDown, ebiten.KeyUp)
	if turn == 0 && drive == 0 {
		if c.keys {
			c.keys = false
			c.steer(0, 0)
		}
		return
	}
	c.keys = true
	c.steer(turn, -drive)
}
