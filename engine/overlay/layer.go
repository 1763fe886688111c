package overlay

import (
	"fmt"

	"github.com/axehen/hengine/engine/geometry"
	"github.com/axehen/hengine/engine/gpu"
)

// Layer is the UI drawn over the scene. Elements are drawn first, then
// buttons; touches go to buttons in the order they were added and then to
// the background callback. A Layer is used from the render goroutine only.
type Layer struct {
	scale      float64
	elements   []*Quad
	buttons    []*Button
	background func(e Event, screenWidth, screenHeight int)
}

// NewLayer returns an empty layer. scale multiplies every element's
// dimensions and margins; values <= 0 mean 1.
func NewLayer(scale float64) *Layer {
	l := &Layer{}
	l.SetScale(scale)
	return l
}

// Scale returns the UI scale factor.
func (l *Layer) Scale() float64 { return l.scale }

// SetScale changes the UI scale factor; values <= 0 mean 1.
func (l *Layer) SetScale(scale float64) {
	if scale <= 0 {
		scale = 1
	}
	l.scale = scale
}

// AddElement and AddButton append to the draw and touch order.
func (l *Layer) AddElement(q *Quad)  { l.elements = append(l.elements, q) }
func (l *Layer) AddButton(b *Button) { l.buttons = append(l.buttons, b) }
func (l *Layer) Buttons() []*Button  { return l.buttons }
func (l *Layer) Elements() []*Quad   { return l.elements }

// OnTouchBackground sets the callback for touches no button consumes.
func (l *Layer) OnTouchBackground(fn func(e Event, screenWidth, screenHeight int)) {
	l.background = fn
}

// Load loads every element and button.
func (l *Layer) Load(dev gpu.Device, r geometry.Resolver) error {
	for i, q := range l.elements {
		if err := q.Load(dev, r); err != nil {
			return fmt.Errorf("overlay element %d: %w", i, err)
		}
	}
	for i, b := range l.buttons {
		if err := b.Load(dev, r); err != nil {
			return fmt.Errorf("overlay button %d: %w", i, err)
		}
	}
	return nil
}

// Release frees every element and button.
func (l *Layer) Release(dev gpu.Device) {
	for _, q := range l.elements {
		q.Release(dev)
	}
	for _, b := range l.buttons {
		b.Release(dev)
	}
}

// Draw renders the layer on a viewport of width by height pixels.
func (l *Layer) Draw(dev gpu.Device, width, height int) {
	w, h := float64(width)/l.scale, float64(height)/l.scale
	for _, q := range l.elements {
		q.Draw(dev, w, h)
	}
	for _, b := range l.buttons {
		b.Draw(dev, w, h)
	}
}

// Touch routes e and reports whether the layer consumed it.
func (l *Layer) Touch(e Event, screenWidth, screenHeight int) bool {
	for _, b := range l.buttons {
		if b.Touch(e, screenWidth, screenHeight, l.scale) {
			return true
		}
	}
	if l.background != nil {
		l.background(e, screenWidth, screenHeight)
		return true
	}
	return false
}
