package overlay

import (
	"sync/atomic"

	"github.com/axehen/hengine/engine/gpu"
	"github.com/axehen/hengine/engine/linalg"
)

// Action is passed to a button callback.
type Action int

const (
	Pressed Action = iota
	Released
)

func (a Action) String() string {
	if a == Pressed {
		return "pressed"
	}
	return "released"
}

// Collider decides whether a touch at point hits an element centred at
// origin. Both are in screen pixels, origin bottom-left.
type Collider interface {
	Within(origin linalg.Vector, scale float64, point linalg.Vector) bool
}

// CircleCollider accepts touches within Radius unscaled pixels.
type CircleCollider struct {
	Radius float64
}

// Within reports whether point lies within the scaled radius of origin.
func (c CircleCollider) Within(origin linalg.Vector, scale float64, point linalg.Vector) bool {
	d, err := origin.Sub(point)
	if err != nil {
		return false
	}
	return d.Length() <= c.Radius*scale
}

// Button is a pressable quad. It stays pressed while at least one pointer
// that started on it is down, so the callback sees exactly one Pressed and
// one Released per activation however many fingers are involved.
type Button struct {
	*Quad
	collider Collider
	action   func(Action)

	pointers map[int]struct{}
	pressed  atomic.Bool
}

// NewButton makes q pressable. action receives Pressed and Released.
func NewButton(q *Quad, collider Collider, action func(Action)) *Button {
	return &Button{Quad: q, collider: collider, action: action, pointers: make(map[int]struct{})}
}

// Pressed reports whether any pointer holds the button.
func (b *Button) Pressed() bool { return b.pressed.Load() }

// Touch offers e to the button and reports whether it consumed it. Events
// from a pointer registered on the button are always consumed.
func (b *Button) Touch(e Event, screenWidth, screenHeight int, scale float64) bool {
	if _, ok := b.pointers[e.Pointer]; ok {
		if e.Phase == PhaseUp {
			delete(b.pointers, e.Pointer)
			if len(b.pointers) == 0 {
				b.pressed.Store(false)
				b.fire(Released)
			}
		}
		return true
	}
	if e.Phase != PhaseDown {
		return false
	}
	p, ok := e.Lookup(e.Pointer)
	if !ok {
		return false
	}
	at := linalg.V(p.X, float64(screenHeight)-p.Y)
	if !b.collider.Within(b.Origin(screenWidth, screenHeight, scale), scale, at) {
		return false
	}
	b.pointers[e.Pointer] = struct{}{}
	if len(b.pointers) == 1 {
		b.pressed.Store(true)
		b.fire(Pressed)
	}
	return true
}

func (b *Button) fire(a Action) {
	if b.action != nil {
		b.action(a)
	}
}

// Draw draws the quad with the Pressed uniform set.
func (b *Button) Draw(dev gpu.Device, width, height float64) {
	b.draw(dev, width, height, func() {
		var v int32
		if b.pressed.Load() {
			v = 1
		}
		dev.SetUniformInt(gpu.UniformPressed, v)
	})
}
