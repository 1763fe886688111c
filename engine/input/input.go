// Package input polls ebiten touches and the mouse and turns them into
// overlay pointer events.
package input

import (
	"slices"

	"github.com/axehen/hengine/engine/overlay"
	"github.com/hajimehoshi/ebiten/v2"
)

// MousePointer is the pointer ID the left mouse button reports as.
const MousePointer = -1

// Tracker remembers the pointers seen last frame.
type Tracker struct {
	prev    []overlay.Pointer
	touches []ebiten.TouchID
	// Mouse makes the left mouse button act as a touch.
	Mouse bool
}

// NewTracker returns a tracker that also reports the left mouse button.
func NewTracker() *Tracker {
	return &Tracker{Mouse: true}
}

// Down returns the pointers currently held, in the order they went down.
func (t *Tracker) Down() []overlay.Pointer {
	return slices.Clone(t.prev)
}

// Poll samples ebiten and returns this frame's events. Call once per Update.
func (t *Tracker) Poll() []overlay.Event {
	var cur []overlay.Pointer
	t.touches = ebiten.AppendTouchIDs(t.touches[:0])
	for _, id := range t.touches {
		x, y := ebiten.TouchPosition(id)
		cur = append(cur, overlay.Pointer{ID: int(id), X: float64(x), Y: float64(y)})
	}
	if t.Mouse && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		cur = append(cur, overlay.Pointer{ID: MousePointer, X: float64(x), Y: float64(y)})
	}
	return t.Diff(cur)
}

// Diff compares the held pointers with cur and returns the transitions: one
// Up per released pointer, then a single Move if any held pointer moved,
// then one Down per new pointer.
func (t *Tracker) Diff(cur []overlay.Pointer) []overlay.Event {
	var events []overlay.Event
	held := slices.Clone(t.prev)

	for _, p := range t.prev {
		if indexOf(cur, p.ID) >= 0 {
			continue
		}
		events = append(events, overlay.Event{Pointer: p.ID, Phase: overlay.PhaseUp, Pointers: slices.Clone(held)})
		held = slices.DeleteFunc(held, func(q overlay.Pointer) bool { return q.ID == p.ID })
	}

	moved := -1
	for i, p := range held {
		c := cur[indexOf(cur, p.ID)]
		if c != p {
			held[i] = c
			if moved < 0 {
				moved = p.ID
			}
		}
	}
	if moved >= 0 {
		events = append(events, overlay.Event{Pointer: moved, Phase: overlay.PhaseMove, Pointers: slices.Clone(held)})
	}

	for _, c := range cur {
		if indexOf(held, c.ID) >= 0 {
			continue
		}
		held = append(held, c)
		events = append(events, overlay.Event{Pointer: c.ID, Phase: overlay.PhaseDown, Pointers: slices.Clone(held)})
	}

	t.prev = held
	return events
}

func indexOf(ps []overlay.Pointer, id int) int {
	return slices.IndexFunc(ps, func(p overlay.Pointer) bool { return p.ID == id })
}

// KeyAxis returns -1, 0 or 1 depending on which of the two keys is held.
func KeyAxis(negative, positive ebiten.Key) float64 {
	var v float64
	if ebiten.IsKeyPressed(negative) {
		v--
	}
	if ebiten.IsKeyPressed(positive) {
		v++
	}
	return v
}
