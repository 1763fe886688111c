// Package overlay draws screen-space UI on top of the 3D scene: anchored
// quads, pressable buttons, a layer that routes pointer events, and a virtual
// thumbstick.
package overlay

// Phase is the kind of pointer transition an Event reports.
type Phase int

const (
	PhaseDown Phase = iota
	PhaseMove
	PhaseUp
)

func (p Phase) String() string {
	switch p {
	case PhaseDown:
		return "down"
	case PhaseMove:
		return "move"
	case PhaseUp:
		return "up"
	}
	return "unknown"
}

// Pointer is one touch point in screen pixels, origin top-left.
type Pointer struct {
	ID   int
	X, Y float64
}

// Event is a pointer transition. Pointer names the pointer that changed and
// Pointers lists every pointer that is down, including a pointer going up.
type Event struct {
	Pointer  int
	Phase    Phase
	Pointers []Pointer
}

// Lookup returns the coordinates of pointer id.
func (e Event) Lookup(id int) (Pointer, bool) {
	for _, p := range e.Pointers {
		if p.ID == id {
			return p, true
		}
	}
	return Pointer{}, false
}
