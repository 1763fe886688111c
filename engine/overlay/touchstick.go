package overlay

import (
	"fmt"
	"math"

	"github.com/axehen/hengine/engine/linalg"
)

// TouchStick turns drags on a screen region into a virtual thumbstick with
// output components in [-1, 1].
type TouchStick struct {
	// Radius is the drag distance for full deflection, as a fraction of the
	// smaller screen dimension.
	Radius float64
	// DeadZone is the fraction of full deflection that still reads as zero.
	// Output rises linearly from zero at DeadZone to one at full deflection.
	DeadZone float64
	// SpringBack returns the stick to centre when the last pointer lifts.
	SpringBack bool
	// FollowOnLimit drags the stick origin along when the pointer moves past
	// full deflection.
	FollowOnLimit bool
	// XFunc and YFunc shape each axis, e.g. quadratic response.
	XFunc, YFunc func(float64) float64
	// OnStick receives the shaped stick position. Y grows downward.
	OnStick func(x, y float64)
	// OnPinch receives the change in distance between two pointers as a
	// fraction of the screen height.
	OnPinch func(delta float64)

	stick    linalg.Vector
	prev     map[int]Pointer // pointers held after the last event
	prevDist float64
}

// NewTouchStick returns a stick with a quarter-screen radius that springs
// back.
func NewTouchStick() *TouchStick {
	return &TouchStick{Radius: 0.25, SpringBack: true}
}

func (s *TouchStick) shape(x, y float64) (float64, float64) {
	if s.XFunc != nil {
		x = s.XFunc(x)
	}
	if s.YFunc != nil {
		y = s.YFunc(y)
	}
	return x, y
}

// Position returns the stick position before shaping.
func (s *TouchStick) Position() (x, y float64) {
	if s.stick == nil {
		return 0, 0
	}
	return s.stick[0], s.stick[1]
}

// Touch feeds a pointer event for a screen of the given size. Drags are
// measured per pointer, so lifting one finger of two does not move the stick.
func (s *TouchStick) Touch(e Event, screenWidth, screenHeight int) {
	if s.stick == nil {
		s.stick = linalg.V(0, 0)
	}
	held := e.Pointers
	if e.Phase == PhaseUp {
		held = make([]Pointer, 0, len(e.Pointers))
		for _, p := range e.Pointers {
			if p.ID != e.Pointer {
				held = append(held, p)
			}
		}
	}
	var dist float64
	if len(held) == 2 {
		dist = math.Hypot(held[0].X-held[1].X, held[0].Y-held[1].Y)
	}

	switch e.Phase {
	case PhaseUp:
		if len(held) == 0 && s.SpringBack {
			s.stick = linalg.V(0, 0)
			if s.OnStick != nil {
				s.OnStick(s.shape(0, 0))
			}
		}
	case PhaseMove:
		switch len(held) {
		case 1:
			if last, ok := s.prev[held[0].ID]; ok {
				s.drag(held[0].X-last.X, held[0].Y-last.Y, screenWidth, screenHeight)
			}
		case 2:
			if s.OnPinch != nil && screenHeight > 0 && len(s.prev) == 2 {
				s.OnPinch((dist - s.prevDist) / float64(screenHeight))
			}
		}
	}

	if s.prev == nil {
		s.prev = make(map[int]Pointer, len(held))
	}
	clear(s.prev)
	for _, p := range held {
		s.prev[p.ID] = p
	}
	s.prevDist = dist
}

func (s *TouchStick) drag(dx, dy float64, screenWidth, screenHeight int) {
	span := s.Radius * float64(min(screenWidth, screenHeight))
	if span <= 0 {
		return
	}
	s.stick = linalg.V(s.stick[0]+dx/span, s.stick[1]+dy/span)
	if s.FollowOnLimit && s.stick.Length() > 1 {
		s.stick, _ = s.stick.Normalize()
	}
	if s.OnStick == nil {
		return
	}
	out := s.stick.Clone()
	if out.Length() > 0 {
		out, _ = out.CoerceLengthWithin(0, 1)
	}
	out = applyDeadZone(out, s.DeadZone)
	s.OnStick(s.shape(out[0], out[1]))
}

// applyDeadZone zeroes components within dz of centre and rescales the rest
// so they run from zero at dz to one at one.
func applyDeadZone(v linalg.Vector, dz float64) linalg.Vector {
	if dz <= 0 || dz >= 1 {
		return v
	}
	out := make(linalg.Vector, len(v))
	for i, c := range v {
		if math.Abs(c) <= dz {
			continue
		}
		out[i] = math.Copysign((math.Abs(c)-dz)/(1-dz), c)
	}
	return out
}

func (s *TouchStick) String() string {
	return fmt.Sprintf("[radius=%g, deadZone=%g, springBack=%t, followOnLimit=%t]", s.Radius, s.DeadZone, s.SpringBack, s.FollowOnLimit)
}
