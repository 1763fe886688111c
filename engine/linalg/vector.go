package linalg

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrDimensionMismatch is returned when operand sizes disagree.
	ErrDimensionMismatch = errors.New("linalg: dimension mismatch")
	// ErrDegenerateVector is returned when a zero-length vector would need a direction.
	ErrDegenerateVector = errors.New("linalg: degenerate vector")
	// ErrInvalidRange is returned for length bounds that are negative or inverted.
	ErrInvalidRange = errors.New("linalg: invalid range")
)

// Vector is an ordered sequence of float64 components of any length.
// The first four slots can be read as x/y/z/w or as r/g/b/a.
type Vector []float64

// V builds a vector from its components.
func V(x ...float64) Vector { return Vector(x) }

// Len returns the number of components.
func (v Vector) Len() int { return len(v) }

// X, Y, Z and W read the first four components as a position.
func (v Vector) X() float64 { return v[0] }
func (v Vector) Y() float64 { return v[1] }
func (v Vector) Z() float64 { return v[2] }
func (v Vector) W() float64 { return v[3] }

// R, G, B and A read the same components as a colour.
func (v Vector) R() float64 { return v[0] }
func (v Vector) G() float64 { return v[1] }
func (v Vector) B() float64 { return v[2] }
func (v Vector) A() float64 { return v[3] }

// SetX, SetY, SetZ and SetW write a component in place.
func (v Vector) SetX(x float64) { v[0] = x }
func (v Vector) SetY(y float64) { v[1] = y }
func (v Vector) SetZ(z float64) { v[2] = z }
func (v Vector) SetW(w float64) { v[3] = w }

// Clone returns a copy that shares no storage with v.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

func mismatch(op string, a, b int) error {
	return fmt.Errorf("%w: %s of %d and %d components", ErrDimensionMismatch, op, a, b)
}

// Add returns v+o.
func (v Vector) Add(o Vector) (Vector, error) {
	if len(v) != len(o) {
		return nil, mismatch("add", len(v), len(o))
	}
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i] + o[i]
	}
	return out, nil
}

// Sub returns v-o.
func (v Vector) Sub(o Vector) (Vector, error) {
	if len(v) != len(o) {
		return nil, mismatch("subtract", len(v), len(o))
	}
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i] - o[i]
	}
	return out, nil
}

// Neg returns -v.
func (v Vector) Neg() Vector { return v.Scale(-1) }

// Scale multiplies every component by s.
func (v Vector) Scale(s float64) Vector {
	out := make(Vector, len(v))
	for i, x := range v {
		out[i] = x * s
	}
	return out
}

// Div divides every component by s.
func (v Vector) Div(s float64) Vector {
	out := make(Vector, len(v))
	for i, x := range v {
		out[i] = x / s
	}
	return out
}

// Dot returns the dot product of v and o.
func (v Vector) Dot(o Vector) (float64, error) {
	if len(v) != len(o) {
		return 0, mismatch("dot", len(v), len(o))
	}
	var sum float64
	for i := range v {
		sum += v[i] * o[i]
	}
	return sum, nil
}

// Length returns the Euclidean norm.
func (v Vector) Length() float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Normalize returns v scaled to unit length.
func (v Vector) Normalize() (Vector, error) {
	l := v.Length()
	if l == 0 {
		return nil, fmt.Errorf("%w: normalize of %v", ErrDegenerateVector, v)
	}
	return v.Div(l), nil
}

// CoerceLengthWithin rescales v so that its length lies in [min, max].
// Vectors already in range are returned unchanged (as a copy). A zero-length
// vector has no direction and is always rejected.
func (v Vector) CoerceLengthWithin(min, max float64) (Vector, error) {
	if min < 0 || max < 0 {
		return nil, fmt.Errorf("%w: [%g, %g] includes negative lengths", ErrInvalidRange, min, max)
	}
	if max < min {
		return nil, fmt.Errorf("%w: min %g exceeds max %g", ErrInvalidRange, min, max)
	}
	l := v.Length()
	if l == 0 {
		return nil, fmt.Errorf("%w: cannot coerce %v within [%g, %g]", ErrDegenerateVector, v, min, max)
	}
	switch {
	case l < min:
		return v.Scale(min / l), nil
	case l > max:
		return v.Scale(max / l), nil
	}
	return v.Clone(), nil
}

// Deflect removes the part of v that runs along the prohibited direction.
// When v points away from (or across) prohibitor it is returned unchanged.
func (v Vector) Deflect(prohibitor Vector) (Vector, error) {
	d, err := v.Dot(prohibitor)
	if err != nil {
		return nil, err
	}
	if d <= 0 {
		return v.Clone(), nil
	}
	n, err := prohibitor.Normalize()
	if err != nil {
		return nil, err
	}
	along, _ := v.Dot(n)
	return v.Sub(n.Scale(along))
}

// Equal reports whether v and o have the same components.
func (v Vector) Equal(o Vector) bool {
	if len(v) != len(o) {
		return false
	}
	for i := range v {
		if v[i] != o[i] {
			return false
		}
	}
	return true
}

// EqualWithin reports whether v and o have the same dimension and every
// component differs by at most eps.
func (v Vector) EqualWithin(o Vector, eps float64) bool {
	if len(v) != len(o) {
		return false
	}
	for i := range v {
		if math.Abs(v[i]-o[i]) > eps {
			return false
		}
	}
	return true
}

func (v Vector) String() string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// DegreesToRadians and RadiansToDegrees convert angles.
func DegreesToRadians(deg float64) float64 { return deg * math.Pi / 180 }
func RadiansToDegrees(rad float64) float64 { return rad * 180 / math.Pi }
