package geometry

import (
	"fmt"
	"math"
	"sync"

	"github.com/axehen/hengine/engine/gpu"
	"github.com/axehen/hengine/engine/linalg"
	"github.com/go-gl/mathgl/mgl64"
)

// Part is a named sub-part of an Articulated aggregate. The part's position is
// its offset from the aggregate origin and its rotation is local.
type Part struct {
	Name string
	*Dynamic
}

// Articulated draws several parts that share one logical transform. Each
// part's offset is turned by the aggregate heading (rotation angle about Z)
// before being added to the aggregate position.
type Articulated struct {
	mu                 sync.RWMutex
	position, rotation linalg.Vector
	parts              []Part
	byName             map[string]*Dynamic
}

// NewArticulated groups parts under one transform. Part names must be
// unique.
func NewArticulated(position, rotation linalg.Vector, parts ...Part) (*Articulated, error) {
	if err := checkTransform(position, rotation); err != nil {
		return nil, err
	}
	a := &Articulated{
		position: position.Clone(),
		rotation: rotation.Clone(),
		parts:    parts,
		byName:   make(map[string]*Dynamic, len(parts)),
	}
	for _, p := range parts {
		if p.Dynamic == nil {
			return nil, fmt.Errorf("%w: part %q has no geometry", ErrInvalidGeometry, p.Name)
		}
		if _, dup := a.byName[p.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate part %q", ErrInvalidGeometry, p.Name)
		}
		a.byName[p.Name] = p.Dynamic
	}
	return a, nil
}

// Part returns the named part, or nil.
func (a *Articulated) Part(name string) *Dynamic { return a.byName[name] }

// Transform returns a consistent copy of the aggregate position and rotation.
func (a *Articulated) Transform() (position, rotation linalg.Vector) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.position.Clone(), a.rotation.Clone()
}

// SetPosition moves the aggregate origin.
func (a *Articulated) SetPosition(p linalg.Vector) error {
	if len(p) < 3 {
		return fmt.Errorf("%w: position has %d components, at least 3 are needed", ErrInvalidGeometry, len(p))
	}
	a.mu.Lock()
	a.position = p.Clone()
	a.mu.Unlock()
	return nil
}

// SetRotation turns the aggregate. Its angle is the heading applied to part
// offsets.
func (a *Articulated) SetRotation(r linalg.Vector) error {
	if len(r) < 4 {
		return fmt.Errorf("%w: rotation has %d components, at least 4 are needed", ErrInvalidGeometry, len(r))
	}
	a.mu.Lock()
	a.rotation = r.Clone()
	a.mu.Unlock()
	return nil
}

// Load loads every part, releasing the loaded ones if any fails.
func (a *Articulated) Load(dev gpu.Device, r Resolver) error {
	for i, p := range a.parts {
		if err := p.Load(dev, r); err != nil {
			for _, loaded := range a.parts[:i] {
				loaded.Release(dev)
			}
			return fmt.Errorf("part %q: %w", p.Name, err)
		}
	}
	return nil
}

// Release gives back every part.
func (a *Articulated) Release(dev gpu.Device) {
	for _, p := range a.parts {
		p.Release(dev)
	}
}

// Draw renders each part at its offset turned by the aggregate heading.
func (a *Articulated) Draw(dev gpu.Device) {
	position, rotation := a.Transform()
	for _, p := range a.parts {
		offset, local := p.Transform()
		pos, rot := PlacePart(position, rotation, offset, local)
		p.meshes.draw(dev, pos, rot)
	}
}

// PlacePart computes the world transform of a part. The offset's xy is turned
// by the aggregate heading and its z is kept; the rotations are composed as
// aggregate · local.
func PlacePart(position, rotation, offset, local linalg.Vector) (linalg.Vector, linalg.Vector) {
	heading := mgl64.DegToRad(float64At(rotation, 3))
	sin, cos := math.Sincos(heading)
	ox, oy, oz := float64At(offset, 0), float64At(offset, 1), float64At(offset, 2)

	pos := linalg.V(
		float64At(position, 0)+ox*cos-oy*sin,
		float64At(position, 1)+ox*sin+oy*cos,
		float64At(position, 2)+oz,
	)
	return pos, ComposeRotations(rotation, local)
}

// ComposeRotations returns the axis-angle rotation equal to applying b and
// then a. Angles are in degrees.
func ComposeRotations(a, b linalg.Vector) linalg.Vector {
	q := quat(a).Mul(quat(b)).Normalize()
	if q.W < 0 {
		q = q.Scale(-1)
	}
	angle := 2 * math.Acos(mgl64.Clamp(q.W, -1, 1))
	s := math.Sqrt(1 - q.W*q.W)
	if s < 1e-6 {
		return linalg.V(0, 0, 1, 0)
	}
	return linalg.V(q.V[0]/s, q.V[1]/s, q.V[2]/s, mgl64.RadToDeg(angle))
}

func quat(r linalg.Vector) mgl64.Quat {
	axis := mgl64.Vec3{float64At(r, 0), float64At(r, 1), float64At(r, 2)}
	angle := float64At(r, 3)
	if angle == 0 || axis.Len() == 0 {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(mgl64.DegToRad(angle), axis.Normalize())
}

func float64At(v linalg.Vector, i int) float64 {
	if i < len(v) {
		return v[i]
	}
	return 0
}
