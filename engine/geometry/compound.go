package geometry

import (
	"fmt"
	"sync"

	"github.com/axehen/hengine/engine/gpu"
	"github.com/axehen/hengine/engine/linalg"
)

// group is the shared composition of several meshes drawn with one
// transform. A mesh may belong to several groups; each group holds it once
// between load and release. Groups are used from the render goroutine only.
type group struct {
	meshes []*Mesh
	held   bool
}

func (g *group) load(dev gpu.Device, r Resolver) error {
	if g.held {
		return nil
	}
	for i, m := range g.meshes {
		if err := m.acquire(dev, r); err != nil {
			for _, loaded := range g.meshes[:i] {
				loaded.drop(dev)
			}
			return fmt.Errorf("mesh %d/%d (%s): %w", i+1, len(g.meshes), m.desc.Asset, err)
		}
	}
	g.held = true
	return nil
}

func (g *group) draw(dev gpu.Device, position, rotation linalg.Vector) {
	for _, m := range g.meshes {
		m.Draw(dev, position, rotation)
	}
}

func (g *group) release(dev gpu.Device) {
	if !g.held {
		return
	}
	for _, m := range g.meshes {
		m.drop(dev)
	}
	g.held = false
}

func checkTransform(position, rotation linalg.Vector) error {
	if len(position) < 3 {
		return fmt.Errorf("%w: position has %d components, at least 3 are needed", ErrInvalidGeometry, len(position))
	}
	if len(rotation) < 4 {
		return fmt.Errorf("%w: rotation has %d components, at least 4 (axis and angle) are needed", ErrInvalidGeometry, len(rotation))
	}
	return nil
}

// Static is a set of meshes placed once at construction.
type Static struct {
	position, rotation linalg.Vector
	meshes             group
}

// NewStatic places meshes at position with rotation (axis x/y/z, angle w in
// degrees). A mesh may be shared with other drawables.
func NewStatic(position, rotation linalg.Vector, meshes ...*Mesh) (*Static, error) {
	if err := checkTransform(position, rotation); err != nil {
		return nil, err
	}
	return &Static{position: position.Clone(), rotation: rotation.Clone(), meshes: group{meshes: meshes}}, nil
}

// Load acquires the meshes, Draw renders them with the fixed transform and
// Release gives them back. A shared mesh is freed by its last holder.
func (s *Static) Load(dev gpu.Device, r Resolver) error { return s.meshes.load(dev, r) }
func (s *Static) Draw(dev gpu.Device)                   { s.meshes.draw(dev, s.position, s.rotation) }
func (s *Static) Release(dev gpu.Device)                { s.meshes.release(dev) }

// Position and Rotation return copies of the fixed transform.
func (s *Static) Position() linalg.Vector { return s.position.Clone() }
func (s *Static) Rotation() linalg.Vector { return s.rotation.Clone() }

// Dynamic is a set of meshes whose position and rotation may be changed from
// any goroutine between frames.
type Dynamic struct {
	mu                 sync.RWMutex
	position, rotation linalg.Vector
	meshes             group
}

// NewDynamic is NewStatic for meshes that move.
func NewDynamic(position, rotation linalg.Vector, meshes ...*Mesh) (*Dynamic, error) {
	if err := checkTransform(position, rotation); err != nil {
		return nil, err
	}
	return &Dynamic{position: position.Clone(), rotation: rotation.Clone(), meshes: group{meshes: meshes}}, nil
}

// Position returns a copy of the current position.
func (d *Dynamic) Position() linalg.Vector {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.position.Clone()
}

// Rotation returns a copy of the current rotation.
func (d *Dynamic) Rotation() linalg.Vector {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.rotation.Clone()
}

// SetPosition moves the meshes. p needs at least 3 components.
func (d *Dynamic) SetPosition(p linalg.Vector) error {
	if len(p) < 3 {
		return fmt.Errorf("%w: position has %d components, at least 3 are needed", ErrInvalidGeometry, len(p))
	}
	d.mu.Lock()
	d.position = p.Clone()
	d.mu.Unlock()
	return nil
}

// SetRotation turns the meshes. r needs an axis and an angle in degrees.
func (d *Dynamic) SetRotation(r linalg.Vector) error {
	if len(r) < 4 {
		return fmt.Errorf("%w: rotation has %d components, at least 4 are needed", ErrInvalidGeometry, len(r))
	}
	d.mu.Lock()
	d.rotation = r.Clone()
	d.mu.Unlock()
	return nil
}

// Transform returns a consistent copy of position and rotation.
func (d *Dynamic) Transform() (position, rotation linalg.Vector) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.position.Clone(), d.rotation.Clone()
}

// Load and Release acquire and give back the meshes as for Static.
func (d *Dynamic) Load(dev gpu.Device, r Resolver) error { return d.meshes.load(dev, r) }
func (d *Dynamic) Release(dev gpu.Device)                { d.meshes.release(dev) }

// Draw renders the meshes with the transform current at the time of the call.
func (d *Dynamic) Draw(dev gpu.Device) {
	p, r := d.Transform()
	d.meshes.draw(dev, p, r)
}
