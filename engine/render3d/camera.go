package render3d

import (
	"errors"
	"fmt"
	"sync"

	"github.com/axehen/hengine/engine/linalg"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidCamera is returned by camera setters for malformed input.
var ErrInvalidCamera = errors.New("render3d: invalid camera parameter")

// Camera looks from LookAt+LookFrom towards LookAt. It may be updated from
// any goroutine; the pipeline takes one Snapshot per frame.
type Camera struct {
	mu       sync.RWMutex
	lookFrom linalg.Vector
	lookAt   linalg.Vector
	up       linalg.Vector
	zoom     float64
}

// CameraState is a consistent copy of the camera taken for one frame.
type CameraState struct {
	LookFrom, LookAt, Up mgl32.Vec3
	Zoom                 float64
}

// NewCamera returns a camera one unit behind and above the origin, Z up.
func NewCamera() *Camera {
	return &Camera{
		lookFrom: linalg.V(0, -1, 1),
		lookAt:   linalg.V(0, 0, 0),
		up:       linalg.V(0, 0, 1),
		zoom:     1,
	}
}

func check3(name string, v linalg.Vector) error {
	if len(v) < 3 {
		return fmt.Errorf("%w: %s has %d components, at least 3 are needed", ErrInvalidCamera, name, len(v))
	}
	return nil
}

// SetLookFrom sets the eye offset relative to the look-at target.
func (c *Camera) SetLookFrom(v linalg.Vector) error {
	if err := check3("lookFrom", v); err != nil {
		return err
	}
	c.mu.Lock()
	c.lookFrom = v.Clone()
	c.mu.Unlock()
	return nil
}

// SetLookAt sets the point the camera looks at.
func (c *Camera) SetLookAt(v linalg.Vector) error {
	if err := check3("lookAt", v); err != nil {
		return err
	}
	c.mu.Lock()
	c.lookAt = v.Clone()
	c.mu.Unlock()
	return nil
}

// SetUpVector sets the camera's up direction. It must not be zero.
func (c *Camera) SetUpVector(v linalg.Vector) error {
	if err := check3("up", v); err != nil {
		return err
	}
	if v[:3].Length() == 0 {
		return fmt.Errorf("%w: up vector has zero length", ErrInvalidCamera)
	}
	c.mu.Lock()
	c.up = v.Clone()
	c.mu.Unlock()
	return nil
}

// SetZoom sets the inverse scale of the view: larger values show more of the
// scene.
func (c *Camera) SetZoom(z float64) error {
	if z <= 0 {
		return fmt.Errorf("%w: zoom %g must be positive", ErrInvalidCamera, z)
	}
	c.mu.Lock()
	c.zoom = z
	c.mu.Unlock()
	return nil
}

// LookFrom returns a copy of the eye offset.
func (c *Camera) LookFrom() linalg.Vector {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lookFrom.Clone()
}

// LookAt returns a copy of the look-at target.
func (c *Camera) LookAt() linalg.Vector {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lookAt.Clone()
}

// Up returns a copy of the up vector.
func (c *Camera) Up() linalg.Vector {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.up.Clone()
}

// Zoom returns the inverse view scale.
func (c *Camera) Zoom() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.zoom
}

// Snapshot copies every field under one lock.
func (c *Camera) Snapshot() CameraState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CameraState{
		LookFrom: vec3(c.lookFrom),
		LookAt:   vec3(c.lookAt),
		Up:       vec3(c.up),
		Zoom:     c.zoom,
	}
}

func vec3(v linalg.Vector) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

// Eye is the camera position in world space.
func (s CameraState) Eye() mgl32.Vec3 { return s.LookAt.Add(s.LookFrom) }

// View is the world-to-camera matrix.
func (s CameraState) View() mgl32.Mat4 { return mgl32.LookAtV(s.Eye(), s.LookAt, s.Up) }
