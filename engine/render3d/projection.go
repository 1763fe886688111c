package render3d

import "github.com/go-gl/mathgl/mgl32"

// Frustum is a perspective viewing volume in eye space.
type Frustum struct {
	Left, Right, Bottom, Top float32
	Near, Far                float32
}

// NewFrustum sizes the frustum for a width by height viewport. The half
// extents grow linearly with zoom; near and far only depend on clipFactor.
func NewFrustum(width, height int, zoom, clipFactor, nearFactor, farFactor float64) Frustum {
	ratio := 1.0
	if height > 0 {
		ratio = float64(width) / float64(height)
	}
	halfW := ratio * zoom * clipFactor / 2
	halfH := zoom * clipFactor / 2
	return Frustum{
		Left:   float32(-halfW),
		Right:  float32(halfW),
		Bottom: float32(-halfH),
		Top:    float32(halfH),
		Near:   float32(nearFactor * clipFactor),
		Far:    float32(farFactor * clipFactor),
	}
}

// Matrix returns the perspective projection for f.
func (f Frustum) Matrix() mgl32.Mat4 {
	return mgl32.Frustum(f.Left, f.Right, f.Bottom, f.Top, f.Near, f.Far)
}
