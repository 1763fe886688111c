package ebitengpu

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// DirectionalLight is a light at infinity. Direction points from the surface
// towards the light.
type DirectionalLight struct {
	Direction mgl32.Vec3
	Color     mgl32.Vec3
	Intensity float32
}

// Lighting is the fixed scene lighting used by lambert vertex stages.
type Lighting struct {
	Sun     DirectionalLight
	Fill    DirectionalLight
	HasFill bool
	Ambient mgl32.Vec3
	// AmbientIntensity scales Ambient.
	AmbientIntensity float32
}

// DefaultLighting is a bright daylight setup for a Z-up world.
func DefaultLighting() Lighting {
	return Lighting{
		Sun: DirectionalLight{
			Direction: mgl32.Vec3{-0.4, -0.35, 0.85}.Normalize(),
			Color:     mgl32.Vec3{1.0, 0.98, 0.92},
			Intensity: 1.1,
		},
		Fill: DirectionalLight{
			Direction: mgl32.Vec3{0.5, 0.6, 0.4}.Normalize(),
			Color:     mgl32.Vec3{0.7, 0.8, 1.0},
			Intensity: 0.45,
		},
		HasFill:          true,
		Ambient:          mgl32.Vec3{0.75, 0.78, 0.85},
		AmbientIntensity: 0.6,
	}
}

// Shade returns the lit colour of a surface with the given world-space normal
// and base colour, clamped to [0, 1].
func (l Lighting) Shade(normal mgl32.Vec3, base mgl32.Vec3) mgl32.Vec3 {
	if normal.Len() > 0 {
		normal = normal.Normalize()
	}
	out := mul(base, l.Ambient).Mul(l.AmbientIntensity)

	ndotl := float32(math.Max(0, float64(normal.Dot(l.Sun.Direction))))
	out = out.Add(mul(base, l.Sun.Color).Mul(ndotl * l.Sun.Intensity))

	if l.HasFill {
		ndotf := float32(math.Max(0, float64(normal.Dot(l.Fill.Direction))))
		out = out.Add(mul(base, l.Fill.Color).Mul(ndotf * l.Fill.Intensity))
	}
	for i := range out {
		out[i] = min(out[i], 1)
	}
	return out
}

func mul(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}
