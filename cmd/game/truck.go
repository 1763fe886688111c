package main

import (
	"log/slog"
	"math"
	"time"

	"github.com/axehen/hengine/engine/core"
	"github.com/axehen/hengine/engine/geometry"
	"github.com/axehen/hengine/engine/linalg"
)

const (
	chassisPart = "chassis"
	handlePart  = "handle"
)

// Truck is a pallet truck steered by a handle at its front. Heading is the
// rotation about +Z in degrees; heading zero drives along +Y.
type Truck struct {
	*geometry.Articulated

	MaxSpeed      float64 // units per second
	MaxWheelAngle float64 // degrees
	PivotOffset   float64 // pivot distance ahead of the body origin
	SteerOffset   float64 // steering wheel distance from the body origin

	speed      float64
	wheelAngle float64
}

// NewTruck places a truck with the given body and handle meshes.
func NewTruck(position linalg.Vector, heading float64, chassis, handle []*geometry.Mesh) (*Truck, error) {
	const steer = -12.0 / 32.0
	body, err := geometry.NewDynamic(linalg.V(0, 0, 0), linalg.V(0, 0, 1, 0), chassis...)
	if err != nil {
		return nil, err
	}
	bar, err := geometry.NewDynamic(linalg.V(0, steer, 0), linalg.V(0, 0, 1, 0), handle...)
	if err != nil {
		return nil, err
	}
	a, err := geometry.NewArticulated(position, linalg.V(0, 0, 1, heading),
		geometry.Part{Name: chassisPart, Dynamic: body},
		geometry.Part{Name: handlePart, Dynamic: bar},
	)
	if err != nil {
		return nil, err
	}
	return &Truck{
		Articulated:   a,
		MaxSpeed:      1,
		MaxWheelAngle: 90,
		PivotOffset:   20.0 / 32.0,
		SteerOffset:   steer,
	}, nil
}

// Speed and WheelAngle return the current controls.
func (t *Truck) Speed() float64      { return t.speed }
func (t *Truck) WheelAngle() float64 { return t.wheelAngle }

// Heading returns the current heading in degrees.
func (t *Truck) Heading() float64 {
	_, rot := t.Transform()
	return rot[3]
}

// SetSpeedFraction sets the speed as a fraction of MaxSpeed, clamped to
// [-1, 1].
func (t *Truck) SetSpeedFraction(f float64) {
	t.speed = clamp(f, -1, 1) * t.MaxSpeed
}

// SetWheelAngle turns the steering wheel and the handle with it.
func (t *Truck) SetWheelAngle(deg float64) error {
	t.wheelAngle = clamp(deg, -t.MaxWheelAngle, t.MaxWheelAngle)
	return t.Part(handlePart).SetRotation(linalg.V(0, 0, 1, -t.wheelAngle))
}

// Tick advances the truck by dt.
func (t *Truck) Tick(dt time.Duration) error {
	pos, rot := t.Transform()
	next, heading := drive(pos, rot[3], t.speed, t.wheelAngle, t.PivotOffset, t.SteerOffset, dt.Seconds())
	if err := t.SetPosition(next); err != nil {
		return err
	}
	if err := t.SetRotation(linalg.V(0, 0, 1, heading)); err != nil {
		return err
	}
	core.Logger().Debug("truck tick",
		slog.String("position", next.String()),
		slog.Float64("heading", heading),
		slog.Float64("speed", t.speed),
		slog.Float64("wheelAngle", t.wheelAngle))
	return nil
}

// drive integrates one step of the steering model. The steering wheel at
// steerOffset rolls at speed, turning the body about its pivot.
func drive(pos linalg.Vector, heading, speed, wheelAngle, pivotOffset, steerOffset, dt float64) (linalg.Vector, float64) {
	a := linalg.DegreesToRadians(heading)
	angular := speed * math.Sin(linalg.DegreesToRadians(wheelAngle)) * 360 / (2 * math.Pi * math.Abs(steerOffset))
	slide := 2 * math.Pi * pivotOffset * angular / 360 * dt

	next := pos.Clone()
	next[0] += speed*dt*math.Sin(-a) + slide*math.Cos(a)
	next[1] += speed*dt*math.Cos(a) + slide*math.Sin(a)
	return next, heading + dt*angular
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
