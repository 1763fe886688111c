package main

import (
	"context"
	"image"
	"image/color"

	"github.com/axehen/hengine/engine/geometry"
	"github.com/axehen/hengine/engine/linalg"
	"github.com/axehen/hengine/engine/render3d"
	"github.com/axehen/hengine/engine/shader"
	"golang.org/x/sync/errgroup"
)

const (
	litShader    = "shaders/lit"
	floorShader  = "shaders/floor"
	buttonShader = "shaders/button"
)

func lit(r, g, b float64) shader.Descriptor {
	return shader.Descriptor{
		Asset:  litShader,
		Colors: []shader.UniformColor{{Name: "Kd", R: r, G: g, B: b, A: 1}},
	}
}

// pallet positions and headings from the warehouse layout.
var pallets = []struct {
	x, y, heading float64
}{
	{0.5, 2.5, 0},
	{-1.5, 2.0, 45},
	{0.0, 4.5, 90},
}

func checker(size, cells int, a, b color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	cell := size / cells
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := a
			if (x/cell+y/cell)%2 == 1 {
				c = b
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func floor() (*geometry.Static, error) {
	tex := checker(64, 2, color.RGBA{R: 170, G: 170, B: 160, A: 255}, color.RGBA{R: 140, G: 140, B: 130, A: 255})
	m, err := geometry.NewMesh(geometry.Plane(20, 20, 1), shader.Descriptor{
		Asset:    floorShader,
		Textures: []shader.TextureBinding{{Source: "checker", Uniform: "Floor", Image: tex}},
	})
	if err != nil {
		return nil, err
	}
	return geometry.NewStatic(linalg.V(0, 0, 0), linalg.V(0, 0, 1, 0), m)
}

func pallet(x, y, heading float64) (*geometry.Dynamic, error) {
	deck, err := geometry.NewMesh(geometry.Box(0.8, 1.2, 0.04).Translate(0, 0, 0.13), lit(0.72, 0.55, 0.33))
	if err != nil {
		return nil, err
	}
	var blocks []geometry.MeshData
	for _, bx := range []float32{-0.35, 0, 0.35} {
		for _, by := range []float32{-0.55, 0, 0.55} {
			blocks = append(blocks, geometry.Box(0.1, 0.1, 0.11).Translate(bx, by, 0.055))
		}
	}
	feet, err := geometry.NewMesh(geometry.Merge(blocks...), lit(0.6, 0.45, 0.27))
	if err != nil {
		return nil, err
	}
	return geometry.NewDynamic(linalg.V(x, y, 0), linalg.V(0, 0, 1, heading), deck, feet)
}

func truck() (*Truck, error) {
	body, err := geometry.NewMesh(geometry.Box(0.6, 0.9, 0.3).Translate(0, 0.3, 0.15), lit(0.95, 0.55, 0.1))
	if err != nil {
		return nil, err
	}
	forks := geometry.Merge(
		geometry.Box(0.16, 1.1, 0.06).Translate(-0.2, 1.3, 0.03),
		geometry.Box(0.16, 1.1, 0.06).Translate(0.2, 1.3, 0.03),
	)
	fork, err := geometry.NewMesh(forks, lit(0.25, 0.25, 0.28))
	if err != nil {
		return nil, err
	}
	wheel, err := geometry.NewMesh(geometry.Cylinder(0.08, 0.06, 12).Translate(0, 0, 0.08), lit(0.1, 0.1, 0.1))
	if err != nil {
		return nil, err
	}
	bar, err := geometry.NewMesh(geometry.Merge(
		geometry.Box(0.04, 0.04, 0.9).Translate(0, 0, 0.55),
		geometry.Box(0.3, 0.05, 0.05).Translate(0, 0, 1.0),
	), lit(0.8, 0.1, 0.1))
	if err != nil {
		return nil, err
	}
	return NewTruck(linalg.V(0, 0, 0.1), 0, []*geometry.Mesh{body, fork}, []*geometry.Mesh{wheel, bar})
}

// buildScenery builds the floor and pallets concurrently and enqueues each
// one as soon as it is ready.
func buildScenery(ctx context.Context, p *render3d.Pipeline) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		f, err := floor()
		if err != nil {
			return err
		}
		p.Enqueue(f)
		return nil
	})
	for _, pl := range pallets {
		pl := pl
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d, err := pallet(pl.x, pl.y, pl.heading)
			if err != nil {
				return err
			}
			p.Enqueue(d)
			return nil
		})
	}
	return g.Wait()
}
