package ebitengpu

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/draw"
)

// texture keeps the decoded source so it can be resampled when a program
// binds images of different sizes; ebiten requires equal source sizes.
type texture struct {
	src    image.Image
	scaled map[image.Point]*ebiten.Image
}

func (t *texture) size() image.Point {
	return t.src.Bounds().Size()
}

// at returns the texture as an ebiten image of the given size.
func (t *texture) at(size image.Point) *ebiten.Image {
	if img, ok := t.scaled[size]; ok {
		return img
	}
	if t.scaled == nil {
		t.scaled = make(map[image.Point]*ebiten.Image)
	}
	img := ebiten.NewImageFromImage(resample(t.src, size))
	t.scaled[size] = img
	return img
}

// dispose frees the resampled copies.
func (t *texture) dispose() {
	for size, img := range t.scaled {
		img.Deallocate()
		delete(t.scaled, size)
	}
}

// resample scales src to size with bilinear filtering. Images already of
// that size are returned unchanged.
func resample(src image.Image, size image.Point) image.Image {
	if src.Bounds().Size() == size {
		return src
	}
	dst := image.NewRGBA(image.Rectangle{Max: size})
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
