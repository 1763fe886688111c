package shader

import (
	"image"
	"strconv"
	"strings"
)

// UniformColor is an RGBA value uploaded to the named uniform whenever the
// program is bound.
type UniformColor struct {
	Name       string
	R, G, B, A float64
}

// TextureBinding samples Image through the named uniform. Source identifies
// the decoded image (normally its asset path) and is what the cache compares;
// two bindings with the same Source are assumed to carry the same pixels.
type TextureBinding struct {
	Source  string
	Uniform string
	Image   image.Image
}

// Descriptor identifies a distinct program: the asset the stages are read
// from plus the colours and textures bound with it.
type Descriptor struct {
	Asset    string
	Colors   []UniformColor
	Textures []TextureBinding
}

// Key encodes the descriptor so that two descriptors share a key exactly
// when they are structurally equal.
func (d Descriptor) Key() string {
	var b strings.Builder
	b.WriteString(strconv.Quote(d.Asset))
	for _, c := range d.Colors {
		b.WriteString("|c")
		b.WriteString(strconv.Quote(c.Name))
		for _, x := range [4]float64{c.R, c.G, c.B, c.A} {
			b.WriteByte(',')
			b.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
		}
	}
	for _, t := range d.Textures {
		b.WriteString("|t")
		b.WriteString(strconv.Quote(t.Source))
		b.WriteString(strconv.Quote(t.Uniform))
	}
	return b.String()
}

// Equal reports structural equality.
func (d Descriptor) Equal(o Descriptor) bool { return d.Key() == o.Key() }

func (d Descriptor) String() string { return d.Asset }
