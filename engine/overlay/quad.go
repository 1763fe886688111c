package overlay

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/axehen/hengine/engine/core"
	"github.com/axehen/hengine/engine/geometry"
	"github.com/axehen/hengine/engine/gpu"
	"github.com/axehen/hengine/engine/linalg"
	"github.com/axehen/hengine/engine/shader"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrUnsupportedAnchor is returned for the Center anchor, which has no
// defined placement.
var ErrUnsupportedAnchor = errors.New("overlay: unsupported anchor")

// Anchor selects the screen corner or edge a quad is placed against.
type Anchor int

const (
	TopLeft Anchor = iota
	TopRight
	BottomLeft
	BottomRight
	TopMiddle
	LeftMiddle
	RightMiddle
	BottomMiddle
	Center
)

var anchorNames = [...]string{"top-left", "top-right", "bottom-left", "bottom-right",
	"top-middle", "left-middle", "right-middle", "bottom-middle", "center"}

func (a Anchor) String() string {
	if a < 0 || int(a) >= len(anchorNames) {
		return fmt.Sprintf("Anchor(%d)", int(a))
	}
	return anchorNames[a]
}

func checkAnchor(a Anchor) error {
	if a < TopLeft || a >= Center {
		return fmt.Errorf("%w: %s", ErrUnsupportedAnchor, a)
	}
	return nil
}

// The quad spans [-1,1] and is scaled and moved by the Transform uniform.
var (
	quadPositions = []float32{
		-1, -1, 0,
		1, -1, 0,
		1, 1, 0,
		-1, 1, 0,
	}
	quadIndices = []uint32{0, 1, 2, 0, 2, 3}
)

// Quad is a rectangle anchored to the screen. Dimensions and margins are in
// unscaled pixels; placement is resolved on every draw from the viewport
// size so resizing takes effect immediately.
type Quad struct {
	dimensions linalg.Vector
	margins    linalg.Vector
	anchor     Anchor
	desc       shader.Descriptor

	loaded        bool
	program       *shader.Program
	vertex, index gpu.BufferID
}

// NewQuad returns a quad of the given size placed by anchor and margins.
// The Center anchor is rejected.
func NewQuad(dimensions, margins linalg.Vector, anchor Anchor, desc shader.Descriptor) (*Quad, error) {
	if err := checkAnchor(anchor); err != nil {
		return nil, err
	}
	if len(dimensions) < 2 || len(margins) < 2 {
		return nil, fmt.Errorf("overlay: dimensions and margins need 2 components, got %d and %d", len(dimensions), len(margins))
	}
	return &Quad{dimensions: dimensions.Clone(), margins: margins.Clone(), anchor: anchor, desc: desc}, nil
}

// Anchor returns the placement anchor.
func (q *Quad) Anchor() Anchor { return q.anchor }

// SetAnchor moves the quad to another anchor. The Center anchor is rejected.
func (q *Quad) SetAnchor(a Anchor) error {
	if err := checkAnchor(a); err != nil {
		return err
	}
	q.anchor = a
	return nil
}

// Dimensions and Margins return copies in unscaled pixels.
func (q *Quad) Dimensions() linalg.Vector { return q.dimensions.Clone() }
func (q *Quad) Margins() linalg.Vector    { return q.margins.Clone() }

// Origin returns the quad centre in screen pixels with the origin at the
// bottom-left corner.
func (q *Quad) Origin(screenWidth, screenHeight int, scale float64) linalg.Vector {
	w, h := float64(screenWidth), float64(screenHeight)
	mx, my := q.margins[0], q.margins[1]
	xOff := (mx + q.dimensions[0]/2) * scale
	yOff := (my + q.dimensions[1]/2) * scale

	switch q.anchor {
	case TopLeft:
		return linalg.V(xOff, h-yOff)
	case TopRight:
		return linalg.V(w-xOff, h-yOff)
	case BottomLeft:
		return linalg.V(xOff, yOff)
	case BottomRight:
		return linalg.V(w-xOff, yOff)
	case TopMiddle:
		return linalg.V(w/2+mx*scale, h-yOff)
	case BottomMiddle:
		return linalg.V(w/2+mx*scale, yOff)
	case LeftMiddle:
		return linalg.V(xOff, h/2+my*scale)
	case RightMiddle:
		return linalg.V(w-xOff, h/2+my*scale)
	}
	return linalg.V(w/2, h/2)
}

// Transform maps the unit quad to its place in clip space for a viewport of
// width by height pixels.
func (q *Quad) Transform(width, height float64) mgl32.Mat4 {
	mx, my := float32(q.margins[0]*2/width), float32(q.margins[1]*2/height)
	rx, ry := float32(q.dimensions[0]/width), float32(q.dimensions[1]/height)

	var tx, ty float32
	switch q.anchor {
	case TopLeft:
		tx, ty = -1+rx+mx, 1-ry-my
	case TopRight:
		tx, ty = 1-rx-mx, 1-ry-my
	case BottomLeft:
		tx, ty = -1+rx+mx, -1+ry+my
	case BottomRight:
		tx, ty = 1-rx-mx, -1+ry+my
	case TopMiddle:
		tx, ty = mx, 1-ry-my
	case BottomMiddle:
		tx, ty = mx, -1+ry+my
	case LeftMiddle:
		tx, ty = -1+rx+mx, my
	case RightMiddle:
		tx, ty = 1-rx-mx, my
	}
	return mgl32.Translate3D(tx, ty, 0).Mul4(mgl32.Scale3D(rx, ry, 0))
}

// Load resolves the program and uploads the unit quad once.
func (q *Quad) Load(dev gpu.Device, r geometry.Resolver) error {
	if q.loaded {
		return nil
	}
	program, err := r.Resolve(q.desc)
	if err != nil {
		return err
	}
	vertex, err := dev.CreateVertexBuffer(quadPositions)
	if err != nil {
		return fmt.Errorf("overlay: quad buffer: %w", err)
	}
	index, err := dev.CreateIndexBuffer(quadIndices)
	if err != nil {
		dev.DeleteBuffer(vertex)
		return fmt.Errorf("overlay: quad indices: %w", err)
	}
	q.program, q.vertex, q.index, q.loaded = program, vertex, index, true
	core.Logger().Debug("overlay quad loaded", slog.String("anchor", q.anchor.String()), slog.String("shader", q.desc.Asset))
	return nil
}

// Release frees the quad's buffers.
func (q *Quad) Release(dev gpu.Device) {
	if !q.loaded {
		return
	}
	dev.DeleteBuffer(q.vertex)
	dev.DeleteBuffer(q.index)
	q.program, q.vertex, q.index, q.loaded = nil, 0, 0, false
}

// Draw renders the quad for a viewport of width by height pixels.
func (q *Quad) Draw(dev gpu.Device, width, height float64) {
	q.draw(dev, width, height, nil)
}

func (q *Quad) draw(dev gpu.Device, width, height float64, uniforms func()) {
	if !q.loaded {
		return
	}
	q.program.Bind(dev)
	if uniforms != nil {
		uniforms()
	}
	dev.SetUniformMat4(gpu.UniformTransform, q.Transform(width, height))
	loc := dev.EnableAttrib(gpu.AttribPosition, q.vertex, 3)
	dev.DrawElements(q.index, len(quadIndices))
	if loc >= 0 {
		dev.DisableAttrib(loc)
	}
}
