// Package render3d owns the per-frame render loop: it loads queued drawables
// on the render goroutine, broadcasts camera uniforms to every compiled
// program, draws the scene and finally the overlay.
package render3d

import (
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/axehen/hengine/engine/core"
	"github.com/axehen/hengine/engine/geometry"
	"github.com/axehen/hengine/engine/gpu"
	"github.com/axehen/hengine/engine/shader"
	"github.com/go-gl/mathgl/mgl32"
)

// Drawable is anything the pipeline can place in the scene. Implementations
// must be comparable; pointer types are.
type Drawable interface {
	Load(dev gpu.Device, r geometry.Resolver) error
	Draw(dev gpu.Device)
	Release(dev gpu.Device)
}

// UI is drawn after the scene with depth testing off.
type UI interface {
	Load(dev gpu.Device, r geometry.Resolver) error
	Draw(dev gpu.Device, width, height int)
	Release(dev gpu.Device)
}

// Options are the renderer settings fixed at construction.
type Options struct {
	ClearColor         [4]float32
	Blend              bool
	ClipDistanceFactor float64
	NearFactor         float64
	FarFactor          float64
}

// DefaultOptions returns an opaque black clear colour with blending on and
// clip factors 10, 0.1 and 50.
func DefaultOptions() Options {
	return Options{
		ClearColor:         [4]float32{0, 0, 0, 1},
		Blend:              true,
		ClipDistanceFactor: 10,
		NearFactor:         0.1,
		FarFactor:          50,
	}
}

// Pipeline is the render loop. Enqueue, RemoveAtNextFrame and the camera are
// safe to use from any goroutine; every other method must be called from the
// goroutine that owns the device, and never concurrently.
type Pipeline struct {
	dev     gpu.Device
	shaders *shader.Cache
	camera  *Camera
	opts    Options

	mu      sync.Mutex
	pending []Drawable
	tracked map[Drawable]struct{} // pending or active
	removal map[Drawable]struct{}

	active        []Drawable
	ui            UI
	uiLoaded      bool
	width, height int
	view          mgl32.Mat4
	projection    mgl32.Mat4
}

// NewPipeline returns a pipeline drawing on dev with shader sources read
// from assets.
func NewPipeline(dev gpu.Device, assets fs.FS, opts Options) *Pipeline {
	d := DefaultOptions()
	if opts.ClipDistanceFactor <= 0 {
		opts.ClipDistanceFactor = d.ClipDistanceFactor
	}
	if opts.NearFactor <= 0 {
		opts.NearFactor = d.NearFactor
	}
	if opts.FarFactor <= opts.NearFactor {
		opts.FarFactor = d.FarFactor
	}
	return &Pipeline{
		dev:        dev,
		shaders:    shader.NewCache(dev, assets),
		camera:     NewCamera(),
		opts:       opts,
		tracked:    make(map[Drawable]struct{}),
		removal:    make(map[Drawable]struct{}),
		view:       mgl32.Ident4(),
		projection: mgl32.Ident4(),
	}
}

// Camera returns the camera, safe to modify from any goroutine. Shaders
// returns the program cache.
func (p *Pipeline) Camera() *Camera        { return p.camera }
func (p *Pipeline) Shaders() *shader.Cache { return p.shaders }

// Enqueue schedules drawables to be loaded and shown from the next frame.
// Enqueueing a drawable marked for removal cancels the removal. Otherwise a
// drawable that is already pending or active is ignored.
func (p *Pipeline) Enqueue(ds ...Drawable) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, d := range ds {
		_, removing := p.removal[d]
		delete(p.removal, d)
		if _, ok := p.tracked[d]; ok {
			if !removing {
				core.Logger().Warn("drawable enqueued twice", slog.String("type", fmt.Sprintf("%T", d)))
			}
			continue
		}
		p.tracked[d] = struct{}{}
		p.pending = append(p.pending, d)
	}
}

// RemoveAtNextFrame retires d at the start of the next frame. A pending
// drawable is dropped without being loaded; an active one is released.
func (p *Pipeline) RemoveAtNextFrame(d Drawable) {
	p.mu.Lock()
	p.removal[d] = struct{}{}
	p.mu.Unlock()
}

// SetUI replaces the overlay, releasing the previous one. The new overlay is
// loaded on the next frame.
func (p *Pipeline) SetUI(ui UI) {
	if p.ui != nil && p.uiLoaded {
		p.ui.Release(p.dev)
	}
	p.ui = ui
	p.uiLoaded = false
}

// PendingCount returns how many drawables wait to be loaded.
func (p *Pipeline) PendingCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// ActiveCount returns the number of drawables drawn each frame. Call it from
// the render goroutine.
func (p *Pipeline) ActiveCount() int { return len(p.active) }

// View and Projection return the matrices used for the last frame.
func (p *Pipeline) View() mgl32.Mat4       { return p.view }
func (p *Pipeline) Projection() mgl32.Mat4 { return p.projection }

// SurfaceCreated prepares a fresh graphics context.
func (p *Pipeline) SurfaceCreated(width, height int) error {
	c := p.opts.ClearColor
	p.dev.ClearColor(c[0], c[1], c[2], c[3])
	p.dev.SetBlend(p.opts.Blend)
	p.dev.SetDepthTest(true)
	core.Logger().Info("surface created", slog.Int("width", width), slog.Int("height", height))
	p.SurfaceChanged(width, height)
	return p.loadUI()
}

// SurfaceChanged updates the viewport and projection for a new size.
func (p *Pipeline) SurfaceChanged(width, height int) {
	p.width, p.height = width, height
	p.dev.Viewport(0, 0, width, height)
	p.projection = p.frustum(p.camera.Zoom()).Matrix()
	core.Logger().Info("surface changed", slog.Int("width", width), slog.Int("height", height))
}

// Frustum returns the viewing volume for the current viewport and zoom.
func (p *Pipeline) Frustum() Frustum { return p.frustum(p.camera.Zoom()) }

func (p *Pipeline) frustum(zoom float64) Frustum {
	return NewFrustum(p.width, p.height, zoom, p.opts.ClipDistanceFactor, p.opts.NearFactor, p.opts.FarFactor)
}

func (p *Pipeline) loadUI() error {
	if p.ui == nil || p.uiLoaded {
		return nil
	}
	if err := p.ui.Load(p.dev, p.shaders); err != nil {
		return fmt.Errorf("render3d: load ui: %w", err)
	}
	p.uiLoaded = true
	return nil
}

// sweep retires removed drawables and loads pending ones in enqueue order.
// When a load fails the drawable is dropped, those behind it stay pending and
// the error is returned.
func (p *Pipeline) sweep() error {
	p.mu.Lock()
	removal := p.removal
	p.removal = make(map[Drawable]struct{})
	for d := range removal {
		delete(p.tracked, d)
	}
	var queue []Drawable
	for _, d := range p.pending {
		if _, gone := removal[d]; !gone {
			queue = append(queue, d)
		}
	}
	p.pending = nil
	p.mu.Unlock()

	if len(removal) > 0 {
		kept := p.active[:0]
		for _, d := range p.active {
			if _, gone := removal[d]; gone {
				d.Release(p.dev)
				continue
			}
			kept = append(kept, d)
		}
		clear(p.active[len(kept):])
		p.active = kept
		core.Logger().Debug("drawables removed", slog.Int("requested", len(removal)), slog.Int("active", len(p.active)))
	}

	for i, d := range queue {
		if err := d.Load(p.dev, p.shaders); err != nil {
			p.mu.Lock()
			delete(p.tracked, d)
			p.pending = append(append([]Drawable(nil), queue[i+1:]...), p.pending...)
			p.mu.Unlock()
			return fmt.Errorf("render3d: load drawable %d (%T): %w", i, d, err)
		}
		p.active = append(p.active, d)
		core.Logger().Debug("drawable loaded",
			slog.Int("active", len(p.active)),
			slog.Int("pending", len(queue)-i-1))
	}
	return nil
}

// DrawFrame renders one frame. A load error aborts the frame before anything
// is drawn.
func (p *Pipeline) DrawFrame() error {
	if err := p.sweep(); err != nil {
		return err
	}
	if err := p.loadUI(); err != nil {
		return err
	}

	p.dev.Clear()

	cam := p.camera.Snapshot()
	p.view = cam.View()
	p.projection = p.frustum(cam.Zoom).Matrix()
	eye := cam.Eye()
	for _, prog := range p.shaders.Programs() {
		p.dev.UseProgram(prog.ID())
		p.dev.SetUniformVec3(gpu.UniformCamPos, eye)
		p.dev.SetUniformMat4(gpu.UniformView, p.view)
		p.dev.SetUniformMat4(gpu.UniformProjection, p.projection)
	}

	for _, d := range p.active {
		d.Draw(p.dev)
	}

	if p.ui != nil && p.uiLoaded {
		p.dev.SetDepthTest(false)
		p.ui.Draw(p.dev, p.width, p.height)
		p.dev.SetDepthTest(true)
	}
	return nil
}

// Close releases every active drawable and the UI. Pending drawables stay
// queued.
func (p *Pipeline) Close() {
	p.mu.Lock()
	for _, d := range p.active {
		delete(p.tracked, d)
	}
	p.mu.Unlock()
	for _, d := range p.active {
		d.Release(p.dev)
	}
	p.active = nil
	if p.ui != nil && p.uiLoaded {
		p.ui.Release(p.dev)
		p.uiLoaded = false
	}
}
