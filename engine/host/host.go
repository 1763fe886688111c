// Package host runs a render pipeline inside an ebiten window. It turns
// ebiten's Layout and Draw callbacks into surface lifecycle calls and feeds
// polled pointer events to the overlay.
package host

import (
	"log/slog"
	"time"

	"github.com/axehen/hengine/engine/core"
	"github.com/axehen/hengine/engine/input"
	"github.com/axehen/hengine/engine/overlay"
	"github.com/hajimehoshi/ebiten/v2"
)

// Surface is the render side driven by the host. *render3d.Pipeline
// implements it.
type Surface interface {
	SurfaceCreated(width, height int) error
	SurfaceChanged(width, height int)
	DrawFrame() error
}

// Target receives the image each frame draws into and is flushed once the
// frame is complete. *ebitengpu.Device implements it.
type Target interface {
	SetTarget(img *ebiten.Image)
	Flush()
}

// Toucher consumes pointer events. *overlay.Layer implements it.
type Toucher interface {
	Touch(e overlay.Event, screenWidth, screenHeight int) bool
}

// Game is an ebiten.Game around a Surface.
type Game struct {
	surface Surface
	target  Target
	toucher Toucher
	tracker *input.Tracker
	loop    *core.Loop

	// Events overrides pointer polling; tests and replays set it.
	Events func() []overlay.Event

	width, height  int
	drawnW, drawnH int
	created        bool
	err            error
	fatal          chan error
}

var _ ebiten.Game = (*Game)(nil)

// New creates a host. toucher may be nil. tick runs at tickRate per second
// from Update; nil disables the loop.
func New(surface Surface, target Target, toucher Toucher, tickRate float64, tick func(time.Duration)) *Game {
	g := &Game{
		surface: surface,
		target:  target,
		toucher: toucher,
		tracker: input.NewTracker(),
		fatal:   make(chan error, 1),
	}
	g.Events = g.tracker.Poll
	if tick != nil {
		g.loop = core.NewLoop(tickRate, tick)
		g.loop.Start()
	}
	return g
}

// Err returns the error that stopped the game, if any.
func (g *Game) Err() error { return g.err }

// Fail stops the game with err at the next Update. It may be called from
// any goroutine; only the first error is kept.
func (g *Game) Fail(err error) {
	select {
	case g.fatal <- err:
	default:
	}
}

// Update routes input and advances the tick loop. A frame error from the
// previous Draw, or one passed to Fail, is returned here, which ends
// ebiten.RunGame.
func (g *Game) Update() error {
	if g.err == nil {
		select {
		case err := <-g.fatal:
			g.err = err
		default:
		}
	}
	if g.err != nil {
		return g.err
	}
	for _, e := range g.Events() {
		if g.toucher != nil && g.width > 0 {
			g.toucher.Touch(e, g.width, g.height)
		}
	}
	if g.loop != nil {
		g.loop.Update()
	}
	return nil
}

// Draw brings the surface up to the current size and renders one frame.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.err != nil || g.width <= 0 || g.height <= 0 {
		return
	}
	g.target.SetTarget(screen)
	switch {
	case !g.created:
		if err := g.surface.SurfaceCreated(g.width, g.height); err != nil {
			g.fail(err)
			return
		}
		g.created = true
	case g.width != g.drawnW || g.height != g.drawnH:
		g.surface.SurfaceChanged(g.width, g.height)
	}
	g.drawnW, g.drawnH = g.width, g.height

	if err := g.surface.DrawFrame(); err != nil {
		g.fail(err)
		return
	}
	g.target.Flush()
}

func (g *Game) fail(err error) {
	core.Logger().Error("frame failed", slog.Any("err", err))
	g.err = err
}

// Layout renders at the window's native size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// Run opens a resizable window and blocks until it closes or a frame fails.
func Run(g *Game, title string, width, height int) error {
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(g)
}
