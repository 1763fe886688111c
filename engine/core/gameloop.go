package core

import "time"

// Loop runs a tick function at a fixed timestep from a variable-rate caller
// such as a frame callback.
type Loop struct {
	TickRate    float64 // fixed ticks per second
	tick        func(dt time.Duration)
	accumulator float64
	lastTime    time.Time
	now         func() time.Time
	running     bool
	ticks       uint64
}

// NewLoop creates a stopped loop that calls tick TickRate times per second
// once started.
func NewLoop(tickRate float64, tick func(dt time.Duration)) *Loop {
	return newLoopWithClock(tickRate, tick, time.Now)
}

func newLoopWithClock(tickRate float64, tick func(dt time.Duration), now func() time.Time) *Loop {
	return &Loop{
		TickRate: tickRate,
		tick:     tick,
		now:      now,
		lastTime: now(),
	}
}

// Update should be called every frame. It runs as many fixed ticks as the
// elapsed time covers and returns the interpolation alpha for rendering.
func (l *Loop) Update() float64 {
	now := l.now()
	frameTime := now.Sub(l.lastTime).Seconds()
	l.lastTime = now

	// Cap frame time to avoid spiral of death
	if frameTime > 0.25 {
		frameTime = 0.25
	}

	dt := 1.0 / l.TickRate
	if !l.running {
		return 0
	}
	l.accumulator += frameTime
	for l.accumulator >= dt {
		l.tick(time.Duration(dt * float64(time.Second)))
		l.ticks++
		l.accumulator -= dt
	}
	return l.accumulator / dt
}

// Start starts or resumes ticking.
func (l *Loop) Start() {
	l.running = true
	l.lastTime = l.now()
}

// Stop pauses ticking; time spent stopped is not replayed.
func (l *Loop) Stop() {
	l.running = false
	l.accumulator = 0
}

// Running reports whether the loop is ticking.
func (l *Loop) Running() bool { return l.running }

// Ticks returns how many ticks have run.
func (l *Loop) Ticks() uint64 { return l.ticks }
