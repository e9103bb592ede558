package bramble

import (
	"fmt"

	"go.uber.org/zap"
)

// LoopOptions configures NewGameLoop.
type LoopOptions struct {
	// VSync schedules ticks with Host.RequestFrame. Otherwise a timer of
	// 1000/TargetFPS milliseconds drives the loop.
	VSync     bool
	TargetFPS float64
	Logger    *zap.Logger
}

// GameLoop drives a TimeManager from host frame callbacks: each tick runs zero
// or more fixed simulation steps followed by exactly one render.
type GameLoop struct {
	host Host
	time *TimeManager
	log  *zap.Logger

	running   bool
	vsync     bool
	targetFPS float64

	lastFrameTime float64
	handle        FrameHandle
	handleIsTimer bool

	detachVisibility   func()
	pausedByVisibility bool

	onStep   func(delta float64)
	onRender func(alpha float64)
}

// NewGameLoop creates a stopped loop.
func NewGameLoop(host Host, tm *TimeManager, opts LoopOptions) *GameLoop {
	if opts.TargetFPS <= 0 {
		opts.TargetFPS = 60
	}
	return &GameLoop{
		host:      host,
		time:      tm,
		log:       loggerOr(opts.Logger),
		vsync:     opts.VSync,
		targetFPS: opts.TargetFPS,
	}
}

// OnSimulationStep sets the callback run once per fixed step with
// fixedDelta × timeScale milliseconds.
func (l *GameLoop) OnSimulationStep(fn func(delta float64)) { l.onStep = fn }

// OnRender sets the callback run once per tick with the interpolation alpha.
func (l *GameLoop) OnRender(fn func(alpha float64)) { l.onRender = fn }

// Time returns the loop's TimeManager.
func (l *GameLoop) Time() *TimeManager { return l.time }

// Running reports whether the loop is started.
func (l *GameLoop) Running() bool { return l.running }

// VSync reports whether ticks follow host frames.
func (l *GameLoop) VSync() bool { return l.vsync }

// TargetFPS returns the timed-mode frame rate.
func (l *GameLoop) TargetFPS() float64 { return l.targetFPS }

// SetVSync switches scheduling mode. A running loop reschedules at once.
func (l *GameLoop) SetVSync(enabled bool) {
	if l.vsync == enabled {
		return
	}
	l.vsync = enabled
	if l.running {
		l.schedule()
	}
}

// SetTargetFPS sets the timed-mode frame rate.
func (l *GameLoop) SetTargetFPS(fps float64) error {
	if fps <= 0 {
		return fmt.Errorf("%w: target fps %v", ErrInvalidArgument, fps)
	}
	l.targetFPS = fps
	return nil
}

// Start captures the current timestamp as the baseline, attaches the
// visibility handler and schedules the first tick. Idempotent.
func (l *GameLoop) Start() {
	if l.running {
		return
	}
	l.running = true
	l.lastFrameTime = l.host.Now()
	l.detachVisibility = l.host.OnVisibilityChange(l.visibilityChanged)
	l.log.Debug("game loop started", zap.Bool("vsync", l.vsync), zap.Float64("target_fps", l.targetFPS))
	l.schedule()
}

// Stop cancels the pending tick and detaches the visibility handler.
// Idempotent.
func (l *GameLoop) Stop() {
	if !l.running {
		return
	}
	l.running = false
	l.cancel()
	if l.detachVisibility != nil {
		l.detachVisibility()
		l.detachVisibility = nil
	}
	if l.pausedByVisibility {
		l.pausedByVisibility = false
		l.time.Resume()
	}
	l.log.Debug("game loop stopped")
}

// Tick runs one frame at the given host timestamp. It is a no-op when the
// loop is stopped.
func (l *GameLoop) Tick(timestamp float64) {
	if !l.running {
		return
	}
	frameDelta := timestamp - l.lastFrameTime
	l.lastFrameTime = timestamp

	steps := l.time.Update(frameDelta)
	delta := l.time.ScaledFixedDelta()
	for i := 0; i < steps; i++ {
		if l.onStep != nil {
			l.onStep(delta)
		}
	}
	if l.onRender != nil {
		l.onRender(l.time.InterpolationAlpha())
	}
	l.time.RecordFrame(frameDelta)

	// A callback may have stopped the loop.
	if l.running {
		l.schedule()
	}
}

func (l *GameLoop) schedule() {
	l.cancel()
	if l.vsync {
		l.handle = l.host.RequestFrame(l.Tick)
		l.handleIsTimer = false
		return
	}
	l.handle = l.host.SetTimer(1000/l.targetFPS, func() {
		l.handle = 0
		l.Tick(l.host.Now())
	})
	l.handleIsTimer = true
}

func (l *GameLoop) cancel() {
	if l.handle == 0 {
		return
	}
	if l.handleIsTimer {
		l.host.CancelTimer(l.handle)
	} else {
		l.host.CancelFrame(l.handle)
	}
	l.handle = 0
}

func (l *GameLoop) visibilityChanged(hidden bool) {
	if hidden {
		if !l.time.Paused() {
			l.time.Pause()
			l.pausedByVisibility = true
		}
		l.log.Debug("host hidden, simulation paused")
		return
	}
	if l.pausedByVisibility {
		l.pausedByVisibility = false
		l.time.Resume()
	}
	// The hidden interval is not frame time.
	l.lastFrameTime = l.host.Now()
	l.log.Debug("host visible, simulation resumed")
}
