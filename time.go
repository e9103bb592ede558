package bramble

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

const (
	// DefaultFixedDelta is one 60 Hz simulation step in milliseconds.
	DefaultFixedDelta = 1000.0 / 60
	// DefaultMaxAccumulator caps catch-up after a stall.
	DefaultMaxAccumulator = 250.0
	// DefaultStatsWindow is the number of frame times kept for Stats.
	DefaultStatsWindow = 60

	// behindSteps is the step count above which Update warns that the caller
	// is falling behind real time.
	behindSteps = 5
)

// TimeOptions configures NewTimeManager. Zero fields take defaults.
type TimeOptions struct {
	FixedDelta     float64 // ms per simulation step
	MaxAccumulator float64 // ms; accumulator clamp ceiling
	StatsWindow    int     // frame times kept for Stats
	Logger         *zap.Logger
}

// TimeManager converts variable frame deltas into a whole number of fixed
// simulation steps plus a leftover interpolation fraction. All times are
// milliseconds.
type TimeManager struct {
	fixedDelta     float64
	maxAccumulator float64
	accumulator    float64
	timeScale      float64
	paused         bool
	simTime        float64

	frames     []float64
	frameHead  int
	frameCount int

	log *zap.Logger
}

// TimeStats summarizes the recorded frame-time window.
type TimeStats struct {
	Samples      int
	AverageFrame float64 // ms
	MinFrame     float64 // ms
	MaxFrame     float64 // ms
	FPS          float64
}

// NewTimeManager creates a running (unpaused) clock with time scale 1.
func NewTimeManager(opts TimeOptions) *TimeManager {
	if opts.FixedDelta <= 0 {
		opts.FixedDelta = DefaultFixedDelta
	}
	if opts.MaxAccumulator <= 0 {
		opts.MaxAccumulator = DefaultMaxAccumulator
	}
	if opts.MaxAccumulator < opts.FixedDelta {
		opts.MaxAccumulator = opts.FixedDelta
	}
	if opts.StatsWindow <= 0 {
		opts.StatsWindow = DefaultStatsWindow
	}
	return &TimeManager{
		fixedDelta:     opts.FixedDelta,
		maxAccumulator: opts.MaxAccumulator,
		timeScale:      1,
		frames:         make([]float64, opts.StatsWindow),
		log:            loggerOr(opts.Logger),
	}
}

// Update feeds one frame's elapsed time and returns the number of fixed steps
// the caller should simulate. While paused it returns 0 and changes nothing.
func (t *TimeManager) Update(frameDelta float64) int {
	if t.paused {
		return 0
	}
	if frameDelta < 0 {
		frameDelta = 0
	}

	t.accumulator += frameDelta * t.timeScale
	if t.accumulator > t.maxAccumulator {
		t.log.Warn("frame time exceeds catch-up limit, dropping simulated time",
			zap.Float64("accumulator_ms", t.accumulator),
			zap.Float64("max_accumulator_ms", t.maxAccumulator))
		t.accumulator = t.maxAccumulator
	}

	steps := int(math.Floor(t.accumulator / t.fixedDelta))
	t.accumulator -= float64(steps) * t.fixedDelta
	if t.accumulator < 0 {
		t.accumulator = 0 // rounding
	}
	t.simTime += float64(steps) * t.fixedDelta

	if steps > behindSteps {
		t.log.Warn("simulation falling behind real time",
			zap.Int("steps", steps),
			zap.Float64("frame_delta_ms", frameDelta))
	}
	return steps
}

// InterpolationAlpha returns accumulator / fixedDelta clamped to [0, 1].
func (t *TimeManager) InterpolationAlpha() float64 {
	return clamp(t.accumulator/t.fixedDelta, 0, 1)
}

// SetTimeScale sets the multiplier applied to frame deltas. Zero freezes
// the simulation; negative values are rejected.
func (t *TimeManager) SetTimeScale(scale float64) error {
	if scale < 0 || math.IsNaN(scale) {
		return fmt.Errorf("%w: time scale %v", ErrInvalidArgument, scale)
	}
	t.timeScale = scale
	return nil
}

// TimeScale returns the current time scale.
func (t *TimeManager) TimeScale() float64 { return t.timeScale }

// Pause stops accumulating time. Idempotent.
func (t *TimeManager) Pause() { t.paused = true }

// Resume continues accumulating from the preserved accumulator. Idempotent.
func (t *TimeManager) Resume() { t.paused = false }

// Paused reports whether the clock is paused.
func (t *TimeManager) Paused() bool { return t.paused }

// FixedDelta returns the simulation step in milliseconds.
func (t *TimeManager) FixedDelta() float64 { return t.fixedDelta }

// ScaledFixedDelta returns fixedDelta × timeScale, the delta handed to each
// simulation step by the GameLoop.
func (t *TimeManager) ScaledFixedDelta() float64 { return t.fixedDelta * t.timeScale }

// MaxAccumulator returns the accumulator clamp ceiling.
func (t *TimeManager) MaxAccumulator() float64 { return t.maxAccumulator }

// Accumulator returns the leftover time not yet consumed by a step.
func (t *TimeManager) Accumulator() float64 { return t.accumulator }

// SimulationTime returns the total simulated milliseconds.
func (t *TimeManager) SimulationTime() float64 { return t.simTime }

// Reset zeroes the accumulator, simulated time and statistics. Pause state
// and time scale are kept.
func (t *TimeManager) Reset() {
	t.accumulator = 0
	t.simTime = 0
	t.frameHead = 0
	t.frameCount = 0
}

// RecordFrame adds a raw frame duration to the statistics window.
func (t *TimeManager) RecordFrame(frameDelta float64) {
	t.frames[t.frameHead] = frameDelta
	t.frameHead = (t.frameHead + 1) % len(t.frames)
	if t.frameCount < len(t.frames) {
		t.frameCount++
	}
}

// Stats summarizes the recorded window. A zero TimeStats means no frames
// were recorded.
func (t *TimeManager) Stats() TimeStats {
	if t.frameCount == 0 {
		return TimeStats{}
	}
	s := TimeStats{Samples: t.frameCount, MinFrame: math.Inf(1), MaxFrame: math.Inf(-1)}
	sum := 0.0
	for i := 0; i < t.frameCount; i++ {
		f := t.frames[i]
		sum += f
		s.MinFrame = math.Min(s.MinFrame, f)
		s.MaxFrame = math.Max(s.MaxFrame, f)
	}
	s.AverageFrame = sum / float64(t.frameCount)
	if s.AverageFrame > 0 {
		s.FPS = 1000 / s.AverageFrame
	}
	return s
}
