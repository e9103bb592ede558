package bramble

import (
	"time"

	"go.uber.org/zap"
)

// FrameReporter aggregates renderer and clock statistics and logs them at
// debug level every Every frames. Frames over DrawCallBudget draw calls log
// a warning.
type FrameReporter struct {
	Every          int
	DrawCallBudget int

	log       *zap.Logger
	frames    int
	drawCalls int
	batches   int
	sprites   int
	elapsed   time.Duration
}

// NewFrameReporter returns a reporter logging every `every` frames.
func NewFrameReporter(logger *zap.Logger, every int) *FrameReporter {
	if every <= 0 {
		every = DefaultStatsWindow
	}
	return &FrameReporter{Every: every, log: loggerOr(logger)}
}

// Record adds one frame.
func (r *FrameReporter) Record(fs FrameStats, ts TimeStats) {
	if r.DrawCallBudget > 0 && fs.DrawCalls > r.DrawCallBudget {
		r.log.Warn("draw call budget exceeded",
			zap.Int("draw_calls", fs.DrawCalls),
			zap.Int("budget", r.DrawCallBudget))
	}
	r.frames++
	r.drawCalls += fs.DrawCalls
	r.batches += fs.Batches
	r.sprites += fs.Sprites
	r.elapsed += fs.Elapsed
	if r.frames < r.Every {
		return
	}
	n := float64(r.frames)
	r.log.Debug("frame stats",
		zap.Int("frames", r.frames),
		zap.Float64("draw_calls_avg", float64(r.drawCalls)/n),
		zap.Float64("batches_avg", float64(r.batches)/n),
		zap.Float64("sprites_avg", float64(r.sprites)/n),
		zap.Duration("render_avg", r.elapsed/time.Duration(r.frames)),
		zap.Float64("fps", ts.FPS),
		zap.Float64("frame_ms_max", ts.MaxFrame))
	r.frames, r.drawCalls, r.batches, r.sprites, r.elapsed = 0, 0, 0, 0, 0
}
