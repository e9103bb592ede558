package bramble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loopRecorder struct {
	events []string
	deltas []float64
	alphas []float64
}

func newRecordedLoop(host Host, tm *TimeManager, opts LoopOptions) (*GameLoop, *loopRecorder) {
	rec := &loopRecorder{}
	l := NewGameLoop(host, tm, opts)
	l.OnSimulationStep(func(d float64) {
		rec.events = append(rec.events, "step")
		rec.deltas = append(rec.deltas, d)
	})
	l.OnRender(func(a float64) {
		rec.events = append(rec.events, "render")
		rec.alphas = append(rec.alphas, a)
	})
	return l, rec
}

func TestGameLoopStepsBeforeRender(t *testing.T) {
	host := NewManualHost()
	tm := NewTimeManager(TimeOptions{FixedDelta: 10, MaxAccumulator: 1000})
	l, rec := newRecordedLoop(host, tm, LoopOptions{VSync: true})

	l.Start()
	host.Advance(25)

	assert.Equal(t, []string{"step", "step", "render"}, rec.events)
	assert.Equal(t, []float64{10, 10}, rec.deltas)
	assert.Equal(t, []float64{0.5}, rec.alphas)
	assert.Equal(t, 1, tm.Stats().Samples)
	assert.Equal(t, 25.0, tm.Stats().MaxFrame)

	host.Advance(3)
	assert.Equal(t, []string{"step", "step", "render", "render"}, rec.events)
	assert.InDelta(t, 0.8, rec.alphas[1], 1e-9)
}

func TestGameLoopScaledDelta(t *testing.T) {
	host := NewManualHost()
	tm := NewTimeManager(TimeOptions{FixedDelta: 10, MaxAccumulator: 1000})
	require.NoError(t, tm.SetTimeScale(0.5))
	l, rec := newRecordedLoop(host, tm, LoopOptions{VSync: true})

	l.Start()
	host.Advance(40)
	assert.Equal(t, []float64{5, 5}, rec.deltas)
}

func TestGameLoopStartStopIdempotent(t *testing.T) {
	host := NewManualHost()
	l, rec := newRecordedLoop(host, NewTimeManager(TimeOptions{FixedDelta: 10}), LoopOptions{VSync: true})

	l.Start()
	l.Start()
	frames, _ := host.Pending()
	assert.Equal(t, 1, frames)
	assert.Equal(t, 1, host.Watchers())

	l.Stop()
	l.Stop()
	frames, _ = host.Pending()
	assert.Equal(t, 0, frames)
	assert.Equal(t, 0, host.Watchers())

	host.Advance(100)
	assert.Empty(t, rec.events)

	l.Tick(200)
	assert.Empty(t, rec.events, "tick on a stopped loop is a no-op")
}

func TestGameLoopStopFromCallback(t *testing.T) {
	host := NewManualHost()
	l := NewGameLoop(host, NewTimeManager(TimeOptions{FixedDelta: 10}), LoopOptions{VSync: true})
	renders := 0
	l.OnRender(func(float64) {
		renders++
		l.Stop()
	})

	l.Start()
	host.Advance(16)
	host.Advance(16)
	assert.Equal(t, 1, renders)
	frames, _ := host.Pending()
	assert.Zero(t, frames)
}

func TestGameLoopTimedMode(t *testing.T) {
	host := NewManualHost()
	tm := NewTimeManager(TimeOptions{FixedDelta: 10, MaxAccumulator: 1000})
	l, rec := newRecordedLoop(host, tm, LoopOptions{VSync: false, TargetFPS: 50})

	l.Start()
	_, timers := host.Pending()
	assert.Equal(t, 1, timers)

	host.Advance(10) // timer due at 20
	assert.Empty(t, rec.events)

	host.Advance(10)
	assert.Equal(t, []string{"step", "step", "render"}, rec.events)

	_, timers = host.Pending()
	assert.Equal(t, 1, timers, "tick reschedules its timer")
}

func TestGameLoopVisibility(t *testing.T) {
	host := NewManualHost()
	tm := NewTimeManager(TimeOptions{FixedDelta: 10, MaxAccumulator: 1000})
	l, rec := newRecordedLoop(host, tm, LoopOptions{VSync: true})

	l.Start()
	host.Advance(15) // 1 step, 5 left over
	acc := tm.Accumulator()

	host.SetHidden(true)
	assert.True(t, tm.Paused())
	host.Advance(500)
	assert.Equal(t, acc, tm.Accumulator(), "hidden frames add no simulated time")

	rec.events = nil
	host.SetHidden(false)
	assert.False(t, tm.Paused())
	host.Advance(5)
	// Only the 5 ms after becoming visible count: 5 + 5 = one step.
	assert.Equal(t, []string{"step", "render"}, rec.events)
}

func TestGameLoopVisibilityKeepsManualPause(t *testing.T) {
	host := NewManualHost()
	tm := NewTimeManager(TimeOptions{FixedDelta: 10})
	l := NewGameLoop(host, tm, LoopOptions{VSync: true})
	l.Start()

	tm.Pause()
	host.SetHidden(true)
	host.SetHidden(false)
	assert.True(t, tm.Paused(), "a pause set by the game survives visibility changes")
}

func TestGameLoopSetTargetFPS(t *testing.T) {
	l := NewGameLoop(NewManualHost(), NewTimeManager(TimeOptions{}), LoopOptions{})
	assert.ErrorIs(t, l.SetTargetFPS(0), ErrInvalidArgument)
	require.NoError(t, l.SetTargetFPS(30))
	assert.Equal(t, 30.0, l.TargetFPS())
}

func TestGameLoopSwitchMode(t *testing.T) {
	host := NewManualHost()
	l := NewGameLoop(host, NewTimeManager(TimeOptions{}), LoopOptions{VSync: true})
	l.Start()
	l.SetVSync(false)
	frames, timers := host.Pending()
	assert.Equal(t, 0, frames)
	assert.Equal(t, 1, timers)
}
