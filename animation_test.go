package bramble

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/phanxgames/bramble/ecs"
)

type eventRecorder struct {
	events []AnimationEvent
}

func (r *eventRecorder) OnAnimationEvent(ev AnimationEvent) { r.events = append(r.events, ev) }

func (r *eventRecorder) frames() []int {
	var out []int
	for _, ev := range r.events {
		if ev.Kind == AnimationFrameChanged {
			out = append(out, ev.Frame)
		}
	}
	return out
}

func (r *eventRecorder) count(kind AnimationEventKind) int {
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

type animFixture struct {
	world *ecs.World
	clips *ClipRegistry
	ctrl  *AnimationController
	atlas *TextureAtlas
}

func newAnimFixture(t *testing.T, log *zap.Logger) *animFixture {
	t.Helper()
	atlas := NewTextureAtlas()
	_, err := atlas.AddGrid("f", testTexture("sheet", 64, 16), 16, 16)
	require.NoError(t, err)

	clips := NewClipRegistry(log)
	for _, c := range []AnimationClip{
		{Name: "loop", Frames: FramesFromRegions("f0", "f1", "f2", "f3"), LoopMode: LoopRepeat},
		{Name: "pingpong", Frames: FramesFromRegions("f0", "f1", "f2"), LoopMode: LoopPingPong},
		{Name: "once", Frames: FramesFromRegions("f0", "f1", "f2"), LoopMode: LoopNone},
		{Name: "run", Frames: FramesFromRegions("f2", "f3")},
	} {
		c.Atlas = atlas
		c.FrameDuration = 100
		require.NoError(t, clips.Register(c))
	}

	w := ecs.NewWorld()
	require.NoError(t, w.RegisterSystem(NewAnimationSystem(clips, log)))
	return &animFixture{world: w, clips: clips, ctrl: NewAnimationController(w, clips, log), atlas: atlas}
}

func (f *animFixture) spawn(t *testing.T, clip string) (ecs.Entity, *eventRecorder) {
	t.Helper()
	e := f.world.CreateEntity()
	rec := &eventRecorder{}
	require.NoError(t, f.ctrl.Attach(e, clip, rec))
	f.ctrl.Play(e, clip)
	return e, rec
}

func (f *animFixture) anim(e ecs.Entity) *SpriteAnimation {
	return ecs.Get(f.world, e, SpriteAnimationComponent)
}

func TestAnimationLoopWraps(t *testing.T) {
	f := newAnimFixture(t, nil)
	e, rec := f.spawn(t, "loop")

	for i := 0; i < 5; i++ {
		f.world.Step(100)
	}
	assert.Equal(t, []int{1, 2, 3, 0, 1}, rec.frames())
	assert.Equal(t, 1, rec.count(AnimationLooped))
	assert.Zero(t, rec.count(AnimationCompleted))
	assert.Equal(t, Playing, f.anim(e).State)
}

func TestAnimationLargeDeltaAdvancesSeveralFrames(t *testing.T) {
	f := newAnimFixture(t, nil)
	e, rec := f.spawn(t, "loop")

	f.world.Step(350)
	a := f.anim(e)
	assert.Equal(t, 3, a.Frame)
	assert.InDelta(t, 50, a.Elapsed, 1e-9)
	assert.Equal(t, []int{1, 2, 3}, rec.frames())
}

func TestAnimationPingPong(t *testing.T) {
	f := newAnimFixture(t, nil)
	_, rec := f.spawn(t, "pingpong")

	for i := 0; i < 5; i++ {
		f.world.Step(100)
	}
	assert.Equal(t, []int{1, 2, 1, 0, 1}, rec.frames())
	assert.Equal(t, 2, rec.count(AnimationLooped))
}

func TestAnimationNoneStopsOnLastFrame(t *testing.T) {
	f := newAnimFixture(t, nil)
	e, rec := f.spawn(t, "once")

	for i := 0; i < 6; i++ {
		f.world.Step(100)
	}
	a := f.anim(e)
	assert.Equal(t, 2, a.Frame)
	assert.Equal(t, Stopped, a.State)
	assert.Zero(t, a.Elapsed)
	assert.Equal(t, []int{1, 2}, rec.frames())
	assert.Equal(t, 1, rec.count(AnimationCompleted))
	assert.Zero(t, rec.count(AnimationLooped))
}

func TestAnimationSpeed(t *testing.T) {
	f := newAnimFixture(t, nil)
	e, _ := f.spawn(t, "loop")

	require.NoError(t, f.ctrl.SetSpeed(e, 2))
	f.world.Step(50)
	assert.Equal(t, 1, f.anim(e).Frame)

	for _, bad := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		assert.ErrorIs(t, f.ctrl.SetSpeed(e, bad), ErrInvalidArgument)
	}
	assert.Equal(t, 2.0, f.anim(e).Speed)
}

func TestAnimationPauseResumeStop(t *testing.T) {
	f := newAnimFixture(t, nil)
	e, _ := f.spawn(t, "loop")

	f.ctrl.Pause(e)
	f.world.Step(500)
	assert.Equal(t, 0, f.anim(e).Frame)
	state, ok := f.ctrl.State(e)
	require.True(t, ok)
	assert.Equal(t, Paused, state)

	f.ctrl.Resume(e)
	f.world.Step(100)
	assert.Equal(t, 1, f.anim(e).Frame)

	f.ctrl.Stop(e)
	a := f.anim(e)
	assert.Equal(t, Stopped, a.State)
	assert.Equal(t, 0, a.Frame)
	f.world.Step(100)
	assert.Equal(t, 0, f.anim(e).Frame)
}

func TestAnimationPlaySameClipIsNoop(t *testing.T) {
	f := newAnimFixture(t, nil)
	e, _ := f.spawn(t, "loop")
	f.world.Step(250)

	f.ctrl.Play(e, "loop")
	assert.Equal(t, 2, f.anim(e).Frame)

	f.ctrl.Play(e, "pingpong")
	a := f.anim(e)
	assert.Equal(t, "pingpong", a.Clip)
	assert.Equal(t, 0, a.Frame)
	assert.Zero(t, a.Elapsed)
}

func TestAnimationTransition(t *testing.T) {
	f := newAnimFixture(t, nil)
	e, rec := f.spawn(t, "loop")

	f.ctrl.TransitionTo(e, "run", 200)
	f.world.Step(100)
	a := f.anim(e)
	assert.Equal(t, "loop", a.Clip)
	assert.Equal(t, 0, a.Frame, "frames do not advance during a transition")

	f.world.Step(100)
	a = f.anim(e)
	assert.Equal(t, "run", a.Clip)
	assert.Equal(t, 0, a.Frame)
	assert.Nil(t, a.Transition)
	require.Equal(t, 1, rec.count(AnimationTransitionFinished))
	assert.Equal(t, "run", rec.events[len(rec.events)-1].Clip)

	f.world.Step(100)
	assert.Equal(t, 1, f.anim(e).Frame)

	region, ok := f.ctrl.CurrentFrame(e)
	require.True(t, ok)
	assert.Equal(t, f.atlas.MustRegion("f3"), region)
}

func TestAnimationZeroDurationTransition(t *testing.T) {
	f := newAnimFixture(t, nil)
	e, _ := f.spawn(t, "loop")
	f.ctrl.Stop(e)

	f.ctrl.TransitionTo(e, "run", -5)
	f.world.Step(16)
	a := f.anim(e)
	assert.Equal(t, "run", a.Clip)
	assert.Equal(t, Playing, a.State)
}

func TestAnimationEventsAfterAllEntitiesAdvance(t *testing.T) {
	f := newAnimFixture(t, nil)
	first := f.world.CreateEntity()
	second := f.world.CreateEntity()

	var seen []int
	require.NoError(t, f.ctrl.Attach(first, "loop", AnimationEventFunc(func(ev AnimationEvent) {
		seen = append(seen, f.anim(second).Frame)
	})))
	require.NoError(t, f.ctrl.Attach(second, "loop", nil))
	f.ctrl.Play(first, "loop")
	f.ctrl.Play(second, "loop")

	f.world.Step(100)
	assert.Equal(t, []int{1}, seen)
}

func TestAnimationCallbackPanicIsIsolated(t *testing.T) {
	log, logs := observedLogger()
	f := newAnimFixture(t, log)

	bad := f.world.CreateEntity()
	require.NoError(t, f.ctrl.Attach(bad, "loop", &AnimationCallbacks{
		OnFrame: func(AnimationEvent) { panic("boom") },
	}))
	f.ctrl.Play(bad, "loop")
	good, rec := f.spawn(t, "loop")

	f.world.Step(100)
	assert.Equal(t, []int{1}, rec.frames())
	assert.Equal(t, 1, f.anim(bad).Frame)
	assert.Equal(t, 1, f.anim(good).Frame)
	assert.Equal(t, 1, warnings(logs))
}

func TestAnimationCallbacksDispatchByKind(t *testing.T) {
	f := newAnimFixture(t, nil)
	e := f.world.CreateEntity()
	var frames, completes int
	require.NoError(t, f.ctrl.Attach(e, "once", &AnimationCallbacks{
		OnFrame:    func(AnimationEvent) { frames++ },
		OnComplete: func(ev AnimationEvent) {
			completes++
			assert.Equal(t, e, ev.Entity)
		},
	}))
	f.ctrl.Play(e, "once")

	f.world.Step(1000)
	assert.Equal(t, 2, frames)
	assert.Equal(t, 1, completes)
}

func TestAnimationControllerSoftFailures(t *testing.T) {
	log, logs := observedLogger()
	f := newAnimFixture(t, log)
	bare := f.world.CreateEntity()

	f.ctrl.Play(bare, "loop")
	f.ctrl.Pause(bare)
	f.ctrl.Step(bare, 1)
	f.ctrl.TransitionTo(bare, "run", 10)
	_, ok := f.ctrl.CurrentFrame(bare)
	assert.False(t, ok)
	assert.Equal(t, 5, warnings(logs))

	e, _ := f.spawn(t, "loop")
	f.ctrl.Play(e, "nope")
	f.ctrl.TransitionTo(e, "nope", 10)
	assert.Equal(t, 7, warnings(logs))
	assert.Equal(t, "loop", f.anim(e).Clip)
	assert.Nil(t, f.anim(e).Transition)

	assert.ErrorIs(t, f.ctrl.Attach(e, "nope", nil), ErrInvalidClip)
	_, ok = f.ctrl.State(bare)
	assert.False(t, ok)
}

func TestAnimationControllerStep(t *testing.T) {
	f := newAnimFixture(t, nil)
	e, rec := f.spawn(t, "loop")

	f.ctrl.Step(e, -1)
	assert.Equal(t, 3, f.anim(e).Frame)
	f.ctrl.Step(e, 6)
	assert.Equal(t, 1, f.anim(e).Frame)

	f.ctrl.SetLoopMode(e, LoopNone)
	f.ctrl.Step(e, 10)
	assert.Equal(t, 3, f.anim(e).Frame)
	f.ctrl.Step(e, -10)
	assert.Equal(t, 0, f.anim(e).Frame)
	assert.Empty(t, rec.events)
}

func TestAnimationFlipAndRotation(t *testing.T) {
	f := newAnimFixture(t, nil)
	e, _ := f.spawn(t, "loop")
	f.ctrl.SetFlip(e, true, false)
	f.ctrl.SetRotation(e, 1.5)

	a := f.anim(e)
	assert.True(t, a.FlipX)
	assert.False(t, a.FlipY)
	assert.Equal(t, 1.5, a.Rotation)
}

func TestAnimationRemovedClipHaltsAdvance(t *testing.T) {
	f := newAnimFixture(t, nil)
	e, _ := f.spawn(t, "loop")
	require.True(t, f.clips.Remove("loop"))
	f.world.Step(500)
	assert.Equal(t, 0, f.anim(e).Frame)
}

func TestClipRegistryValidation(t *testing.T) {
	atlas := NewTextureAtlas()
	require.NoError(t, atlas.Add("a", TextureRegion{Texture: testTexture("t", 4, 4)}))
	clips := NewClipRegistry(nil)

	tests := map[string]AnimationClip{
		"no name":        {Atlas: atlas, FrameDuration: 100},
		"no atlas":       {Name: "x", FrameDuration: 100},
		"negative speed": {Name: "x", Atlas: atlas, FrameDuration: 100, Speed: -1},
		"nan speed":      {Name: "x", Atlas: atlas, FrameDuration: 100, Speed: math.NaN()},
		"missing region": {Name: "x", Atlas: atlas, FrameDuration: 100, Frames: FramesFromRegions("b")},
		"negative frame": {Name: "x", Atlas: atlas, Frames: []AnimationFrame{{Region: "a", Duration: -1}}},
		"no duration":    {Name: "x", Atlas: atlas, Frames: FramesFromRegions("a")},
	}
	for name, clip := range tests {
		assert.ErrorIs(t, clips.Register(clip), ErrInvalidClip, name)
	}
	assert.Empty(t, clips.Names())

	require.NoError(t, clips.Register(AnimationClip{
		Name:   "explicit",
		Atlas:  atlas,
		Frames: []AnimationFrame{{Region: "a", Duration: 40}},
	}))
	c, ok := clips.Get("explicit")
	require.True(t, ok)
	assert.Equal(t, 1.0, c.Speed)
	assert.Equal(t, LoopRepeat, c.LoopMode)
	assert.Equal(t, 40.0, c.Duration(0))
}

func TestClipRegistryCopiesFrames(t *testing.T) {
	atlas := NewTextureAtlas()
	require.NoError(t, atlas.Add("a", TextureRegion{Texture: testTexture("t", 4, 4)}))
	require.NoError(t, atlas.Add("b", TextureRegion{Texture: testTexture("t", 4, 4)}))
	clips := NewClipRegistry(nil)

	frames := FramesFromRegions("a", "b")
	require.NoError(t, clips.Register(AnimationClip{Name: "c", Atlas: atlas, Frames: frames, FrameDuration: 10}))
	frames[0].Region = "b"

	c, _ := clips.Get("c")
	assert.Equal(t, "a", c.Frames[0].Region)
	assert.True(t, clips.Has("c"))
	assert.False(t, clips.Remove("missing"))
}

func TestSpriteAnimationSnapshotIsDetached(t *testing.T) {
	w := ecs.NewWorld()
	e := w.CreateEntity()
	a := NewSpriteAnimation("loop")
	a.Transition = &AnimationTransition{Target: "run", Duration: 10}
	require.NoError(t, ecs.Add(w, e, SpriteAnimationComponent, a))

	snap, ok := w.Snapshot(e)
	require.True(t, ok)
	ecs.Get(w, e, SpriteAnimationComponent).Transition.Target = "changed"

	saved := snap.Components[SpriteAnimationComponent.Name()].(SpriteAnimation)
	assert.Equal(t, "run", saved.Transition.Target)
}
