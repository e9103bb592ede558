package bramble

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/phanxgames/bramble/ecs"
)

// AnimationController is the command surface for SpriteAnimation
// components. Commands on an entity without the component, or naming an
// unknown clip, log a warning and do nothing. Invalid numbers are errors.
type AnimationController struct {
	world *ecs.World
	clips *ClipRegistry
	log   *zap.Logger
}

// NewAnimationController returns a controller over w's animations.
func NewAnimationController(w *ecs.World, clips *ClipRegistry, logger *zap.Logger) *AnimationController {
	return &AnimationController{world: w, clips: clips, log: loggerOr(logger)}
}

func (c *AnimationController) component(e ecs.Entity, op string) *SpriteAnimation {
	a := ecs.Get(c.world, e, SpriteAnimationComponent)
	if a == nil {
		c.log.Warn("animation command on entity without SpriteAnimation",
			zap.String("op", op), zap.Any("entity", e))
	}
	return a
}

func (c *AnimationController) clip(name, op string) (*AnimationClip, bool) {
	clip, ok := c.clips.Get(name)
	if !ok {
		c.log.Warn("animation command names unknown clip",
			zap.String("op", op), zap.String("clip", name))
	}
	return clip, ok
}

// Attach adds a stopped SpriteAnimation on clip to e, replacing any existing
// one.
func (c *AnimationController) Attach(e ecs.Entity, clip string, events AnimationEventSink) error {
	if !c.clips.Has(clip) {
		return fmt.Errorf("%w: unknown clip %q", ErrInvalidClip, clip)
	}
	a := NewSpriteAnimation(clip)
	a.Events = events
	return ecs.Add(c.world, e, SpriteAnimationComponent, a)
}

// Play starts clip from its first frame. Playing the clip that is already
// playing changes nothing.
func (c *AnimationController) Play(e ecs.Entity, clip string) {
	a := c.component(e, "play")
	if a == nil {
		return
	}
	if _, ok := c.clip(clip, "play"); !ok {
		return
	}
	if a.Clip == clip && a.State == Playing && a.Transition == nil {
		return
	}
	a.Clip = clip
	a.Frame = 0
	a.Elapsed = 0
	a.Direction = 1
	a.Transition = nil
	a.State = Playing
}

// Pause freezes a playing animation on its current frame.
func (c *AnimationController) Pause(e ecs.Entity) {
	if a := c.component(e, "pause"); a != nil && a.State == Playing {
		a.State = Paused
	}
}

// Resume continues a paused animation.
func (c *AnimationController) Resume(e ecs.Entity) {
	if a := c.component(e, "resume"); a != nil && a.State == Paused {
		a.State = Playing
	}
}

// Stop halts playback, rewinds to frame 0 and cancels any transition.
func (c *AnimationController) Stop(e ecs.Entity) {
	a := c.component(e, "stop")
	if a == nil {
		return
	}
	a.State = Stopped
	a.Frame = 0
	a.Elapsed = 0
	a.Direction = 1
	a.Transition = nil
}

// SetSpeed sets the entity's speed multiplier. It fails for a speed that is
// not a positive finite number.
func (c *AnimationController) SetSpeed(e ecs.Entity, speed float64) error {
	if !(speed > 0) || math.IsInf(speed, 1) {
		return fmt.Errorf("%w: animation speed %v must be positive", ErrInvalidArgument, speed)
	}
	if a := c.component(e, "setSpeed"); a != nil {
		a.Speed = speed
	}
	return nil
}

// SetLoopMode overrides the clip's loop mode. LoopInherit restores it.
func (c *AnimationController) SetLoopMode(e ecs.Entity, mode LoopMode) {
	if a := c.component(e, "setLoopMode"); a != nil {
		a.LoopMode = mode
	}
}

// SetFlip sets the horizontal and vertical flip flags.
func (c *AnimationController) SetFlip(e ecs.Entity, flipX, flipY bool) {
	if a := c.component(e, "setFlip"); a != nil {
		a.FlipX, a.FlipY = flipX, flipY
	}
}

// SetRotation sets the sprite rotation in radians.
func (c *AnimationController) SetRotation(e ecs.Entity, radians float64) {
	if a := c.component(e, "setRotation"); a != nil {
		a.Rotation = radians
	}
}

// SetEvents replaces the entity's event sink. Nil disables events.
func (c *AnimationController) SetEvents(e ecs.Entity, sink AnimationEventSink) {
	if a := c.component(e, "setEvents"); a != nil {
		a.Events = sink
	}
}

// TransitionTo switches to clip once durationMs of simulation time has
// passed. Frame advancement is suspended during the transition. A
// non-positive duration switches on the next step.
func (c *AnimationController) TransitionTo(e ecs.Entity, clip string, durationMs float64) {
	a := c.component(e, "transitionTo")
	if a == nil {
		return
	}
	if _, ok := c.clip(clip, "transitionTo"); !ok {
		return
	}
	a.Transition = &AnimationTransition{Target: clip, Duration: max(durationMs, 0)}
}

// CurrentFrame resolves the region of the entity's current frame.
func (c *AnimationController) CurrentFrame(e ecs.Entity) (TextureRegion, bool) {
	a := c.component(e, "currentFrame")
	if a == nil {
		return TextureRegion{}, false
	}
	clip, ok := c.clip(a.Clip, "currentFrame")
	if !ok {
		return TextureRegion{}, false
	}
	return clip.Region(a.Frame)
}

// State returns the entity's play state.
func (c *AnimationController) State(e ecs.Entity) (PlayState, bool) {
	a := ecs.Get(c.world, e, SpriteAnimationComponent)
	if a == nil {
		return Stopped, false
	}
	return a.State, true
}

// Step moves the animation by frames (negative steps backward) without
// firing events and resets the sub-frame timer. Looping clips wrap; other
// clips clamp to their ends.
func (c *AnimationController) Step(e ecs.Entity, frames int) {
	a := c.component(e, "step")
	if a == nil {
		return
	}
	clip, ok := c.clip(a.Clip, "step")
	if !ok || clip.Len() == 0 {
		return
	}
	n := clip.Len()
	next := a.Frame + frames
	if a.mode(clip) == LoopNone {
		next = min(max(next, 0), n-1)
	} else {
		next = ((next % n) + n) % n
	}
	a.Frame = next
	a.Elapsed = 0
}
