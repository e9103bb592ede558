package bramble

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"go.uber.org/zap"

	"github.com/phanxgames/bramble/ecs"
)

// AnimationEventKind identifies an animation event.
type AnimationEventKind uint8

const (
	AnimationFrameChanged       AnimationEventKind = iota // a new frame is shown
	AnimationLooped                                       // playback wrapped or bounced
	AnimationCompleted                                    // a non-looping clip stopped at its end
	AnimationTransitionFinished                           // a TransitionTo switched clips
)

func (k AnimationEventKind) String() string {
	switch k {
	case AnimationFrameChanged:
		return "frame"
	case AnimationLooped:
		return "loop"
	case AnimationCompleted:
		return "complete"
	case AnimationTransitionFinished:
		return "transition_complete"
	default:
		return "unknown"
	}
}

// AnimationEvent is one playback event for one entity.
type AnimationEvent struct {
	Entity ecs.Entity
	Kind   AnimationEventKind
	Clip   string
	Frame  int
}

// AnimationEventSink receives an entity's animation events. Events are
// delivered after every entity has been advanced for the tick.
type AnimationEventSink interface {
	OnAnimationEvent(ev AnimationEvent)
}

// AnimationCallbacks adapts optional functions to AnimationEventSink.
type AnimationCallbacks struct {
	OnFrame              func(ev AnimationEvent)
	OnLoop               func(ev AnimationEvent)
	OnComplete           func(ev AnimationEvent)
	OnTransitionComplete func(ev AnimationEvent)
}

// OnAnimationEvent dispatches ev to the matching callback, if set.
func (c *AnimationCallbacks) OnAnimationEvent(ev AnimationEvent) {
	var fn func(AnimationEvent)
	switch ev.Kind {
	case AnimationFrameChanged:
		fn = c.OnFrame
	case AnimationLooped:
		fn = c.OnLoop
	case AnimationCompleted:
		fn = c.OnComplete
	case AnimationTransitionFinished:
		fn = c.OnTransitionComplete
	}
	if fn != nil {
		fn(ev)
	}
}

// AnimationEventFunc adapts a single function to AnimationEventSink.
type AnimationEventFunc func(ev AnimationEvent)

// OnAnimationEvent calls f.
func (f AnimationEventFunc) OnAnimationEvent(ev AnimationEvent) { f(ev) }

// queuedAnimationEvent is what travels through the Donburi event queue.
type queuedAnimationEvent struct {
	origin *AnimationSystem
	sink   AnimationEventSink
	event  AnimationEvent
}

// animationEventType is the Donburi event type animation systems publish to.
var animationEventType = events.NewEventType[queuedAnimationEvent]()

// subscribe attaches the system's dispatcher to the world's event queue once
// per backing world. World.Clear swaps the backing world, so the check runs
// every tick.
func (s *AnimationSystem) subscribe(w *ecs.World) {
	backing := w.Backing()
	if s.subscribed == backing {
		return
	}
	animationEventType.Subscribe(backing, s.dispatch)
	s.subscribed = backing
}

func (s *AnimationSystem) publish(w *ecs.World, a *SpriteAnimation, ev AnimationEvent) {
	if a.Events == nil {
		return
	}
	animationEventType.Publish(w.Backing(), queuedAnimationEvent{origin: s, sink: a.Events, event: ev})
}

func (s *AnimationSystem) drain(w *ecs.World) {
	animationEventType.ProcessEvents(w.Backing())
}

func (s *AnimationSystem) dispatch(_ donburi.World, q queuedAnimationEvent) {
	if q.origin != s {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			s.log.Warn("animation event handler panicked",
				zap.Stringer("kind", q.event.Kind),
				zap.String("clip", q.event.Clip),
				zap.Int("frame", q.event.Frame),
				zap.Any("entity", q.event.Entity),
				zap.Any("panic", p))
		}
	}()
	q.sink.OnAnimationEvent(q.event)
}
