package bramble

import (
	"github.com/yohamta/donburi"
	"go.uber.org/zap"

	"github.com/phanxgames/bramble/ecs"
)

// AnimationSystem advances every SpriteAnimation by the step delta. It runs
// in the update stage.
type AnimationSystem struct {
	clips      *ClipRegistry
	log        *zap.Logger
	order      int
	subscribed donburi.World
}

// NewAnimationSystem returns a system reading clips from the registry.
func NewAnimationSystem(clips *ClipRegistry, logger *zap.Logger) *AnimationSystem {
	return &AnimationSystem{clips: clips, log: loggerOr(logger)}
}

// WithOrder sets the ordering key within the update stage.
func (s *AnimationSystem) WithOrder(order int) *AnimationSystem {
	s.order = order
	return s
}

func (s *AnimationSystem) Name() string { return "bramble.animation" }
func (s *AnimationSystem) Stage() ecs.Stage { return ecs.StageUpdate }
func (s *AnimationSystem) Order() int { return s.order }

// Update advances all animations, then delivers the tick's events.
func (s *AnimationSystem) Update(ctx *ecs.TickContext) {
	w := ctx.World
	s.subscribe(w)
	q := w.Query(ecs.QuerySpec{All: []ecs.Definition{SpriteAnimationComponent}})
	for row := range q.Rows() {
		s.advance(w, row.Entity, ecs.Field(row, SpriteAnimationComponent), ctx.Delta)
	}
	s.drain(w)
}

func (s *AnimationSystem) advance(w *ecs.World, e ecs.Entity, a *SpriteAnimation, delta float64) {
	if t := a.Transition; t != nil {
		t.Elapsed += delta
		if t.Elapsed >= t.Duration {
			a.Clip = t.Target
			a.Frame = 0
			a.Elapsed = 0
			a.Direction = 1
			a.Transition = nil
			a.State = Playing
			s.publish(w, a, AnimationEvent{Entity: e, Kind: AnimationTransitionFinished, Clip: a.Clip})
		}
		return
	}
	if a.State != Playing {
		return
	}
	clip, ok := s.clips.Get(a.Clip)
	if !ok || clip.Len() == 0 {
		return
	}

	n := clip.Len()
	mode := a.mode(clip)
	if a.Frame < 0 || a.Frame >= n {
		a.Frame = min(max(a.Frame, 0), n-1)
	}
	a.Elapsed += delta * clip.Speed * a.speed()

	for a.Elapsed >= clip.Duration(a.Frame) {
		a.Elapsed -= clip.Duration(a.Frame)
		next := a.Frame + a.direction()
		overflow, underflow := next >= n, next < 0

		switch mode {
		case LoopNone:
			if overflow || underflow {
				a.Frame = min(max(next, 0), n-1)
				a.State = Stopped
				a.Elapsed = 0
				s.publish(w, a, AnimationEvent{Entity: e, Kind: AnimationCompleted, Clip: a.Clip, Frame: a.Frame})
				return
			}
			a.Frame = next

		case LoopPingPong:
			switch {
			case overflow:
				a.Direction = -1
				a.Frame = max(0, n-2)
			case underflow:
				a.Direction = 1
				a.Frame = min(1, n-1)
			default:
				a.Frame = next
			}
			if overflow || underflow {
				s.publish(w, a, AnimationEvent{Entity: e, Kind: AnimationLooped, Clip: a.Clip, Frame: a.Frame})
			}

		default:
			switch {
			case overflow:
				a.Frame = 0
			case underflow:
				a.Frame = n - 1
			default:
				a.Frame = next
			}
			if overflow || underflow {
				s.publish(w, a, AnimationEvent{Entity: e, Kind: AnimationLooped, Clip: a.Clip, Frame: a.Frame})
			}
		}
		s.publish(w, a, AnimationEvent{Entity: e, Kind: AnimationFrameChanged, Clip: a.Clip, Frame: a.Frame})
	}
}
