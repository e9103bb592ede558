package bramble

import (
	"fmt"
	"slices"
	"sort"

	"go.uber.org/zap"

	"github.com/phanxgames/bramble/ecs"
)

// LoopMode selects what happens when playback runs past either end of a
// clip.
type LoopMode uint8

const (
	LoopInherit  LoopMode = iota // use the clip's mode (components only)
	LoopNone                     // stop on the boundary frame
	LoopRepeat                   // wrap to the other end
	LoopPingPong                 // reverse direction at each end
)

func (m LoopMode) String() string {
	switch m {
	case LoopNone:
		return "none"
	case LoopRepeat:
		return "loop"
	case LoopPingPong:
		return "ping-pong"
	default:
		return "inherit"
	}
}

// AnimationFrame names one atlas region. A zero Duration uses the clip's
// FrameDuration.
type AnimationFrame struct {
	Region   string
	Duration float64
}

// AnimationClip is an ordered run of atlas regions. Durations are in
// milliseconds.
type AnimationClip struct {
	Name          string
	Atlas         *TextureAtlas
	Frames        []AnimationFrame
	FrameDuration float64
	// LoopMode defaults to LoopRepeat.
	LoopMode LoopMode
	// Speed defaults to 1.
	Speed float64
}

// Len returns the number of frames.
func (c *AnimationClip) Len() int { return len(c.Frames) }

// Duration returns how long frame i is shown at speed 1.
func (c *AnimationClip) Duration(i int) float64 {
	if d := c.Frames[i].Duration; d > 0 {
		return d
	}
	return c.FrameDuration
}

// Region resolves frame i in the clip's atlas.
func (c *AnimationClip) Region(i int) (TextureRegion, bool) {
	if i < 0 || i >= len(c.Frames) || c.Atlas == nil {
		return TextureRegion{}, false
	}
	r, err := c.Atlas.Region(c.Frames[i].Region)
	if err != nil {
		return TextureRegion{}, false
	}
	return r, true
}

// FramesFromRegions builds a frame list with no per-frame durations.
func FramesFromRegions(names ...string) []AnimationFrame {
	frames := make([]AnimationFrame, len(names))
	for i, n := range names {
		frames[i].Region = n
	}
	return frames
}

// ClipRegistry stores validated clips by name.
type ClipRegistry struct {
	clips map[string]*AnimationClip
	log   *zap.Logger
}

// NewClipRegistry returns an empty registry. A nil logger uses the package
// logger.
func NewClipRegistry(logger *zap.Logger) *ClipRegistry {
	return &ClipRegistry{clips: make(map[string]*AnimationClip), log: loggerOr(logger)}
}

// Register validates clip and stores a copy under its name, replacing any
// clip with the same name. Every frame must resolve in the atlas and every
// duration and the speed must be positive.
func (r *ClipRegistry) Register(clip AnimationClip) error {
	if clip.Name == "" {
		return fmt.Errorf("%w: clip has no name", ErrInvalidClip)
	}
	if clip.Atlas == nil {
		return fmt.Errorf("%w: clip %q has no atlas", ErrInvalidClip, clip.Name)
	}
	if clip.Speed == 0 {
		clip.Speed = 1
	}
	if clip.Speed < 0 || clip.Speed != clip.Speed {
		return fmt.Errorf("%w: clip %q speed %v must be positive", ErrInvalidClip, clip.Name, clip.Speed)
	}
	if clip.LoopMode == LoopInherit {
		clip.LoopMode = LoopRepeat
	}
	for i, f := range clip.Frames {
		if !clip.Atlas.Has(f.Region) {
			return fmt.Errorf("%w: clip %q frame %d: region %q not in atlas", ErrInvalidClip, clip.Name, i, f.Region)
		}
		if f.Duration < 0 {
			return fmt.Errorf("%w: clip %q frame %d: duration %v must be positive", ErrInvalidClip, clip.Name, i, f.Duration)
		}
		if f.Duration == 0 && !(clip.FrameDuration > 0) {
			return fmt.Errorf("%w: clip %q frame %d: no duration and default frame duration %v is not positive",
				ErrInvalidClip, clip.Name, i, clip.FrameDuration)
		}
	}
	clip.Frames = slices.Clone(clip.Frames)
	if _, replaced := r.clips[clip.Name]; replaced {
		r.log.Debug("animation clip replaced", zap.String("clip", clip.Name))
	}
	r.clips[clip.Name] = &clip
	return nil
}

// Get returns the named clip.
func (r *ClipRegistry) Get(name string) (*AnimationClip, bool) {
	c, ok := r.clips[name]
	return c, ok
}

// Has reports whether a clip is registered under name.
func (r *ClipRegistry) Has(name string) bool {
	_, ok := r.clips[name]
	return ok
}

// Remove drops the named clip. Entities still pointing at it stop advancing.
func (r *ClipRegistry) Remove(name string) bool {
	if _, ok := r.clips[name]; !ok {
		return false
	}
	delete(r.clips, name)
	return true
}

// Names returns the registered clip names, sorted.
func (r *ClipRegistry) Names() []string {
	names := make([]string, 0, len(r.clips))
	for n := range r.clips {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// PlayState is the playback state of a SpriteAnimation.
type PlayState uint8

const (
	Stopped PlayState = iota
	Playing
	Paused
)

func (s PlayState) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// AnimationTransition is a pending switch to another clip.
type AnimationTransition struct {
	Target   string  `json:"target" yaml:"target"`
	Duration float64 `json:"duration" yaml:"duration"`
	Elapsed  float64 `json:"elapsed" yaml:"elapsed"`
}

// SpriteAnimation is the per-entity playback state advanced by
// AnimationSystem.
type SpriteAnimation struct {
	Clip  string `json:"clip" yaml:"clip"`
	Frame int    `json:"frame" yaml:"frame"`
	// Elapsed is the time spent on the current frame, in milliseconds.
	Elapsed float64   `json:"elapsed" yaml:"elapsed"`
	State   PlayState `json:"state" yaml:"state"`
	// Speed multiplies the clip speed.
	Speed float64 `json:"speed" yaml:"speed"`
	// LoopMode overrides the clip's mode unless LoopInherit.
	LoopMode LoopMode `json:"loop_mode" yaml:"loop_mode"`
	// Direction is +1 or -1.
	Direction  int                  `json:"direction" yaml:"direction"`
	FlipX      bool                 `json:"flip_x" yaml:"flip_x"`
	FlipY      bool                 `json:"flip_y" yaml:"flip_y"`
	Rotation   float64              `json:"rotation" yaml:"rotation"`
	Transition *AnimationTransition `json:"transition,omitempty" yaml:"transition,omitempty"`

	// Events receives this entity's frame, loop, complete and transition
	// events. Optional.
	Events AnimationEventSink `json:"-" yaml:"-"`
}

// NewSpriteAnimation returns a stopped animation on clip.
func NewSpriteAnimation(clip string) SpriteAnimation {
	return SpriteAnimation{Clip: clip, Speed: 1, Direction: 1}
}

func (a *SpriteAnimation) speed() float64 {
	if a.Speed <= 0 {
		return 1
	}
	return a.Speed
}

func (a *SpriteAnimation) direction() int {
	if a.Direction < 0 {
		return -1
	}
	return 1
}

func (a *SpriteAnimation) mode(clip *AnimationClip) LoopMode {
	if a.LoopMode != LoopInherit {
		return a.LoopMode
	}
	return clip.LoopMode
}

// SpriteAnimationComponent is the ECS definition for SpriteAnimation.
var SpriteAnimationComponent = ecs.Define("bramble.SpriteAnimation",
	ecs.WithDefaults(func() SpriteAnimation { return NewSpriteAnimation("") }),
	ecs.WithClone(func(a SpriteAnimation) SpriteAnimation {
		if a.Transition != nil {
			t := *a.Transition
			a.Transition = &t
		}
		return a
	}),
)
