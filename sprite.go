package bramble

import (
	"cmp"
	"slices"

	"go.uber.org/zap"

	"github.com/phanxgames/bramble/ecs"
)

// Sprite makes an entity drawable by SpriteRenderSystem. Entities that also
// hold a SpriteAnimation draw the animation's current frame instead of
// Drawable.
type Sprite struct {
	Drawable Drawable  `json:"-" yaml:"-"`
	Width    float64   `json:"width" yaml:"width"`
	Height   float64   `json:"height" yaml:"height"`
	Origin   *Vec2     `json:"origin,omitempty" yaml:"origin,omitempty"`
	Tint     *Color    `json:"tint,omitempty" yaml:"tint,omitempty"`
	Parallax *Vec2     `json:"parallax,omitempty" yaml:"parallax,omitempty"`
	Blend    BlendMode `json:"blend" yaml:"blend"`
	// Layer orders drawing; lower layers draw first.
	Layer  int  `json:"layer" yaml:"layer"`
	Hidden bool `json:"hidden" yaml:"hidden"`
}

// SpriteComponent is the ECS definition for Sprite.
var SpriteComponent = ecs.Define("bramble.Sprite",
	ecs.WithDefaults(func() Sprite { return Sprite{} }),
	ecs.WithClone(func(s Sprite) Sprite {
		if s.Origin != nil {
			o := *s.Origin
			s.Origin = &o
		}
		if s.Parallax != nil {
			p := *s.Parallax
			s.Parallax = &p
		}
		if s.Tint != nil {
			t := *s.Tint
			s.Tint = &t
		}
		return s
	}),
)

// SpriteRenderSystem draws every entity with a Transform and a Sprite
// through a Renderer. It runs in the render stage, inside the caller's
// Begin/End pair, and interpolates transforms by the tick's alpha.
type SpriteRenderSystem struct {
	renderer *Renderer
	clips    *ClipRegistry
	log      *zap.Logger
	queue    []spriteDraw
}

type spriteDraw struct {
	layer int
	seq   int
	d     Drawable
	opts  SpriteOptions
}

// NewSpriteRenderSystem returns a render-stage system. clips may be nil when
// no entity is animated.
func NewSpriteRenderSystem(r *Renderer, clips *ClipRegistry, logger *zap.Logger) *SpriteRenderSystem {
	return &SpriteRenderSystem{renderer: r, clips: clips, log: loggerOr(logger)}
}

func (s *SpriteRenderSystem) Name() string { return "bramble.sprite_render" }
func (s *SpriteRenderSystem) Stage() ecs.Stage { return ecs.StageRender }

// Update queues visible sprites, sorts them by layer and draws them.
func (s *SpriteRenderSystem) Update(ctx *ecs.TickContext) {
	s.queue = s.queue[:0]
	q := ctx.World.Query(ecs.QuerySpec{All: []ecs.Definition{TransformComponent, SpriteComponent}})
	for row := range q.Rows() {
		sp := ecs.Field(row, SpriteComponent)
		if sp.Hidden {
			continue
		}
		t := ecs.Field(row, TransformComponent)
		x, y, rot := t.Interpolated(ctx.Alpha)
		opts := SpriteOptions{
			X: x, Y: y,
			Width:    sp.Width * t.ScaleX,
			Height:   sp.Height * t.ScaleY,
			Origin:   sp.Origin,
			Rotation: rot,
			Tint:     sp.Tint,
			Parallax: sp.Parallax,
			Blend:    sp.Blend,
		}
		d := sp.Drawable
		if a := ecs.Get(ctx.World, row.Entity, SpriteAnimationComponent); a != nil && s.clips != nil {
			if clip, ok := s.clips.Get(a.Clip); ok {
				if region, ok := clip.Region(a.Frame); ok {
					d = region
				}
			}
			opts.Rotation += a.Rotation
			opts.FlipX, opts.FlipY = a.FlipX, a.FlipY
		}
		if d == nil {
			continue
		}
		if opts.Width == 0 || opts.Height == 0 {
			native := d.resolve()
			if opts.Width == 0 {
				opts.Width = native.width * t.ScaleX
			}
			if opts.Height == 0 {
				opts.Height = native.height * t.ScaleY
			}
		}
		s.queue = append(s.queue, spriteDraw{layer: sp.Layer, seq: len(s.queue), d: d, opts: opts})
	}

	slices.SortFunc(s.queue, func(a, b spriteDraw) int {
		if c := cmp.Compare(a.layer, b.layer); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	for i := range s.queue {
		if err := s.renderer.DrawSprite(s.queue[i].d, s.queue[i].opts); err != nil {
			s.log.Warn("sprite render failed", zap.Error(err))
		}
	}
}
