package bramble

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// spriteCommand is a fully resolved sprite draw.
type spriteCommand struct {
	src           resolvedDrawable
	x, y          float64
	width, height float64
	originX       float64
	originY       float64
	rotation      float64
	tint          Color
	parallax      Vec2
	blend         BlendMode
	flipX, flipY  bool
}

func newSpriteCommand(src resolvedDrawable, opts SpriteOptions) spriteCommand {
	cmd := spriteCommand{
		src:      src,
		x:        opts.X,
		y:        opts.Y,
		width:    opts.Width,
		height:   opts.Height,
		originX:  0.5,
		originY:  0.5,
		rotation: opts.Rotation,
		tint:     ColorWhite,
		parallax: Vec2{1, 1},
		blend:    opts.Blend,
		flipX:    opts.FlipX,
		flipY:    opts.FlipY,
	}
	if cmd.width == 0 {
		cmd.width = src.width
	}
	if cmd.height == 0 {
		cmd.height = src.height
	}
	switch {
	case opts.Origin != nil:
		cmd.originX, cmd.originY = opts.Origin.X, opts.Origin.Y
	case src.origin != nil:
		cmd.originX, cmd.originY = src.origin.X, src.origin.Y
	}
	if opts.Tint != nil {
		cmd.tint = *opts.Tint
	}
	if opts.Parallax != nil {
		cmd.parallax = *opts.Parallax
	}
	return cmd
}

// sourceRect returns the sub-rectangle of the texture to sample.
func (c *spriteCommand) sourceRect() Rect {
	if c.src.sub != nil {
		return *c.src.sub
	}
	return Rect{Width: float64(c.src.texture.Width), Height: float64(c.src.texture.Height)}
}

// spriteBatch is a run of commands sharing one texture. On the GL backend
// they also share one blend mode.
type spriteBatch struct {
	open    bool
	key     uint64
	blend   BlendMode
	texture *Texture
	cmds    []spriteCommand
}

func (b *spriteBatch) reset() {
	b.open = false
	b.key = 0
	b.blend = BlendNormal
	b.texture = nil
	b.cmds = b.cmds[:0]
}

// enqueue appends cmd, flushing first on a texture change (or a blend change
// on the GL backend) and afterwards when the batch is full.
func (r *Renderer) enqueue(cmd spriteCommand) {
	key := cmd.src.texture.identity()
	blendChanged := r.backend == BackendGL && r.batch.blend != cmd.blend
	if !r.batch.open || r.batch.key != key || blendChanged {
		r.flush()
		r.batch.open = true
		r.batch.key = key
		r.batch.blend = cmd.blend
		r.batch.texture = cmd.src.texture
	}
	r.batch.cmds = append(r.batch.cmds, cmd)
	r.stats.Sprites++
	if len(r.batch.cmds) >= r.maxBatch {
		r.flush()
	}
}

// flush submits the open batch. One flush is one batch and one draw call.
func (r *Renderer) flush() {
	if !r.batch.open || len(r.batch.cmds) == 0 {
		r.batch.reset()
		return
	}
	r.stats.Batches++
	r.stats.DrawCalls++

	switch r.backend {
	case Backend2D:
		for i := range r.batch.cmds {
			cmd := &r.batch.cmds[i]
			if err := r.draw2D(cmd); err != nil {
				r.log.Warn("sprite draw failed",
					zap.String("texture", cmd.src.texture.ID),
					zap.Error(err))
			}
		}
	case BackendGL:
		r.flushTriangles()
	}
	r.batch.reset()
}

// draw2D issues one sprite on the 2D surface. A non-white tint adds a
// multiply fill over the sprite and a destination-in redraw of its alpha so
// the tint stays inside the sprite's shape.
func (r *Renderer) draw2D(cmd *spriteCommand) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("surface panic: %v", p)
		}
	}()
	s := r.surface
	s.Save()
	defer s.Restore()

	x, y, zoom := r.screenPosition(cmd)
	s.Translate(x, y)
	if cmd.rotation != 0 {
		s.Rotate(cmd.rotation)
	}
	if cmd.flipX || cmd.flipY {
		fx, fy := 1.0, 1.0
		if cmd.flipX {
			fx = -1
		}
		if cmd.flipY {
			fy = -1
		}
		s.Scale(fx, fy)
	}
	s.SetGlobalAlpha(clamp(cmd.tint.A, 0, 1))
	s.SetCompositeOp(cmd.blend.CompositeOp())

	dw, dh := cmd.width*zoom, cmd.height*zoom
	dx, dy := -cmd.originX*dw, -cmd.originY*dh
	src := cmd.sourceRect()
	img := cmd.src.texture.Source

	if err := s.DrawImage(img, src.X, src.Y, src.Width, src.Height, dx, dy, dw, dh); err != nil {
		return err
	}
	if cmd.tint.IsOpaqueWhite() {
		return nil
	}
	s.SetCompositeOp(CompositeMultiply)
	s.FillRect(dx, dy, dw, dh, Color{R: cmd.tint.R, G: cmd.tint.G, B: cmd.tint.B, A: 1})
	s.SetCompositeOp(CompositeDestinationIn)
	return s.DrawImage(img, src.X, src.Y, src.Width, src.Height, dx, dy, dw, dh)
}

// flushTriangles turns the batch into quads and submits them in a single
// call.
func (r *Renderer) flushTriangles() {
	tex := r.batch.texture
	r.verts = r.verts[:0]
	r.inds = r.inds[:0]
	for i := range r.batch.cmds {
		r.appendSpriteQuad(&r.batch.cmds[i])
	}
	if err := r.submitTriangles(tex, r.batch.blend); err != nil {
		r.log.Warn("triangle batch draw failed",
			zap.String("texture", tex.ID),
			zap.Int("sprites", len(r.batch.cmds)),
			zap.Error(err))
	}
}

func (r *Renderer) submitTriangles(tex *Texture, blend BlendMode) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("surface panic: %v", p)
		}
	}()
	return r.tri.DrawTriangles(r.verts, r.inds, tex.Source, blend)
}

// appendSpriteQuad appends 4 vertices and 6 indices for a single sprite,
// applying origin, flip, rotation, camera and viewport on the CPU. The tint
// is carried as a premultiplied vertex color.
func (r *Renderer) appendSpriteQuad(cmd *spriteCommand) {
	x, y, zoom := r.screenPosition(cmd)
	w, h := cmd.width*zoom, cmd.height*zoom
	ox, oy := -cmd.originX*w, -cmd.originY*h

	// 4 local positions: TL, TR, BL, BR
	lx := [4]float64{ox, ox + w, ox, ox + w}
	ly := [4]float64{oy, oy, oy + h, oy + h}

	src := cmd.sourceRect()
	sx0, sy0 := float32(src.X), float32(src.Y)
	sx1, sy1 := float32(src.X+src.Width), float32(src.Y+src.Height)
	if cmd.flipX {
		sx0, sx1 = sx1, sx0
	}
	if cmd.flipY {
		sy0, sy1 = sy1, sy0
	}
	sx := [4]float32{sx0, sx1, sx0, sx1}
	sy := [4]float32{sy0, sy0, sy1, sy1}

	cos, sin := math.Cos(cmd.rotation), math.Sin(cmd.rotation)
	vs, vx, vy := r.vt.Scale, r.vt.OffsetX, r.vt.OffsetY

	a := float32(clamp(cmd.tint.A, 0, 1))
	cr := float32(cmd.tint.R) * a
	cg := float32(cmd.tint.G) * a
	cb := float32(cmd.tint.B) * a

	base := uint32(len(r.verts))
	for i := 0; i < 4; i++ {
		px := x + lx[i]*cos - ly[i]*sin
		py := y + lx[i]*sin + ly[i]*cos
		r.verts = append(r.verts, Vertex{
			DstX: float32(px*vs + vx),
			DstY: float32(py*vs + vy),
			SrcX: sx[i],
			SrcY: sy[i],
			R:    cr,
			G:    cg,
			B:    cb,
			A:    a,
		})
	}

	// Two triangles: TL-TR-BL, TR-BR-BL
	r.inds = append(r.inds,
		base+0, base+1, base+2,
		base+1, base+3, base+2,
	)
}
