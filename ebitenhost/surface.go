package ebitenhost

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/bramble"
)

// ErrNotEbitenImage is returned when a texture source is not an
// *ebiten.Image.
var ErrNotEbitenImage = errors.New("ebitenhost: texture source is not an *ebiten.Image")

type surfaceState struct {
	geo   ebiten.GeoM
	alpha float64
	op    bramble.CompositeOp
}

// Surface draws onto an *ebiten.Image with canvas semantics: transforms
// compose in local space and Save/Restore push and pop the transform, alpha
// and composite operation.
type Surface struct {
	target *ebiten.Image
	state  surfaceState
	stack  []surfaceState
	white  *ebiten.Image
}

// NewSurface returns a surface drawing to target, which may be nil until
// SetTarget.
func NewSurface(target *ebiten.Image) *Surface {
	s := &Surface{target: target}
	s.state.alpha = 1
	return s
}

// SetTarget changes the destination image.
func (s *Surface) SetTarget(target *ebiten.Image) { s.target = target }

// Target returns the destination image.
func (s *Surface) Target() *ebiten.Image { return s.target }

// Size returns the target's size.
func (s *Surface) Size() (w, h float64) {
	if s.target == nil {
		return 0, 0
	}
	b := s.target.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

// Clear fills the target with c, ignoring the transform.
func (s *Surface) Clear(c bramble.Color) {
	if s.target == nil {
		return
	}
	s.target.Fill(toNRGBA(c))
}

// ResetTransform sets the identity transform.
func (s *Surface) ResetTransform() { s.state.geo.Reset() }

// Translate moves the origin in local space.
func (s *Surface) Translate(x, y float64) {
	var m ebiten.GeoM
	m.Translate(x, y)
	s.local(m)
}

// Rotate rotates local space by theta radians.
func (s *Surface) Rotate(theta float64) {
	var m ebiten.GeoM
	m.Rotate(theta)
	s.local(m)
}

// Scale scales local space.
func (s *Surface) Scale(x, y float64) {
	var m ebiten.GeoM
	m.Scale(x, y)
	s.local(m)
}

// local applies m before the current transform.
func (s *Surface) local(m ebiten.GeoM) {
	m.Concat(s.state.geo)
	s.state.geo = m
}

// Save pushes the drawing state.
func (s *Surface) Save() { s.stack = append(s.stack, s.state) }

// Restore pops the drawing state. Extra calls are ignored.
func (s *Surface) Restore() {
	if len(s.stack) == 0 {
		return
	}
	s.state = s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
}

// SetGlobalAlpha sets the alpha applied to subsequent draws.
func (s *Surface) SetGlobalAlpha(a float64) { s.state.alpha = a }

// SetCompositeOp sets the blend for subsequent draws.
func (s *Surface) SetCompositeOp(op bramble.CompositeOp) { s.state.op = op }

// DrawImage draws the source rectangle of src into the destination
// rectangle under the current transform.
func (s *Surface) DrawImage(src bramble.Image, sx, sy, sw, sh, dx, dy, dw, dh float64) error {
	img, ok := src.(*ebiten.Image)
	if !ok || img == nil {
		return fmt.Errorf("%w: %T", ErrNotEbitenImage, src)
	}
	if s.target == nil {
		return errors.New("ebitenhost: surface has no target")
	}
	if sw <= 0 || sh <= 0 {
		return fmt.Errorf("ebitenhost: empty source rect %vx%v", sw, sh)
	}
	origin := img.Bounds().Min
	rect := image.Rect(int(sx), int(sy), int(sx+sw), int(sy+sh)).Add(origin)
	sub := img.SubImage(rect).(*ebiten.Image)

	var op ebiten.DrawImageOptions
	op.GeoM.Scale(dw/sw, dh/sh)
	op.GeoM.Translate(dx, dy)
	op.GeoM.Concat(s.state.geo)
	op.ColorScale.ScaleAlpha(float32(s.state.alpha))
	op.Blend = EbitenBlend(s.state.op)
	s.target.DrawImage(sub, &op)
	return nil
}

// FillRect fills a rectangle with c under the current transform, alpha and
// composite operation.
func (s *Surface) FillRect(x, y, w, h float64, c bramble.Color) {
	if s.target == nil {
		return
	}
	if s.white == nil {
		s.white = ebiten.NewImage(1, 1)
		s.white.Fill(color.White)
	}
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(x, y)
	op.GeoM.Concat(s.state.geo)
	a := float32(c.A * s.state.alpha)
	op.ColorScale.Scale(float32(c.R)*a, float32(c.G)*a, float32(c.B)*a, a)
	op.Blend = EbitenBlend(s.state.op)
	s.target.DrawImage(s.white, &op)
}

// GPUSurface is a Surface that also accepts batched triangles, which makes
// a Renderer pick the batched backend.
type GPUSurface struct {
	*Surface
	verts []ebiten.Vertex
}

// NewGPUSurface returns a batched surface drawing to target.
func NewGPUSurface(target *ebiten.Image) *GPUSurface {
	return &GPUSurface{Surface: NewSurface(target)}
}

// DrawTriangles submits vertices as a single DrawTriangles32 call.
func (g *GPUSurface) DrawTriangles(vertices []bramble.Vertex, indices []uint32, src bramble.Image, blend bramble.BlendMode) error {
	img, ok := src.(*ebiten.Image)
	if !ok || img == nil {
		return fmt.Errorf("%w: %T", ErrNotEbitenImage, src)
	}
	if g.target == nil {
		return errors.New("ebitenhost: surface has no target")
	}
	origin := img.Bounds().Min
	g.verts = g.verts[:0]
	for _, v := range vertices {
		g.verts = append(g.verts, ebiten.Vertex{
			DstX:   v.DstX,
			DstY:   v.DstY,
			SrcX:   v.SrcX + float32(origin.X),
			SrcY:   v.SrcY + float32(origin.Y),
			ColorR: v.R,
			ColorG: v.G,
			ColorB: v.B,
			ColorA: v.A,
		})
	}

	var op ebiten.DrawTrianglesOptions
	op.Blend = EbitenBlend(blend.CompositeOp())
	op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	g.target.DrawTriangles32(g.verts, indices, img, &op)
	return nil
}

// Canvas hands out a GPUSurface for bramble.BackendGL and a plain Surface
// for bramble.Backend2D, both drawing to the same target.
type Canvas struct {
	gpu *GPUSurface
	// Prefer2D withholds the batched surface so renderers use the
	// per-sprite path.
	Prefer2D bool
}

// NewCanvas returns a canvas over target.
func NewCanvas(target *ebiten.Image) *Canvas {
	return &Canvas{gpu: NewGPUSurface(target)}
}

// SetTarget changes the destination image of both surfaces.
func (c *Canvas) SetTarget(target *ebiten.Image) { c.gpu.SetTarget(target) }

// Context implements bramble.Canvas.
func (c *Canvas) Context(kind bramble.Backend) any {
	switch kind {
	case bramble.BackendGL:
		if c.Prefer2D {
			return nil
		}
		return c.gpu
	case bramble.Backend2D:
		return c.gpu.Surface
	}
	return nil
}

func toNRGBA(c bramble.Color) color.NRGBA {
	ch := func(v float64) uint8 {
		return uint8(max(0, min(1, v))*255 + 0.5)
	}
	return color.NRGBA{R: ch(c.R), G: ch(c.G), B: ch(c.B), A: ch(c.A)}
}
