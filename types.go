package bramble

import "math"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// IsOpaqueWhite reports whether the RGB channels are all 1, i.e. the tint
// leaves color untouched (alpha may still vary).
func (c Color) IsOpaqueWhite() bool {
	return c.R == 1 && c.G == 1 && c.B == 1
}

// Vec2 is a 2D vector used for positions, offsets, sizes, and directions
// throughout the API.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Mul returns the component-wise product of v and o.
func (v Vec2) Mul(o Vec2) Vec2 { return Vec2{v.X * o.X, v.Y * o.Y} }

// Len returns the vector's length.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }

// Normalize returns the unit vector in v's direction, or the zero vector.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Lerp interpolates between v and o by t.
func (v Vec2) Lerp(o Vec2, t float64) Vec2 {
	return Vec2{lerp(v.X, o.X, t), lerp(v.Y, o.Y, t)}
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Circle is a circle given by its center and radius.
type Circle struct {
	X, Y, Radius float64
}

// Intersects reports whether c and other overlap. Touching circles intersect.
func (c Circle) Intersects(other Circle) bool {
	dx, dy := c.X-other.X, c.Y-other.Y
	rr := c.Radius + other.Radius
	return dx*dx+dy*dy <= rr*rr
}

// IntersectsRect reports whether c overlaps r.
func (c Circle) IntersectsRect(r Rect) bool {
	nx := clamp(c.X, r.X, r.X+r.Width)
	ny := clamp(c.Y, r.Y, r.Y+r.Height)
	dx, dy := c.X-nx, c.Y-ny
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// Range is a general-purpose min/max range.
// Used by the particle system (Emitter spawn ranges).
type Range struct {
	Min, Max float64
}

// At linearly interpolates the range by t in [0, 1].
func (r Range) At(t float64) float64 {
	return r.Min + (r.Max-r.Min)*t
}

// BlendMode selects a compositing operation.
type BlendMode uint8

const (
	BlendNormal   BlendMode = iota // source-over (standard alpha blending)
	BlendAdd                       // additive / lighter
	BlendMultiply                  // multiply (source * destination; only darkens)
	BlendScreen                    // screen (1 - (1-src)*(1-dst); only brightens)
)

// CompositeOp returns the surface composite operation for this BlendMode.
func (b BlendMode) CompositeOp() CompositeOp {
	switch b {
	case BlendAdd:
		return CompositeLighter
	case BlendMultiply:
		return CompositeMultiply
	case BlendScreen:
		return CompositeScreen
	default:
		return CompositeSourceOver
	}
}

// lerp linearly interpolates between a and b by t.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
