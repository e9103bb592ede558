package bramble

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// DefaultShakeFrequency is used by Shake when the frequency is not positive.
const DefaultShakeFrequency = 30

// scrollAnim holds active scroll-to tweens for camera X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

type shakeState struct {
	intensity float64
	duration  float64
	frequency float64
	elapsed   float64
}

// Camera is the view into the world. X and Y are the world position of the
// top-left corner of the view; a sprite at world position p with parallax f
// lands at (p - (camera + shake) * f) * Zoom.
type Camera struct {
	X, Y float64
	// Zoom is the scale factor (1.0 = no zoom, >1 = zoom in, <1 = zoom out).
	Zoom float64
	// ViewWidth and ViewHeight are the screen-space size of the view. Used by
	// bounds clamping and Follow centering.
	ViewWidth, ViewHeight float64

	// BoundsEnabled clamps the camera position so the visible area stays
	// within Bounds.
	BoundsEnabled bool
	Bounds        Rect

	followTarget  func() Vec2
	followOffsetX float64
	followOffsetY float64
	followLerp    float64

	shake       *shakeState
	shakeOffset Vec2

	scrollTween *scrollAnim
}

// NewCamera creates a Camera at the origin with zoom 1.
func NewCamera(viewW, viewH float64) *Camera {
	return &Camera{Zoom: 1, ViewWidth: viewW, ViewHeight: viewH}
}

// Shake starts a shake of the given amplitude in world units, lasting
// durationMs and oscillating at frequencyHz. The offset decays linearly and
// is exactly zero once the duration has elapsed.
func (c *Camera) Shake(intensity, durationMs, frequencyHz float64) {
	if durationMs <= 0 || intensity == 0 {
		c.stopShake()
		return
	}
	if frequencyHz <= 0 {
		frequencyHz = DefaultShakeFrequency
	}
	c.shake = &shakeState{
		intensity: math.Abs(intensity),
		duration:  durationMs,
		frequency: frequencyHz,
	}
}

// Shaking reports whether a shake is in progress.
func (c *Camera) Shaking() bool { return c.shake != nil }

// ShakeOffset returns the current shake displacement.
func (c *Camera) ShakeOffset() Vec2 { return c.shakeOffset }

func (c *Camera) stopShake() {
	c.shake = nil
	c.shakeOffset = Vec2{}
}

// Follow makes the camera track target, centering it in the view plus the
// given offset. A lerp of 1.0 snaps immediately; lower values give smoother
// following.
func (c *Camera) Follow(target func() Vec2, offsetX, offsetY, lerp float64) {
	c.followTarget = target
	c.followOffsetX = offsetX
	c.followOffsetY = offsetY
	c.followLerp = lerp
}

// Unfollow stops tracking the current target.
func (c *Camera) Unfollow() {
	c.followTarget = nil
}

// ScrollTo animates the camera to the given world position over durationMs.
func (c *Camera) ScrollTo(x, y, durationMs float64, easeFn ease.TweenFunc) {
	if easeFn == nil {
		easeFn = ease.Linear
	}
	c.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(c.X), float32(x), float32(durationMs), easeFn),
		tweenY: gween.New(float32(c.Y), float32(y), float32(durationMs), easeFn),
	}
}

// Scrolling reports whether a ScrollTo animation is in progress.
func (c *Camera) Scrolling() bool { return c.scrollTween != nil }

// SetBounds enables camera bounds clamping.
func (c *Camera) SetBounds(bounds Rect) {
	c.BoundsEnabled = true
	c.Bounds = bounds
}

// ClearBounds disables camera bounds clamping.
func (c *Camera) ClearBounds() {
	c.BoundsEnabled = false
}

// ClampToBounds immediately clamps the camera position. No-op if
// BoundsEnabled is false.
func (c *Camera) ClampToBounds() {
	if c.BoundsEnabled {
		c.clampToBounds()
	}
}

// Update advances follow, scroll, shake and bounds clamping by dtMs.
func (c *Camera) Update(dtMs float64) {
	if c.followTarget != nil {
		t := c.followTarget()
		targetX := t.X + c.followOffsetX - c.visibleWidth()/2
		targetY := t.Y + c.followOffsetY - c.visibleHeight()/2
		c.X += (targetX - c.X) * c.followLerp
		c.Y += (targetY - c.Y) * c.followLerp
	}

	if c.scrollTween != nil {
		if !c.scrollTween.doneX {
			val, done := c.scrollTween.tweenX.Update(float32(dtMs))
			c.X = float64(val)
			c.scrollTween.doneX = done
		}
		if !c.scrollTween.doneY {
			val, done := c.scrollTween.tweenY.Update(float32(dtMs))
			c.Y = float64(val)
			c.scrollTween.doneY = done
		}
		if c.scrollTween.doneX && c.scrollTween.doneY {
			c.scrollTween = nil
		}
	}

	if c.BoundsEnabled {
		c.clampToBounds()
	}

	c.updateShake(dtMs)
}

func (c *Camera) updateShake(dtMs float64) {
	s := c.shake
	if s == nil {
		return
	}
	s.elapsed += dtMs
	if s.elapsed >= s.duration {
		c.stopShake()
		return
	}
	decay := 1 - s.elapsed/s.duration
	phase := 2 * math.Pi * s.frequency * s.elapsed / 1000
	amp := s.intensity * decay
	// Y runs at a detuned frequency so the motion is not a straight line.
	c.shakeOffset = Vec2{
		X: amp * math.Sin(phase),
		Y: amp * math.Sin(phase*1.3+math.Pi/3),
	}
}

func (c *Camera) visibleWidth() float64 {
	if c.Zoom == 0 {
		return c.ViewWidth
	}
	return c.ViewWidth / c.Zoom
}

func (c *Camera) visibleHeight() float64 {
	if c.Zoom == 0 {
		return c.ViewHeight
	}
	return c.ViewHeight / c.Zoom
}

// clampToBounds restricts camera position so the visible area stays within Bounds.
func (c *Camera) clampToBounds() {
	w, h := c.visibleWidth(), c.visibleHeight()

	// If bounds are smaller than visible area, center the camera.
	if w > c.Bounds.Width {
		c.X = c.Bounds.X + (c.Bounds.Width-w)/2
	} else {
		c.X = clamp(c.X, c.Bounds.X, c.Bounds.X+c.Bounds.Width-w)
	}
	if h > c.Bounds.Height {
		c.Y = c.Bounds.Y + (c.Bounds.Height-h)/2
	} else {
		c.Y = clamp(c.Y, c.Bounds.Y, c.Bounds.Y+c.Bounds.Height-h)
	}
}

// project maps a world point with the given parallax factor to screen space.
func (c *Camera) project(wx, wy float64, parallax Vec2) (sx, sy float64) {
	ox := (c.X + c.shakeOffset.X) * parallax.X
	oy := (c.Y + c.shakeOffset.Y) * parallax.Y
	return (wx - ox) * c.Zoom, (wy - oy) * c.Zoom
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	return c.project(wx, wy, Vec2{1, 1})
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	z := c.Zoom
	if z == 0 {
		z = 1
	}
	return sx/z + c.X + c.shakeOffset.X, sy/z + c.Y + c.shakeOffset.Y
}

// VisibleBounds returns the world-space rectangle the camera shows.
func (c *Camera) VisibleBounds() Rect {
	x, y := c.ScreenToWorld(0, 0)
	return Rect{X: x, Y: y, Width: c.visibleWidth(), Height: c.visibleHeight()}
}
