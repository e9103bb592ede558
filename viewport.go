package bramble

import (
	"fmt"
	"math"
)

// ViewportMode selects how a design resolution maps onto the screen.
type ViewportMode uint8

const (
	ViewportLetterbox    ViewportMode = iota // min of width/height ratios, bars on one axis
	ViewportFit                              // same scale as letterbox
	ViewportPixelPerfect                     // letterbox scale floored to an integer (>= 1)
	ViewportCrop                             // max of the ratios, overflow is cut off
)

var viewportModeNames = map[string]ViewportMode{
	"letterbox":     ViewportLetterbox,
	"fit":           ViewportFit,
	"pixel-perfect": ViewportPixelPerfect,
	"crop":          ViewportCrop,
}

func (m ViewportMode) String() string {
	for name, v := range viewportModeNames {
		if v == m {
			return name
		}
	}
	return fmt.Sprintf("ViewportMode(%d)", m)
}

// ParseViewportMode parses "letterbox", "fit", "pixel-perfect" or "crop".
// The empty string selects letterbox.
func ParseViewportMode(s string) (ViewportMode, error) {
	if s == "" {
		return ViewportLetterbox, nil
	}
	m, ok := viewportModeNames[s]
	if !ok {
		return 0, fmt.Errorf("%w: unknown viewport mode %q", ErrInvalidArgument, s)
	}
	return m, nil
}

// Viewport maps a fixed design resolution onto an arbitrary screen size with
// a uniform scale and a centering offset.
type Viewport struct {
	DesignWidth  float64
	DesignHeight float64
	Mode         ViewportMode
}

// ViewportTransform is the computed scale and offset for one screen size.
type ViewportTransform struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// NewViewport returns a viewport for the given design resolution.
func NewViewport(designW, designH float64, mode ViewportMode) *Viewport {
	return &Viewport{DesignWidth: designW, DesignHeight: designH, Mode: mode}
}

// Compute returns the transform for a screen of the given size.
func (v *Viewport) Compute(screenW, screenH float64) ViewportTransform {
	if v.DesignWidth <= 0 || v.DesignHeight <= 0 {
		return ViewportTransform{Scale: 1}
	}
	sx := screenW / v.DesignWidth
	sy := screenH / v.DesignHeight

	var scale float64
	switch v.Mode {
	case ViewportCrop:
		scale = math.Max(sx, sy)
	case ViewportPixelPerfect:
		scale = math.Max(1, math.Floor(math.Min(sx, sy)))
	default:
		scale = math.Min(sx, sy)
	}
	return ViewportTransform{
		Scale:   scale,
		OffsetX: (screenW - v.DesignWidth*scale) / 2,
		OffsetY: (screenH - v.DesignHeight*scale) / 2,
	}
}

// Apply resets s's transform and installs the viewport transform for s's
// current size.
func (v *Viewport) Apply(s Surface) ViewportTransform {
	w, h := s.Size()
	t := v.Compute(w, h)
	s.ResetTransform()
	s.Translate(t.OffsetX, t.OffsetY)
	s.Scale(t.Scale, t.Scale)
	return t
}

// ScreenToDesign converts a screen point (e.g. a cursor) to design
// coordinates.
func (t ViewportTransform) ScreenToDesign(x, y float64) (float64, float64) {
	if t.Scale == 0 {
		return x, y
	}
	return (x - t.OffsetX) / t.Scale, (y - t.OffsetY) / t.Scale
}

// DesignToScreen is the inverse of ScreenToDesign.
func (t ViewportTransform) DesignToScreen(x, y float64) (float64, float64) {
	return x*t.Scale + t.OffsetX, y*t.Scale + t.OffsetY
}
