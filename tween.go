package bramble

import (
	"fmt"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Tween animates a vector of floats from one set of values to another over a
// duration in milliseconds. Call Update from a system or the loop callback;
// there is no global tween manager.
type Tween struct {
	tweens []*gween.Tween
	values []float64
	done   bool
}

// NewTween creates a tween between from and to, which must be the same
// length. A nil easing function means linear.
func NewTween(from, to []float64, durationMs float64, fn ease.TweenFunc) (*Tween, error) {
	if len(from) != len(to) {
		return nil, fmt.Errorf("%w: tween from has %d values, to has %d", ErrLengthMismatch, len(from), len(to))
	}
	if durationMs < 0 {
		return nil, fmt.Errorf("%w: tween duration %v", ErrInvalidArgument, durationMs)
	}
	if fn == nil {
		fn = ease.Linear
	}
	t := &Tween{
		tweens: make([]*gween.Tween, len(from)),
		values: make([]float64, len(from)),
	}
	for i := range from {
		t.tweens[i] = gween.New(float32(from[i]), float32(to[i]), float32(durationMs), fn)
		t.values[i] = from[i]
	}
	return t, nil
}

// Update advances the tween by dtMs and returns the current values and
// whether every component has finished. The returned slice is reused.
func (t *Tween) Update(dtMs float64) ([]float64, bool) {
	if t.done {
		return t.values, true
	}
	allDone := true
	for i, tw := range t.tweens {
		val, finished := tw.Update(float32(dtMs))
		t.values[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	t.done = allDone
	return t.values, allDone
}

// Values returns the current values.
func (t *Tween) Values() []float64 { return t.values }

// Done reports whether the tween has finished.
func (t *Tween) Done() bool { return t.done }

// Reset rewinds the tween to its start.
func (t *Tween) Reset() {
	for i, tw := range t.tweens {
		tw.Reset()
		val, _ := tw.Update(0)
		t.values[i] = float64(val)
	}
	t.done = false
}

// TweenGroup drives a Tween and writes its values into bound fields.
type TweenGroup struct {
	tween  *Tween
	fields []*float64
	Done   bool
}

// Update advances the group and writes the current values to its fields.
func (g *TweenGroup) Update(dtMs float64) {
	if g.Done {
		return
	}
	vals, done := g.tween.Update(dtMs)
	for i, f := range g.fields {
		*f = vals[i]
	}
	g.Done = done
}

// TweenFields animates each field to the matching target value.
func TweenFields(fields []*float64, to []float64, durationMs float64, fn ease.TweenFunc) (*TweenGroup, error) {
	from := make([]float64, len(fields))
	for i, f := range fields {
		from[i] = *f
	}
	t, err := NewTween(from, to, durationMs, fn)
	if err != nil {
		return nil, err
	}
	return &TweenGroup{tween: t, fields: fields}, nil
}

// TweenVec animates v to the target position. A negative duration is
// treated as zero.
func TweenVec(v *Vec2, to Vec2, durationMs float64, fn ease.TweenFunc) *TweenGroup {
	durationMs = max(durationMs, 0)
	g, _ := TweenFields([]*float64{&v.X, &v.Y}, []float64{to.X, to.Y}, durationMs, fn)
	return g
}

// TweenColor animates all four components of c to the target color. A
// negative duration is treated as zero.
func TweenColor(c *Color, to Color, durationMs float64, fn ease.TweenFunc) *TweenGroup {
	durationMs = max(durationMs, 0)
	g, _ := TweenFields(
		[]*float64{&c.R, &c.G, &c.B, &c.A},
		[]float64{to.R, to.G, to.B, to.A},
		durationMs, fn)
	return g
}
