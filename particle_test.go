package bramble

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequence returns a Rand function cycling through vals.
func sequence(vals ...float64) func() float64 {
	i := 0
	return func() float64 {
		v := vals[i%len(vals)]
		i++
		return v
	}
}

type drawRecorder struct {
	sprites []SpriteOptions
	err     error
}

func (d *drawRecorder) DrawSprite(_ Drawable, opts SpriteOptions) error {
	if d.err != nil {
		return d.err
	}
	d.sprites = append(d.sprites, opts)
	return nil
}

func TestEmitterEmissionRate(t *testing.T) {
	em := NewEmitter(EmitterConfig{EmissionRate: 10})
	em.Update(500)
	assert.Equal(t, 5, em.Count())

	// Fractions carry over between updates.
	em.Reset()
	for i := 0; i < 4; i++ {
		em.Update(25)
	}
	assert.Equal(t, 1, em.Count())
}

func TestEmitterStopStart(t *testing.T) {
	em := NewEmitter(EmitterConfig{EmissionRate: 10})
	assert.True(t, em.Active())

	em.Stop()
	em.Update(1000)
	assert.Zero(t, em.Count())

	// Bursts ignore the active flag.
	assert.Equal(t, 4, em.Emit(4))

	em.Start()
	em.Update(100)
	assert.Equal(t, 5, em.Count())
}

func TestEmitterMaxParticles(t *testing.T) {
	log, logs := observedLogger()
	em := NewEmitter(EmitterConfig{EmissionRate: 100, MaxParticles: 3, Logger: log})

	em.Update(100)
	assert.Equal(t, 3, em.Count())
	assert.Equal(t, 1, logs.FilterMessage("particle cap reached").Len())

	assert.Zero(t, em.Emit(5))
	assert.Equal(t, 3, em.Count())
}

func TestEmitterExpiresBySwapRemove(t *testing.T) {
	em := NewEmitter(EmitterConfig{
		TTL:  Range{Min: 1, Max: 2},
		Rand: sequence(0, 0.9, 0),
	})
	require.Equal(t, 3, em.Emit(3))

	em.Update(1000)
	ps := em.Particles()
	require.Len(t, ps, 1)
	assert.InDelta(t, 1.9, ps[0].TTL, 1e-9)
	assert.InDelta(t, 1, ps[0].Age, 1e-9)

	em.Update(1000)
	assert.Zero(t, em.Count())
}

func TestEmitterIntegration(t *testing.T) {
	em := NewEmitter(EmitterConfig{
		Position:        Vec2{X: 10, Y: 20},
		Speed:           Range{Min: 50, Max: 50},
		TTL:             Range{Min: 5, Max: 5},
		AngularVelocity: Range{Min: 2, Max: 2},
	})
	em.Emit(1)
	em.Update(200)

	p := em.Particles()[0]
	assert.InDelta(t, 20, p.X, 1e-9)
	assert.InDelta(t, 20, p.Y, 1e-9)
	assert.InDelta(t, 0.4, p.Rotation, 1e-9)
	assert.Equal(t, 1.0, p.Scale)
	assert.Equal(t, 1.0, p.Alpha)
}

func TestEmitterBehaviors(t *testing.T) {
	em := NewEmitter(EmitterConfig{
		Position:  Vec2{X: 10, Y: 20},
		TTL:       Range{Min: 2, Max: 2},
		Behaviors: []Behavior{Gravity(100), AlphaOverLife(1, 0)},
	})
	em.AddBehavior(ScaleOverLife(1, 3))
	em.Emit(1)
	em.Update(1000)

	p := em.Particles()[0]
	assert.InDelta(t, 100, p.VY, 1e-9)
	assert.InDelta(t, 120, p.Y, 1e-9)
	assert.InDelta(t, 0.5, p.Alpha, 1e-9)
	assert.InDelta(t, 2, p.Scale, 1e-9)
	assert.InDelta(t, 0.5, p.Life(), 1e-9)
}

func TestEmitterParticlesIsACopy(t *testing.T) {
	em := NewEmitter(EmitterConfig{})
	em.Emit(1)
	ps := em.Particles()
	ps[0].X = 999
	assert.Zero(t, em.Particles()[0].X)
}

func TestEmitterPosition(t *testing.T) {
	em := NewEmitter(EmitterConfig{})
	em.SetPosition(3, 4)
	assert.Equal(t, Vec2{X: 3, Y: 4}, em.Position())
	em.Emit(1)
	assert.Equal(t, 3.0, em.Particles()[0].X)

	em.SetEmissionRate(-5)
	em.Update(100)
	assert.Equal(t, 1, em.Count())
}

func TestEmitterRender(t *testing.T) {
	tex := testTexture("spark", 8, 4)
	em := NewEmitter(EmitterConfig{
		Texture: tex,
		Scale:   Range{Min: 2, Max: 2},
		Alpha:   Range{Min: 1.5, Max: 1.5},
		Blend:   BlendAdd,
	})
	em.Emit(2)

	d := &drawRecorder{}
	require.NoError(t, em.Render(d))
	require.Len(t, d.sprites, 2)
	opts := d.sprites[0]
	assert.Equal(t, 16.0, opts.Width)
	assert.Equal(t, 8.0, opts.Height)
	assert.Equal(t, &Vec2{0.5, 0.5}, opts.Origin)
	assert.Equal(t, &Color{1, 1, 1, 1}, opts.Tint)
	assert.Equal(t, BlendAdd, opts.Blend)

	d.err = errors.New("no frame")
	assert.Error(t, em.Render(d))
}

func TestEmitterRenderSkipsInvisible(t *testing.T) {
	em := NewEmitter(EmitterConfig{
		Texture:   testTexture("spark", 8, 8),
		BaseSize:  4,
		TTL:       Range{Min: 2, Max: 2},
		Behaviors: []Behavior{ScaleOverLife(0, 0)},
	})
	em.Emit(1)
	em.Update(10)

	d := &drawRecorder{}
	require.NoError(t, em.Render(d))
	assert.Empty(t, d.sprites)

	assert.NoError(t, NewEmitter(EmitterConfig{}).Render(d))
}

func TestEmitterRenderThroughRenderer(t *testing.T) {
	r := NewRenderer(RendererOptions{})
	em := NewEmitter(EmitterConfig{Texture: testTexture("spark", 2, 2)})
	em.Emit(3)

	r.Begin()
	require.NoError(t, em.Render(r))
	stats, err := r.End()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Sprites)
	assert.Equal(t, 1, stats.Batches)
}
