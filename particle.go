package bramble

import (
	"math"
	"math/rand/v2"
	"slices"

	"go.uber.org/zap"
)

// Particle is the simulation state of one particle. Positions are in world
// units, velocities per second, ages in seconds.
type Particle struct {
	X, Y            float64
	VX, VY          float64
	AX, AY          float64
	Rotation        float64
	AngularVelocity float64
	Scale           float64
	Alpha           float64
	Age             float64
	TTL             float64
}

// Life returns the particle's age as a fraction of its lifetime, in [0, 1].
func (p *Particle) Life() float64 {
	if p.TTL <= 0 {
		return 1
	}
	return clamp(p.Age/p.TTL, 0, 1)
}

// Behavior mutates a live particle once per update, before integration. dt
// is in seconds.
type Behavior func(p *Particle, dt float64)

// Gravity applies a constant downward acceleration of g units/s².
func Gravity(g float64) Behavior {
	return func(p *Particle, _ float64) {
		p.AY = g
	}
}

// AlphaOverLife fades alpha from one value to another across the lifetime.
func AlphaOverLife(from, to float64) Behavior {
	return func(p *Particle, _ float64) {
		p.Alpha = lerp(from, to, p.Life())
	}
}

// ScaleOverLife scales from one value to another across the lifetime.
func ScaleOverLife(from, to float64) Behavior {
	return func(p *Particle, _ float64) {
		p.Scale = lerp(from, to, p.Life())
	}
}

// DefaultParticleTTL is the lifetime range used when EmitterConfig.TTL is
// unset.
var DefaultParticleTTL = Range{Min: 1, Max: 2}

// EmitterConfig controls how particles are spawned. Zero Scale and Alpha
// ranges mean 1; a zero TTL range means DefaultParticleTTL.
type EmitterConfig struct {
	Position Vec2
	// Texture draws each particle. Without one Render does nothing.
	Texture Drawable
	// BaseSize is the particle size at scale 1. Zero uses the texture's
	// native size.
	BaseSize float64
	// EmissionRate is particles per second.
	EmissionRate float64
	// MaxParticles caps the live population. Zero is unlimited.
	MaxParticles int
	Behaviors    []Behavior
	// Rand returns values in [0, 1). Defaults to math/rand/v2.
	Rand func() float64

	Speed           Range // units per second
	Angle           Range // radians
	TTL             Range // seconds
	Scale           Range
	Alpha           Range
	Rotation        Range
	AngularVelocity Range

	Blend  BlendMode
	Logger *zap.Logger
}

// Emitter spawns, simulates and draws a population of particles. It is
// driven by Update calls, independently of any ECS world.
type Emitter struct {
	cfg         EmitterConfig
	particles   []Particle
	accumulator float64
	active      bool
	log         *zap.Logger
}

// NewEmitter returns an active emitter.
func NewEmitter(cfg EmitterConfig) *Emitter {
	if cfg.Rand == nil {
		cfg.Rand = rand.Float64
	}
	if cfg.TTL == (Range{}) {
		cfg.TTL = DefaultParticleTTL
	}
	if cfg.Scale == (Range{}) {
		cfg.Scale = Range{Min: 1, Max: 1}
	}
	if cfg.Alpha == (Range{}) {
		cfg.Alpha = Range{Min: 1, Max: 1}
	}
	return &Emitter{cfg: cfg, active: true, log: loggerOr(cfg.Logger)}
}

// Start resumes rate-based emission.
func (e *Emitter) Start() { e.active = true }

// Stop halts rate-based emission. Live particles keep simulating.
func (e *Emitter) Stop() { e.active = false }

// Active reports whether rate-based emission is on.
func (e *Emitter) Active() bool { return e.active }

// Reset removes every particle and clears the emission accumulator.
func (e *Emitter) Reset() {
	e.particles = e.particles[:0]
	e.accumulator = 0
}

// SetPosition moves the spawn point. Live particles are unaffected.
func (e *Emitter) SetPosition(x, y float64) { e.cfg.Position = Vec2{x, y} }

// Position returns the spawn point.
func (e *Emitter) Position() Vec2 { return e.cfg.Position }

// SetEmissionRate changes the spawn rate in particles per second.
func (e *Emitter) SetEmissionRate(rate float64) { e.cfg.EmissionRate = max(rate, 0) }

// AddBehavior appends a behavior applied to every live particle.
func (e *Emitter) AddBehavior(b Behavior) { e.cfg.Behaviors = append(e.cfg.Behaviors, b) }

// Count returns the number of live particles.
func (e *Emitter) Count() int { return len(e.particles) }

// Particles returns a copy of the live particles.
func (e *Emitter) Particles() []Particle { return slices.Clone(e.particles) }

// Emit spawns up to n particles, respecting MaxParticles, and returns how
// many were spawned.
func (e *Emitter) Emit(n int) int {
	if e.cfg.MaxParticles > 0 {
		n = min(n, e.cfg.MaxParticles-len(e.particles))
	}
	for i := 0; i < n; i++ {
		e.particles = append(e.particles, e.spawn())
	}
	return max(n, 0)
}

func (e *Emitter) sample(r Range) float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.At(e.cfg.Rand())
}

func (e *Emitter) spawn() Particle {
	angle := e.sample(e.cfg.Angle)
	speed := e.sample(e.cfg.Speed)
	return Particle{
		X:               e.cfg.Position.X,
		Y:               e.cfg.Position.Y,
		VX:              math.Cos(angle) * speed,
		VY:              math.Sin(angle) * speed,
		Rotation:        e.sample(e.cfg.Rotation),
		AngularVelocity: e.sample(e.cfg.AngularVelocity),
		Scale:           e.sample(e.cfg.Scale),
		Alpha:           e.sample(e.cfg.Alpha),
		TTL:             e.sample(e.cfg.TTL),
	}
}

// Update emits new particles for deltaMs, then ages, applies behaviors to
// and integrates every live particle. Expired particles are removed.
func (e *Emitter) Update(deltaMs float64) {
	dt := max(deltaMs, 0) / 1000

	if e.active && e.cfg.EmissionRate > 0 {
		e.accumulator += e.cfg.EmissionRate * dt
		whole := math.Floor(e.accumulator)
		e.accumulator -= whole
		if n := int(whole); n > 0 {
			if spawned := e.Emit(n); spawned < n {
				e.log.Debug("particle cap reached",
					zap.Int("max_particles", e.cfg.MaxParticles),
					zap.Int("dropped", n-spawned))
			}
		}
	}

	// Swap-remove expired particles; the swapped-in one is processed at i.
	i := 0
	for i < len(e.particles) {
		p := &e.particles[i]
		p.Age += dt
		if p.Age >= p.TTL {
			last := len(e.particles) - 1
			e.particles[i] = e.particles[last]
			e.particles = e.particles[:last]
			continue
		}
		for _, b := range e.cfg.Behaviors {
			b(p, dt)
		}
		p.VX += p.AX * dt
		p.VY += p.AY * dt
		p.X += p.VX * dt
		p.Y += p.VY * dt
		p.Rotation += p.AngularVelocity * dt
		i++
	}
}

// SpriteDrawer is the part of Renderer an Emitter draws through.
type SpriteDrawer interface {
	DrawSprite(d Drawable, opts SpriteOptions) error
}

// Render draws every live particle as a centered sprite sized BaseSize ×
// scale with an alpha-only tint. It does nothing without a texture.
func (e *Emitter) Render(r SpriteDrawer) error {
	if e.cfg.Texture == nil {
		return nil
	}
	w, h := e.cfg.BaseSize, e.cfg.BaseSize
	if w == 0 {
		native := e.cfg.Texture.resolve()
		w, h = native.width, native.height
	}
	center := &Vec2{0.5, 0.5}
	for i := range e.particles {
		p := &e.particles[i]
		if p.Scale <= 0 {
			// Zero size would fall back to the native size.
			continue
		}
		err := r.DrawSprite(e.cfg.Texture, SpriteOptions{
			X:        p.X,
			Y:        p.Y,
			Width:    w * p.Scale,
			Height:   h * p.Scale,
			Origin:   center,
			Rotation: p.Rotation,
			Tint:     &Color{R: 1, G: 1, B: 1, A: clamp(p.Alpha, 0, 1)},
			Blend:    e.cfg.Blend,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
