package bramble

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/phanxgames/bramble/ecs"
)

// EngineOptions configures NewEngine. Zero Config fields are not defaulted;
// start from DefaultConfig or LoadConfig.
type EngineOptions struct {
	Config   Config
	Host     Host
	Renderer RendererOptions
	Logger   *zap.Logger
}

// Engine wires a World, its clock and loop, a Renderer and the animation
// and sprite systems together. Each simulation step runs the world, the
// camera and every emitter; each render pass draws the world's render stage
// and the emitters between Begin and End.
type Engine struct {
	World      *ecs.World
	Time       *TimeManager
	Loop       *GameLoop
	Renderer   *Renderer
	Camera     *Camera
	Clips      *ClipRegistry
	Animations *AnimationController

	log      *zap.Logger
	emitters []*Emitter
	reporter *FrameReporter
	onStep   func(delta float64)
}

// NewEngine validates opts.Config and assembles an engine. The loop is not
// started.
func NewEngine(opts EngineOptions) (*Engine, error) {
	if opts.Host == nil {
		return nil, fmt.Errorf("%w: engine needs a host", ErrInvalidArgument)
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	log := loggerOr(opts.Logger)
	cfg := opts.Config

	ropts := opts.Renderer
	if ropts.MaxBatchSize == 0 {
		ropts.MaxBatchSize = cfg.Render.MaxBatchSize
	}
	if ropts.ClearColor == (Color{}) {
		ropts.ClearColor = cfg.Render.ClearColor
	}
	if ropts.Viewport == nil {
		ropts.Viewport = cfg.Viewport()
	}
	if ropts.Logger == nil {
		ropts.Logger = log
	}
	renderer := NewRenderer(ropts)
	if renderer.Camera() == nil {
		w, h := renderer.Size()
		if vp := renderer.Viewport(); vp != nil {
			w, h = vp.DesignWidth, vp.DesignHeight
		}
		renderer.SetCamera(NewCamera(w, h))
	}

	tm := cfg.NewTimeManager()
	tm.log = log
	loopOpts := cfg.LoopOptions()
	loopOpts.Logger = log

	clips := NewClipRegistry(log)
	world := ecs.NewWorld()
	e := &Engine{
		World:      world,
		Time:       tm,
		Loop:       NewGameLoop(opts.Host, tm, loopOpts),
		Renderer:   renderer,
		Camera:     renderer.Camera(),
		Clips:      clips,
		Animations: NewAnimationController(world, clips, log),
		log:        log,
		reporter:   NewFrameReporter(log, cfg.Time.StatsWindow),
	}
	if err := e.registerSystems(); err != nil {
		return nil, err
	}
	e.Loop.OnSimulationStep(e.step)
	e.Loop.OnRender(e.render)
	return e, nil
}

func (e *Engine) registerSystems() error {
	for _, sys := range []ecs.System{
		TransformHistorySystem(),
		NewAnimationSystem(e.Clips, e.log),
		NewSpriteRenderSystem(e.Renderer, e.Clips, e.log),
	} {
		if err := e.World.RegisterSystem(sys); err != nil {
			return err
		}
	}
	return nil
}

// OnStep sets a callback run after the world on every simulation step.
func (e *Engine) OnStep(fn func(delta float64)) { e.onStep = fn }

// Reporter returns the frame statistics reporter.
func (e *Engine) Reporter() *FrameReporter { return e.reporter }

// AddEmitter registers an emitter to update and draw every frame.
func (e *Engine) AddEmitter(em *Emitter) {
	if !slices.Contains(e.emitters, em) {
		e.emitters = append(e.emitters, em)
	}
}

// RemoveEmitter unregisters an emitter.
func (e *Engine) RemoveEmitter(em *Emitter) bool {
	i := slices.Index(e.emitters, em)
	if i < 0 {
		return false
	}
	e.emitters = slices.Delete(e.emitters, i, i+1)
	return true
}

// Start starts the loop.
func (e *Engine) Start() { e.Loop.Start() }

// Stop stops the loop.
func (e *Engine) Stop() { e.Loop.Stop() }

func (e *Engine) step(delta float64) {
	e.World.Step(delta)
	if e.Camera != nil {
		e.Camera.Update(delta)
	}
	for _, em := range e.emitters {
		em.Update(delta)
	}
	if e.onStep != nil {
		e.onStep(delta)
	}
}

func (e *Engine) render(alpha float64) {
	e.Renderer.Begin()
	e.World.Render(alpha)
	for _, em := range e.emitters {
		if err := em.Render(e.Renderer); err != nil {
			e.log.Warn("emitter render failed", zap.Error(err))
		}
	}
	stats, err := e.Renderer.End()
	if err != nil {
		e.log.Warn("renderer end failed", zap.Error(err))
		return
	}
	e.reporter.Record(stats, e.Time.Stats())
}
