package ecs

import (
	"cmp"
	"fmt"
	"slices"
)

// Stage selects when a system runs within a tick.
type Stage int

const (
	StageInit       Stage = iota // first simulation stage of every step
	StagePreUpdate               // input draining, event processing
	StageUpdate                  // game logic
	StagePostUpdate              // reactions to this step's logic
	StageRender                  // runs only from World.Render
	StageCleanup                 // last simulation stage of every step
)

var stageNames = [...]string{"init", "preUpdate", "update", "postUpdate", "render", "cleanup"}

func (s Stage) String() string {
	if s.Valid() {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Valid reports whether s is one of the recognized stages.
func (s Stage) Valid() bool {
	return s >= StageInit && s <= StageCleanup
}

// TickContext is passed to every system invocation.
type TickContext struct {
	World *World
	Stage Stage
	// Delta is the simulated milliseconds of this step. Zero during render.
	Delta float64
	// Alpha is the interpolation fraction in [0, 1]. Only set during render.
	Alpha float64
	// Time is the world's cumulative simulated time in milliseconds.
	Time float64
}

// System is a named unit of per-tick logic bound to one stage.
type System interface {
	Name() string
	Stage() Stage
	Update(ctx *TickContext)
}

// Orderer is implemented by systems that need a position within their stage.
// Lower values run first; systems without it use 0.
type Orderer interface {
	Order() int
}

// FuncSystem adapts a function to the System interface.
type FuncSystem struct {
	name  string
	stage Stage
	order int
	fn    func(ctx *TickContext)
}

// NewSystem returns a System running fn in the given stage.
func NewSystem(name string, stage Stage, fn func(ctx *TickContext)) *FuncSystem {
	return &FuncSystem{name: name, stage: stage, fn: fn}
}

// WithOrder sets the ordering key and returns the system for chaining.
func (s *FuncSystem) WithOrder(order int) *FuncSystem {
	s.order = order
	return s
}

func (s *FuncSystem) Name() string { return s.name }
func (s *FuncSystem) Stage() Stage { return s.stage }
func (s *FuncSystem) Order() int { return s.order }
func (s *FuncSystem) Update(ctx *TickContext) { s.fn(ctx) }

type registeredSystem struct {
	sys   System
	stage Stage
	order int
	seq   int
}

// RegisterSystem adds sys and re-sorts the system list by (stage, order).
// Systems with equal keys keep registration order.
func (w *World) RegisterSystem(sys System) error {
	stage := sys.Stage()
	if !stage.Valid() {
		return fmt.Errorf("%w: system %q has %v", ErrUnknownStage, sys.Name(), stage)
	}
	order := 0
	if o, ok := sys.(Orderer); ok {
		order = o.Order()
	}
	w.seq++
	w.systems = append(w.systems, registeredSystem{sys: sys, stage: stage, order: order, seq: w.seq})
	slices.SortStableFunc(w.systems, func(a, b registeredSystem) int {
		if c := cmp.Compare(a.stage, b.stage); c != 0 {
			return c
		}
		if c := cmp.Compare(a.order, b.order); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	return nil
}

// RemoveSystem unregisters the first system with the given name. It reports
// whether one was found.
func (w *World) RemoveSystem(name string) bool {
	for i, rs := range w.systems {
		if rs.sys.Name() == name {
			w.systems = slices.Delete(w.systems, i, i+1)
			return true
		}
	}
	return false
}

// Systems returns the registered systems in execution order.
func (w *World) Systems() []System {
	out := make([]System, len(w.systems))
	for i, rs := range w.systems {
		out[i] = rs.sys
	}
	return out
}

// Step advances cumulative time by delta milliseconds, then runs every
// simulation-stage system in order. Render-stage systems do not run.
func (w *World) Step(delta float64) {
	w.time += delta
	ctx := TickContext{World: w, Delta: delta, Time: w.time}
	for _, rs := range w.snapshotSystems() {
		if rs.stage == StageRender {
			continue
		}
		ctx.Stage = rs.stage
		rs.sys.Update(&ctx)
	}
}

// Render runs only the render-stage systems with the interpolation alpha.
func (w *World) Render(alpha float64) {
	ctx := TickContext{World: w, Stage: StageRender, Alpha: alpha, Time: w.time}
	for _, rs := range w.snapshotSystems() {
		if rs.stage != StageRender {
			continue
		}
		rs.sys.Update(&ctx)
	}
}

// snapshotSystems copies the list so systems may register or remove systems
// while a pass runs; changes take effect on the next pass.
func (w *World) snapshotSystems() []registeredSystem {
	return slices.Clone(w.systems)
}
