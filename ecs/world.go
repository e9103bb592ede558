package ecs

import (
	"fmt"
	"slices"

	"github.com/yohamta/donburi"
)

// World owns entities, component storage, staged systems and cumulative
// simulation time. A World is not safe for concurrent use.
type World struct {
	backing  donburi.World
	entities []Entity
	alive    map[Entity]struct{}

	// used lists definitions in order of first use, for serialization.
	used    []Definition
	usedSet map[string]struct{}

	systems []registeredSystem
	seq     int
	time    float64
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{
		backing: donburi.NewWorld(),
		alive:   make(map[Entity]struct{}),
		usedSet: make(map[string]struct{}),
	}
}

// CreateEntity returns a fresh entity with no components.
func (w *World) CreateEntity() Entity {
	e := w.backing.Create(entityTag)
	w.entities = append(w.entities, e)
	w.alive[e] = struct{}{}
	return e
}

// DestroyEntity removes e and purges it from every component store. It
// reports whether e was alive.
func (w *World) DestroyEntity(e Entity) bool {
	if _, ok := w.alive[e]; !ok {
		return false
	}
	w.backing.Remove(e)
	delete(w.alive, e)
	if i := slices.Index(w.entities, e); i >= 0 {
		w.entities = slices.Delete(w.entities, i, i+1)
	}
	return true
}

// Alive reports whether e exists in the world.
func (w *World) Alive(e Entity) bool {
	_, ok := w.alive[e]
	return ok
}

// Entities returns a copy of the live entity list in creation order.
func (w *World) Entities() []Entity {
	return slices.Clone(w.entities)
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return len(w.entities)
}

// Time returns cumulative simulated time in milliseconds.
func (w *World) Time() float64 {
	return w.time
}

// Clear resets the world to empty: entities, component stores, systems and
// cumulative time.
func (w *World) Clear() {
	w.backing = donburi.NewWorld()
	w.entities = nil
	w.alive = make(map[Entity]struct{})
	w.used = nil
	w.usedSet = make(map[string]struct{})
	w.systems = nil
	w.seq = 0
	w.time = 0
}

func (w *World) markUsed(d Definition) {
	if _, ok := w.usedSet[d.Name()]; ok {
		return
	}
	w.usedSet[d.Name()] = struct{}{}
	w.used = append(w.used, d)
}

// Add sets the component value for e, overwriting any existing value.
func Add[T any](w *World, e Entity, def *Component[T], v T) error {
	entry := w.entry(e)
	if entry == nil {
		return fmt.Errorf("%w: add %q to %v", ErrEntityNotFound, def.name, e)
	}
	w.markUsed(def)
	def.set(entry, v)
	return nil
}

// Ensure returns the component for e, creating it from the definition's
// default factory if absent.
func Ensure[T any](w *World, e Entity, def *Component[T]) (*T, error) {
	entry := w.entry(e)
	if entry == nil {
		return nil, fmt.Errorf("%w: ensure %q on %v", ErrEntityNotFound, def.name, e)
	}
	if def.has(entry) {
		return def.ctype.Get(entry), nil
	}
	if def.defaults == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoDefaultValue, def.name)
	}
	w.markUsed(def)
	def.set(entry, def.defaults())
	return def.ctype.Get(entry), nil
}

// Get returns a pointer to e's component value, or nil when e is unknown or
// does not hold the component. The pointer is valid until the next
// structural change to e.
func Get[T any](w *World, e Entity, def *Component[T]) *T {
	entry := w.entry(e)
	if entry == nil || !def.has(entry) {
		return nil
	}
	return def.ctype.Get(entry)
}

// Has reports whether e holds the component.
func Has(w *World, e Entity, def Definition) bool {
	entry := w.entry(e)
	return entry != nil && def.has(entry)
}

// Remove deletes the component from e. It reports whether anything was
// removed.
func Remove(w *World, e Entity, def Definition) bool {
	entry := w.entry(e)
	if entry == nil || !def.has(entry) {
		return false
	}
	def.remove(entry)
	return true
}
