package ecs

import (
	"fmt"
	"slices"
)

// Snapshot is a detached, point-in-time copy of a world's entities and
// component data. Within each SerializedComponent, Data[i] belongs to
// Entities[i].
type Snapshot struct {
	Entities   []Entity              `json:"entities" yaml:"entities"`
	Components []SerializedComponent `json:"components" yaml:"components"`
}

// SerializedComponent holds every value of one component definition.
type SerializedComponent struct {
	Name     string   `json:"name" yaml:"name"`
	Entities []Entity `json:"entities" yaml:"entities"`
	Data     []any    `json:"data" yaml:"data"`
}

// EntitySnapshot is a detached copy of one entity's components keyed by
// definition name.
type EntitySnapshot struct {
	Entity     Entity
	Components map[string]any
}

// Serialize copies the world's entities and component values. Mutating the
// result never affects the world.
func (w *World) Serialize() Snapshot {
	snap := Snapshot{
		Entities:   slices.Clone(w.entities),
		Components: make([]SerializedComponent, 0, len(w.used)),
	}
	for _, def := range w.used {
		sc := SerializedComponent{Name: def.Name()}
		for _, e := range w.entities {
			entry := w.backing.Entry(e)
			if !def.has(entry) {
				continue
			}
			sc.Entities = append(sc.Entities, e)
			sc.Data = append(sc.Data, def.value(entry))
		}
		snap.Components = append(snap.Components, sc)
	}
	return snap
}

// Snapshot copies one entity's components. It returns false for an unknown
// entity.
func (w *World) Snapshot(e Entity) (EntitySnapshot, bool) {
	entry := w.entry(e)
	if entry == nil {
		return EntitySnapshot{}, false
	}
	snap := EntitySnapshot{Entity: e, Components: make(map[string]any)}
	for _, def := range w.used {
		if def.has(entry) {
			snap.Components[def.Name()] = def.value(entry)
		}
	}
	return snap, true
}

// Hydrate recreates the entities and components of snap in w. Entities get
// fresh identifiers; the returned map translates snapshot entities to the
// new ones. On error, entities created so far are left in place.
func (w *World) Hydrate(snap Snapshot) (map[Entity]Entity, error) {
	mapping := make(map[Entity]Entity, len(snap.Entities))
	for _, old := range snap.Entities {
		mapping[old] = w.CreateEntity()
	}
	for _, sc := range snap.Components {
		def, ok := Lookup(sc.Name)
		if !ok {
			return mapping, fmt.Errorf("%w: %q", ErrUnknownComponent, sc.Name)
		}
		if len(sc.Entities) != len(sc.Data) {
			return mapping, fmt.Errorf("%w: component %q has %d entities and %d values",
				ErrMalformedSnapshot, sc.Name, len(sc.Entities), len(sc.Data))
		}
		for i, old := range sc.Entities {
			e, ok := mapping[old]
			if !ok {
				return mapping, fmt.Errorf("%w: component %q references unlisted entity %v",
					ErrMalformedSnapshot, sc.Name, old)
			}
			w.markUsed(def)
			if err := def.setAny(w.backing.Entry(e), sc.Data[i]); err != nil {
				return mapping, err
			}
		}
	}
	return mapping, nil
}
