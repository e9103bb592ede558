package ecs

import (
	"encoding/json"
	"fmt"

	"github.com/yohamta/donburi"
)

// Definition is the untyped view of a component definition. It is used where
// heterogeneous definitions are listed together, such as in a QuerySpec.
// Only *Component[T] implements it.
type Definition interface {
	Name() string

	has(entry *donburi.Entry) bool
	ptr(entry *donburi.Entry) any
	value(entry *donburi.Entry) any
	setAny(entry *donburi.Entry, v any) error
	remove(entry *donburi.Entry)
}

// Component is a named schema for the data shape T. Create one with Define,
// usually as a package-level variable.
type Component[T any] struct {
	name     string
	ctype    *donburi.ComponentType[T]
	defaults func() T
	clone    func(T) T
}

// Option configures a Component at definition time.
type Option[T any] func(*Component[T])

// WithDefaults sets the factory Ensure uses when the component is absent.
func WithDefaults[T any](fn func() T) Option[T] {
	return func(c *Component[T]) { c.defaults = fn }
}

// WithClone sets the function used to produce detached copies for Serialize,
// Snapshot and Hydrate. Without it values are copied by assignment, which is
// only a deep copy for types holding no slices, maps or pointers.
func WithClone[T any](fn func(T) T) Option[T] {
	return func(c *Component[T]) { c.clone = fn }
}

// registry maps definition names to definitions. Definitions are created
// during package initialization, which is sequential, so no lock is held.
var registry = make(map[string]Definition)

// Define creates a component definition identified by name. Names are
// unique: defining the same name twice panics.
func Define[T any](name string, opts ...Option[T]) *Component[T] {
	if name == "" {
		panic("ecs: component definition requires a name")
	}
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("ecs: component %q defined twice", name))
	}
	c := &Component[T]{
		name:  name,
		ctype: donburi.NewComponentType[T](),
	}
	for _, opt := range opts {
		opt(c)
	}
	registry[name] = c
	return c
}

// Lookup returns the definition registered under name.
func Lookup(name string) (Definition, bool) {
	d, ok := registry[name]
	return d, ok
}

// Name returns the definition's name.
func (c *Component[T]) Name() string { return c.name }

// HasDefaults reports whether the definition carries a default factory.
func (c *Component[T]) HasDefaults() bool { return c.defaults != nil }

func (c *Component[T]) copyOf(v T) T {
	if c.clone != nil {
		return c.clone(v)
	}
	return v
}

func (c *Component[T]) has(entry *donburi.Entry) bool {
	return entry.HasComponent(c.ctype)
}

func (c *Component[T]) ptr(entry *donburi.Entry) any {
	return c.ctype.Get(entry)
}

func (c *Component[T]) value(entry *donburi.Entry) any {
	return c.copyOf(*c.ctype.Get(entry))
}

func (c *Component[T]) set(entry *donburi.Entry, v T) {
	if !entry.HasComponent(c.ctype) {
		entry.AddComponent(c.ctype)
	}
	c.ctype.SetValue(entry, v)
}

// setAny stores v, which is either a T or the generic form a decoder
// produced for one (maps, slices, float64). The generic form is converted by
// re-encoding it as JSON.
func (c *Component[T]) setAny(entry *donburi.Entry, v any) error {
	if tv, ok := v.(T); ok {
		c.set(entry, c.copyOf(tv))
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: component %q holds %T: %v", ErrMalformedSnapshot, c.name, v, err)
	}
	var tv T
	if err := json.Unmarshal(raw, &tv); err != nil {
		return fmt.Errorf("%w: component %q holds %T: %v", ErrMalformedSnapshot, c.name, v, err)
	}
	c.set(entry, tv)
	return nil
}

func (c *Component[T]) remove(entry *donburi.Entry) {
	if entry.HasComponent(c.ctype) {
		entry.RemoveComponent(c.ctype)
	}
}
