package ecs

import (
	"iter"
	"slices"
)

// QuerySpec selects entities by component membership. An entity matches when
// it holds every All component, at least one Any component (when Any is
// non-empty), and none of the None components.
type QuerySpec struct {
	All  []Definition
	Any  []Definition
	None []Definition
}

// Row is one query match: the entity plus pointers to each All and Any
// component it holds, keyed by definition name.
type Row struct {
	Entity Entity
	values map[string]any
}

// Has reports whether the row resolved the component.
func (r Row) Has(def Definition) bool {
	_, ok := r.values[def.Name()]
	return ok
}

// Field returns the row's component value, or nil if the row does not carry
// it (an unmatched Any component, or a definition outside the query).
func Field[T any](r Row, def *Component[T]) *T {
	v, ok := r.values[def.name]
	if !ok {
		return nil
	}
	return v.(*T)
}

// QueryResult is a lazy, one-shot sequence of rows over the entities that
// existed when the query was built. Matching happens during iteration;
// entities destroyed in the meantime are skipped. It is not a live view:
// iterating a second time yields nothing.
type QueryResult struct {
	world    *World
	spec     QuerySpec
	entities []Entity
	consumed bool
}

// Query snapshots the entity set and returns a result to iterate.
func (w *World) Query(spec QuerySpec) *QueryResult {
	return &QueryResult{
		world:    w,
		spec:     spec,
		entities: slices.Clone(w.entities),
	}
}

// Rows returns the row sequence. Only the first call yields rows.
func (q *QueryResult) Rows() iter.Seq[Row] {
	return func(yield func(Row) bool) {
		if q.consumed {
			return
		}
		q.consumed = true
		for _, e := range q.entities {
			row, ok := q.match(e)
			if !ok {
				continue
			}
			if !yield(row) {
				return
			}
		}
	}
}

// Each calls fn for every row. It consumes the result like Rows.
func (q *QueryResult) Each(fn func(Row)) {
	for row := range q.Rows() {
		fn(row)
	}
}

// Entities drains the result and returns the matching entities.
func (q *QueryResult) Entities() []Entity {
	var out []Entity
	for row := range q.Rows() {
		out = append(out, row.Entity)
	}
	return out
}

func (q *QueryResult) match(e Entity) (Row, bool) {
	entry := q.world.entry(e)
	if entry == nil {
		return Row{}, false
	}
	for _, d := range q.spec.None {
		if d.has(entry) {
			return Row{}, false
		}
	}
	row := Row{Entity: e, values: make(map[string]any, len(q.spec.All)+len(q.spec.Any))}
	for _, d := range q.spec.All {
		if !d.has(entry) {
			return Row{}, false
		}
		row.values[d.Name()] = d.ptr(entry)
	}
	if len(q.spec.Any) > 0 {
		found := false
		for _, d := range q.spec.Any {
			if d.has(entry) {
				row.values[d.Name()] = d.ptr(entry)
				found = true
			}
		}
		if !found {
			return Row{}, false
		}
	}
	return row, true
}
