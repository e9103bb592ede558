package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryAllAnyNone(t *testing.T) {
	w := NewWorld()
	moving := w.CreateEntity()
	require.NoError(t, Add(w, moving, testPosition, vec{}))
	require.NoError(t, Add(w, moving, testVelocity, vec{1, 0}))

	static := w.CreateEntity()
	require.NoError(t, Add(w, static, testPosition, vec{}))

	frozen := w.CreateEntity()
	require.NoError(t, Add(w, frozen, testPosition, vec{}))
	require.NoError(t, Add(w, frozen, testVelocity, vec{}))
	require.NoError(t, Add(w, frozen, testFrozen, tag{}))

	got := w.Query(QuerySpec{
		All:  []Definition{testPosition, testVelocity},
		None: []Definition{testFrozen},
	}).Entities()
	assert.Equal(t, []Entity{moving}, got)

	got = w.Query(QuerySpec{All: []Definition{testPosition}}).Entities()
	assert.Equal(t, []Entity{moving, static, frozen}, got)

	got = w.Query(QuerySpec{Any: []Definition{testVelocity, testFrozen}}).Entities()
	assert.Equal(t, []Entity{moving, frozen}, got)
}

func TestQueryRowCarriesAllAndResolvedAny(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity()
	require.NoError(t, Add(w, e, testPosition, vec{5, 5}))
	require.NoError(t, Add(w, e, testHealth, 3))

	rows := 0
	for row := range w.Query(QuerySpec{
		All: []Definition{testPosition},
		Any: []Definition{testHealth, testVelocity},
	}).Rows() {
		rows++
		assert.Equal(t, e, row.Entity)
		assert.Equal(t, vec{5, 5}, *Field(row, testPosition))
		assert.Equal(t, 3, *Field(row, testHealth))
		assert.Nil(t, Field(row, testVelocity))
		assert.False(t, row.Has(testVelocity))
	}
	assert.Equal(t, 1, rows)
}

func TestQueryIsSnapshot(t *testing.T) {
	w := NewWorld()
	a := w.CreateEntity()
	b := w.CreateEntity()
	require.NoError(t, Add(w, a, testPosition, vec{}))
	require.NoError(t, Add(w, b, testPosition, vec{}))

	q := w.Query(QuerySpec{All: []Definition{testPosition}})

	late := w.CreateEntity()
	require.NoError(t, Add(w, late, testPosition, vec{}))

	var seen []Entity
	for row := range q.Rows() {
		seen = append(seen, row.Entity)
		// Destroying an entity mid-iteration must not disturb the walk.
		w.DestroyEntity(b)
	}
	assert.Equal(t, []Entity{a}, seen)
}

func TestQueryIsOneShot(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity()
	require.NoError(t, Add(w, e, testPosition, vec{}))

	q := w.Query(QuerySpec{All: []Definition{testPosition}})
	assert.Len(t, q.Entities(), 1)
	assert.Empty(t, q.Entities())
}

func TestQueryRowsMutateWorld(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity()
	require.NoError(t, Add(w, e, testPosition, vec{}))

	w.Query(QuerySpec{All: []Definition{testPosition}}).Each(func(row Row) {
		Field(row, testPosition).X = 7
	})
	assert.Equal(t, 7.0, Get(w, e, testPosition).X)
}
