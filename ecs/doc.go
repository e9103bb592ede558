// Package ecs is bramble's entity-component-system core.
//
// A [World] owns entities, per-definition component storage and an ordered
// list of staged [System]s. Component storage is backed by a [Donburi]
// world; bramble keeps its own entity ordering, name-keyed definitions and
// stage scheduler on top of it.
//
//	var Position = ecs.Define[Vec]("Position")
//
//	w := ecs.NewWorld()
//	e := w.CreateEntity()
//	_ = ecs.Add(w, e, Position, Vec{X: 1})
//
//	for row := range w.Query(ecs.QuerySpec{All: []ecs.Definition{Position}}).Rows() {
//		ecs.Field(row, Position).X++
//	}
//
// The simulation stages run from [World.Step] with a fixed time delta; the
// render stage runs from [World.Render] with an interpolation alpha.
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
