package ecs

import (
	"github.com/yohamta/donburi"
)

// Entity is an opaque identifier unique within a World. Identifiers carry a
// version, so a destroyed entity never compares equal to a later one.
type Entity = donburi.Entity

// entityTag marks every entity created through a World. donburi refuses to
// create an entity with an empty archetype. It is never a used definition,
// so snapshots do not carry it.
var entityTag = donburi.NewTag()

// Backing returns the donburi world holding component storage. Callers may use
// it for donburi features such as typed event queues; mutating entities or
// components through it bypasses the World's bookkeeping.
func (w *World) Backing() donburi.World {
	return w.backing
}

// entry returns the donburi entry for a live entity, or nil.
func (w *World) entry(e Entity) *donburi.Entry {
	if _, ok := w.alive[e]; !ok {
		return nil
	}
	return w.backing.Entry(e)
}
