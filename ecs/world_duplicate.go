package ecs

import (
	"slices"

	"go.uber.org/zap"
)

// RemapFrom turns an old-to-new ID table into a Remap. IDs missing from the
// table map to themselves, so links leaving the cloned subtree are kept.
func RemapFrom(table map[EntityID]EntityID) Remap {
	return func(id EntityID) EntityID {
		if mapped, ok := table[id]; ok {
			return mapped
		}
		return id
	}
}

// Duplicate deep-clones e and its whole subtree. Every component is copied via
// its own Duplicate, so nothing is shared with the original, and then every
// component of the clone gets RepairLinks so entity references pointing inside
// the original subtree now point inside the clone.
//
// The clone is placed under newParent, or under e's parent when newParent is
// the null handle. Like any new entity it becomes live at the next tick.
func (w *World) Duplicate(e Entity, newParent Entity) Entity {
	table := make(map[EntityID]EntityID)
	clone := w.duplicateSubtree(e.id, table)

	parent := newParent
	if parent.IsNull() {
		if p, ok := w.Parent(e); ok {
			parent = p
		}
	}
	if !parent.IsNull() {
		w.SetParent(clone, parent)
	}

	w.RepairLinks(clone, table)

	w.log.Debug("duplicated entity",
		zap.Uint64("source", uint64(e.id)),
		zap.Uint64("clone", uint64(clone.id)),
		zap.Int("subtree", len(table)))
	return clone
}

func (w *World) duplicateSubtree(id EntityID, table map[EntityID]EntityID) Entity {
	name, _ := w.names.Get(id)
	clone := w.NewEntity(name)
	table[id] = clone.id

	for _, c := range w.AllComponents(id) {
		clone.AddComponent(c.Duplicate(clone))
	}
	if tags := w.Tags(id); tags != 0 {
		w.tags.Put(clone.id, tags)
	}
	if flags := w.Flags(id); flags != FlagsNone {
		w.flags.Put(clone.id, flags)
	}

	kids, _ := w.children.Get(id)
	for _, child := range slices.Clone(kids) {
		w.SetParent(w.duplicateSubtree(child, table), clone)
	}
	return clone
}

// RepairLinks applies the old-to-new table to every component of root and its
// descendants.
func (w *World) RepairLinks(root Entity, table map[EntityID]EntityID) {
	remap := RemapFrom(table)
	subtree := append([]Entity{root}, w.Children(root, true)...)
	for _, e := range subtree {
		for _, c := range w.AllComponents(e.id) {
			c.RepairLinks(remap)
		}
	}
}

// Clone returns a deep copy of the World: entities keep their IDs, components
// are copied through Duplicate and systems implementing SystemDuplicator are
// recreated with the same tracked entities. Other systems are left out.
func (w *World) Clone() *World {
	dst := NewWorld()
	dst.log = w.log
	dst.tasks = w.tasks
	dst.frozenLogic = w.frozenLogic

	dst.entities = slices.Clone(w.entities)
	for _, id := range dst.entities {
		dst.live.Put(id, struct{}{})
	}
	dst.pending = w.pending.clone()

	w.names.ForEach(func(id EntityID, name string) bool {
		dst.names.Put(id, name)
		return true
	})
	w.tags.ForEach(func(id EntityID, tags Tags) bool {
		dst.tags.Put(id, tags)
		return true
	})
	w.flags.ForEach(func(id EntityID, flags Flags) bool {
		dst.flags.Put(id, flags)
		return true
	})
	w.parents.ForEach(func(id EntityID, parent EntityID) bool {
		dst.parents.Put(id, parent)
		return true
	})
	w.children.ForEach(func(id EntityID, kids []EntityID) bool {
		dst.children.Put(id, slices.Clone(kids))
		return true
	})
	w.components.ForEach(func(id EntityID, comps map[ComponentID]Component) bool {
		owner := dst.Wrap(id)
		copied := make(map[ComponentID]Component, len(comps))
		for cid, c := range comps {
			d := c.Duplicate(owner)
			d.bind(owner)
			copied[cid] = d
		}
		dst.components.Put(id, copied)
		return true
	})

	dst.logicSystems = dst.cloneSystems(w.logicSystems)
	dst.renderSystems = dst.cloneSystems(w.renderSystems)
	return dst
}

func (w *World) cloneSystems(src []System) []System {
	out := make([]System, 0, len(src))
	for _, s := range src {
		dup, ok := s.(SystemDuplicator)
		if !ok {
			w.log.Warn("system cannot be duplicated, leaving it out of the clone", zap.String("system", SystemName(s)))
			continue
		}
		clone := dup.Duplicate(w)
		b := clone.base()
		if hook, ok := clone.(EntityAddedHook); ok {
			b.onAdded = hook.OnEntityAdded
		}
		b.adopt(s.base())
		out = append(out, clone)
	}
	return out
}
