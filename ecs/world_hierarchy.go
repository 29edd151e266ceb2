package ecs

import (
	"slices"

	"go.uber.org/zap"
)

// ReparentHook is implemented by components whose effective value depends on
// the parent chain, such as a hierarchical transform. BeforeReparent is called
// before the parent changes; the returned function runs afterwards and rewrites
// the component so its effective value is unchanged.
type ReparentHook interface {
	BeforeReparent() (restore func())
}

// SetParent moves child under parent. The null handle leaves child unparented.
// Parenting an entity under itself or one of its descendants is refused.
func (w *World) SetParent(child Entity, parent Entity) {
	if !w.Exists(child.id) {
		w.log.Debug("dropping SetParent of missing entity", zap.Uint64("entity", uint64(child.id)))
		return
	}
	if !parent.IsNull() && w.isAncestorOrSelf(child.id, parent.id) {
		w.log.Warn("refusing to create a hierarchy cycle",
			zap.Uint64("entity", uint64(child.id)),
			zap.Uint64("parent", uint64(parent.id)))
		return
	}

	w.unlinkParent(child.id)
	if parent.IsNull() {
		return
	}
	w.parents.Put(child.id, parent.id)
	kids, _ := w.children.Get(parent.id)
	w.children.Put(parent.id, append(kids, child.id))
}

// Reparent is SetParent that lets ReparentHook components keep their
// world-space value across the move.
func (w *World) Reparent(child Entity, parent Entity) {
	var restores []func()
	for _, c := range w.AllComponents(child.id) {
		if hook, ok := c.(ReparentHook); ok {
			restores = append(restores, hook.BeforeReparent())
		}
	}
	w.SetParent(child, parent)
	for _, restore := range restores {
		if restore != nil {
			restore()
		}
	}
}

// Parent returns the parent of e, if it has one.
func (w *World) Parent(e Entity) (Entity, bool) {
	parent, ok := w.parents.Get(e.id)
	if !ok {
		return Entity{}, false
	}
	return w.Wrap(parent), true
}

// Children returns the children of parent in insertion order. With recursive
// set the whole subtree is returned, depth first.
func (w *World) Children(parent Entity, recursive bool) []Entity {
	var out []Entity
	var walk func(id EntityID)
	walk = func(id EntityID) {
		kids, _ := w.children.Get(id)
		for _, child := range kids {
			out = append(out, w.Wrap(child))
			if recursive {
				walk(child)
			}
		}
	}
	walk(parent.id)
	return out
}

// NamedChild returns the first child of parent named name, searching the whole
// subtree depth first when recursive is set.
func (w *World) NamedChild(parent Entity, name string, recursive bool) (Entity, bool) {
	kids, _ := w.children.Get(parent.id)
	for _, child := range kids {
		if n, ok := w.names.Get(child); ok && n == name {
			return w.Wrap(child), true
		}
		if recursive {
			if found, ok := w.NamedChild(w.Wrap(child), name, true); ok {
				return found, true
			}
		}
	}
	return Entity{}, false
}

// Roots returns the live entities without a parent.
func (w *World) Roots() []Entity {
	var roots []Entity
	for _, id := range w.entities {
		if _, ok := w.parents.Get(id); !ok {
			roots = append(roots, w.Wrap(id))
		}
	}
	return roots
}

func (w *World) unlinkParent(id EntityID) {
	previous, ok := w.parents.Get(id)
	if !ok {
		return
	}
	kids, _ := w.children.Get(previous)
	kids = slices.DeleteFunc(kids, func(c EntityID) bool { return c == id })
	if len(kids) == 0 {
		w.children.Del(previous)
	} else {
		w.children.Put(previous, kids)
	}
	w.parents.Del(id)
}

func (w *World) isAncestorOrSelf(ancestor, id EntityID) bool {
	for cur := id; !cur.IsNull(); {
		if cur == ancestor {
			return true
		}
		next, ok := w.parents.Get(cur)
		if !ok {
			return false
		}
		cur = next
	}
	return false
}
