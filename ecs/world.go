package ecs

import (
	"slices"
	"time"

	"github.com/kamstrup/intmap"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const defaultEntityCapacity = 256

// DefaultEntityName is used when NewEntity is given an empty name.
const DefaultEntityName = "<unnamed>"

// World owns every entity, its components, its place in the hierarchy and the
// systems that process it.
//
// Structural changes (new entities, removals, component additions and removals)
// are buffered and only become visible to systems and cached queries when Tick
// flushes them. A World is not safe for concurrent use; see ParallelForEach2 for
// the one sanctioned fan-out.
type World struct {
	log   *zap.Logger
	tasks TaskScheduler

	entities []EntityID
	live     *intmap.Map[EntityID, struct{}]
	pending  commands

	components *intmap.Map[EntityID, map[ComponentID]Component]
	names      *intmap.Map[EntityID, string]
	tags       *intmap.Map[EntityID, Tags]
	flags      *intmap.Map[EntityID, Flags]
	parents    *intmap.Map[EntityID, EntityID]
	children   *intmap.Map[EntityID, []EntityID]

	queries []*QueryResult

	logicSystems  []System
	renderSystems []System

	frozenLogic bool
	ticks       uint64
}

// NewWorld creates an empty World.
func NewWorld(opts ...Option) *World {
	w := &World{
		log:        zap.NewNop(),
		tasks:      defaultPool(),
		live:       intmap.New[EntityID, struct{}](defaultEntityCapacity),
		components: intmap.New[EntityID, map[ComponentID]Component](defaultEntityCapacity),
		names:      intmap.New[EntityID, string](defaultEntityCapacity),
		tags:       intmap.New[EntityID, Tags](defaultEntityCapacity),
		flags:      intmap.New[EntityID, Flags](defaultEntityCapacity),
		parents:    intmap.New[EntityID, EntityID](defaultEntityCapacity),
		children:   intmap.New[EntityID, []EntityID](defaultEntityCapacity),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Logger returns the World's logger.
func (w *World) Logger() *zap.Logger {
	return w.log
}

// NewEntity allocates an entity. It becomes live at the next tick, but
// components can be attached right away.
func (w *World) NewEntity(name string) Entity {
	return w.NewEntityWithID(NewEntityID(), name)
}

// NewEntityWithID creates an entity with a caller-chosen ID. Only loaders and
// replication code should need this; reusing a live ID corrupts the World.
func (w *World) NewEntityWithID(id EntityID, name string) Entity {
	if id.IsNull() {
		panic("cannot create an entity with the null ID")
	}
	if name == "" {
		name = DefaultEntityName
	}
	w.names.Put(id, name)
	if _, ok := w.components.Get(id); !ok {
		w.components.Put(id, make(map[ComponentID]Component))
	}
	w.pending.Spawn(id)
	return w.Wrap(id)
}

// RemoveEntity queues the entity and every descendant for removal. The whole
// subtree is collected now; destruction happens at the next tick.
func (w *World) RemoveEntity(e Entity) {
	w.pending.Delete(e.id)
	kids, _ := w.children.Get(e.id)
	for _, child := range slices.Clone(kids) {
		w.RemoveEntity(w.Wrap(child))
	}
}

// Exists reports whether the entity has been created and not yet destroyed.
func (w *World) Exists(id EntityID) bool {
	_, ok := w.names.Get(id)
	return ok
}

// IsLive reports whether the entity has passed the add flush and not the remove flush.
func (w *World) IsLive(id EntityID) bool {
	_, ok := w.live.Get(id)
	return ok
}

// IsRemoving reports whether the entity is queued for removal at the next tick.
func (w *World) IsRemoving(id EntityID) bool {
	return w.pending.Deleting(id)
}

// Wrap builds a handle for id without checking that it exists.
func (w *World) Wrap(id EntityID) Entity {
	return Entity{id: id, world: w}
}

// Entities returns the live entities in insertion order.
func (w *World) Entities() []Entity {
	list := make([]Entity, len(w.entities))
	for i, id := range w.entities {
		list[i] = w.Wrap(id)
	}
	return list
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int {
	return len(w.entities)
}

// Name returns the display name of the entity.
func (w *World) Name(id EntityID) (string, error) {
	name, ok := w.names.Get(id)
	if !ok {
		return "", eris.Wrapf(ErrMissingEntity, "entity %s has no name", id)
	}
	return name, nil
}

// SetName renames an existing entity.
func (w *World) SetName(id EntityID, name string) {
	if !w.Exists(id) {
		w.log.Debug("dropping rename of missing entity", zap.Uint64("entity", uint64(id)))
		return
	}
	w.names.Put(id, name)
}

// FindEntityByName returns the first entity carrying the name, looking at live
// entities first and then at entities still waiting for the next tick.
func (w *World) FindEntityByName(name string) (Entity, bool) {
	for _, ids := range [][]EntityID{w.entities, w.pending.adds} {
		for _, id := range ids {
			if n, ok := w.names.Get(id); ok && n == name {
				return w.Wrap(id), true
			}
		}
	}
	return Entity{}, false
}

// Signature returns the set of components attached to the entity; empty for an
// unknown entity.
func (w *World) Signature(id EntityID) Signature {
	comps, ok := w.components.Get(id)
	if !ok {
		return Signature{}
	}
	ids := make([]ComponentID, 0, len(comps))
	for cid := range comps {
		ids = append(ids, cid)
	}
	return NewSignature(ids...)
}

// GetComponent returns the component with the given ID attached to the entity.
func (w *World) GetComponent(id EntityID, cid ComponentID) (Component, bool) {
	comps, ok := w.components.Get(id)
	if !ok {
		return nil, false
	}
	c, ok := comps[cid]
	return c, ok
}

// AllComponents returns the entity's components ordered by bit index.
func (w *World) AllComponents(id EntityID) []Component {
	comps, ok := w.components.Get(id)
	if !ok {
		return nil
	}
	ids := make([]ComponentID, 0, len(comps))
	for cid := range comps {
		ids = append(ids, cid)
	}
	slices.SortFunc(ids, func(a, b ComponentID) int {
		return IndexOf(a) - IndexOf(b)
	})
	out := make([]Component, len(ids))
	for i, cid := range ids {
		out[i] = comps[cid]
	}
	return out
}

func (w *World) addComponent(id EntityID, c Component) {
	cid := ComponentIDFor(c)
	// claim the bit now so the type limit trips at the call that exceeds it
	IndexOf(cid)

	comps, ok := w.components.Get(id)
	if !ok || !w.Exists(id) {
		w.log.Debug("dropping component add for missing entity",
			zap.Uint64("entity", uint64(id)),
			zap.String("component", typeNameOf(c)))
		return
	}
	c.bind(w.Wrap(id))
	comps[cid] = c
	w.pending.Update(id)
}

func (w *World) removeComponent(id EntityID, cid ComponentID) {
	comps, ok := w.components.Get(id)
	if !ok {
		w.log.Debug("dropping component removal for missing entity", zap.Uint64("entity", uint64(id)))
		return
	}
	delete(comps, cid)
	w.pending.Update(id)
}

// Tags returns the entity's tags.
func (w *World) Tags(id EntityID) Tags {
	tags, _ := w.tags.Get(id)
	return tags
}

func (w *World) addTags(id EntityID, tags Tags) {
	if !w.Exists(id) {
		return
	}
	current, _ := w.tags.Get(id)
	w.tags.Put(id, current|tags)
}

func (w *World) removeTags(id EntityID, tags Tags) {
	current, ok := w.tags.Get(id)
	if !ok {
		return
	}
	w.tags.Put(id, current&^tags)
}

// EntitiesWithTags returns the live entities carrying every tag in tags.
func (w *World) EntitiesWithTags(tags Tags) []Entity {
	var result []Entity
	for _, id := range w.entities {
		if w.Tags(id)&tags == tags {
			result = append(result, w.Wrap(id))
		}
	}
	return result
}

// Flags returns the entity's flags.
func (w *World) Flags(id EntityID) Flags {
	flags, _ := w.flags.Get(id)
	return flags
}

func (w *World) setFlags(id EntityID, flags Flags) {
	if !w.Exists(id) {
		return
	}
	current, _ := w.flags.Get(id)
	w.flags.Put(id, current|flags)
}

func (w *World) removeFlags(id EntityID, flags Flags) {
	current, ok := w.flags.Get(id)
	if !ok {
		return
	}
	w.flags.Put(id, current&^flags)
}

// FreezeLogic stops logic systems from ticking. Entity additions and removals
// are still processed.
func (w *World) FreezeLogic() {
	w.frozenLogic = true
}

// UnfreezeLogic resumes logic system ticks.
func (w *World) UnfreezeLogic() {
	w.frozenLogic = false
}

// LogicFrozen reports whether logic systems are frozen.
func (w *World) LogicFrozen() bool {
	return w.frozenLogic
}

// Tick flushes the pending changes, then runs logic systems (unless frozen) and
// render systems.
func (w *World) Tick(dt float64) {
	w.flush()

	frame := newUpdateFrame(dt, w, w.ticks)
	if !w.frozenLogic {
		for _, s := range w.logicSystems {
			runSystem(s, frame)
		}
	}
	for _, s := range w.renderSystems {
		runSystem(s, frame)
	}
	w.ticks++
}

func runSystem(s System, frame *UpdateFrame) {
	start := time.Now()
	s.Tick(frame)
	s.base().stats.record(time.Since(start))
}

// flush applies the queued changes in a fixed order: adds become live, stale
// queries are dropped (while removed entities still carry their components),
// systems are told about adds, updates and removals, and finally removed
// entities are destroyed.
func (w *World) flush() {
	if w.pending.Empty() {
		return
	}

	added := make([]EntityID, 0, len(w.pending.adds))
	for _, id := range w.pending.adds {
		if !w.Exists(id) {
			w.log.Debug("dropping add of missing entity", zap.Uint64("entity", uint64(id)))
			continue
		}
		if w.IsLive(id) {
			continue
		}
		w.entities = append(w.entities, id)
		w.live.Put(id, struct{}{})
		added = append(added, id)
	}

	w.invalidateQueries()

	if len(added) > 0 {
		w.eachSystem(func(s System) { s.base().OnEntitiesAdded(added) })
	}

	updated := make([]EntityID, 0, len(w.pending.updates))
	for _, id := range w.pending.updates {
		if w.IsLive(id) {
			updated = append(updated, id)
		}
	}
	if len(updated) > 0 {
		w.eachSystem(func(s System) { s.base().OnEntitiesUpdated(updated) })
	}

	removed := make([]EntityID, 0, len(w.pending.removes))
	for _, id := range w.pending.removes {
		if w.Exists(id) {
			removed = append(removed, id)
		}
	}
	if len(removed) > 0 {
		w.eachSystem(func(s System) { s.base().OnEntitiesRemoved(removed) })
		w.destroy(removed)
	}

	w.log.Debug("flushed world",
		zap.Int("added", len(added)),
		zap.Int("updated", len(updated)),
		zap.Int("removed", len(removed)),
		zap.Int("live", len(w.entities)))

	w.pending.Reset()
}

func (w *World) destroy(ids []EntityID) {
	doomed := make(map[EntityID]struct{}, len(ids))
	for _, id := range ids {
		doomed[id] = struct{}{}
	}
	w.entities = slices.DeleteFunc(w.entities, func(id EntityID) bool {
		_, ok := doomed[id]
		return ok
	})

	for _, id := range ids {
		w.live.Del(id)
		w.components.Del(id)
		if parent, ok := w.parents.Get(id); ok {
			if _, gone := doomed[parent]; gone {
				w.parents.Del(id)
			} else {
				w.unlinkParent(id)
			}
		}

		kids, _ := w.children.Get(id)
		for _, child := range kids {
			if _, ok := doomed[child]; !ok {
				w.parents.Del(child)
			}
		}
		w.children.Del(id)

		w.names.Del(id)
		w.tags.Del(id)
		w.flags.Del(id)
	}
}

func (w *World) eachSystem(fn func(System)) {
	for _, s := range w.logicSystems {
		fn(s)
	}
	for _, s := range w.renderSystems {
		fn(s)
	}
}
