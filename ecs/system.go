package ecs

import (
	"reflect"
)

// System is a behavior run once per tick over every entity carrying its
// required components. User systems embed SystemBase, built with NewSystemBase,
// and override Tick.
type System interface {
	Tick(frame *UpdateFrame)
	base() *SystemBase
}

// EntityAddedHook is called when an entity starts matching a system.
type EntityAddedHook interface {
	OnEntityAdded(e Entity)
}

// FrameHook is called once per rendered frame.
type FrameHook interface {
	OnFrame(ctx RenderContext)
}

// CameraHook lets render systems prepare their cameras before a frame.
type CameraHook interface {
	SetupCamera(ctx RenderContext)
}

// GBufferHook records draw work into the opaque and transparent passes.
type GBufferHook interface {
	OpaqueGBufferRender(pass RenderPass, ctx RenderContext)
	TransparentGBufferRender(pass RenderPass, ctx RenderContext)
}

// BufferSwapper is called at the end of each frame.
type BufferSwapper interface {
	SwapBuffers()
}

// SystemDuplicator lets a system follow its World through Clone.
type SystemDuplicator interface {
	Duplicate(newOwner *World) System
}

// SystemSerializer persists system configuration.
type SystemSerializer interface {
	Serialize() Document
}

// TransientSystem is implemented by systems that must not be persisted, such
// as debug overlays.
type TransientSystem interface {
	Transient() bool
}

// Reloadable systems allocate engine resources in Reload and free them in Unload.
type Reloadable interface {
	Reload()
	Unload()
}

// StartStopListener receives play-mode start and stop events.
type StartStopListener interface {
	OnStart()
	OnStop()
}

// Namer gives a system a display name.
type Namer interface {
	Name() string
}

// SystemBase tracks the entities matching a required Signature. It is updated
// incrementally from the World's add, update and remove notifications and never
// rescans the whole World.
type SystemBase struct {
	world     *World
	required  []ComponentID
	signature Signature

	entities []Entity
	tracked  map[EntityID]struct{}
	rows     []EntityWithComponents

	onAdded func(Entity)
	stats   systemStats
}

// NewSystemBase builds the matching state for a system of w requiring the given components.
func NewSystemBase(w *World, required ...ComponentID) SystemBase {
	return SystemBase{
		world:     w,
		required:  append([]ComponentID(nil), required...),
		signature: NewSignature(required...),
		tracked:   make(map[EntityID]struct{}),
	}
}

func (s *SystemBase) base() *SystemBase {
	return s
}

// Tick does nothing; systems override it.
func (s *SystemBase) Tick(*UpdateFrame) {}

// World returns the World the system belongs to.
func (s *SystemBase) World() *World {
	return s.world
}

// Signature returns the required components.
func (s *SystemBase) Signature() Signature {
	return s.signature
}

// Entities returns the tracked entities in the order they started matching.
func (s *SystemBase) Entities() []Entity {
	return s.entities
}

// Rows returns the tracked entities with their required components, ordered by
// signature slot.
func (s *SystemBase) Rows() []EntityWithComponents {
	return s.rows
}

// Tracks reports whether the entity currently matches the system.
func (s *SystemBase) Tracks(id EntityID) bool {
	_, ok := s.tracked[id]
	return ok
}

// OnEntitiesAdded starts tracking every id whose signature satisfies the system's.
func (s *SystemBase) OnEntitiesAdded(ids []EntityID) {
	changed := false
	for _, id := range ids {
		if s.Tracks(id) {
			continue
		}
		if s.matches(id) {
			s.track(id)
			changed = true
		}
	}
	if changed {
		s.rebuildRows()
	}
}

// OnEntitiesRemoved stops tracking the given ids.
func (s *SystemBase) OnEntitiesRemoved(ids []EntityID) {
	changed := false
	for _, id := range ids {
		if s.Tracks(id) {
			s.untrack(id)
			changed = true
		}
	}
	if changed {
		s.rebuildRows()
	}
}

// OnEntitiesUpdated re-tests each id: entities that stopped matching are dropped
// and entities that now match are added.
func (s *SystemBase) OnEntitiesUpdated(ids []EntityID) {
	changed := false
	for _, id := range ids {
		tracked := s.Tracks(id)
		switch matches := s.matches(id); {
		case tracked && !matches:
			s.untrack(id)
			changed = true
		case !tracked && matches:
			s.track(id)
			changed = true
		case tracked:
			// a component may have been replaced by a new instance
			changed = true
		}
	}
	if changed || len(s.rows) != len(s.entities) {
		s.rebuildRows()
	}
}

func (s *SystemBase) matches(id EntityID) bool {
	return s.world.Signature(id).Contains(s.signature)
}

func (s *SystemBase) track(id EntityID) {
	e := s.world.Wrap(id)
	if s.onAdded != nil {
		s.onAdded(e)
	}
	s.entities = append(s.entities, e)
	s.tracked[id] = struct{}{}
}

func (s *SystemBase) untrack(id EntityID) {
	delete(s.tracked, id)
	for i, e := range s.entities {
		if e.id == id {
			s.entities = append(s.entities[:i], s.entities[i+1:]...)
			break
		}
	}
}

// rebuildRows refreshes the component rows. An entity that lost a required
// component since it was last tested gets no row; the pending update
// notification drops it right after.
func (s *SystemBase) rebuildRows() {
	count := s.signature.Count()
	s.rows = s.rows[:0]

entities:
	for _, e := range s.entities {
		row := EntityWithComponents{Entity: e, Components: make([]Component, count)}
		for _, cid := range s.required {
			c, ok := s.world.GetComponent(e.id, cid)
			if !ok {
				continue entities
			}
			row.Components[s.signature.Index(cid)] = c
		}
		s.rows = append(s.rows, row)
	}
}

// adopt copies the tracked entity list of src into s, rewrapped for s's World.
func (s *SystemBase) adopt(src *SystemBase) {
	s.entities = s.entities[:0]
	clear(s.tracked)
	for _, e := range src.entities {
		s.entities = append(s.entities, s.world.Wrap(e.id))
		s.tracked[e.id] = struct{}{}
	}
	s.rebuildRows()
}

// SystemName returns the system's display name: Name() when implemented,
// otherwise its Go type name.
func SystemName(s System) string {
	if n, ok := s.(Namer); ok {
		return n.Name()
	}
	t := reflect.TypeOf(s)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// SystemSignature returns the components the system requires.
func SystemSignature(s System) Signature {
	return s.base().signature
}

// SystemEntityCount returns how many entities the system currently tracks.
func SystemEntityCount(s System) int {
	return len(s.base().entities)
}
