package ecs

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/rotisserie/eris"
)

// EntityID identifies an entity for the lifetime of the process. Zero is the null ID.
type EntityID uint64

var lastEntityID atomic.Uint64

// NewEntityID allocates a fresh, never reused EntityID.
func NewEntityID() EntityID {
	return EntityID(lastEntityID.Add(1))
}

// IsNull reports whether the ID is the null ID.
func (id EntityID) IsNull() bool {
	return id == 0
}

func (id EntityID) String() string {
	return fmt.Sprintf("#%d", uint64(id))
}

// Entity is a lightweight handle pairing an EntityID with the World that owns it.
// It holds no data: every read and write goes through the World.
// The zero Entity is the null handle and stands for "no entity" wherever an
// optional entity is accepted. Mutations through it are dropped and reads
// return zero values.
type Entity struct {
	id    EntityID
	world *World
}

// ID returns the entity's identifier.
func (e Entity) ID() EntityID {
	return e.id
}

// World returns the owning World, nil for the null handle.
func (e Entity) World() *World {
	return e.world
}

// IsNull reports whether this is the null handle.
func (e Entity) IsNull() bool {
	return e.world == nil || e.id.IsNull()
}

// Exists reports whether the World still knows this entity.
func (e Entity) Exists() bool {
	if e.IsNull() {
		return false
	}
	return e.world.Exists(e.id)
}

func (e Entity) String() string {
	return e.id.String()
}

// AddComponent attaches c to the entity, replacing any component of the same type.
func (e Entity) AddComponent(c Component) Entity {
	if e.IsNull() {
		return e
	}
	e.world.addComponent(e.id, c)
	return e
}

// AddComponentIf attaches c only when condition holds.
func (e Entity) AddComponentIf(condition bool, c Component) Entity {
	if e.IsNull() {
		return e
	}
	if condition {
		e.world.addComponent(e.id, c)
	}
	return e
}

// RemoveComponent detaches the component with the given ID.
func (e Entity) RemoveComponent(id ComponentID) Entity {
	if e.IsNull() {
		return e
	}
	e.world.removeComponent(e.id, id)
	return e
}

// GetComponent returns the component with the given ID. The World keeps ownership.
func (e Entity) GetComponent(id ComponentID) (Component, bool) {
	if e.IsNull() {
		return nil, false
	}
	return e.world.GetComponent(e.id, id)
}

// AllComponents returns every component attached to the entity.
func (e Entity) AllComponents() []Component {
	if e.IsNull() {
		return nil
	}
	return e.world.AllComponents(e.id)
}

// Signature returns the set of components currently attached.
func (e Entity) Signature() Signature {
	if e.IsNull() {
		return Signature{}
	}
	return e.world.Signature(e.id)
}

// Name returns the entity's display name.
func (e Entity) Name() (string, error) {
	if e.IsNull() {
		return "", eris.Wrap(ErrMissingEntity, "null entity has no name")
	}
	return e.world.Name(e.id)
}

// SetName changes the display name. Duplicate names are allowed.
func (e Entity) SetName(name string) {
	if e.IsNull() {
		return
	}
	e.world.SetName(e.id, name)
}

// Parent returns the parent entity, if any.
func (e Entity) Parent() (Entity, bool) {
	if e.IsNull() {
		return Entity{}, false
	}
	return e.world.Parent(e)
}

// SetParent moves the entity under parent. The null handle unparents it.
func (e Entity) SetParent(parent Entity) {
	if e.IsNull() {
		return
	}
	e.world.SetParent(e, parent)
}

// Reparent is SetParent that keeps the entity's world-space transform.
func (e Entity) Reparent(parent Entity) {
	if e.IsNull() {
		return
	}
	e.world.Reparent(e, parent)
}

// Children returns the direct children.
func (e Entity) Children() []Entity {
	if e.IsNull() {
		return nil
	}
	return e.world.Children(e, false)
}

// ChildrenRecursive returns every descendant, depth first.
func (e Entity) ChildrenRecursive() []Entity {
	if e.IsNull() {
		return nil
	}
	return e.world.Children(e, true)
}

// NamedChild finds a child (or descendant when recursive) by name.
func (e Entity) NamedChild(name string, recursive bool) (Entity, bool) {
	if e.IsNull() {
		return Entity{}, false
	}
	return e.world.NamedChild(e, name, recursive)
}

// Remove schedules this entity and all of its descendants for removal at the next tick.
func (e Entity) Remove() {
	if e.IsNull() {
		return
	}
	e.world.RemoveEntity(e)
}

// Duplicate deep-clones the entity and its subtree. The clone is placed under
// newParent, or under the original's parent when newParent is the null handle.
func (e Entity) Duplicate(newParent Entity) Entity {
	if e.IsNull() {
		return Entity{}
	}
	return e.world.Duplicate(e, newParent)
}

// AddTags ORs tags into the entity's tags.
func (e Entity) AddTags(tags Tags) Entity {
	if e.IsNull() {
		return e
	}
	e.world.addTags(e.id, tags)
	return e
}

// RemoveTags clears tags from the entity's tags.
func (e Entity) RemoveTags(tags Tags) Entity {
	if e.IsNull() {
		return e
	}
	e.world.removeTags(e.id, tags)
	return e
}

// Tags returns the entity's tags.
func (e Entity) Tags() Tags {
	if e.IsNull() {
		return 0
	}
	return e.world.Tags(e.id)
}

// SetFlags ORs flags into the entity's flags.
func (e Entity) SetFlags(flags Flags) Entity {
	if e.IsNull() {
		return e
	}
	e.world.setFlags(e.id, flags)
	return e
}

// RemoveFlags clears flags from the entity's flags.
func (e Entity) RemoveFlags(flags Flags) Entity {
	if e.IsNull() {
		return e
	}
	e.world.removeFlags(e.id, flags)
	return e
}

// Flags returns the entity's flags.
func (e Entity) Flags() Flags {
	if e.IsNull() {
		return 0
	}
	return e.world.Flags(e.id)
}

// IsVisible is shorthand for checking FlagHidden.
func (e Entity) IsVisible() bool {
	return e.Flags()&FlagHidden == 0
}

// Hide hides the entity, and its descendants when recursive is set.
func (e Entity) Hide(recursive bool) {
	e.SetFlags(FlagHidden)
	if recursive {
		for _, child := range e.ChildrenRecursive() {
			child.SetFlags(FlagHidden)
		}
	}
}

// Show is the opposite of Hide.
func (e Entity) Show(recursive bool) {
	e.RemoveFlags(FlagHidden)
	if recursive {
		for _, child := range e.ChildrenRecursive() {
			child.RemoveFlags(FlagHidden)
		}
	}
}

// GetComponent returns the component of type T, where T is the pointer type
// stored on the entity (for example *Transform).
func GetComponent[T Component](e Entity) (T, bool) {
	var zero T
	c, ok := e.GetComponent(IDOf[T]())
	if !ok {
		return zero, false
	}
	typed, ok := c.(T)
	return typed, ok
}

// RemoveComponentOf detaches the component of type T.
func RemoveComponentOf[T Component](e Entity) Entity {
	return e.RemoveComponent(IDOf[T]())
}

// HasComponent reports whether the entity carries a component of type T.
func HasComponent[T Component](e Entity) bool {
	_, ok := e.GetComponent(IDOf[T]())
	return ok
}

func typeNameOf(c Component) string {
	t := reflect.TypeOf(c)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
