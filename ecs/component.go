package ecs

import (
	"fmt"
	"hash/fnv"
	"reflect"
	"sync"
)

// MaxComponents is the number of distinct component types a process may register.
const MaxComponents = 64

// ComponentID identifies a component type. It is derived from the type's package
// path and name, so the same type gets the same ID in every process.
type ComponentID uint64

// Document is the opaque persistence payload produced by Serialize and consumed
// by Deserialize. Its layout belongs to each component.
type Document map[string]any

// Remap rewrites entity references after a subtree has been cloned.
// IDs outside the cloned subtree are returned unchanged.
type Remap func(EntityID) EntityID

// Component is a typed bundle of data attached to one entity. Every component
// type must embed ComponentBase.
type Component interface {
	// Owner returns the entity this component is attached to.
	Owner() Entity
	// Duplicate returns an independent copy attached to newOwner.
	Duplicate(newOwner Entity) Component
	// Serialize returns the persisted form of the component, or nil if the
	// component is not persisted.
	Serialize() Document
	// RepairLinks rewrites every EntityID held by the component. Components
	// that store entity references must implement it.
	RepairLinks(remap Remap)

	bind(owner Entity)
}

// Deserializer is implemented by components that can be rebuilt from a Document.
type Deserializer interface {
	Deserialize(doc Document) error
}

// ComponentBase carries the owner back-reference and the default no-op hooks.
type ComponentBase struct {
	owner Entity
}

// Owner returns the entity this component is attached to.
func (c *ComponentBase) Owner() Entity {
	return c.owner
}

// Serialize returns nil: the component is not persisted unless it overrides this.
func (c *ComponentBase) Serialize() Document {
	return nil
}

// RepairLinks does nothing; components without entity references need no repair.
func (c *ComponentBase) RepairLinks(Remap) {}

func (c *ComponentBase) bind(owner Entity) {
	c.owner = owner
}

// componentIndex is the process-wide table mapping component types to dense bit
// indices. Reads dominate after startup, writes happen on first sight of a type.
var componentIndex = struct {
	sync.RWMutex
	ids     map[reflect.Type]ComponentID
	names   map[ComponentID]string
	indices map[ComponentID]int
}{
	ids:     make(map[reflect.Type]ComponentID),
	names:   make(map[ComponentID]string),
	indices: make(map[ComponentID]int, MaxComponents),
}

// IndexOf returns the bit index of the component ID, assigning the next free
// index on first sight. The index never changes afterwards. It panics when more
// than MaxComponents types are registered.
func IndexOf(id ComponentID) int {
	componentIndex.RLock()
	index, ok := componentIndex.indices[id]
	componentIndex.RUnlock()
	if ok {
		return index
	}

	componentIndex.Lock()
	defer componentIndex.Unlock()

	if index, ok := componentIndex.indices[id]; ok {
		return index
	}

	index = len(componentIndex.indices)
	if index >= MaxComponents {
		name := componentIndex.names[id]
		if name == "" {
			name = fmt.Sprintf("0x%X", uint64(id))
		}
		panic(fmt.Sprintf("cannot register component %s: maximum number of component types (%d) reached", name, MaxComponents))
	}
	componentIndex.indices[id] = index
	return index
}

// lookupIndex returns the bit index of a registered component ID without
// assigning one.
func lookupIndex(id ComponentID) (int, bool) {
	componentIndex.RLock()
	defer componentIndex.RUnlock()
	index, ok := componentIndex.indices[id]
	return index, ok
}

// RegisteredComponents returns the number of component types holding a bit index.
func RegisteredComponents() int {
	componentIndex.RLock()
	defer componentIndex.RUnlock()
	return len(componentIndex.indices)
}

// ComponentIDOf returns the ComponentID for the given type. Pointer types are
// unwrapped, so *Transform and Transform share an ID.
func ComponentIDOf(t reflect.Type) ComponentID {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	componentIndex.RLock()
	id, ok := componentIndex.ids[t]
	componentIndex.RUnlock()
	if ok {
		return id
	}

	componentIndex.Lock()
	defer componentIndex.Unlock()

	if id, ok := componentIndex.ids[t]; ok {
		return id
	}

	name := t.PkgPath() + "." + t.Name()
	h := fnv.New64a()
	h.Write([]byte(name))
	id = ComponentID(h.Sum64())

	componentIndex.ids[t] = id
	componentIndex.names[id] = t.String()
	return id
}

// IDOf returns the ComponentID of T.
func IDOf[T any]() ComponentID {
	return ComponentIDOf(reflect.TypeFor[T]())
}

// ComponentIDFor returns the ComponentID of a component instance.
func ComponentIDFor(c Component) ComponentID {
	return ComponentIDOf(reflect.TypeOf(c))
}

// ComponentTypeName returns the Go type name recorded for the ID, or "" if the
// type has never been seen by this process.
func ComponentTypeName(id ComponentID) string {
	componentIndex.RLock()
	defer componentIndex.RUnlock()
	return componentIndex.names[id]
}
