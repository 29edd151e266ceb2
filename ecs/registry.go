package ecs

import (
	"reflect"
	"sort"
	"sync"

	"github.com/rotisserie/eris"
)

// SystemFactory rebuilds a system for w from its persisted configuration.
// doc is nil when the system was saved without configuration.
type SystemFactory func(w *World, doc Document) (System, error)

type componentEntry struct {
	id    ComponentID
	build func(doc Document) (Component, error)
}

type systemEntry struct {
	build SystemFactory
}

// Registry maps persisted type names to component and system constructors.
// Loaders use it to turn documents back into components and systems; savers use
// it to find the name of a live component or system. Types that are not
// registered are skipped on save.
type Registry struct {
	mu sync.RWMutex

	components     map[string]componentEntry
	componentNames map[ComponentID]string

	systems     map[string]systemEntry
	systemNames map[reflect.Type]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		components:     make(map[string]componentEntry),
		componentNames: make(map[ComponentID]string),
		systems:        make(map[string]systemEntry),
		systemNames:    make(map[reflect.Type]string),
	}
}

// RegisterComponent registers component type T under name. It also claims T's
// bit index. Registering the same type twice keeps the latest name.
func RegisterComponent[T any, PT interface {
	*T
	Component
	Deserializer
}](r *Registry, name string) {
	id := IDOf[T]()
	IndexOf(id)

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.componentNames[id]; ok {
		delete(r.components, old)
	}
	r.componentNames[id] = name
	r.components[name] = componentEntry{
		id: id,
		build: func(doc Document) (Component, error) {
			c := PT(new(T))
			if err := c.Deserialize(doc); err != nil {
				return nil, eris.Wrapf(err, "failed to deserialize component %s", name)
			}
			return c, nil
		},
	}
}

// RegisterSystem registers system type T under name.
func RegisterSystem[T System](r *Registry, name string, factory SystemFactory) {
	t := reflect.TypeFor[T]()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.systems[name] = systemEntry{build: factory}
	r.systemNames[t] = name
}

// ComponentName returns the persisted name of the component ID.
func (r *Registry) ComponentName(id ComponentID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.componentNames[id]
	return name, ok
}

// ComponentNames returns every registered component name in sorted order.
func (r *Registry) ComponentNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildComponent constructs the component registered under name from doc.
func (r *Registry) BuildComponent(name string, doc Document) (Component, error) {
	r.mu.RLock()
	entry, ok := r.components[name]
	r.mu.RUnlock()
	if !ok {
		return nil, eris.Wrapf(ErrUnknownComponent, "component %q is not registered", name)
	}
	return entry.build(doc)
}

// SystemTypeName returns the persisted name of the system's type.
func (r *Registry) SystemTypeName(s System) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.systemNames[reflect.TypeOf(s)]
	return name, ok
}

// BuildSystem constructs the system registered under name for w.
func (r *Registry) BuildSystem(name string, w *World, doc Document) (System, error) {
	r.mu.RLock()
	entry, ok := r.systems[name]
	r.mu.RUnlock()
	if !ok {
		return nil, eris.Wrapf(ErrUnknownSystem, "system %q is not registered", name)
	}
	s, err := entry.build(w, doc)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to build system %s", name)
	}
	return s, nil
}
