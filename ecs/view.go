package ecs

import (
	"iter"
	"reflect"
)

// View represents a query for entities with a specific combination of components.
// The type T should be a struct with pointer fields for each component type.
// Named fields can be marked as optional using the `ecs:"optional"` struct tag.
type View[T any] struct {
	world    *World
	ids      []ComponentID
	optional []bool
	required Signature
}

// NewView creates a new view for the given struct type.
// Embedded fields are always required.
func NewView[T any](w *World) *View[T] {
	var zero T
	structType := reflect.TypeOf(zero)

	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	componentType := reflect.TypeOf((*Component)(nil)).Elem()
	ids := make([]ComponentID, 0, structType.NumField())
	optional := make([]bool, 0, structType.NumField())
	var required []ComponentID

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)

		if field.Type.Kind() != reflect.Ptr || !field.Type.Implements(componentType) {
			panic("View struct field " + field.Name + " must be a pointer to a component")
		}

		isOptional := false
		if !field.Anonymous {
			switch tag := field.Tag.Get("ecs"); tag {
			case "":
			case "optional":
				isOptional = true
			default:
				panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
			}
		}

		id := ComponentIDOf(field.Type)
		ids = append(ids, id)
		optional = append(optional, isOptional)
		if !isOptional {
			required = append(required, id)
		}
	}

	if len(required) == 0 {
		panic("View struct needs at least one required component")
	}

	return &View[T]{
		world:    w,
		ids:      ids,
		optional: optional,
		required: NewSignature(required...),
	}
}

// Signature returns the required components of the view.
func (v *View[T]) Signature() Signature {
	return v.required
}

// Fill populates the provided struct pointer with the entity's components.
// Returns false if the entity is missing any required component.
// Optional components are set to nil if not present.
func (v *View[T]) Fill(id EntityID, ptr *T) bool {
	out := reflect.ValueOf(ptr).Elem()
	for i, cid := range v.ids {
		field := out.Field(i)
		c, ok := v.world.GetComponent(id, cid)
		if !ok {
			if !v.optional[i] {
				return false
			}
			field.Set(reflect.Zero(field.Type()))
			continue
		}
		field.Set(reflect.ValueOf(c))
	}
	return true
}

// Get returns a populated view struct for the entity, or nil if the entity
// doesn't have all the required components.
func (v *View[T]) Get(e Entity) *T {
	var result T
	if !v.Fill(e.id, &result) {
		return nil
	}
	return &result
}

// Iter yields every live entity with the required components, in the order of
// the World's cached query for the required signature.
func (v *View[T]) Iter() iter.Seq2[Entity, T] {
	return func(yield func(Entity, T) bool) {
		for _, row := range v.world.QueryEntities(v.required) {
			var result T
			if !v.Fill(row.Entity.id, &result) {
				continue
			}
			if !yield(row.Entity, result) {
				return
			}
		}
	}
}

// Values returns an iterator over just the view structs.
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}

// Spawn creates a named entity carrying the non-nil components of data. Like
// every new entity it becomes live at the next tick.
func (v *View[T]) Spawn(name string, data T) Entity {
	in := reflect.ValueOf(data)
	components := make([]Component, 0, len(v.ids))
	for i := range v.ids {
		field := in.Field(i)
		if field.IsNil() {
			if !v.optional[i] {
				panic("required component is nil in View.Spawn")
			}
			continue
		}
		components = append(components, field.Interface().(Component))
	}

	e := v.world.NewEntity(name)
	for _, c := range components {
		e.AddComponent(c)
	}
	return e
}
