package debugui

import (
	"reflect"
	"sync"

	"github.com/plus3/sceneworld/ecs"
)

// FieldInfo describes one editable field of a component struct.
type FieldInfo struct {
	Name      string
	Type      reflect.Type
	Index     int
	IsPointer bool
	IsStruct  bool
	IsEntity  bool
}

var (
	componentBaseType = reflect.TypeFor[ecs.ComponentBase]()
	entityIDType      = reflect.TypeFor[ecs.EntityID]()
)

// ReflectionCache memoizes editableFields per struct type.
type ReflectionCache struct {
	fields sync.Map // reflect.Type -> []FieldInfo
}

func NewReflectionCache() *ReflectionCache {
	return &ReflectionCache{}
}

// GetFields returns the editable fields of t, or of the struct t points to.
func (rc *ReflectionCache) GetFields(t reflect.Type) []FieldInfo {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := rc.fields.Load(t); ok {
		return cached.([]FieldInfo)
	}
	actual, _ := rc.fields.LoadOrStore(t, editableFields(t))
	return actual.([]FieldInfo)
}

// editableFields lists the exported fields of a struct type, leaving out the
// embedded ComponentBase.
func editableFields(t reflect.Type) []FieldInfo {
	if t.Kind() != reflect.Struct {
		return nil
	}

	var out []FieldInfo
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() || sf.Type == componentBaseType {
			continue
		}

		info := FieldInfo{Name: sf.Name, Type: sf.Type, Index: i}
		if sf.Type.Kind() == reflect.Ptr {
			info.IsPointer = true
			info.Type = sf.Type.Elem()
		}
		info.IsStruct = info.Type.Kind() == reflect.Struct
		info.IsEntity = info.Type == entityIDType
		out = append(out, info)
	}
	return out
}

var globalReflectionCache = NewReflectionCache()
