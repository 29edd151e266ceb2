package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/sceneworld/ecs"
)

// ComponentInspector shows and edits the exported fields of every component on
// the selected entity. Edits write straight into the component.
type ComponentInspector struct {
	// follow is set when an EntityID field is clicked; the tools pick it up
	// as the next selection.
	follow ecs.EntityID
}

func NewComponentInspector() *ComponentInspector {
	return &ComponentInspector{}
}

// TakeFollow returns and clears the entity last clicked in a link field.
func (ci *ComponentInspector) TakeFollow() ecs.EntityID {
	id := ci.follow
	ci.follow = 0
	return id
}

func (ci *ComponentInspector) Render(w *ecs.World, selected ecs.EntityID) {
	imgui.SetNextWindowPosV(imgui.NewVec2(440, 10), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(380, 500), imgui.CondOnce)
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	defer imgui.End()

	if selected.IsNull() {
		imgui.Text("No entity selected")
		return
	}
	if !w.Exists(selected) {
		imgui.Text(fmt.Sprintf("Entity %s no longer exists", selected))
		return
	}

	e := w.Wrap(selected)
	name, _ := e.Name()
	imgui.Text(fmt.Sprintf("Entity: %s %s", name, selected))
	if parent, ok := e.Parent(); ok {
		parentName, _ := parent.Name()
		imgui.Text(fmt.Sprintf("Parent: %s %s", parentName, parent.ID()))
	}
	imgui.Text(fmt.Sprintf("Tags: %d  Flags: %s", e.Tags(), e.Flags()))
	if w.IsRemoving(selected) {
		imgui.TextColored(imgui.NewVec4(0.9, 0.3, 0.3, 1), "Pending removal")
	}

	visible := e.IsVisible()
	if imgui.Checkbox("Visible", &visible) {
		if visible {
			e.Show(false)
		} else {
			e.Hide(false)
		}
	}
	imgui.Separator()

	for _, component := range e.AllComponents() {
		typeName := ecs.ComponentTypeName(ecs.ComponentIDFor(component))
		if imgui.TreeNodeStr(typeName) {
			ci.renderComponent(component)
			imgui.TreePop()
		}
	}
}

func (ci *ComponentInspector) renderComponent(component ecs.Component) {
	val := reflect.ValueOf(component)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	ci.renderFields(val, "")
}

func (ci *ComponentInspector) renderFields(val reflect.Value, prefix string) {
	for _, field := range globalReflectionCache.GetFields(val.Type()) {
		fieldVal := val.Field(field.Index)
		if field.IsPointer && !fieldVal.IsNil() {
			fieldVal = fieldVal.Elem()
		}
		ci.renderField(field, fieldVal, prefix+field.Name)
	}
}

func (ci *ComponentInspector) renderField(field FieldInfo, val reflect.Value, id string) {
	name := field.Name
	if field.IsPointer && val.Kind() == reflect.Ptr && val.IsNil() {
		imgui.Text(fmt.Sprintf("%s: nil", name))
		return
	}

	if field.IsEntity {
		target := ecs.EntityID(val.Uint())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		if target.IsNull() {
			imgui.Text("none")
		} else if imgui.Button(fmt.Sprintf("%s##%s", target, id)) {
			ci.follow = target
		}
		return
	}

	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := int32(val.Int())
		labelled(name, 150)
		if imgui.InputInt("##"+id, &v) && val.CanSet() {
			val.SetInt(int64(v))
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := int32(val.Uint())
		labelled(name, 150)
		if imgui.InputInt("##"+id, &v) && v >= 0 && val.CanSet() {
			val.SetUint(uint64(v))
		}

	case reflect.Float32, reflect.Float64:
		v := float32(val.Float())
		labelled(name, 150)
		if imgui.InputFloat("##"+id, &v) && val.CanSet() {
			val.SetFloat(float64(v))
		}

	case reflect.Bool:
		v := val.Bool()
		if imgui.Checkbox(name+"##"+id, &v) && val.CanSet() {
			val.SetBool(v)
		}

	case reflect.String:
		v := val.String()
		labelled(name, 200)
		if imgui.InputTextWithHint("##"+id, "", &v, imgui.InputTextFlagsNone, nil) && val.CanSet() {
			val.SetString(v)
		}

	case reflect.Struct:
		if imgui.TreeNodeStr(name + "##" + id) {
			ci.renderFields(val, id+".")
			imgui.TreePop()
		}

	case reflect.Slice:
		imgui.Text(fmt.Sprintf("%s: [%d items]", name, val.Len()))

	case reflect.Map:
		imgui.Text(fmt.Sprintf("%s: map[%d items]", name, val.Len()))

	case reflect.Func:
		imgui.Text(fmt.Sprintf("%s: func", name))

	default:
		if val.CanInterface() {
			imgui.Text(fmt.Sprintf("%s: %v", name, val.Interface()))
		}
	}
}

func labelled(name string, width float32) {
	imgui.Text(name + ":")
	imgui.SameLine()
	imgui.SetNextItemWidth(width)
}
