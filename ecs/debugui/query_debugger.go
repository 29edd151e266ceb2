package debugui

import (
	"fmt"
	"sort"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/sceneworld/ecs"
)

// QueryDebugger runs ad-hoc cached queries against the world from a set of
// component types picked in the UI.
type QueryDebugger struct {
	selected map[ecs.ComponentID]bool
	// last is the signature whose result the panel keeps cached in the world
	last ecs.Signature

	types     []componentType
	lastCount int
}

type componentType struct {
	ID   ecs.ComponentID
	Name string
}

func NewQueryDebugger() *QueryDebugger {
	return &QueryDebugger{
		selected:  make(map[ecs.ComponentID]bool),
		lastCount: -1,
	}
}

func (qd *QueryDebugger) Render(w *ecs.World) ecs.EntityID {
	imgui.SetNextWindowPosV(imgui.NewVec2(440, 520), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(380, 300), imgui.CondOnce)
	if !imgui.BeginV("Query Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return 0
	}
	defer imgui.End()

	if qd.lastCount != w.EntityCount() {
		qd.types = collectComponentTypes(w)
		qd.lastCount = w.EntityCount()
	}

	imgui.Text("Select Component Types:")
	imgui.Separator()

	if imgui.Button("Clear All") {
		qd.selected = make(map[ecs.ComponentID]bool)
	}

	for _, ct := range qd.types {
		on := qd.selected[ct.ID]
		if imgui.Checkbox(ct.Name, &on) {
			if on {
				qd.selected[ct.ID] = true
			} else {
				delete(qd.selected, ct.ID)
			}
		}
	}

	imgui.Separator()

	sig := qd.Signature()
	if sig.IsEmpty() {
		qd.release(w)
		imgui.Text("No component types selected")
		return 0
	}

	rows := qd.run(w, sig)
	imgui.Text(fmt.Sprintf("Matching Entities: %d", len(rows)))
	imgui.Text(fmt.Sprintf("Cached Queries: %d", w.CachedQueryCount()))

	var clicked ecs.EntityID
	if imgui.TreeNodeStr("Matches") {
		for _, row := range rows {
			name, _ := row.Entity.Name()
			if imgui.SelectableBoolV(fmt.Sprintf("%s %s", name, row.Entity.ID()), false, 0, imgui.NewVec2(0, 0)) {
				clicked = row.Entity.ID()
			}
		}
		imgui.TreePop()
	}
	return clicked
}

// run queries sig, first dropping the cached result of a previous selection so
// the panel holds at most one entry in the world's query cache.
func (qd *QueryDebugger) run(w *ecs.World, sig ecs.Signature) []ecs.EntityWithComponents {
	if !qd.last.Equal(sig) {
		qd.release(w)
	}
	qd.last = sig
	return w.QueryEntities(sig)
}

func (qd *QueryDebugger) release(w *ecs.World) {
	if !qd.last.IsEmpty() {
		w.ForgetQuery(qd.last)
		qd.last = ecs.Signature{}
	}
}

// Signature returns the signature built from the current selection.
func (qd *QueryDebugger) Signature() ecs.Signature {
	var sig ecs.Signature
	for id := range qd.selected {
		sig.Add(id)
	}
	return sig
}

// collectComponentTypes lists every component type carried by a live entity,
// sorted by name.
func collectComponentTypes(w *ecs.World) []componentType {
	seen := make(map[ecs.ComponentID]bool)
	var out []componentType
	for _, e := range w.Entities() {
		for _, c := range e.AllComponents() {
			id := ecs.ComponentIDFor(c)
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, componentType{ID: id, Name: ecs.ComponentTypeName(id)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
