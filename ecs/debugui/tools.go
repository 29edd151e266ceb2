package debugui

import (
	"github.com/plus3/sceneworld/ecs"
)

// Tools is a render system that draws the built-in debug panels: the entity
// browser, component inspector, system list, query debugger and performance
// stats.
type Tools struct {
	ecs.SystemBase

	scheduler *ecs.Scheduler
	timer     *FrameTimer

	Browser     *EntityBrowser
	Inspector   *ComponentInspector
	Systems     *SystemViewer
	Queries     *QueryDebugger
	Performance *PerformanceStats
}

// NewTools creates the debug panels for w. scheduler may be nil, in which case
// per-system timings are not shown.
func NewTools(w *ecs.World, scheduler *ecs.Scheduler) *Tools {
	return &Tools{
		SystemBase:  ecs.NewSystemBase(w),
		scheduler:   scheduler,
		timer:       NewFrameTimer(),
		Browser:     NewEntityBrowser(100),
		Inspector:   NewComponentInspector(),
		Systems:     NewSystemViewer(),
		Queries:     NewQueryDebugger(),
		Performance: NewPerformanceStats(120),
	}
}

// Install registers an ImguiSystem and the debug panels as render systems.
func Install(w *ecs.World, scheduler *ecs.Scheduler) (*ImguiSystem, *Tools) {
	items := NewImguiSystem(w)
	tools := NewTools(w, scheduler)
	w.AddRenderSystem(items)
	w.AddRenderSystem(tools)
	return items, tools
}

func (t *Tools) Name() string { return "DebugTools" }

// Transient keeps the panels out of saved scenes.
func (t *Tools) Transient() bool { return true }

func (t *Tools) OnFrame(ctx ecs.RenderContext) {
	w := t.World()
	t.Performance.Record(t.timer.GetDeltaTime())

	t.Browser.Render(w, ctx.FrameIndex)
	t.Inspector.Render(w, t.Browser.Selected())
	if follow := t.Inspector.TakeFollow(); !follow.IsNull() {
		t.Browser.selected = follow
	}
	t.Systems.Render(w)
	if clicked := t.Queries.Render(w); !clicked.IsNull() {
		t.Browser.selected = clicked
	}
	t.Performance.Render(w, t.scheduler)
}
