// Package debugui provides immediate-mode GUI integration for ECS applications using Dear ImGui.
// Everything here runs as render systems driven by the World's frame hook.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/sceneworld/ecs"
)

// ImguiItem is a component that holds a Dear ImGui render function.
// Attach this to entities that should render ImGui widgets each frame.
type ImguiItem struct {
	ecs.ComponentBase
	Render func()
}

func (i *ImguiItem) Duplicate(ecs.Entity) ecs.Component {
	return &ImguiItem{Render: i.Render}
}

// InputState tracks whether Dear ImGui is consuming mouse or keyboard input.
type InputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiSystem draws every visible ImguiItem once per frame and records the
// current input capture state.
type ImguiSystem struct {
	ecs.SystemBase
	input InputState
}

// NewImguiSystem builds an ImguiSystem for w. Register it with AddRenderSystem.
func NewImguiSystem(w *ecs.World) *ImguiSystem {
	return &ImguiSystem{SystemBase: ecs.NewSystemBase(w, ecs.IDOf[ImguiItem]())}
}

// Transient keeps the system out of saved scenes.
func (s *ImguiSystem) Transient() bool { return true }

func (s *ImguiSystem) OnFrame(ecs.RenderContext) {
	io := imgui.CurrentIO()
	s.input.WantCaptureMouse = io.WantCaptureMouse()
	s.input.WantCaptureKeyboard = io.WantCaptureKeyboard()

	ecs.ForEach1(s, func(e ecs.Entity, item *ImguiItem) {
		if item.Render != nil && e.IsVisible() {
			item.Render()
		}
	})
}

// Input returns the capture state recorded during the last frame.
func (s *ImguiSystem) Input() InputState {
	return s.input
}
