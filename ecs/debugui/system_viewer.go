package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/sceneworld/ecs"
)

type SystemInfo struct {
	Name      string
	Kind      string
	Signature string
	Required  int
	Tracked   int
}

// SystemViewer lists the logic and render systems in execution order along
// with the number of entities each one currently tracks.
type SystemViewer struct{}

func NewSystemViewer() *SystemViewer {
	return &SystemViewer{}
}

func (sv *SystemViewer) Render(w *ecs.World) {
	imgui.SetNextWindowPosV(imgui.NewVec2(830, 10), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(420, 260), imgui.CondOnce)
	if !imgui.BeginV("Systems", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	if w.LogicFrozen() {
		imgui.TextColored(imgui.NewVec4(0.9, 0.7, 0.2, 1), "Logic frozen")
		imgui.SameLine()
		if imgui.Button("Unfreeze") {
			w.UnfreezeLogic()
		}
	} else if imgui.Button("Freeze logic") {
		w.FreezeLogic()
	}

	systems := collectSystems(w)
	maxTracked := 0
	for _, info := range systems {
		maxTracked = max(maxTracked, info.Tracked)
	}

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsScrollY
	if imgui.BeginTableV("SystemTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("System")
		imgui.TableSetupColumn("Kind")
		imgui.TableSetupColumn("Signature")
		imgui.TableSetupColumn("Entities")
		imgui.TableHeadersRow()

		for _, info := range systems {
			imgui.TableNextRow()
			imgui.TableNextColumn()
			imgui.Text(info.Name)
			imgui.TableNextColumn()
			imgui.Text(info.Kind)
			imgui.TableNextColumn()
			imgui.Text(info.Signature)
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", info.Tracked))

			if maxTracked > 0 {
				barWidth := float32(info.Tracked) / float32(maxTracked) * 80.0
				imgui.SameLine()
				drawList := imgui.WindowDrawList()
				pos := imgui.CursorScreenPos()
				color := imgui.ColorU32Vec4(imgui.NewVec4(0.2, 0.6, 0.8, 0.6))
				drawList.AddRectFilled(pos, imgui.NewVec2(pos.X+barWidth, pos.Y+10), color)
			}
		}

		imgui.EndTable()
	}

	imgui.End()
}

func collectSystems(w *ecs.World) []SystemInfo {
	var out []SystemInfo
	add := func(systems []ecs.System, kind string) {
		for _, s := range systems {
			sig := ecs.SystemSignature(s)
			out = append(out, SystemInfo{
				Name:      ecs.SystemName(s),
				Kind:      kind,
				Signature: sig.String(),
				Required:  sig.Count(),
				Tracked:   ecs.SystemEntityCount(s),
			})
		}
	}
	add(w.LogicSystems(), "logic")
	add(w.RenderSystems(), "render")
	return out
}
