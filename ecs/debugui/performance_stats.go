package debugui

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/sceneworld/ecs"
)

// PerformanceStats plots frame times and shows per-system timings collected by
// the Scheduler.
type PerformanceStats struct {
	historyFrames int
	frameHistory  []float32
	frameIndex    int
}

func NewPerformanceStats(historyFrames int) *PerformanceStats {
	return &PerformanceStats{
		historyFrames: historyFrames,
		frameHistory:  make([]float32, historyFrames),
	}
}

// Record appends a frame time to the ring buffer.
func (ps *PerformanceStats) Record(deltaTime float32) {
	ps.frameHistory[ps.frameIndex] = deltaTime * 1000.0
	ps.frameIndex = (ps.frameIndex + 1) % ps.historyFrames
}

// AverageFrameTime returns the mean of the recorded frame times in milliseconds.
func (ps *PerformanceStats) AverageFrameTime() float32 {
	var total float32
	for _, ft := range ps.frameHistory {
		total += ft
	}
	return total / float32(ps.historyFrames)
}

func (ps *PerformanceStats) Render(w *ecs.World, scheduler *ecs.Scheduler) {
	imgui.SetNextWindowPosV(imgui.NewVec2(830, 280), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(420, 320), imgui.CondOnce)
	if !imgui.BeginV("Performance Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Total Entities: %d", w.EntityCount()))
	imgui.Text(fmt.Sprintf("Cached Queries: %d", w.CachedQueryCount()))
	imgui.Text(fmt.Sprintf("Systems: %d logic, %d render", len(w.LogicSystems()), len(w.RenderSystems())))

	avg := ps.AverageFrameTime()
	if avg > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avg, 1000.0/avg))
	}

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &ps.frameHistory[0], int32(len(ps.frameHistory)))

	if scheduler != nil && imgui.TreeNodeStr("System Timings") {
		stats := scheduler.GetStats()
		imgui.Text(fmt.Sprintf("Frames: %d  Executions: %d", stats.Frames, stats.TotalExecutions))

		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSizingFixedFit
		if imgui.BeginTableV("SystemStatsTable", 5, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("System")
			imgui.TableSetupColumn("Runs")
			imgui.TableSetupColumn("Last")
			imgui.TableSetupColumn("Avg")
			imgui.TableSetupColumn("Max")
			imgui.TableHeadersRow()

			for _, st := range stats.Systems {
				imgui.TableNextRow()
				imgui.TableSetColumnIndex(0)
				imgui.Text(fmt.Sprintf("%s (%s)", st.Name, st.Kind))
				imgui.TableSetColumnIndex(1)
				imgui.Text(fmt.Sprintf("%d", st.ExecutionCount))
				imgui.TableSetColumnIndex(2)
				imgui.Text(formatDuration(st.LastDuration))
				imgui.TableSetColumnIndex(3)
				imgui.Text(formatDuration(st.AvgDuration))
				imgui.TableSetColumnIndex(4)
				imgui.Text(formatDuration(st.MaxDuration))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.End()
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.3f ms", float64(d.Microseconds())/1000.0)
}

type FrameTimer struct {
	lastFrameTime time.Time
}

func NewFrameTimer() *FrameTimer {
	return &FrameTimer{
		lastFrameTime: time.Now(),
	}
}

func (ft *FrameTimer) GetDeltaTime() float32 {
	now := time.Now()
	delta := float32(now.Sub(ft.lastFrameTime).Seconds())
	ft.lastFrameTime = now
	return delta
}
