// Package ebiten runs a World inside an Ebiten game loop with a Dear ImGui overlay.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/sceneworld/ecs"
)

// ImguiBackend wraps the Ebiten-specific Dear ImGui backend implementation.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// NewImguiBackend creates the backend and its window. The imgui.ini file is
// disabled.
func NewImguiBackend(title string, width, height int) ImguiBackend {
	backend := ebitenbackend.NewEbitenBackend()
	backend.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("")
	return ImguiBackend{EbitenBackend: backend}
}

// Game implements ebiten.Game. Each Update steps the scheduler once between the
// ImGui frame markers, so render systems may issue ImGui calls from OnFrame.
// Draw hands the screen to the world's g-buffer passes as the RenderPass and
// then draws the ImGui overlay on top.
type Game struct {
	Backend   ImguiBackend
	World     *ecs.World
	Scheduler *ecs.Scheduler

	// TickRate is the fixed delta time handed to the scheduler. Ebiten calls
	// Update at 60 TPS by default.
	TickRate float64

	frame uint64
}

func NewGame(backend ImguiBackend, w *ecs.World, scheduler *ecs.Scheduler) *Game {
	return &Game{
		Backend:   backend,
		World:     w,
		Scheduler: scheduler,
		TickRate:  1.0 / float64(ebiten.TPS()),
	}
}

func (g *Game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	g.Backend.BeginFrame()
	g.Scheduler.Once(g.TickRate)
	g.Backend.EndFrame()
	g.frame++
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	ctx := ecs.RenderContext{FrameIndex: g.frame, DeltaTime: g.TickRate, Target: screen}
	g.World.RecordOpaqueGBufferPass(screen, ctx)
	g.World.RecordTransparentGBufferPass(screen, ctx)
	g.Backend.Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.Backend.Layout(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// Run starts the game loop and blocks until the window closes or Escape is
// pressed. The world's systems receive OnStart before the first frame and
// OnStop after the last.
func (g *Game) Run() error {
	g.World.BroadcastStart()
	defer g.World.BroadcastStop()

	return ebiten.RunGame(g)
}
