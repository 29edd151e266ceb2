package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/sceneworld/ecs"
	"github.com/plus3/sceneworld/ecs/components"
	"github.com/plus3/sceneworld/ecs/debugui"
)

type Camera struct {
	X, Y float64
	Zoom float64
}

// project maps a world position to screen space for a screen of the given size.
func (c Camera) project(p components.Vec2, screenW, screenH int) (float32, float32) {
	sx := (p.X-c.X)*c.Zoom + float64(screenW)/2
	sy := (p.Y-c.Y)*c.Zoom + float64(screenH)/2
	return float32(sx), float32(sy)
}

// SpriteRenderer draws every visible Transform as a square in the opaque pass
// and every Light as a translucent disc in the transparent pass. Arrow keys
// pan the camera and +/- zoom, unless ImGui holds the keyboard.
type SpriteRenderer struct {
	ecs.SystemBase

	Camera Camera
	imgui  *debugui.ImguiSystem
}

func NewSpriteRenderer(w *ecs.World, imgui *debugui.ImguiSystem) *SpriteRenderer {
	return &SpriteRenderer{
		SystemBase: ecs.NewSystemBase(w, ecs.IDOf[components.Transform]()),
		Camera:     Camera{Zoom: 1},
		imgui:      imgui,
	}
}

func (s *SpriteRenderer) Transient() bool { return true }

func (s *SpriteRenderer) OnFrame(ctx ecs.RenderContext) {
	if s.imgui != nil && s.imgui.Input().WantCaptureKeyboard {
		return
	}

	step := 300 * ctx.DeltaTime / s.Camera.Zoom
	switch {
	case ebiten.IsKeyPressed(ebiten.KeyArrowLeft):
		s.Camera.X -= step
	case ebiten.IsKeyPressed(ebiten.KeyArrowRight):
		s.Camera.X += step
	}
	switch {
	case ebiten.IsKeyPressed(ebiten.KeyArrowUp):
		s.Camera.Y -= step
	case ebiten.IsKeyPressed(ebiten.KeyArrowDown):
		s.Camera.Y += step
	}
	if ebiten.IsKeyPressed(ebiten.KeyEqual) {
		s.Camera.Zoom = min(s.Camera.Zoom*1.02, 20)
	}
	if ebiten.IsKeyPressed(ebiten.KeyMinus) {
		s.Camera.Zoom = max(s.Camera.Zoom/1.02, 0.05)
	}
}

func (s *SpriteRenderer) OpaqueGBufferRender(pass ecs.RenderPass, _ ecs.RenderContext) {
	screen, ok := pass.(*ebiten.Image)
	if !ok {
		return
	}
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()

	ecs.ForEach1(s, func(e ecs.Entity, t *components.Transform) {
		if !e.IsVisible() {
			return
		}
		pose := t.Global()
		sx, sy := s.Camera.project(pose.Position, w, h)
		size := float32(4 * pose.Scale * s.Camera.Zoom)
		vector.DrawFilledRect(screen, sx-size/2, sy-size/2, size, size, spriteColor(e), false)
	})
}

func (s *SpriteRenderer) TransparentGBufferRender(pass ecs.RenderPass, _ ecs.RenderContext) {
	screen, ok := pass.(*ebiten.Image)
	if !ok {
		return
	}
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()

	ecs.ForEach1(s, func(e ecs.Entity, t *components.Transform) {
		light, ok := ecs.GetComponent[*components.Light](e)
		if !ok || !e.IsVisible() {
			return
		}
		sx, sy := s.Camera.project(t.Global().Position, w, h)
		c := color.RGBA{
			R: uint8(light.Color[0] * 255),
			G: uint8(light.Color[1] * 255),
			B: uint8(light.Color[2] * 255),
			A: uint8(min(light.Intensity, 1) * 80),
		}
		vector.DrawFilledCircle(screen, sx, sy, float32(light.Radius*s.Camera.Zoom), c, false)
	})
}

var pastelColors = []color.RGBA{
	{255, 179, 186, 255},
	{179, 229, 252, 255},
	{255, 223, 186, 255},
	{186, 255, 201, 255},
	{217, 186, 255, 255},
}

// spriteColor picks a stable color per entity; followers are always the last one.
func spriteColor(e ecs.Entity) color.RGBA {
	if ecs.HasComponent[*components.Follow](e) {
		return pastelColors[len(pastelColors)-1]
	}
	return pastelColors[uint64(e.ID())%uint64(len(pastelColors)-1)]
}
