package ecs

// UpdateFrame is handed to every system tick.
type UpdateFrame struct {
	DeltaTime float64
	World     *World
	// Index counts ticks since the World was created.
	Index uint64
}

func newUpdateFrame(dt float64, w *World, index uint64) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		World:     w,
		Index:     index,
	}
}

// RenderContext is passed through to the frame hooks untouched. The render
// backend decides what Target holds.
type RenderContext struct {
	FrameIndex uint64
	DeltaTime  float64
	Target     any
}

// RenderPass is an opaque backend render pass handle.
type RenderPass any
