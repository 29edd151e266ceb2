package ecs_test

import "github.com/plus3/sceneworld/ecs"

// Common test component types
type Position struct {
	ecs.ComponentBase
	X, Y float32
}

func (p *Position) Duplicate(ecs.Entity) ecs.Component {
	return &Position{X: p.X, Y: p.Y}
}

type Velocity struct {
	ecs.ComponentBase
	DX, DY float32
}

func (v *Velocity) Duplicate(ecs.Entity) ecs.Component {
	return &Velocity{DX: v.DX, DY: v.DY}
}

type Health struct {
	ecs.ComponentBase
	Current int
	Max     int
}

func (h *Health) Duplicate(ecs.Entity) ecs.Component {
	return &Health{Current: h.Current, Max: h.Max}
}

func (h *Health) Serialize() ecs.Document {
	return ecs.Document{"current": h.Current, "max": h.Max}
}

func (h *Health) Deserialize(doc ecs.Document) error {
	h.Current, _ = doc["current"].(int)
	h.Max, _ = doc["max"].(int)
	return nil
}

type Light struct {
	ecs.ComponentBase
	Intensity float32
}

func (l *Light) Duplicate(ecs.Entity) ecs.Component {
	return &Light{Intensity: l.Intensity}
}

// Target holds an entity reference and repairs it on duplication.
type Target struct {
	ecs.ComponentBase
	Entity ecs.EntityID
}

func (t *Target) Duplicate(ecs.Entity) ecs.Component {
	return &Target{Entity: t.Entity}
}

func (t *Target) RepairLinks(remap ecs.Remap) {
	t.Entity = remap(t.Entity)
}

// moveSystem is a logic system over Position and Velocity.
type moveSystem struct {
	ecs.SystemBase
	ticks int
	added []ecs.EntityID
}

func newMoveSystem(w *ecs.World) *moveSystem {
	return &moveSystem{SystemBase: ecs.NewSystemBase(w, ecs.IDOf[Position](), ecs.IDOf[Velocity]())}
}

func (s *moveSystem) Tick(frame *ecs.UpdateFrame) {
	s.ticks++
	ecs.ForEach2(s, func(_ ecs.Entity, p *Position, v *Velocity) {
		p.X += v.DX * float32(frame.DeltaTime)
		p.Y += v.DY * float32(frame.DeltaTime)
	})
}

func (s *moveSystem) OnEntityAdded(e ecs.Entity) {
	s.added = append(s.added, e.ID())
}

func (s *moveSystem) Duplicate(w *ecs.World) ecs.System {
	return newMoveSystem(w)
}

// countingSystem counts ticks and frame hooks.
type countingSystem struct {
	ecs.SystemBase
	ticks, frames, swaps, starts, stops, reloads, unloads int
	log                                                  *[]string
	name                                                 string
}

func newCountingSystem(w *ecs.World, name string, log *[]string) *countingSystem {
	return &countingSystem{SystemBase: ecs.NewSystemBase(w), name: name, log: log}
}

func (s *countingSystem) Name() string { return s.name }

func (s *countingSystem) Tick(*ecs.UpdateFrame) {
	s.ticks++
	s.record("tick")
}

func (s *countingSystem) OnFrame(ecs.RenderContext) {
	s.frames++
	s.record("frame")
}

func (s *countingSystem) SwapBuffers() {
	s.swaps++
	s.record("swap")
}

func (s *countingSystem) OnStart() { s.starts++ }
func (s *countingSystem) OnStop()  { s.stops++ }
func (s *countingSystem) Reload()  { s.reloads++ }

func (s *countingSystem) Unload() {
	s.unloads++
	s.record("unload")
}

func (s *countingSystem) record(event string) {
	if s.log != nil {
		*s.log = append(*s.log, s.name+":"+event)
	}
}

func ids(entities []ecs.Entity) []ecs.EntityID {
	out := make([]ecs.EntityID, len(entities))
	for i, e := range entities {
		out[i] = e.ID()
	}
	return out
}

func rowIDs(rows []ecs.EntityWithComponents) []ecs.EntityID {
	out := make([]ecs.EntityID, len(rows))
	for i, row := range rows {
		out[i] = row.Entity.ID()
	}
	return out
}
