package components

import (
	"github.com/plus3/sceneworld/ecs"
	"github.com/rotisserie/eris"
)

// MovementSystem integrates Velocity into Transform. Entities are processed in
// parallel when Parallel is set.
type MovementSystem struct {
	ecs.SystemBase
	Parallel bool
}

// NewMovementSystem builds a movement system for w.
func NewMovementSystem(w *ecs.World, parallel bool) *MovementSystem {
	return &MovementSystem{
		SystemBase: ecs.NewSystemBase(w, ecs.IDOf[Transform](), ecs.IDOf[Velocity]()),
		Parallel:   parallel,
	}
}

func (s *MovementSystem) Tick(frame *ecs.UpdateFrame) {
	dt := frame.DeltaTime
	move := func(_ ecs.Entity, t *Transform, v *Velocity) {
		t.Position = t.Position.Add(v.Linear.Scale(dt))
		t.Rotation += v.Angular * dt
	}
	if s.Parallel {
		ecs.ParallelForEach2(s, move)
		return
	}
	ecs.ForEach2(s, move)
}

func (s *MovementSystem) Duplicate(w *ecs.World) ecs.System {
	return NewMovementSystem(w, s.Parallel)
}

func (s *MovementSystem) Serialize() ecs.Document {
	return ecs.Document{"parallel": s.Parallel}
}

func newMovementSystemFromDocument(w *ecs.World, doc ecs.Document) (ecs.System, error) {
	parallel := false
	if raw, ok := doc["parallel"]; ok {
		b, ok := raw.(bool)
		if !ok {
			return nil, eris.Errorf("field \"parallel\": expected a bool, got %T", raw)
		}
		parallel = b
	}
	return NewMovementSystem(w, parallel), nil
}

// FollowSystem steers followers toward their targets, stopping at Distance.
// Followers whose target no longer exists stay in place.
type FollowSystem struct {
	ecs.SystemBase
}

// NewFollowSystem builds a follow system for w.
func NewFollowSystem(w *ecs.World) *FollowSystem {
	return &FollowSystem{
		SystemBase: ecs.NewSystemBase(w, ecs.IDOf[Transform](), ecs.IDOf[Follow]()),
	}
}

func (s *FollowSystem) Tick(frame *ecs.UpdateFrame) {
	w := s.World()
	ecs.ForEach2(s, func(_ ecs.Entity, t *Transform, f *Follow) {
		if f.Target.IsNull() || !w.Exists(f.Target) {
			return
		}
		target, ok := ecs.GetComponent[*Transform](w.Wrap(f.Target))
		if !ok {
			return
		}

		self := t.Global()
		delta := target.Global().Position.Sub(self.Position)
		gap := delta.Len() - f.Distance
		if gap <= 0 {
			return
		}
		step := f.Speed * frame.DeltaTime
		if step > gap {
			step = gap
		}
		self.Position = self.Position.Add(delta.Normalize().Scale(step))
		t.SetGlobal(self)
	})
}

func (s *FollowSystem) Duplicate(w *ecs.World) ecs.System {
	return NewFollowSystem(w)
}

// Register adds the stock components and systems to r.
func Register(r *ecs.Registry) {
	ecs.RegisterComponent[Transform](r, "Transform")
	ecs.RegisterComponent[Velocity](r, "Velocity")
	ecs.RegisterComponent[Light](r, "Light")
	ecs.RegisterComponent[Follow](r, "Follow")

	ecs.RegisterSystem[*MovementSystem](r, "MovementSystem", newMovementSystemFromDocument)
	ecs.RegisterSystem[*FollowSystem](r, "FollowSystem", func(w *ecs.World, _ ecs.Document) (ecs.System, error) {
		return NewFollowSystem(w), nil
	})
}
