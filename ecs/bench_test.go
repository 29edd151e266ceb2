package ecs_test

import (
	"testing"

	"github.com/plus3/sceneworld/ecs"
)

func populate(w *ecs.World, n int) []ecs.Entity {
	out := make([]ecs.Entity, n)
	for i := range out {
		out[i] = w.NewEntity("bench").
			AddComponent(&Position{X: float32(i)}).
			AddComponent(&Velocity{DX: 1, DY: 1})
	}
	w.Tick(0)
	return out
}

func BenchmarkNewEntity(b *testing.B) {
	w := ecs.NewWorld()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.NewEntity("bench").AddComponent(&Position{X: 1, Y: 2})
	}
	w.Tick(0)
}

func BenchmarkRemoveEntity(b *testing.B) {
	w := ecs.NewWorld()
	entities := populate(w, b.N)

	b.ResetTimer()
	for _, e := range entities {
		e.Remove()
	}
	w.Tick(0)
}

func BenchmarkGetComponent(b *testing.B) {
	w := ecs.NewWorld()
	e := populate(w, 1)[0]

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ecs.GetComponent[*Position](e)
	}
}

func BenchmarkForEach(b *testing.B) {
	for _, size := range []struct {
		name string
		n    int
	}{{"100", 100}, {"10k", 10_000}} {
		b.Run(size.name, func(b *testing.B) {
			w := ecs.NewWorld()
			sys := newMoveSystem(w)
			w.AddLogicSystem(sys)
			populate(w, size.n)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				w.Tick(0.016)
			}
		})
	}
}

func BenchmarkParallelForEach(b *testing.B) {
	w := ecs.NewWorld()
	sys := newMoveSystem(w)
	w.AddLogicSystem(sys)
	populate(w, 10_000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ecs.ParallelForEach2(sys, func(_ ecs.Entity, p *Position, v *Velocity) {
			p.X += v.DX
		})
	}
}

func BenchmarkQueryCached(b *testing.B) {
	w := ecs.NewWorld()
	populate(w, 10_000)
	sig := ecs.NewSignature(ecs.IDOf[Position](), ecs.IDOf[Velocity]())
	w.QueryEntities(sig)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = w.QueryEntities(sig)
	}
}

func BenchmarkQueryRebuild(b *testing.B) {
	w := ecs.NewWorld()
	entities := populate(w, 10_000)
	sig := ecs.NewSignature(ecs.IDOf[Position](), ecs.IDOf[Velocity]())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		entities[i%len(entities)].AddComponent(&Position{})
		w.Tick(0)
		_ = w.QueryEntities(sig)
	}
}

func BenchmarkDuplicate(b *testing.B) {
	w := ecs.NewWorld()
	root := w.NewEntity("root").AddComponent(&Position{})
	for i := 0; i < 10; i++ {
		w.NewEntity("child").AddComponent(&Target{Entity: root.ID()}).SetParent(root)
	}
	w.Tick(0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		root.Duplicate(ecs.Entity{})
	}
}
