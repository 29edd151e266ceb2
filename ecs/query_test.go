package ecs_test

import (
	"testing"

	"github.com/plus3/sceneworld/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryScenario(t *testing.T) {
	w := ecs.NewWorld()
	sig := ecs.NewSignature(ecs.IDOf[Position](), ecs.IDOf[Light]())

	a := w.NewEntity("A").AddComponent(&Position{}).AddComponent(&Light{Intensity: 1})
	b := w.NewEntity("B").AddComponent(&Position{})
	w.NewEntity("C").AddComponent(&Light{})
	w.Tick(0)

	assert.Equal(t, []ecs.EntityID{a.ID()}, rowIDs(w.QueryEntities(sig)))

	b.AddComponent(&Light{Intensity: 2})
	w.Tick(0)
	assert.Equal(t, []ecs.EntityID{a.ID(), b.ID()}, rowIDs(w.QueryEntities(sig)))

	a.Remove()
	w.Tick(0)
	assert.Equal(t, []ecs.EntityID{b.ID()}, rowIDs(w.QueryEntities(sig)))
}

func TestQueryRows(t *testing.T) {
	w := ecs.NewWorld()
	e := w.NewEntity("e").AddComponent(&Velocity{DX: 3}).AddComponent(&Position{X: 4}).AddComponent(&Health{})
	w.Tick(0)

	sig := ecs.NewSignature(ecs.IDOf[Velocity](), ecs.IDOf[Position]())
	rows := w.QueryEntities(sig)
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, e.ID(), row.Entity.ID())
	require.Len(t, row.Components, 2)

	pos := row.Components[sig.Index(ecs.IDOf[Position]())].(*Position)
	vel := row.Components[sig.Index(ecs.IDOf[Velocity]())].(*Velocity)
	assert.Equal(t, float32(4), pos.X)
	assert.Equal(t, float32(3), vel.DX)
}

func TestQueryCache(t *testing.T) {
	w := ecs.NewWorld()
	posSig := ecs.NewSignature(ecs.IDOf[Position]())
	hpSig := ecs.NewSignature(ecs.IDOf[Health]())

	w.NewEntity("p").AddComponent(&Position{})
	w.NewEntity("h").AddComponent(&Health{})
	w.Tick(0)

	first := w.QueryEntities(posSig)
	w.QueryEntities(hpSig)
	assert.Equal(t, 2, w.CachedQueryCount())

	again := w.QueryEntities(posSig)
	assert.Equal(t, 2, w.CachedQueryCount(), "hits do not add entries")
	require.Len(t, again, 1)
	assert.Same(t, &first[0], &again[0], "hits return the cached rows")

	t.Run("unrelated changes keep the cache", func(t *testing.T) {
		w.NewEntity("other").AddComponent(&Light{})
		w.Tick(0)
		assert.Equal(t, 2, w.CachedQueryCount())
	})

	t.Run("matching adds drop only affected queries", func(t *testing.T) {
		w.NewEntity("p2").AddComponent(&Position{})
		w.Tick(0)
		assert.Equal(t, 1, w.CachedQueryCount())
		assert.Len(t, w.QueryEntities(posSig), 2)
		assert.Equal(t, 2, w.CachedQueryCount())
	})

	t.Run("pending changes are invisible until the tick", func(t *testing.T) {
		w.NewEntity("p3").AddComponent(&Position{})
		assert.Len(t, w.QueryEntities(posSig), 2)
		w.Tick(0)
		assert.Len(t, w.QueryEntities(posSig), 3)
	})

	t.Run("losing a component drops the query listing the entity", func(t *testing.T) {
		h, ok := w.FindEntityByName("h")
		require.True(t, ok)
		ecs.RemoveComponentOf[*Health](h)
		w.Tick(0)
		assert.Empty(t, w.QueryEntities(hpSig))
	})

	t.Run("forgetting evicts a single entry", func(t *testing.T) {
		w.QueryEntities(posSig)
		w.QueryEntities(hpSig)
		require.Equal(t, 2, w.CachedQueryCount())
		w.ForgetQuery(hpSig)
		assert.Equal(t, 1, w.CachedQueryCount())
		w.ForgetQuery(hpSig)
		assert.Equal(t, 1, w.CachedQueryCount())
		assert.Len(t, w.QueryEntities(posSig), 3)
	})
}

func TestQueryHelpers(t *testing.T) {
	w := ecs.NewWorld()
	for i := 0; i < 4; i++ {
		e := w.NewEntity("e").AddComponent(&Position{X: float32(i)})
		if i%2 == 1 {
			e.AddComponent(&Velocity{DX: 10})
		}
		if i == 3 {
			e.AddComponent(&Health{Max: 5})
		}
	}
	w.Tick(0)

	var xs []float32
	ecs.Query1(w, func(_ ecs.Entity, p *Position) {
		xs = append(xs, p.X)
	})
	assert.Equal(t, []float32{0, 1, 2, 3}, xs)

	ecs.Query2(w, func(_ ecs.Entity, p *Position, v *Velocity) {
		p.X += v.DX
	})
	xs = xs[:0]
	ecs.Query1(w, func(_ ecs.Entity, p *Position) {
		xs = append(xs, p.X)
	})
	assert.Equal(t, []float32{0, 11, 2, 13}, xs)

	count := 0
	ecs.Query3(w, func(_ ecs.Entity, h *Health, p *Position, v *Velocity) {
		count++
		assert.Equal(t, 5, h.Max)
	})
	assert.Equal(t, 1, count)
}

func TestView(t *testing.T) {
	w := ecs.NewWorld()

	view := ecs.NewView[struct {
		*Position
		Velocity *Velocity `ecs:"optional"`
	}](w)

	moving := w.NewEntity("moving").AddComponent(&Position{X: 1}).AddComponent(&Velocity{DX: 2})
	still := w.NewEntity("still").AddComponent(&Position{X: 5})
	w.NewEntity("lost").AddComponent(&Velocity{})
	w.Tick(0)

	seen := map[ecs.EntityID]bool{}
	for e, row := range view.Iter() {
		seen[e.ID()] = true
		if row.Velocity != nil {
			row.Position.X += row.Velocity.DX
		}
	}
	assert.Equal(t, map[ecs.EntityID]bool{moving.ID(): true, still.ID(): true}, seen)

	got := view.Get(moving)
	require.NotNil(t, got)
	assert.Equal(t, float32(3), got.Position.X)

	got = view.Get(still)
	require.NotNil(t, got)
	assert.Nil(t, got.Velocity)

	count := 0
	for range view.Values() {
		count++
	}
	assert.Equal(t, 2, count)

	t.Run("spawn", func(t *testing.T) {
		e := view.Spawn("spawned", struct {
			*Position
			Velocity *Velocity `ecs:"optional"`
		}{Position: &Position{X: 9}})
		w.Tick(0)
		assert.True(t, ecs.HasComponent[*Position](e))
		assert.False(t, ecs.HasComponent[*Velocity](e))
	})

	t.Run("invalid definitions", func(t *testing.T) {
		assert.Panics(t, func() { ecs.NewView[int](w) })
		assert.Panics(t, func() {
			ecs.NewView[struct {
				P *Position `ecs:"sometimes"`
			}](w)
		})
		assert.Panics(t, func() {
			ecs.NewView[struct {
				P *Position `ecs:"optional"`
			}](w)
		})
	})
}
