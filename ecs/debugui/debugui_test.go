package debugui

import (
	"reflect"
	"testing"

	"github.com/plus3/sceneworld/ecs"
	"github.com/plus3/sceneworld/ecs/components"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildWorld(t *testing.T) (*ecs.World, ecs.Entity, ecs.Entity, ecs.Entity) {
	t.Helper()
	w := ecs.NewWorld()
	ship := w.NewEntity("ship").
		AddComponent(components.NewTransform(components.Vec2{})).
		AddComponent(&components.Velocity{Linear: components.Vec2{X: 1}})
	turret := w.NewEntity("turret").AddComponent(components.NewTransform(components.Vec2{X: 1}))
	turret.SetParent(ship)
	drone := w.NewEntity("drone").AddComponent(&components.Follow{Target: ship.ID(), Speed: 2})
	w.Tick(0)
	return w, ship, turret, drone
}

func TestCollectEntities(t *testing.T) {
	w, ship, turret, drone := buildWorld(t)
	drone.Hide(false)
	turret.Remove()

	infos := collectEntities(w)
	require.Len(t, infos, 3)

	assert.Equal(t, ship.ID(), infos[0].ID)
	assert.Equal(t, 0, infos[0].Depth)
	assert.Equal(t, 1, infos[0].ChildCount)
	assert.ElementsMatch(t, []string{"components.Transform", "components.Velocity"}, infos[0].ComponentTypes)

	assert.Equal(t, turret.ID(), infos[1].ID)
	assert.Equal(t, 1, infos[1].Depth)
	assert.True(t, infos[1].Removing)

	assert.Equal(t, "drone", infos[2].Name)
	assert.True(t, infos[2].Hidden)
	assert.False(t, infos[2].Removing)
}

func TestFilterEntities(t *testing.T) {
	w, _, _, drone := buildWorld(t)
	infos := collectEntities(w)

	assert.Len(t, filterEntities(infos, ""), 3)

	byName := filterEntities(infos, "TURR")
	require.Len(t, byName, 1)
	assert.Equal(t, "turret", byName[0].Name)

	byComponent := filterEntities(infos, "transform")
	assert.Len(t, byComponent, 2)

	byFollow := filterEntities(infos, "follow")
	require.Len(t, byFollow, 1)
	assert.Equal(t, drone.ID(), byFollow[0].ID)

	assert.Empty(t, filterEntities(infos, "nothing-matches"))
}

func TestSortEntities(t *testing.T) {
	infos := []EntityInfo{
		{ID: 3, Name: "b", ChildCount: 0},
		{ID: 1, Name: "c", ChildCount: 2},
		{ID: 2, Name: "a", ChildCount: 1},
	}

	sortEntities(infos, columnID, true)
	assert.Equal(t, []ecs.EntityID{1, 2, 3}, []ecs.EntityID{infos[0].ID, infos[1].ID, infos[2].ID})

	sortEntities(infos, columnName, true)
	assert.Equal(t, []string{"a", "b", "c"}, []string{infos[0].Name, infos[1].Name, infos[2].Name})

	sortEntities(infos, columnChildren, false)
	assert.Equal(t, []int{2, 1, 0}, []int{infos[0].ChildCount, infos[1].ChildCount, infos[2].ChildCount})
}

func TestPageBounds(t *testing.T) {
	tests := []struct {
		name                 string
		total, page, perPage int
		start, end           int
	}{
		{"first page", 250, 0, 100, 0, 100},
		{"last partial page", 250, 2, 100, 200, 250},
		{"past the end", 250, 5, 100, 250, 250},
		{"no paging", 40, 3, 0, 0, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := pageBounds(tt.total, tt.page, tt.perPage)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestCollectSystems(t *testing.T) {
	w, _, _, _ := buildWorld(t)
	w.AddLogicSystem(components.NewMovementSystem(w, false))
	w.AddRenderSystem(NewImguiSystem(w))

	systems := collectSystems(w)
	require.Len(t, systems, 2)

	assert.Equal(t, "MovementSystem", systems[0].Name)
	assert.Equal(t, "logic", systems[0].Kind)
	assert.Equal(t, 2, systems[0].Required)
	assert.Equal(t, 1, systems[0].Tracked)

	assert.Equal(t, "ImguiSystem", systems[1].Name)
	assert.Equal(t, "render", systems[1].Kind)
	assert.Equal(t, 0, systems[1].Tracked)
}

func TestQueryDebuggerSignature(t *testing.T) {
	w, ship, _, _ := buildWorld(t)

	types := collectComponentTypes(w)
	names := make([]string, len(types))
	for i, ct := range types {
		names[i] = ct.Name
	}
	assert.Equal(t, []string{"components.Follow", "components.Transform", "components.Velocity"}, names)

	qd := NewQueryDebugger()
	assert.True(t, qd.Signature().IsEmpty())

	qd.selected[ecs.IDOf[components.Transform]()] = true
	qd.selected[ecs.IDOf[components.Velocity]()] = true

	base := w.CachedQueryCount()
	rows := qd.run(w, qd.Signature())
	require.Len(t, rows, 1)
	assert.Equal(t, ship.ID(), rows[0].Entity.ID())
	assert.Equal(t, base+1, w.CachedQueryCount())

	// cycling through selections keeps a single cache entry for the panel
	delete(qd.selected, ecs.IDOf[components.Velocity]())
	assert.Len(t, qd.run(w, qd.Signature()), 2)
	qd.selected[ecs.IDOf[components.Follow]()] = true
	qd.run(w, qd.Signature())
	assert.Equal(t, base+1, w.CachedQueryCount())

	qd.release(w)
	assert.Equal(t, base, w.CachedQueryCount())
}

func TestReflectionCache(t *testing.T) {
	rc := NewReflectionCache()

	fields := rc.GetFields(reflect.TypeFor[*components.Follow]())
	require.Len(t, fields, 3)
	assert.Equal(t, "Target", fields[0].Name)
	assert.True(t, fields[0].IsEntity)
	assert.Equal(t, "Speed", fields[1].Name)
	assert.False(t, fields[1].IsEntity)

	transform := rc.GetFields(reflect.TypeFor[components.Transform]())
	require.Len(t, transform, 3)
	assert.True(t, transform[0].IsStruct)

	assert.Equal(t, transform, rc.GetFields(reflect.TypeFor[components.Transform]()))
}

func TestImguiItemDuplicate(t *testing.T) {
	calls := 0
	item := &ImguiItem{Render: func() { calls++ }}

	clone := item.Duplicate(ecs.Entity{}).(*ImguiItem)
	require.NotSame(t, item, clone)
	clone.Render()
	assert.Equal(t, 1, calls)
}

func TestPerformanceStats(t *testing.T) {
	ps := NewPerformanceStats(4)
	assert.Zero(t, ps.AverageFrameTime())

	for range 6 {
		ps.Record(0.010)
	}
	assert.InDelta(t, 10.0, ps.AverageFrameTime(), 1e-3)
}
