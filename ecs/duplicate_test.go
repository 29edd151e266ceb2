package ecs_test

import (
	"testing"

	"github.com/plus3/sceneworld/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuplicate(t *testing.T) {
	w := ecs.NewWorld()

	outside := w.NewEntity("outside")
	holder := w.NewEntity("holder")
	root := w.NewEntity("root").
		AddComponent(&Position{X: 1}).
		AddComponent(&Health{Current: 7, Max: 10}).
		AddTags(4)
	root.SetParent(holder)
	arm := w.NewEntity("arm").AddComponent(&Position{X: 2})
	arm.SetParent(root)
	hand := w.NewEntity("hand").
		AddComponent(&Target{Entity: arm.ID()})
	hand.SetParent(arm)
	pointer := w.NewEntity("pointer").AddComponent(&Target{Entity: outside.ID()})
	pointer.SetParent(root)
	w.Tick(0)

	clone := root.Duplicate(ecs.Entity{})
	w.Tick(0)

	require.NotEqual(t, root.ID(), clone.ID())
	assert.True(t, w.IsLive(clone.ID()))

	t.Run("same component types", func(t *testing.T) {
		assert.True(t, clone.Signature().Equal(root.Signature()))
		name, _ := clone.Name()
		assert.Equal(t, "root", name)
		assert.Equal(t, ecs.Tags(4), clone.Tags())
	})

	t.Run("independent ownership", func(t *testing.T) {
		orig, _ := ecs.GetComponent[*Health](root)
		dup, _ := ecs.GetComponent[*Health](clone)
		assert.NotSame(t, orig, dup)
		assert.Equal(t, clone.ID(), dup.Owner().ID())

		dup.Current = 1
		assert.Equal(t, 7, orig.Current)
	})

	t.Run("placed under the original parent", func(t *testing.T) {
		parent, ok := clone.Parent()
		require.True(t, ok)
		assert.Equal(t, holder.ID(), parent.ID())
		assert.Len(t, holder.Children(), 2)
	})

	t.Run("links are repaired", func(t *testing.T) {
		cloneArm, ok := clone.NamedChild("arm", false)
		require.True(t, ok)
		assert.NotEqual(t, arm.ID(), cloneArm.ID())

		cloneHand, ok := clone.NamedChild("hand", true)
		require.True(t, ok)
		target, _ := ecs.GetComponent[*Target](cloneHand)
		assert.Equal(t, cloneArm.ID(), target.Entity, "links inside the subtree follow the clone")

		origTarget, _ := ecs.GetComponent[*Target](hand)
		assert.Equal(t, arm.ID(), origTarget.Entity, "the original is untouched")

		clonePointer, ok := clone.NamedChild("pointer", false)
		require.True(t, ok)
		ptr, _ := ecs.GetComponent[*Target](clonePointer)
		assert.Equal(t, outside.ID(), ptr.Entity, "links leaving the subtree are kept")
	})

	t.Run("explicit parent", func(t *testing.T) {
		dup := arm.Duplicate(outside)
		parent, ok := dup.Parent()
		require.True(t, ok)
		assert.Equal(t, outside.ID(), parent.ID())
		assert.Len(t, dup.ChildrenRecursive(), 1)
	})
}

func TestClone(t *testing.T) {
	w := ecs.NewWorld()
	sys := newMoveSystem(w)
	w.AddLogicSystem(sys)
	w.AddRenderSystem(newCountingSystem(w, "overlay", nil))

	parent := w.NewEntity("parent").AddComponent(&Position{X: 1}).AddComponent(&Velocity{DX: 1})
	child := w.NewEntity("child").AddComponent(&Health{Max: 3}).AddTags(2)
	child.SetParent(parent)
	w.Tick(0)
	pending := w.NewEntity("pending").AddComponent(&Position{}).AddComponent(&Velocity{DX: 5})

	dst := w.Clone()

	assert.Equal(t, ids(w.Entities()), ids(dst.Entities()))
	assert.Empty(t, dst.RenderSystems(), "systems without Duplicate are left out")
	require.Len(t, dst.LogicSystems(), 1)

	clonedSys := dst.LogicSystems()[0].(*moveSystem)
	assert.NotSame(t, sys, clonedSys)
	assert.Same(t, dst, clonedSys.World())
	assert.Equal(t, []ecs.EntityID{parent.ID()}, ids(clonedSys.Entities()))

	dstParent := dst.Wrap(parent.ID())
	kids := dstParent.Children()
	require.Len(t, kids, 1)
	assert.Equal(t, child.ID(), kids[0].ID())
	assert.Equal(t, ecs.Tags(2), kids[0].Tags())

	pos, _ := ecs.GetComponent[*Position](dstParent)
	origPos, _ := ecs.GetComponent[*Position](parent)
	assert.NotSame(t, origPos, pos)
	assert.Same(t, dst, pos.Owner().World())

	dst.Tick(1)
	assert.Equal(t, float32(2), pos.X)
	assert.Equal(t, float32(1), origPos.X, "ticking the clone leaves the source alone")
	assert.True(t, dst.IsLive(pending.ID()), "pending changes are carried over")
	assert.False(t, w.IsLive(pending.ID()))
}
