package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsDeduplicate(t *testing.T) {
	var c commands
	assert.True(t, c.Empty())
	assert.False(t, c.Deleting(1))

	for _, id := range []EntityID{3, 1, 3, 2, 1} {
		c.Delete(id)
		c.Update(id)
	}
	assert.Equal(t, []EntityID{3, 1, 2}, c.removes)
	assert.Equal(t, []EntityID{3, 1, 2}, c.updates)
	assert.True(t, c.Deleting(2))
	assert.False(t, c.Deleting(4))

	cp := c.clone()
	c.Reset()
	assert.True(t, c.Empty())
	assert.False(t, c.Deleting(3))

	c.Delete(3)
	assert.Equal(t, []EntityID{3}, c.removes, "reset forgets queued ids")

	assert.Equal(t, []EntityID{3, 1, 2}, cp.removes)
	assert.True(t, cp.Deleting(1))
	cp.Update(1)
	assert.Len(t, cp.updates, 3)
}

func TestRemoveWideSubtreeQueuesEachOnce(t *testing.T) {
	const n = 5000

	w := NewWorld()
	root := w.NewEntity("root")
	for range n {
		w.NewEntity("leaf").SetParent(root)
	}
	w.Tick(0)

	root.Remove()
	root.Remove()
	require.Len(t, w.pending.removes, n+1)
	for _, child := range root.Children() {
		assert.True(t, w.IsRemoving(child.ID()))
	}

	w.Tick(0)
	assert.Zero(t, w.EntityCount())
	assert.False(t, w.IsRemoving(root.ID()))
}
