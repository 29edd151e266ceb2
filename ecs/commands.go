package ecs

import (
	"slices"

	"github.com/kamstrup/intmap"
)

// commands buffers the structural changes made to a World between two ticks.
// Nothing queued here is visible to systems or queries until the World flushes it.
//
// The slices keep queue order, the sets answer membership for deduplication.
type commands struct {
	adds    []EntityID
	removes []EntityID
	updates []EntityID

	removing *intmap.Set[EntityID]
	updating *intmap.Set[EntityID]
}

// Spawn queues an entity for insertion into the live list.
func (c *commands) Spawn(id EntityID) {
	c.adds = append(c.adds, id)
}

// Delete queues an entity for destruction. Queuing twice is harmless.
func (c *commands) Delete(id EntityID) {
	if c.removing == nil {
		c.removing = intmap.NewSet[EntityID](0)
	}
	if !c.removing.Add(id) {
		return
	}
	c.removes = append(c.removes, id)
}

// Update records that an entity's component set changed.
func (c *commands) Update(id EntityID) {
	if c.updating == nil {
		c.updating = intmap.NewSet[EntityID](0)
	}
	if !c.updating.Add(id) {
		return
	}
	c.updates = append(c.updates, id)
}

// Deleting reports whether the entity is queued for destruction.
func (c *commands) Deleting(id EntityID) bool {
	return c.removing.Has(id)
}

// Empty reports whether nothing is pending.
func (c *commands) Empty() bool {
	return len(c.adds) == 0 && len(c.removes) == 0 && len(c.updates) == 0
}

// Reset clears the buffer, keeping the backing arrays.
func (c *commands) Reset() {
	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
	c.updates = c.updates[:0]
	if c.removing != nil {
		c.removing.Clear()
	}
	if c.updating != nil {
		c.updating.Clear()
	}
}

func (c *commands) clone() commands {
	out := commands{
		adds: slices.Clone(c.adds),
	}
	for _, id := range c.removes {
		out.Delete(id)
	}
	for _, id := range c.updates {
		out.Update(id)
	}
	return out
}
