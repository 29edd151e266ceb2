package ecs_test

import (
	"os"
	"os/exec"
	"testing"

	"github.com/plus3/sceneworld/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lastSlot struct{ ecs.ComponentBase }
type overLimit struct{ ecs.ComponentBase }
type neverAttached struct{ ecs.ComponentBase }

func (*lastSlot) Duplicate(ecs.Entity) ecs.Component      { return &lastSlot{} }
func (*overLimit) Duplicate(ecs.Entity) ecs.Component     { return &overLimit{} }
func (*neverAttached) Duplicate(ecs.Entity) ecs.Component { return &neverAttached{} }

const componentLimitEnv = "SCENEWORLD_COMPONENT_LIMIT"

// The component registry is process-wide, so the limit is exercised in a fresh
// copy of the test binary.
func TestComponentLimit(t *testing.T) {
	if os.Getenv(componentLimitEnv) == "1" {
		exhaustComponentTypes(t)
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestComponentLimit$", "-test.count=1")
	cmd.Env = append(os.Environ(), componentLimitEnv+"=1")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}

func exhaustComponentTypes(t *testing.T) {
	w := ecs.NewWorld()
	e := w.NewEntity("e")

	for fake := ecs.ComponentID(1); ecs.RegisteredComponents() < ecs.MaxComponents-1; fake++ {
		ecs.IndexOf(fake << 32)
	}

	unknown := ecs.IDOf[neverAttached]()
	before := ecs.RegisteredComponents()
	assert.False(t, e.Signature().Has(unknown))
	assert.Panics(t, func() { ecs.Signature{}.Index(unknown) })
	assert.Equal(t, before, ecs.RegisteredComponents(), "lookups must not claim a bit")

	require.NotPanics(t, func() { e.AddComponent(&lastSlot{}) })
	assert.Equal(t, ecs.MaxComponents, ecs.RegisteredComponents())

	assert.PanicsWithValue(t,
		"cannot register component ecs_test.overLimit: maximum number of component types (64) reached",
		func() { e.AddComponent(&overLimit{}) })

	_, ok := e.GetComponent(ecs.IDOf[overLimit]())
	assert.False(t, ok)

	w.Tick(0)
	assert.True(t, w.IsLive(e.ID()))
	assert.NotPanics(t, func() { ecs.NewWorld().QueryEntities(ecs.Signature{}) })
	assert.True(t, e.Signature().Has(ecs.IDOf[lastSlot]()))
}
