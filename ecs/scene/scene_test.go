package scene_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/plus3/sceneworld/ecs"
	"github.com/plus3/sceneworld/ecs/components"
	"github.com/plus3/sceneworld/ecs/scene"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type overlay struct {
	ecs.SystemBase
}

func (o *overlay) Transient() bool { return true }

func newCodec() *scene.Codec {
	r := ecs.NewRegistry()
	components.Register(r)
	return scene.NewCodec(r, nil)
}

func buildWorld(t *testing.T) (*ecs.World, ecs.Entity, ecs.Entity) {
	t.Helper()
	w := ecs.NewWorld()
	w.AddLogicSystem(components.NewMovementSystem(w, true))
	w.AddLogicSystem(components.NewFollowSystem(w))
	w.AddRenderSystem(&overlay{SystemBase: ecs.NewSystemBase(w)})

	root := w.NewEntity("root").
		AddComponent(components.NewTransform(components.Vec2{X: 1, Y: 2})).
		AddTags(0b101)
	leader := w.NewEntity("leader").
		AddComponent(components.NewTransform(components.Vec2{X: 5})).
		AddComponent(components.NewLight(2, 8))
	leader.SetParent(root)
	follower := w.NewEntity("follower").
		AddComponent(components.NewTransform(components.Vec2{})).
		AddComponent(&components.Follow{Target: leader.ID(), Speed: 2})
	follower.SetParent(root)
	follower.Hide(false)

	w.Tick(0)
	return w, leader, follower
}

func TestSaveLoadRoundTrip(t *testing.T) {
	codec := newCodec()
	src, leader, _ := buildWorld(t)

	var buf bytes.Buffer
	require.NoError(t, codec.Save(src, &buf))

	dst := ecs.NewWorld()
	roots, err := codec.Load(&buf, dst)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	dst.Tick(0)

	root := roots[0]
	name, err := root.Name()
	require.NoError(t, err)
	assert.Equal(t, "root", name)
	assert.Equal(t, ecs.Tags(0b101), root.Tags())

	tr, ok := ecs.GetComponent[*components.Transform](root)
	require.True(t, ok)
	assert.Equal(t, components.Vec2{X: 1, Y: 2}, tr.Position)

	newLeader, ok := root.NamedChild("leader", false)
	require.True(t, ok)
	assert.NotEqual(t, leader.ID(), newLeader.ID())
	light, ok := ecs.GetComponent[*components.Light](newLeader)
	require.True(t, ok)
	assert.Equal(t, 8.0, light.Radius)

	newFollower, ok := root.NamedChild("follower", false)
	require.True(t, ok)
	assert.False(t, newFollower.IsVisible())
	follow, ok := ecs.GetComponent[*components.Follow](newFollower)
	require.True(t, ok)
	assert.Equal(t, newLeader.ID(), follow.Target, "link must point at the loaded leader")

	t.Run("systems", func(t *testing.T) {
		logic := dst.LogicSystems()
		require.Len(t, logic, 2)
		movement, ok := logic[0].(*components.MovementSystem)
		require.True(t, ok)
		assert.True(t, movement.Parallel)
		assert.IsType(t, &components.FollowSystem{}, logic[1])
		assert.Empty(t, dst.RenderSystems(), "transient systems are not saved")

		fs, ok := ecs.FindLogicSystem[*components.FollowSystem](dst)
		require.True(t, ok)
		require.Len(t, fs.Entities(), 1)
		assert.Equal(t, newFollower.ID(), fs.Entities()[0].ID())
	})
}

func TestSaveLoadFile(t *testing.T) {
	codec := newCodec()
	src, _, _ := buildWorld(t)
	path := filepath.Join(t.TempDir(), "level.yaml")

	require.NoError(t, codec.SaveFile(src, path))

	dst := ecs.NewWorld()
	roots, err := codec.LoadFile(path, dst)
	require.NoError(t, err)
	dst.Tick(0)

	require.Len(t, roots, 1)
	assert.Len(t, roots[0].ChildrenRecursive(), 2)
	assert.Equal(t, 3, dst.EntityCount())

	_, err = codec.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), dst)
	assert.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	codec := newCodec()

	t.Run("unknown component", func(t *testing.T) {
		w := ecs.NewWorld()
		doc := `
entities:
  - id: 1
    name: parent
    children:
      - id: 2
        name: child
        components:
          Mystery: {}
`
		_, err := codec.Load(strings.NewReader(doc), w)
		require.Error(t, err)
		assert.True(t, eris.Is(err, ecs.ErrUnknownComponent))

		w.Tick(0)
		assert.Zero(t, w.EntityCount(), "partially loaded entities are removed")
	})

	t.Run("unknown system", func(t *testing.T) {
		w := ecs.NewWorld()
		doc := `
entities:
  - id: 1
    name: solo
systems:
  logic:
    - type: Nope
`
		_, err := codec.Load(strings.NewReader(doc), w)
		require.Error(t, err)
		assert.True(t, eris.Is(err, ecs.ErrUnknownSystem))
		w.Tick(0)
		assert.Zero(t, w.EntityCount())
	})

	t.Run("illegal name", func(t *testing.T) {
		w := ecs.NewWorld()
		_, err := codec.Load(strings.NewReader("entities:\n  - id: 1\n    name: children\n"), w)
		assert.True(t, eris.Is(err, scene.ErrIllegalName))
	})

	t.Run("bad component document", func(t *testing.T) {
		w := ecs.NewWorld()
		doc := `
entities:
  - id: 1
    name: broken
    components:
      Transform:
        position: nowhere
`
		_, err := codec.Load(strings.NewReader(doc), w)
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := codec.Load(strings.NewReader("entities: [:"), ecs.NewWorld())
		assert.Error(t, err)
	})

	t.Run("empty input", func(t *testing.T) {
		roots, err := codec.Load(strings.NewReader(""), ecs.NewWorld())
		require.NoError(t, err)
		assert.Empty(t, roots)
	})
}

func TestSaveRefusesIllegalNames(t *testing.T) {
	w := ecs.NewWorld()
	w.NewEntity("systems")
	w.Tick(0)

	var buf bytes.Buffer
	err := newCodec().Save(w, &buf)
	assert.True(t, eris.Is(err, scene.ErrIllegalName))
}
