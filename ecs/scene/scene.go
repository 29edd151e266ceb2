// Package scene saves and loads Worlds as YAML documents.
//
// Entities are written as a tree: each node carries the entity's original ID,
// its name, tags, flags and one document per registered component. Loading
// allocates fresh IDs and repairs every entity reference held by a component so
// links inside the scene point at the loaded entities.
package scene

import (
	"bytes"
	"io"
	"os"

	"github.com/plus3/sceneworld/ecs"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrIllegalName is returned when an entity name is reserved by the format.
var ErrIllegalName = eris.New("illegal entity name")

type sceneFile struct {
	Entities []entityNode `yaml:"entities"`
	Systems  systemsNode  `yaml:"systems,omitempty"`
}

type entityNode struct {
	ID         uint64                  `yaml:"id"`
	Name       string                  `yaml:"name"`
	Tags       uint64                  `yaml:"tags,omitempty"`
	Flags      string                  `yaml:"flags,omitempty"`
	Components map[string]ecs.Document `yaml:"components,omitempty"`
	Children   []entityNode            `yaml:"children,omitempty"`
}

type systemsNode struct {
	Logic  []systemNode `yaml:"logic,omitempty"`
	Render []systemNode `yaml:"render,omitempty"`
}

type systemNode struct {
	Type   string       `yaml:"type"`
	Config ecs.Document `yaml:"config,omitempty"`
}

// Codec converts between Worlds and scene documents using the names recorded
// in a Registry. Components and systems whose type is not registered are left
// out on save; unknown names fail a load.
type Codec struct {
	registry *ecs.Registry
	log      *zap.Logger
}

// NewCodec creates a codec. log may be nil.
func NewCodec(registry *ecs.Registry, log *zap.Logger) *Codec {
	if log == nil {
		log = zap.NewNop()
	}
	return &Codec{registry: registry, log: log.Named("scene")}
}

// Save writes the live entities of w, and its persistable systems, to out.
func (c *Codec) Save(w *ecs.World, out io.Writer) error {
	file := sceneFile{}
	for _, root := range w.Roots() {
		node, err := c.encodeEntity(root)
		if err != nil {
			return err
		}
		file.Entities = append(file.Entities, node)
	}
	file.Systems.Logic = c.encodeSystems(w.LogicSystems())
	file.Systems.Render = c.encodeSystems(w.RenderSystems())

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(&file); err != nil {
		return eris.Wrap(err, "failed to encode scene")
	}
	if err := enc.Close(); err != nil {
		return eris.Wrap(err, "failed to flush scene")
	}
	c.log.Debug("saved scene",
		zap.Int("roots", len(file.Entities)),
		zap.Int("logicSystems", len(file.Systems.Logic)),
		zap.Int("renderSystems", len(file.Systems.Render)))
	return nil
}

// SaveFile writes the scene to path.
func (c *Codec) SaveFile(w *ecs.World, path string) error {
	var buf bytes.Buffer
	if err := c.Save(w, &buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return eris.Wrapf(err, "failed to write scene %s", path)
	}
	return nil
}

func (c *Codec) encodeEntity(e ecs.Entity) (entityNode, error) {
	name, err := e.Name()
	if err != nil {
		return entityNode{}, err
	}
	if ecs.IsIllegalEntityName(name) {
		return entityNode{}, eris.Wrapf(ErrIllegalName, "entity %s is named %q", e, name)
	}

	node := entityNode{
		ID:   uint64(e.ID()),
		Name: name,
		Tags: uint64(e.Tags()),
	}
	if flags := e.Flags(); flags != ecs.FlagsNone {
		node.Flags = flags.String()
	}

	for _, comp := range e.AllComponents() {
		typeName, ok := c.registry.ComponentName(ecs.ComponentIDFor(comp))
		if !ok {
			continue
		}
		doc := comp.Serialize()
		if doc == nil {
			continue
		}
		if node.Components == nil {
			node.Components = make(map[string]ecs.Document)
		}
		node.Components[typeName] = doc
	}

	for _, child := range e.Children() {
		childNode, err := c.encodeEntity(child)
		if err != nil {
			return entityNode{}, err
		}
		node.Children = append(node.Children, childNode)
	}
	return node, nil
}

func (c *Codec) encodeSystems(systems []ecs.System) []systemNode {
	var nodes []systemNode
	for _, s := range systems {
		if t, ok := s.(ecs.TransientSystem); ok && t.Transient() {
			continue
		}
		typeName, ok := c.registry.SystemTypeName(s)
		if !ok {
			c.log.Debug("skipping unregistered system", zap.String("system", ecs.SystemName(s)))
			continue
		}
		node := systemNode{Type: typeName}
		if ser, ok := s.(ecs.SystemSerializer); ok {
			node.Config = ser.Serialize()
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// Load reads a scene from in and adds its entities and systems to w. The
// entities get fresh IDs and become live at the next tick. It returns the
// loaded root entities. On error the entities created so far are queued for
// removal, so nothing from the scene survives the next tick.
func (c *Codec) Load(in io.Reader, w *ecs.World) ([]ecs.Entity, error) {
	var file sceneFile
	if err := yaml.NewDecoder(in).Decode(&file); err != nil && err != io.EOF {
		return nil, eris.Wrap(err, "failed to decode scene")
	}

	table := make(map[ecs.EntityID]ecs.EntityID)
	var roots []ecs.Entity
	fail := func(err error) ([]ecs.Entity, error) {
		for _, root := range roots {
			root.Remove()
		}
		return nil, err
	}

	for _, node := range file.Entities {
		root, err := c.decodeEntity(w, node, ecs.Entity{}, table)
		if !root.IsNull() {
			roots = append(roots, root)
		}
		if err != nil {
			return fail(err)
		}
	}

	logic, err := c.decodeSystems(w, file.Systems.Logic)
	if err != nil {
		return fail(err)
	}
	render, err := c.decodeSystems(w, file.Systems.Render)
	if err != nil {
		return fail(err)
	}

	for _, root := range roots {
		w.RepairLinks(root, table)
	}
	for _, s := range logic {
		w.AddLogicSystem(s)
	}
	for _, s := range render {
		w.AddRenderSystem(s)
	}

	c.log.Debug("loaded scene",
		zap.Int("entities", len(table)),
		zap.Int("logicSystems", len(logic)),
		zap.Int("renderSystems", len(render)))
	return roots, nil
}

// LoadFile reads the scene at path into w.
func (c *Codec) LoadFile(path string, w *ecs.World) ([]ecs.Entity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to open scene %s", path)
	}
	defer f.Close()
	return c.Load(f, w)
}

// decodeEntity builds node and its subtree. The returned entity is non-null
// whenever it was created, even if a descendant failed.
func (c *Codec) decodeEntity(w *ecs.World, node entityNode, parent ecs.Entity, table map[ecs.EntityID]ecs.EntityID) (ecs.Entity, error) {
	if ecs.IsIllegalEntityName(node.Name) {
		return ecs.Entity{}, eris.Wrapf(ErrIllegalName, "entity %d is named %q", node.ID, node.Name)
	}

	comps := make([]ecs.Component, 0, len(node.Components))
	for typeName, doc := range node.Components {
		comp, err := c.registry.BuildComponent(typeName, doc)
		if err != nil {
			return ecs.Entity{}, eris.Wrapf(err, "entity %d (%s)", node.ID, node.Name)
		}
		comps = append(comps, comp)
	}

	e := w.NewEntity(node.Name)
	if node.ID != 0 {
		table[ecs.EntityID(node.ID)] = e.ID()
	}
	for _, comp := range comps {
		e.AddComponent(comp)
	}
	if node.Tags != 0 {
		e.AddTags(ecs.Tags(node.Tags))
	}
	if node.Flags != "" {
		e.SetFlags(ecs.ParseFlags(node.Flags))
	}
	if !parent.IsNull() {
		e.SetParent(parent)
	}

	for _, childNode := range node.Children {
		if _, err := c.decodeEntity(w, childNode, e, table); err != nil {
			return e, err
		}
	}
	return e, nil
}

func (c *Codec) decodeSystems(w *ecs.World, nodes []systemNode) ([]ecs.System, error) {
	systems := make([]ecs.System, 0, len(nodes))
	for _, node := range nodes {
		s, err := c.registry.BuildSystem(node.Type, w, node.Config)
		if err != nil {
			return nil, err
		}
		systems = append(systems, s)
	}
	return systems, nil
}
