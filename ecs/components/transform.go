package components

import (
	"github.com/plus3/sceneworld/ecs"
)

// Transform places an entity relative to the nearest ancestor that also carries
// a Transform. Scale is uniform.
type Transform struct {
	ecs.ComponentBase

	Position Vec2
	Rotation float64
	Scale    float64
}

// NewTransform returns a transform at pos with no rotation and unit scale.
func NewTransform(pos Vec2) *Transform {
	return &Transform{Position: pos, Scale: 1}
}

// Pose is a resolved world-space transform.
type Pose struct {
	Position Vec2
	Rotation float64
	Scale    float64
}

var identityPose = Pose{Scale: 1}

// Apply maps a point from local space into the space of p.
func (p Pose) Apply(local Vec2) Vec2 {
	return local.Scale(p.Scale).Rotate(p.Rotation).Add(p.Position)
}

// Compose returns child expressed in the space that p is expressed in.
func (p Pose) Compose(child Pose) Pose {
	return Pose{
		Position: p.Apply(child.Position),
		Rotation: p.Rotation + child.Rotation,
		Scale:    p.Scale * child.Scale,
	}
}

// Relative returns the pose that composed under p yields global.
func (p Pose) Relative(global Pose) Pose {
	scale := p.Scale
	if scale == 0 {
		scale = 1
	}
	return Pose{
		Position: global.Position.Sub(p.Position).Rotate(-p.Rotation).Scale(1 / scale),
		Rotation: global.Rotation - p.Rotation,
		Scale:    global.Scale / scale,
	}
}

// Local returns the transform's own values as a Pose.
func (t *Transform) Local() Pose {
	return Pose{Position: t.Position, Rotation: t.Rotation, Scale: t.Scale}
}

// Global resolves the world-space pose by walking up the hierarchy.
func (t *Transform) Global() Pose {
	return parentPose(t.Owner()).Compose(t.Local())
}

// SetGlobal rewrites the local values so that Global returns pose.
func (t *Transform) SetGlobal(pose Pose) {
	local := parentPose(t.Owner()).Relative(pose)
	t.Position = local.Position
	t.Rotation = local.Rotation
	t.Scale = local.Scale
}

func parentPose(owner ecs.Entity) Pose {
	if owner.IsNull() {
		return identityPose
	}
	for parent, ok := owner.Parent(); ok; parent, ok = parent.Parent() {
		if pt, found := ecs.GetComponent[*Transform](parent); found {
			return pt.Global()
		}
	}
	return identityPose
}

// BeforeReparent captures the world-space pose so it survives the move.
func (t *Transform) BeforeReparent() func() {
	global := t.Global()
	return func() {
		t.SetGlobal(global)
	}
}

func (t *Transform) Duplicate(ecs.Entity) ecs.Component {
	return &Transform{Position: t.Position, Rotation: t.Rotation, Scale: t.Scale}
}

func (t *Transform) Serialize() ecs.Document {
	return ecs.Document{
		"position": []float64{t.Position.X, t.Position.Y},
		"rotation": t.Rotation,
		"scale":    t.Scale,
	}
}

func (t *Transform) Deserialize(doc ecs.Document) (err error) {
	if t.Position, err = readVec2(doc, "position", Vec2{}); err != nil {
		return err
	}
	if t.Rotation, err = readFloat(doc, "rotation", 0); err != nil {
		return err
	}
	t.Scale, err = readFloat(doc, "scale", 1)
	return err
}
