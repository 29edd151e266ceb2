package components

import (
	"github.com/plus3/sceneworld/ecs"
)

// Velocity moves a Transform every logic tick.
type Velocity struct {
	ecs.ComponentBase

	Linear  Vec2
	Angular float64
}

func (v *Velocity) Duplicate(ecs.Entity) ecs.Component {
	return &Velocity{Linear: v.Linear, Angular: v.Angular}
}

func (v *Velocity) Serialize() ecs.Document {
	return ecs.Document{
		"linear":  []float64{v.Linear.X, v.Linear.Y},
		"angular": v.Angular,
	}
}

func (v *Velocity) Deserialize(doc ecs.Document) (err error) {
	if v.Linear, err = readVec2(doc, "linear", Vec2{}); err != nil {
		return err
	}
	v.Angular, err = readFloat(doc, "angular", 0)
	return err
}

// Light is a point light.
type Light struct {
	ecs.ComponentBase

	Color     [3]float64
	Intensity float64
	Radius    float64
}

// NewLight returns a white light.
func NewLight(intensity, radius float64) *Light {
	return &Light{Color: [3]float64{1, 1, 1}, Intensity: intensity, Radius: radius}
}

func (l *Light) Duplicate(ecs.Entity) ecs.Component {
	return &Light{Color: l.Color, Intensity: l.Intensity, Radius: l.Radius}
}

func (l *Light) Serialize() ecs.Document {
	return ecs.Document{
		"color":     []float64{l.Color[0], l.Color[1], l.Color[2]},
		"intensity": l.Intensity,
		"radius":    l.Radius,
	}
}

func (l *Light) Deserialize(doc ecs.Document) (err error) {
	l.Color = [3]float64{1, 1, 1}
	color, ok, err := readFloats(doc, "color", 3)
	if err != nil {
		return err
	}
	if ok {
		copy(l.Color[:], color)
	}
	if l.Intensity, err = readFloat(doc, "intensity", 1); err != nil {
		return err
	}
	l.Radius, err = readFloat(doc, "radius", 0)
	return err
}

// Follow makes an entity chase another one.
type Follow struct {
	ecs.ComponentBase

	Target   ecs.EntityID
	Speed    float64
	Distance float64
}

func (f *Follow) Duplicate(ecs.Entity) ecs.Component {
	return &Follow{Target: f.Target, Speed: f.Speed, Distance: f.Distance}
}

// RepairLinks points Target at the clone when the target was cloned too.
func (f *Follow) RepairLinks(remap ecs.Remap) {
	if !f.Target.IsNull() {
		f.Target = remap(f.Target)
	}
}

func (f *Follow) Serialize() ecs.Document {
	return ecs.Document{
		"target":   uint64(f.Target),
		"speed":    f.Speed,
		"distance": f.Distance,
	}
}

func (f *Follow) Deserialize(doc ecs.Document) (err error) {
	if f.Target, err = readEntityID(doc, "target"); err != nil {
		return err
	}
	if f.Speed, err = readFloat(doc, "speed", 1); err != nil {
		return err
	}
	f.Distance, err = readFloat(doc, "distance", 0)
	return err
}
