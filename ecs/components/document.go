package components

import (
	"github.com/plus3/sceneworld/ecs"
	"github.com/rotisserie/eris"
)

// The readers below accept the numeric shapes a Document may hold after a
// round trip through a YAML or TOML decoder.

func readFloat(doc ecs.Document, key string, def float64) (float64, error) {
	raw, ok := doc[key]
	if !ok {
		return def, nil
	}
	f, ok := toFloat(raw)
	if !ok {
		return 0, eris.Errorf("field %q: expected a number, got %T", key, raw)
	}
	return f, nil
}

func readVec2(doc ecs.Document, key string, def Vec2) (Vec2, error) {
	values, ok, err := readFloats(doc, key, 2)
	if err != nil || !ok {
		return def, err
	}
	return Vec2{values[0], values[1]}, nil
}

// readFloats reads a list of exactly n numbers. ok is false when key is absent.
func readFloats(doc ecs.Document, key string, n int) (values []float64, ok bool, err error) {
	raw, ok := doc[key]
	if !ok {
		return nil, false, nil
	}
	switch v := raw.(type) {
	case []float64:
		values = v
	case []any:
		for _, item := range v {
			f, isNum := toFloat(item)
			if !isNum {
				return nil, true, eris.Errorf("field %q: expected numbers, got %T", key, item)
			}
			values = append(values, f)
		}
	default:
		return nil, true, eris.Errorf("field %q: expected a list, got %T", key, raw)
	}
	if len(values) != n {
		return nil, true, eris.Errorf("field %q: expected %d values, got %d", key, n, len(values))
	}
	return values, true, nil
}

func readEntityID(doc ecs.Document, key string) (ecs.EntityID, error) {
	raw, ok := doc[key]
	if !ok {
		return 0, nil
	}
	switch v := raw.(type) {
	case ecs.EntityID:
		return v, nil
	case uint64:
		return ecs.EntityID(v), nil
	case int:
		if v < 0 {
			return 0, eris.Errorf("field %q: negative entity id %d", key, v)
		}
		return ecs.EntityID(v), nil
	case int64:
		if v < 0 {
			return 0, eris.Errorf("field %q: negative entity id %d", key, v)
		}
		return ecs.EntityID(v), nil
	default:
		return 0, eris.Errorf("field %q: expected an entity id, got %T", key, raw)
	}
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}
