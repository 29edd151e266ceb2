package ecs

import "strings"

// Tags is a free-form bitmask games use to group entities.
type Tags uint64

// Flags are engine-level entity switches.
type Flags uint64

const (
	FlagsNone Flags = 0
	// FlagHidden marks an entity as invisible to render systems.
	FlagHidden Flags = 1 << 0
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagHidden, "Hidden"},
}

// String renders the flags as a pipe-separated list, "None" when empty.
func (f Flags) String() string {
	if f == FlagsNone {
		return "None"
	}
	var parts []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseFlags is the inverse of Flags.String. Unknown names are ignored.
func ParseFlags(s string) Flags {
	var f Flags
	for _, part := range strings.Split(s, "|") {
		part = strings.TrimSpace(part)
		for _, fn := range flagNames {
			if fn.name == part {
				f |= fn.flag
			}
		}
	}
	return f
}

// illegalEntityNames clash with the keys used by the scene codec.
var illegalEntityNames = map[string]struct{}{
	"components": {},
	"children":   {},
	"systems":    {},
	"entities":   {},
}

// IsIllegalEntityName reports whether the name is reserved.
func IsIllegalEntityName(name string) bool {
	_, ok := illegalEntityNames[name]
	return ok
}
