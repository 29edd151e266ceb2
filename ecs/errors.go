package ecs

import "github.com/rotisserie/eris"

var (
	// ErrMissingEntity is returned when looking up an entity the World does not know.
	ErrMissingEntity = eris.New("missing entity")

	// ErrUnknownComponent is returned when a component name has no registered factory.
	ErrUnknownComponent = eris.New("unknown component")

	// ErrUnknownSystem is returned when a system name has no registered factory.
	ErrUnknownSystem = eris.New("unknown system")
)
