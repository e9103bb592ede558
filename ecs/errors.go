package ecs

import "errors"

var (
	// ErrEntityNotFound is returned when an operation targets an entity the
	// world does not own (never created, or already destroyed).
	ErrEntityNotFound = errors.New("ecs: entity not found")
	// ErrNoDefaultValue is returned by Ensure when the definition has no
	// default factory.
	ErrNoDefaultValue = errors.New("ecs: component has no default value")
	// ErrUnknownStage is returned when registering a system whose stage is
	// not one of the six recognized stages.
	ErrUnknownStage = errors.New("ecs: unknown system stage")
	// ErrUnknownComponent is returned by Hydrate for a component name that
	// was never defined.
	ErrUnknownComponent = errors.New("ecs: unknown component")
	// ErrMalformedSnapshot is returned by Hydrate when a serialized component
	// is not index-aligned or carries values of the wrong type.
	ErrMalformedSnapshot = errors.New("ecs: malformed snapshot")
)
