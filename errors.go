package bramble

import "errors"

var (
	// ErrInvalidArgument is returned for out-of-range numeric input such as a
	// negative time scale or a non-positive animation speed.
	ErrInvalidArgument = errors.New("bramble: invalid argument")
	// ErrNotDrawing is returned by DrawSprite outside a Begin/End pair.
	ErrNotDrawing = errors.New("bramble: draw outside Begin/End")
	// ErrRegionNotFound is returned for an atlas region name that was never
	// registered.
	ErrRegionNotFound = errors.New("bramble: atlas region not found")
	// ErrDuplicateRegion is returned when re-registering an atlas region.
	ErrDuplicateRegion = errors.New("bramble: atlas region already registered")
	// ErrInvalidClip is returned by ClipRegistry.Register for clips that
	// reference unknown regions or carry non-positive durations or speed.
	ErrInvalidClip = errors.New("bramble: invalid animation clip")
	// ErrLengthMismatch is returned by NewTween when from and to differ in
	// length.
	ErrLengthMismatch = errors.New("bramble: length mismatch")
)
