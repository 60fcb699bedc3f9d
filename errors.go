package framepump

import "errors"

// Common errors returned by framepump operations.
var (
	// ErrNoUIThread is returned by a Dispatcher that cannot locate a UI
	// execution context. It is fatal for the initialization sequence.
	ErrNoUIThread = errors.New("framepump: no UI thread available")

	// ErrClosed is returned when a paint arrives for a closed coordinator.
	ErrClosed = errors.New("framepump: coordinator is closed")

	// ErrNilSource is returned when a nil tick or paint source is passed to New.
	ErrNilSource = errors.New("framepump: nil source")
)
