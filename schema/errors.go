package schema

import "errors"

var (
	// ErrUnknownColor indicates a token outside the palette was toggled.
	ErrUnknownColor = errors.New("unknown color token")
	// ErrDocumentRequired indicates the document dependency is missing.
	ErrDocumentRequired = errors.New("document dependency is required")
	// ErrStoreRequired indicates the selection store dependency is missing.
	ErrStoreRequired = errors.New("selection store dependency is required")
	// ErrControlsRequired indicates the control surface dependency is missing.
	ErrControlsRequired = errors.New("control surface dependency is required")
	// ErrNotStarted indicates the overlay has not been started.
	ErrNotStarted = errors.New("overlay not started")
	// ErrAlreadyStarted indicates the overlay is already running.
	ErrAlreadyStarted = errors.New("overlay already started")
)
