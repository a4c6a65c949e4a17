package archive

import "errors"

var (
	// ErrNotFound indicates no payload is archived at the requested locator.
	ErrNotFound = errors.New("archived payload not found")
	// ErrEmptySegment indicates a locator with an empty category, period, or identity.
	ErrEmptySegment = errors.New("locator segment must not be empty")
	// ErrInvalidSegment indicates a locator segment containing a path traversal sequence.
	ErrInvalidSegment = errors.New("locator segment contains invalid path sequence")
)
