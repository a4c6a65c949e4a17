package amendments

import "errors"

// ErrNotFound indicates no amendment exists for the requested key.
var ErrNotFound = errors.New("amendment not found")
