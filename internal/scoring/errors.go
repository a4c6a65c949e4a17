package scoring

import "errors"

// ErrNotFound indicates no composite score exists for the requested key.
var ErrNotFound = errors.New("composite score not found")
