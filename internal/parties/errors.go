package parties

import "errors"

// ErrNotFound indicates no party exists for the requested key.
var ErrNotFound = errors.New("party not found")
