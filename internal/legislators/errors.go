package legislators

import "errors"

// ErrNotFound indicates no legislator exists for the requested key.
var ErrNotFound = errors.New("legislator not found")
