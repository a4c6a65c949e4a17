package votes

import "errors"

// ErrNotFound indicates no vote exists for the requested key.
var ErrNotFound = errors.New("vote not found")

// ErrUnknownLegislator marks ballots cast by legislators not yet ingested.
var ErrUnknownLegislator = errors.New("ballot from unknown legislator")
