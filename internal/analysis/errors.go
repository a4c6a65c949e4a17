package analysis

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates no analysis result exists for the requested key.
var ErrNotFound = errors.New("analysis result not found")

// Failure kinds for the external analysis boundary. Either way the proposal
// stays pending and is retried on a later run.
const (
	KindUnavailable     = "unavailable"
	KindMalformedOutput = "malformed_output"
)

// Error is a typed analysis failure.
type Error struct {
	Kind       string
	ProposalID int
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("analysis %s: proposal %d: %v", e.Kind, e.ProposalID, e.Err)
	}
	return fmt.Sprintf("analysis %s: proposal %d", e.Kind, e.ProposalID)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Unavailable wraps a transport or capability failure.
func Unavailable(proposalID int, err error) *Error {
	return &Error{Kind: KindUnavailable, ProposalID: proposalID, Err: err}
}

// Malformed wraps an unparseable or out-of-contract model response.
func Malformed(proposalID int, err error) *Error {
	return &Error{Kind: KindMalformedOutput, ProposalID: proposalID, Err: err}
}
