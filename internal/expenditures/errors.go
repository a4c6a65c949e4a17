package expenditures

import "errors"

// ErrNotFound indicates no expenditure exists for the requested key.
var ErrNotFound = errors.New("expenditure not found")

// ErrBelowMinimum marks records filtered out by the configured value floor.
var ErrBelowMinimum = errors.New("expenditure below minimum value")
