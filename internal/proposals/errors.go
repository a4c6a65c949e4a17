package proposals

import "errors"

// ErrNotFound indicates no proposal exists for the requested key.
var ErrNotFound = errors.New("proposal not found")

// ErrNoAuthor marks proposals without an individual legislator author. They
// are skipped rather than ingested with a dangling link.
var ErrNoAuthor = errors.New("proposal has no individual author")

// ErrDocumentNotFound indicates no archived document exists for the proposal.
var ErrDocumentNotFound = errors.New("proposal document not found")
