package triage

import "errors"

// Caller errors. These are the only conditions surfaced as failures; every
// other problem degrades to a lower-confidence result.
var (
	ErrMissingDescription = errors.New("description is required")
	ErrNotFound           = errors.New("incident not found")
)
