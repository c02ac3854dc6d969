package artifact

import "github.com/Chan-Developer/ReAct-agent/core"

var (
	// ErrNotFound is returned when an artifact for the given scope / key pair
	// does not exist in the underlying store. It is the same value as
	// core.ErrReferenceNotFound so callers can match either.
	ErrNotFound = core.ErrReferenceNotFound
)
