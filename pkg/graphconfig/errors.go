package graphconfig

import "errors"

// ErrConflictingFailurePolicy is returned by Validate when both Abort and
// Endure are set, which are mutually exclusive default failure policies.
var ErrConflictingFailurePolicy = errors.New("graphconfig: Abort and Endure cannot both be set")
