package dep

import (
	"errors"
	"fmt"
)

var errEmptyPointer = errors.New("jsonp path has no segments")

// ErrInvalidJSONPointer reports a jsonp path that gojsonpointer could not
// tokenize, or that tokenized to zero segments.
func ErrInvalidJSONPointer(path string, cause error) error {
	return fmt.Errorf("dep: invalid jsonp path %q: %w", path, cause)
}
