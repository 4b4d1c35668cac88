package opschema

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ValidationError reports every schema violation found in a document,
// rather than failing on the first one.
type ValidationError struct {
	Errors []gojsonschema.ResultError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		parts[i] = err.String()
	}
	return fmt.Sprintf("opschema: document failed validation: %s", strings.Join(parts, "; "))
}
