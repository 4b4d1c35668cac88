package graph

import "fmt"

// ErrDuplicateOperation reports that an operation with this name was
// already appended to the network.
func ErrDuplicateOperation(name string) error {
	return fmt.Errorf("graph: operations may only be added once: %q", name)
}
