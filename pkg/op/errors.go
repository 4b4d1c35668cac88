package op

import "fmt"

// ErrUnknownAliasSource reports an alias whose Src is not among the
// operation's declared provides.
func ErrUnknownAliasSource(opName, src string) error {
	return fmt.Errorf("op: operation %q aliases unknown provide %q", opName, src)
}
