package memocli

import "fmt"

// ExitError carries the exit code of the wrapped command or parallel
// fan-out, distinct from merr.Error's fixed validation/integrity codes:
// memo's own exit code is defined to equal whatever the wrapped process
// returned.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("wrapped command exited with code %d", e.Code)
}
