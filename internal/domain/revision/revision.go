package revision

import (
	"errors"
	"fmt"
)

// ErrConflict reports a compare-and-swap write against a stale version.
var ErrConflict = errors.New("stale version")

// Check compares the stored version with the version the caller read.
func Check(kind, id string, stored, expected int64) error {
	if stored != expected {
		return fmt.Errorf("%w: %s=%s stored=%d expected=%d", ErrConflict, kind, id, stored, expected)
	}
	return nil
}
