package repair

import (
	"errors"
	"fmt"
)

var (
	// ErrAbandoned is returned when MaxAttempts repairs did not fix the script.
	ErrAbandoned = errors.New("repair abandoned")
	// ErrDeclined is returned when the confirmation gate rejects a change.
	ErrDeclined = errors.New("changes declined")
	// ErrNoProgress is returned when the oracle proposes no edits for a
	// failing script.
	ErrNoProgress = errors.New("oracle proposed no edits")
)

// PersistError reports a failed write-back. Lines holds the patched file,
// which is still valid and may be written elsewhere.
type PersistError struct {
	Path  string
	Lines []string
	Err   error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
