package patch

import (
	"errors"
	"fmt"

	"github.com/sokinpui/wolverine.go/model"
)

// ErrOutOfRange is matched by every *OutOfRangeError.
var ErrOutOfRange = errors.New("edit out of range")

// ErrNotRecords is returned when a payload is not a JSON array or object.
var ErrNotRecords = errors.New("payload is not a collection of records")

// OutOfRangeError reports an operation whose line falls outside the line
// sequence it was applied to.
type OutOfRangeError struct {
	Op     model.EditOperation
	Length int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s at line %d (record %d) is out of range for %d line(s)",
		e.Op.Kind, e.Op.Line, e.Op.Index, e.Length)
}

func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}
