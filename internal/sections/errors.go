package sections

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrNotReady              = errors.New("section has unresolved required inputs")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// Constraint names reported on validation failures.
const (
	ConstraintType      = "type"
	ConstraintMinLength = "minLength"
	ConstraintMaxLength = "maxLength"
	ConstraintMin       = "min"
	ConstraintMax       = "max"
	ConstraintFileTypes = "fileTypes"
	ConstraintRequired  = "required"
)

// ValidationError reports which constraint an input value violated.
// State is never mutated when one is returned.
type ValidationError struct {
	InputKey   string
	Constraint string
	Message    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("input %q failed %s: %s", e.InputKey, e.Constraint, e.Message)
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
