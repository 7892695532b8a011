package wizard

import (
	"errors"
	"fmt"
)

var (
	// ErrTemplateNotFound indicates the build referenced a template id the
	// store does not know.
	ErrTemplateNotFound = errors.New("wizard template not found")

	// ErrPermissionDenied indicates the acting user fails the template's
	// trust, group, or subscription gate. No submission is created.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidStep indicates an update referenced a step outside the
	// current visible set.
	ErrInvalidStep = errors.New("step not in current wizard")
)

// ValidationError reports a malformed input value for one field. Unlike a
// missing required field, this is raised to the caller.
type ValidationError struct {
	FieldID string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for field %s: %s", e.FieldID, e.Reason)
}
