// Package persistence provides standardized error types for storage
// operations.
package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrTemplateNotFound indicates no template exists under the given id.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrSubmissionNotFound indicates the (template, user) pair has no
	// submission yet.
	ErrSubmissionNotFound = errors.New("submission not found")

	// ErrTemplateAlreadyExists indicates a template with the same id exists.
	ErrTemplateAlreadyExists = errors.New("template already exists")
)

// TemplateError wraps template storage errors with operation context.
type TemplateError struct {
	Op         string
	TemplateID string
	Err        error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("%s operation failed for template %s: %v", e.Op, e.TemplateID, e.Err)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}

func (e *TemplateError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func NewTemplateError(op, templateID string, err error) *TemplateError {
	return &TemplateError{Op: op, TemplateID: templateID, Err: err}
}

// SubmissionError wraps submission storage errors with operation context.
type SubmissionError struct {
	Op         string
	TemplateID string
	UserID     string
	Err        error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("%s operation failed for submission %s/%s: %v", e.Op, e.TemplateID, e.UserID, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

func (e *SubmissionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func NewSubmissionError(op, templateID, userID string, err error) *SubmissionError {
	return &SubmissionError{Op: op, TemplateID: templateID, UserID: userID, Err: err}
}

// IsTemplateNotFound checks if an error indicates a missing template.
func IsTemplateNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound)
}

// IsSubmissionNotFound checks if an error indicates a missing submission.
func IsSubmissionNotFound(err error) bool {
	return errors.Is(err, ErrSubmissionNotFound)
}
