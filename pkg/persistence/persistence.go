// Package persistence provides the storage abstraction for wizard templates
// and submissions.
package persistence

import (
	"context"

	"github.com/guidekit/guidekit/pkg/models"
)

type Persistence interface {
	Templates() TemplateRepository
	Submissions() SubmissionRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

type TemplateRepository interface {
	All(ctx context.Context) ([]*models.Template, error)

	// GetByID returns ErrTemplateNotFound when no template exists under id.
	GetByID(ctx context.Context, id string) (*models.Template, error)

	Save(ctx context.Context, template *models.Template) error
	Delete(ctx context.Context, id string) error
}

type SubmissionRepository interface {
	// Get returns ErrSubmissionNotFound when the (template, user) pair has
	// no submission yet.
	Get(ctx context.Context, templateID, userID string) (*models.Submission, error)

	// Save writes the submission atomically with respect to other Save
	// calls for the same (template, user) pair.
	Save(ctx context.Context, submission *models.Submission) error

	Delete(ctx context.Context, templateID, userID string) error
}
