// Package file provides file-based persistence for wizard templates and
// submissions. Templates are JSON or YAML documents under
// <root>/templates, submissions live as JSON under
// <root>/submissions/<template>/<user>.json.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/guidekit/guidekit/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the
// file system.
type Persistence struct {
	root           string
	templateRepo   *TemplateRepository
	submissionRepo *SubmissionRepository
}

// NewPersistence creates a new instance rooted at the given directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:           cleanRoot,
		templateRepo:   NewTemplateRepository(cleanRoot),
		submissionRepo: NewSubmissionRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. Nothing to do for files.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) Templates() persistence.TemplateRepository {
	return fp.templateRepo
}

func (fp *Persistence) Submissions() persistence.SubmissionRepository {
	return fp.submissionRepo
}
