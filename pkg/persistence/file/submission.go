package file

import (
	"context"
	"encoding/json"
	"os"
	"path"
	"sync"
	"time"

	"github.com/guidekit/guidekit/pkg/models"
	"github.com/guidekit/guidekit/pkg/persistence"
)

// SubmissionRepository handles submission file operations. Writes for the
// same (template, user) pair are serialized by the repository mutex.
type SubmissionRepository struct {
	root string
	mu   sync.Mutex
}

func NewSubmissionRepository(root string) *SubmissionRepository {
	return &SubmissionRepository{root: root}
}

func (sr *SubmissionRepository) path(templateID, userID string) string {
	return path.Join(sr.root, "submissions", templateID, userID+".json")
}

func (sr *SubmissionRepository) Get(ctx context.Context, templateID, userID string) (*models.Submission, error) {
	data, err := os.ReadFile(sr.path(templateID, userID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewSubmissionError("Get", templateID, userID, persistence.ErrSubmissionNotFound)
		}

		return nil, persistence.NewSubmissionError("Get", templateID, userID, err)
	}

	var submission models.Submission
	if err := json.Unmarshal(data, &submission); err != nil {
		return nil, persistence.NewSubmissionError("Get", templateID, userID, err)
	}

	return &submission, nil
}

func (sr *SubmissionRepository) Save(ctx context.Context, submission *models.Submission) error {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	submission.UpdatedAt = time.Now()

	target := sr.path(submission.TemplateID, submission.UserID)
	if err := os.MkdirAll(path.Dir(target), 0o755); err != nil {
		return persistence.NewSubmissionError("Save", submission.TemplateID, submission.UserID, err)
	}

	data, err := json.MarshalIndent(submission, "", "  ")
	if err != nil {
		return persistence.NewSubmissionError("Save", submission.TemplateID, submission.UserID, err)
	}

	if err := os.WriteFile(target, data, 0o644); err != nil {
		return persistence.NewSubmissionError("Save", submission.TemplateID, submission.UserID, err)
	}

	return nil
}

func (sr *SubmissionRepository) Delete(ctx context.Context, templateID, userID string) error {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	if err := os.Remove(sr.path(templateID, userID)); err != nil {
		if os.IsNotExist(err) {
			return persistence.NewSubmissionError("Delete", templateID, userID, persistence.ErrSubmissionNotFound)
		}

		return persistence.NewSubmissionError("Delete", templateID, userID, err)
	}

	return nil
}
