package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/guidekit/guidekit/pkg/models"
	"github.com/guidekit/guidekit/pkg/persistence"
)

// SubmissionRepository stores one row per (template, user) pair. Saves are
// atomic upserts.
type SubmissionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSubmissionRepository(db *sql.DB, logger *slog.Logger) *SubmissionRepository {
	return &SubmissionRepository{db: db, logger: logger}
}

func (sr *SubmissionRepository) Get(ctx context.Context, templateID, userID string) (*models.Submission, error) {
	var (
		submission models.Submission
		fields     []byte
		order      []byte
	)

	err := sr.db.QueryRowContext(ctx, `
		SELECT id, template_id, user_id, fields, field_order, current_step_id, updated_at
		FROM wizard_submissions
		WHERE template_id = $1 AND user_id = $2
	`, templateID, userID).Scan(
		&submission.ID,
		&submission.TemplateID,
		&submission.UserID,
		&fields,
		&order,
		&submission.CurrentStepID,
		&submission.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewSubmissionError("Get", templateID, userID, persistence.ErrSubmissionNotFound)
	}

	if err != nil {
		return nil, persistence.NewSubmissionError("Get", templateID, userID, err)
	}

	if err := json.Unmarshal(fields, &submission.Fields); err != nil {
		return nil, persistence.NewSubmissionError("Get", templateID, userID, err)
	}

	if err := json.Unmarshal(order, &submission.Order); err != nil {
		return nil, persistence.NewSubmissionError("Get", templateID, userID, err)
	}

	return &submission, nil
}

func (sr *SubmissionRepository) Save(ctx context.Context, submission *models.Submission) error {
	fields, err := json.Marshal(submission.Fields)
	if err != nil {
		return persistence.NewSubmissionError("Save", submission.TemplateID, submission.UserID, err)
	}

	order, err := json.Marshal(submission.Order)
	if err != nil {
		return persistence.NewSubmissionError("Save", submission.TemplateID, submission.UserID, err)
	}

	_, err = sr.db.ExecContext(ctx, `
		INSERT INTO wizard_submissions (id, template_id, user_id, fields, field_order, current_step_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (template_id, user_id) DO UPDATE SET
			fields = EXCLUDED.fields,
			field_order = EXCLUDED.field_order,
			current_step_id = EXCLUDED.current_step_id,
			updated_at = NOW()
	`, submission.ID, submission.TemplateID, submission.UserID, fields, order, submission.CurrentStepID)
	if err != nil {
		return persistence.NewSubmissionError("Save", submission.TemplateID, submission.UserID, err)
	}

	return nil
}

func (sr *SubmissionRepository) Delete(ctx context.Context, templateID, userID string) error {
	result, err := sr.db.ExecContext(ctx,
		"DELETE FROM wizard_submissions WHERE template_id = $1 AND user_id = $2",
		templateID, userID,
	)
	if err != nil {
		return persistence.NewSubmissionError("Delete", templateID, userID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewSubmissionError("Delete", templateID, userID, err)
	}

	if affected == 0 {
		return persistence.NewSubmissionError("Delete", templateID, userID, persistence.ErrSubmissionNotFound)
	}

	return nil
}
