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

// TemplateRepository stores template documents as JSONB rows.
type TemplateRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewTemplateRepository(db *sql.DB, logger *slog.Logger) *TemplateRepository {
	return &TemplateRepository{db: db, logger: logger}
}

func (tr *TemplateRepository) All(ctx context.Context) ([]*models.Template, error) {
	rows, err := tr.db.QueryContext(ctx, "SELECT document FROM wizard_templates ORDER BY id")
	if err != nil {
		return nil, persistence.NewTemplateError("All", "", err)
	}
	defer func() { _ = rows.Close() }()

	templates := make([]*models.Template, 0)

	for rows.Next() {
		var document []byte
		if err := rows.Scan(&document); err != nil {
			return nil, persistence.NewTemplateError("All", "", err)
		}

		template, err := models.ParseTemplate(document, models.FormatJSON)
		if err != nil {
			return nil, persistence.NewTemplateError("All", "", err)
		}

		templates = append(templates, template)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewTemplateError("All", "", err)
	}

	return templates, nil
}

func (tr *TemplateRepository) GetByID(ctx context.Context, id string) (*models.Template, error) {
	var document []byte

	err := tr.db.QueryRowContext(ctx,
		"SELECT document FROM wizard_templates WHERE id = $1", id,
	).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewTemplateError("GetByID", id, persistence.ErrTemplateNotFound)
	}

	if err != nil {
		return nil, persistence.NewTemplateError("GetByID", id, err)
	}

	template, err := models.ParseTemplate(document, models.FormatJSON)
	if err != nil {
		return nil, persistence.NewTemplateError("GetByID", id, err)
	}

	return template, nil
}

func (tr *TemplateRepository) Save(ctx context.Context, template *models.Template) error {
	document, err := json.Marshal(template)
	if err != nil {
		return persistence.NewTemplateError("Save", template.ID, err)
	}

	_, err = tr.db.ExecContext(ctx, `
		INSERT INTO wizard_templates (id, document)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = NOW()
	`, template.ID, document)
	if err != nil {
		return persistence.NewTemplateError("Save", template.ID, err)
	}

	return nil
}

func (tr *TemplateRepository) Delete(ctx context.Context, id string) error {
	result, err := tr.db.ExecContext(ctx, "DELETE FROM wizard_templates WHERE id = $1", id)
	if err != nil {
		return persistence.NewTemplateError("Delete", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewTemplateError("Delete", id, err)
	}

	if affected == 0 {
		return persistence.NewTemplateError("Delete", id, persistence.ErrTemplateNotFound)
	}

	return nil
}
