package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"sync"

	"github.com/guidekit/guidekit/pkg/models"
	"github.com/guidekit/guidekit/pkg/persistence"
)

// TemplateRepository handles template document file operations.
type TemplateRepository struct {
	root string
	mu   sync.Mutex
}

func NewTemplateRepository(root string) *TemplateRepository {
	return &TemplateRepository{root: root}
}

func (tr *TemplateRepository) dir() string {
	return path.Join(tr.root, "templates")
}

// All loads every template document under the templates directory, sorted
// by id.
func (tr *TemplateRepository) All(ctx context.Context) ([]*models.Template, error) {
	if _, err := os.Stat(tr.dir()); os.IsNotExist(err) {
		return make([]*models.Template, 0), nil
	}

	root := os.DirFS(tr.dir())

	documents, err := fs.Glob(root, "*.*")
	if err != nil {
		return nil, persistence.NewTemplateError("All", "", err)
	}

	templates := make([]*models.Template, 0, len(documents))

	for _, document := range documents {
		format, ok := formatForFile(document)
		if !ok {
			continue
		}

		template, err := tr.load(document, format)
		if err != nil {
			return nil, err
		}

		templates = append(templates, template)
	}

	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })

	return templates, nil
}

// GetByID loads one template document, trying JSON first, then YAML.
func (tr *TemplateRepository) GetByID(ctx context.Context, id string) (*models.Template, error) {
	for _, candidate := range []struct {
		ext    string
		format models.TemplateFormat
	}{
		{".json", models.FormatJSON},
		{".yaml", models.FormatYAML},
		{".yml", models.FormatYAML},
	} {
		if _, err := os.Stat(path.Join(tr.dir(), id+candidate.ext)); err == nil {
			return tr.load(id+candidate.ext, candidate.format)
		}
	}

	return nil, persistence.NewTemplateError("GetByID", id, persistence.ErrTemplateNotFound)
}

func (tr *TemplateRepository) load(document string, format models.TemplateFormat) (*models.Template, error) {
	data, err := os.ReadFile(path.Join(tr.dir(), document))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewTemplateError("load", document, persistence.ErrTemplateNotFound)
		}

		return nil, persistence.NewTemplateError("load", document, err)
	}

	template, err := models.ParseTemplate(data, format)
	if err != nil {
		return nil, persistence.NewTemplateError("load", document, err)
	}

	return template, nil
}

// Save writes the template as a JSON document named after its id.
func (tr *TemplateRepository) Save(ctx context.Context, template *models.Template) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	if err := os.MkdirAll(tr.dir(), 0o755); err != nil {
		return persistence.NewTemplateError("Save", template.ID, err)
	}

	data, err := json.MarshalIndent(template, "", "  ")
	if err != nil {
		return persistence.NewTemplateError("Save", template.ID, err)
	}

	target := path.Join(tr.dir(), template.ID+".json")
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return persistence.NewTemplateError("Save", template.ID, fmt.Errorf("failed to write %s: %w", target, err))
	}

	return nil
}

// Delete removes the template document for id, whatever its format.
func (tr *TemplateRepository) Delete(ctx context.Context, id string) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	removed := false

	for _, ext := range []string{".json", ".yaml", ".yml"} {
		target := path.Join(tr.dir(), id+ext)
		if err := os.Remove(target); err == nil {
			removed = true
		}
	}

	if !removed {
		return persistence.NewTemplateError("Delete", id, persistence.ErrTemplateNotFound)
	}

	return nil
}

func formatForFile(name string) (models.TemplateFormat, bool) {
	switch path.Ext(name) {
	case ".json":
		return models.FormatJSON, true
	case ".yaml", ".yml":
		return models.FormatYAML, true
	default:
		return "", false
	}
}
