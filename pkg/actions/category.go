package actions

import (
	"context"
	"fmt"

	"github.com/guidekit/guidekit/pkg/host"
	"github.com/guidekit/guidekit/pkg/models"
	"github.com/guidekit/guidekit/pkg/template"
)

func (e *Executor) createCategory(ctx context.Context, action *models.Action, run *Run, result *Result) error {
	params := action.CreateCategory
	ipCtx := run.interpolationContext()

	name, err := template.Interpolate(params.Name, ipCtx)
	if err != nil {
		return err
	}

	slug, err := template.Interpolate(params.Slug, ipCtx)
	if err != nil {
		return err
	}

	parent, err := template.Interpolate(params.Parent, ipCtx)
	if err != nil {
		return err
	}

	ref, err := e.host.Categories.Create(ctx, host.CategorySpec{
		Name:      name,
		Slug:      slug,
		Color:     params.Color,
		TextColor: params.TextColor,
		ParentID:  parent,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEntityCreationFailed, err)
	}

	for _, field := range params.CustomFields {
		value, err := interpolateCustomFieldValue(field.Value, ipCtx)
		if err != nil {
			return err
		}

		if err := e.host.Categories.SetCustomField(ctx, ref.ID, field.Name, value); err != nil {
			return fmt.Errorf("failed to set category custom field %s: %w", field.Name, err)
		}
	}

	if params.Watch != nil {
		if err := e.host.Categories.Watch(ctx, ref.ID, run.User.ID, params.Watch.Level); err != nil {
			return fmt.Errorf("failed to watch category %s: %w", ref.ID, err)
		}
	}

	result.setOutput(run, action.ID, ref.ID)

	return nil
}
