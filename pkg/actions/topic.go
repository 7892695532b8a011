package actions

import (
	"context"
	"fmt"

	"github.com/guidekit/guidekit/pkg/host"
	"github.com/guidekit/guidekit/pkg/models"
	"github.com/guidekit/guidekit/pkg/template"
)

// createTopic creates a topic and first post from interpolated parameters,
// applies custom fields, and records the topic id under the action key.
func (e *Executor) createTopic(ctx context.Context, action *models.Action, run *Run, result *Result) error {
	params := action.CreateTopic
	ipCtx := run.interpolationContext()

	title, err := template.Interpolate(params.Title, ipCtx)
	if err != nil {
		return err
	}

	body, err := template.Interpolate(params.Body, ipCtx)
	if err != nil {
		return err
	}

	categoryID, err := template.Interpolate(params.Category, ipCtx)
	if err != nil {
		return err
	}

	tags, err := template.InterpolateAll(params.Tags, ipCtx)
	if err != nil {
		return err
	}

	ref, err := e.host.Topics.Create(ctx, host.TopicSpec{
		Title:      title,
		Body:       body,
		CategoryID: categoryID,
		AuthorID:   run.User.ID,
		Tags:       tags,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEntityCreationFailed, err)
	}

	for _, field := range params.CustomFields {
		value, err := interpolateCustomFieldValue(field.Value, ipCtx)
		if err != nil {
			return err
		}

		if err := e.host.Topics.SetCustomField(ctx, ref.ID, field.Name, value); err != nil {
			return fmt.Errorf("failed to set topic custom field %s: %w", field.Name, err)
		}
	}

	for _, field := range params.PostCustomFields {
		value, err := interpolateCustomFieldValue(field.Value, ipCtx)
		if err != nil {
			return err
		}

		if err := e.host.Topics.SetPostCustomField(ctx, ref.ID, field.Name, value); err != nil {
			return fmt.Errorf("failed to set post custom field %s: %w", field.Name, err)
		}
	}

	if params.Watch != nil {
		if err := e.host.Topics.Watch(ctx, ref.ID, run.User.ID, params.Watch.Level); err != nil {
			return fmt.Errorf("failed to watch topic %s: %w", ref.ID, err)
		}
	}

	result.setOutput(run, action.ID, ref.ID)

	return nil
}

// interpolateCustomFieldValue interpolates string values and passes
// structured JSON values (maps, lists) through untouched.
func interpolateCustomFieldValue(value any, ctx *template.Context) (any, error) {
	str, ok := value.(string)
	if !ok {
		return value, nil
	}

	return template.Interpolate(str, ctx)
}
