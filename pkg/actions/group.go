package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/guidekit/guidekit/pkg/host"
	"github.com/guidekit/guidekit/pkg/models"
	"github.com/guidekit/guidekit/pkg/template"
)

// createGroup creates a group and records its name under the action key,
// so a later add_to_group in the same wizard can reference it.
func (e *Executor) createGroup(ctx context.Context, action *models.Action, run *Run, result *Result) error {
	params := action.CreateGroup
	ipCtx := run.interpolationContext()

	name, err := template.Interpolate(params.Name, ipCtx)
	if err != nil {
		return err
	}

	fullName, err := template.Interpolate(params.FullName, ipCtx)
	if err != nil {
		return err
	}

	description, err := template.Interpolate(params.Description, ipCtx)
	if err != nil {
		return err
	}

	ref, err := e.host.Groups.Create(ctx, host.GroupSpec{
		Name:        name,
		FullName:    fullName,
		Description: description,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEntityCreationFailed, err)
	}

	for _, field := range params.CustomFields {
		value, err := interpolateCustomFieldValue(field.Value, ipCtx)
		if err != nil {
			return err
		}

		if err := e.host.Groups.SetCustomField(ctx, ref.ID, field.Name, value); err != nil {
			return fmt.Errorf("failed to set group custom field %s: %w", field.Name, err)
		}
	}

	result.setOutput(run, action.ID, ref.Name)

	return nil
}

// addToGroup resolves the group reference (literal or the output of an
// earlier create_group) and adds the acting user. Membership is
// idempotent on the host side.
func (e *Executor) addToGroup(ctx context.Context, action *models.Action, run *Run, result *Result) error {
	group, err := template.Interpolate(action.AddToGroup.Group, run.interpolationContext())
	if err != nil {
		return err
	}

	group = strings.TrimSpace(group)
	if group == "" {
		return fmt.Errorf("%w: %q", ErrGroupNotResolved, action.AddToGroup.Group)
	}

	if err := e.host.Groups.AddMember(ctx, group, run.User.ID); err != nil {
		return fmt.Errorf("failed to add %s to group %s: %w", run.User.ID, group, err)
	}

	result.setOutput(run, action.ID, group)

	return nil
}
