package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/guidekit/guidekit/pkg/host"
	"github.com/guidekit/guidekit/pkg/models"
	"github.com/guidekit/guidekit/pkg/template"
)

// sendMessage creates a private conversation with one or more user or
// group targets. Messaging is subscription-gated: with the feature off the
// action is skipped outright, which is not an error.
func (e *Executor) sendMessage(ctx context.Context, action *models.Action, run *Run, result *Result) error {
	if !e.host.Permissions.SubscriptionEnabled(ctx) {
		result.Skipped = true

		return nil
	}

	params := action.SendMessage
	ipCtx := run.interpolationContext()

	title, err := template.Interpolate(params.Title, ipCtx)
	if err != nil {
		return err
	}

	body, err := template.Interpolate(params.Body, ipCtx)
	if err != nil {
		return err
	}

	var userTargets, groupTargets []string

	for _, target := range params.Targets {
		resolved, err := template.Interpolate(target, ipCtx)
		if err != nil {
			return err
		}

		resolved = strings.TrimSpace(resolved)
		if resolved == "" {
			continue
		}

		isGroup, err := e.host.Groups.Exists(ctx, resolved)
		if err != nil {
			return fmt.Errorf("failed to resolve message target %s: %w", resolved, err)
		}

		if isGroup {
			groupTargets = append(groupTargets, resolved)
		} else {
			userTargets = append(userTargets, resolved)
		}
	}

	if len(userTargets)+len(groupTargets) == 0 {
		return ErrNoRecipients
	}

	ref, err := e.host.Messages.Send(ctx, host.MessageSpec{
		FromUserID:   run.User.ID,
		Title:        title,
		Body:         body,
		UserTargets:  userTargets,
		GroupTargets: groupTargets,
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	result.setOutput(run, action.ID, ref.ID)

	return nil
}
