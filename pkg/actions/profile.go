package actions

import (
	"context"
	"fmt"

	"github.com/guidekit/guidekit/pkg/models"
)

// updateProfile writes submission values into user profile fields. Values
// are taken raw from the submission, so structured values such as upload
// descriptors reach the host intact.
func (e *Executor) updateProfile(ctx context.Context, action *models.Action, run *Run, result *Result) error {
	for _, field := range action.UpdateProfile.Fields {
		value, ok := run.Submission.Field(field.Key)
		if !ok {
			// A skipped optional step leaves the key absent; not an error.
			continue
		}

		if err := e.host.Profiles.SetField(ctx, run.User.ID, field.Name, value); err != nil {
			return fmt.Errorf("failed to set profile field %s: %w", field.Name, err)
		}
	}

	result.setOutput(run, action.ID, true)

	return nil
}
