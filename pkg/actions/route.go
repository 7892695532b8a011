package actions

import (
	"github.com/guidekit/guidekit/pkg/models"
	"github.com/guidekit/guidekit/pkg/template"
)

// routeTo redirects the user to a literal or interpolated URL or relative
// path. It is the one action that short-circuits the rest of its step.
func (e *Executor) routeTo(action *models.Action, run *Run, result *Result) error {
	target, err := template.Interpolate(action.RouteTo.URL, run.interpolationContext())
	if err != nil {
		return err
	}

	result.Redirect = target
	result.Terminal = true

	return nil
}
