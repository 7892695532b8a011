package wizard

import (
	"github.com/guidekit/guidekit/pkg/models"
)

// Wizard is one build: the template filtered down to what the acting user
// can currently see, bound to their submission.
type Wizard struct {
	Template   *models.Template
	User       *models.User
	Submission *models.Submission
	Steps      []*BuiltStep

	builder *Builder
}

// BuiltStep is a visible step with its visible fields resolved against the
// submission.
type BuiltStep struct {
	ID     string
	Title  string
	Fields []*BuiltField

	step *models.Step
}

// BuiltField is a visible field carrying its current value (submission
// value, or evaluated default).
type BuiltField struct {
	ID       string
	Type     models.FieldType
	Label    string
	Required bool
	Value    any
}

// StepByID returns the visible step with the given id.
func (w *Wizard) StepByID(id string) (*BuiltStep, bool) {
	for _, step := range w.Steps {
		if step.ID == id {
			return step, true
		}
	}

	return nil, false
}

// CurrentSubmission returns the submission backing this build. Updates
// mutate it in place.
func (w *Wizard) CurrentSubmission() *models.Submission {
	return w.Submission
}

// CreateUpdater prepares an update of one step with the given raw input
// values, keyed by field id.
func (w *Wizard) CreateUpdater(stepID string, input map[string]any) *Updater {
	return &Updater{
		wizard: w,
		stepID: stepID,
		input:  input,
	}
}

// nextStepAfter recomputes visibility against the (possibly just updated)
// submission and returns the next visible step after stepID. ok is false
// when the wizard is complete.
func (w *Wizard) nextStepAfter(stepID string) (next string, ok bool, err error) {
	env := models.NewConditionEnv(w.User, w.Submission)
	passed := false

	for _, step := range w.Template.Steps {
		if step.ID == stepID {
			passed = true

			continue
		}

		if !passed {
			continue
		}

		visible, evalErr := step.Condition.Evaluate(env)
		if evalErr != nil {
			return "", false, evalErr
		}

		if visible {
			return step.ID, true, nil
		}
	}

	return "", false, nil
}
