package models

// Template is the declarative definition of one wizard: ordered steps,
// the actions that run after them, and the gating metadata a build is
// checked against. Immutable once loaded.
type Template struct {
	ID    string `json:"id"   yaml:"id"   validate:"required"`
	Name  string `json:"name" yaml:"name" validate:"required,min=3"`
	Steps []*Step `json:"steps"   yaml:"steps"   validate:"required,min=1,dive"`

	// Actions are declared template-wide and attached to steps via
	// RunAfter. Declaration order is execution order within a step.
	Actions []*Action `json:"actions,omitempty" yaml:"actions,omitempty" validate:"dive"`

	// Gating metadata, checked by the builder before anything else.
	MinTrustLevel        int      `json:"min_trust_level,omitempty"       yaml:"min_trust_level,omitempty"`
	AllowedGroups        []string `json:"allowed_groups,omitempty"        yaml:"allowed_groups,omitempty"`
	RequiresSubscription bool     `json:"requires_subscription,omitempty" yaml:"requires_subscription,omitempty"`
}

// StepByID returns the step definition with the given id.
func (t *Template) StepByID(id string) (*Step, bool) {
	for _, step := range t.Steps {
		if step.ID == id {
			return step, true
		}
	}

	return nil, false
}

// ActionsForStep returns the actions attached to the given step, in
// declaration order.
func (t *Template) ActionsForStep(stepID string) []*Action {
	actions := make([]*Action, 0)

	for _, action := range t.Actions {
		if action.RunAfter == stepID {
			actions = append(actions, action)
		}
	}

	return actions
}

// CompileConditions compiles every step, field, and action condition in the
// template. Part of template load; a template whose conditions do not
// compile is rejected before any build can see it.
func (t *Template) CompileConditions() error {
	for _, step := range t.Steps {
		if err := step.Condition.Compile(); err != nil {
			return err
		}

		for _, field := range step.Fields {
			if err := field.Condition.Compile(); err != nil {
				return err
			}
		}
	}

	for _, action := range t.Actions {
		if err := action.Condition.Compile(); err != nil {
			return err
		}
	}

	return nil
}
