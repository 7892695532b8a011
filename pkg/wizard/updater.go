package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/guidekit/guidekit/pkg/actions"
	"github.com/guidekit/guidekit/pkg/host"
	"github.com/guidekit/guidekit/pkg/models"
	"github.com/guidekit/guidekit/pkg/otelhelper"
)

// Updater validates one step's input, merges it into the submission, runs
// the step's actions, and computes where the wizard goes next.
type Updater struct {
	wizard *Wizard
	stepID string
	input  map[string]any
}

// ActionFailure annotates one action's isolated side-effect failure.
type ActionFailure struct {
	ActionID string
	Err      error
}

// Result is the outcome of one Update call.
type Result struct {
	// Success is true for a full update and also for the silent
	// missing-required-field path, which mutates nothing but still
	// succeeds from the caller's point of view.
	Success bool

	// Skipped marks the silent path: required input missing, history
	// recorded, no submission write, no actions.
	Skipped bool

	// RedirectOnNext is the first action-produced redirect target, empty
	// when no action redirected.
	RedirectOnNext string

	// NextStepID points at the next visible step; Done is true instead
	// when none remain.
	NextStepID string
	Done       bool

	// Fields holds action outputs written into the submission by this
	// call, keyed by action id.
	Fields map[string]any

	// ActionFailures lists per-action side-effect failures. They never
	// fail the update itself.
	ActionFailures []ActionFailure
}

// Update runs the step update. Errors are limited to the hard taxonomy:
// invalid step reference, malformed input type, storage failure. Missing
// required fields and action failures do not error.
func (u *Updater) Update(ctx context.Context) (*Result, error) {
	w := u.wizard
	b := w.builder

	if b.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, b.tracer, "wizard.update",
			attribute.String(otelhelper.TemplateIDKey, w.Template.ID),
			attribute.String(otelhelper.StepIDKey, u.stepID),
			attribute.String(otelhelper.UserIDKey, w.User.ID),
		)
		defer span.End()
	}

	logger := b.logger.With(
		"template_id", w.Template.ID,
		"user_id", w.User.ID,
		"step_id", u.stepID,
	)

	step, ok := w.StepByID(u.stepID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStep, u.stepID)
	}

	result := &Result{Fields: make(map[string]any)}

	// Required-field check runs before anything is written. A miss is the
	// deliberate silent path: audit entry, success, no mutation. It keeps
	// optional steps skippable without erroring the caller.
	if missing := u.missingRequired(step); len(missing) > 0 {
		logger.Info("Required fields missing, skipping step", "fields", missing)

		entry := host.HistoryEntry{
			ActorID: w.User.ID,
			Context: w.Template.ID,
			Subject: step.ID,
			Action:  host.HistoryActionStepSkipped,
		}
		if err := b.host.History.Record(ctx, entry); err != nil {
			logger.Warn("Failed to record history entry", "error", err)
		}

		result.Success = true
		result.Skipped = true

		return u.finish(ctx, result)
	}

	validated, err := u.validateInput(step)
	if err != nil {
		return nil, err
	}

	for _, field := range step.Fields {
		if value, ok := validated[field.ID]; ok {
			w.Submission.SetField(field.ID, value)
		}
	}

	run := &actions.Run{
		Template:   w.Template,
		User:       w.User,
		Submission: w.Submission,
	}

	env := models.NewConditionEnv(w.User, w.Submission)

	for _, action := range w.Template.ActionsForStep(step.ID) {
		runnable, err := action.Condition.Evaluate(env)
		if err != nil {
			return nil, fmt.Errorf("action %s: %w", action.ID, err)
		}

		if !runnable {
			continue
		}

		res := b.executor.Perform(ctx, action, run)

		if res.Err != nil {
			result.ActionFailures = append(result.ActionFailures, ActionFailure{
				ActionID: action.ID,
				Err:      res.Err,
			})

			continue
		}

		for key, value := range res.Output {
			result.Fields[key] = value
		}

		// Later actions and conditions see this action's outputs.
		env = models.NewConditionEnv(w.User, w.Submission)

		// The first redirect of the step wins. A composer redirect only
		// records the target and lets the remaining actions run; route_to
		// is Terminal and ends the step here.
		if res.Redirect != "" && result.RedirectOnNext == "" {
			result.RedirectOnNext = res.Redirect
		}

		if res.Terminal {
			break
		}
	}

	result.Success = true

	return u.finish(ctx, result)
}

// finish computes the next-step pointer and persists the submission.
func (u *Updater) finish(ctx context.Context, result *Result) (*Result, error) {
	w := u.wizard

	next, ok, err := w.nextStepAfter(u.stepID)
	if err != nil {
		return nil, err
	}

	if ok {
		result.NextStepID = next
	} else {
		result.Done = true
	}

	if !result.Skipped {
		w.Submission.CurrentStepID = next

		if err := w.builder.persistence.Submissions().Save(ctx, w.Submission); err != nil {
			return nil, fmt.Errorf("failed to save submission: %w", err)
		}
	}

	return result, nil
}

// missingRequired lists the visible required fields with no usable input
// value.
func (u *Updater) missingRequired(step *BuiltStep) []string {
	missing := make([]string, 0)

	for _, field := range step.Fields {
		if !field.Required {
			continue
		}

		value, present := u.input[field.ID]
		if !present || isEmptyValue(value) {
			missing = append(missing, field.ID)
		}
	}

	return missing
}

// validateInput coerces the present input values by field type. A value of
// the wrong shape is a reported validation error, not a silent skip.
func (u *Updater) validateInput(step *BuiltStep) (map[string]any, error) {
	validated := make(map[string]any, len(u.input))

	for _, field := range step.Fields {
		raw, present := u.input[field.ID]
		if !present || isEmptyValue(raw) {
			continue
		}

		value, err := coerceValue(field, raw)
		if err != nil {
			return nil, err
		}

		validated[field.ID] = value
	}

	return validated, nil
}

func coerceValue(field *BuiltField, raw any) (any, error) {
	switch field.Type {
	case models.FieldTypeCategory, models.FieldTypeGroup, models.FieldTypeNumber:
		return coerceNumeric(field, raw)
	case models.FieldTypeUpload:
		return coerceUpload(field, raw)
	case models.FieldTypeTagList:
		return coerceTagList(field, raw)
	case models.FieldTypeCheckbox:
		return coerceBool(field, raw)
	case models.FieldTypeText, models.FieldTypeTextarea:
		return fmt.Sprintf("%v", raw), nil
	default:
		return raw, nil
	}
}

// coerceNumeric accepts entity ids as numbers or numeric strings.
func coerceNumeric(field *BuiltField, raw any) (any, error) {
	switch v := raw.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil, &ValidationError{FieldID: field.ID, Reason: "expected a numeric id"}
		}

		return parsed, nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, &ValidationError{FieldID: field.ID, Reason: fmt.Sprintf("expected a numeric id, got %q", v)}
		}

		return parsed, nil
	default:
		return nil, &ValidationError{FieldID: field.ID, Reason: fmt.Sprintf("expected a numeric id, got %T", raw)}
	}
}

// coerceUpload expects the host's structured upload descriptor.
func coerceUpload(field *BuiltField, raw any) (any, error) {
	if descriptor, ok := raw.(map[string]any); ok {
		return descriptor, nil
	}

	return nil, &ValidationError{FieldID: field.ID, Reason: fmt.Sprintf("expected an upload descriptor, got %T", raw)}
}

func coerceTagList(field *BuiltField, raw any) (any, error) {
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		tags := make([]string, 0, len(v))
		for _, item := range v {
			tags = append(tags, fmt.Sprintf("%v", item))
		}

		return tags, nil
	case string:
		return strings.Split(v, ","), nil
	default:
		return nil, &ValidationError{FieldID: field.ID, Reason: fmt.Sprintf("expected a tag list, got %T", raw)}
	}
}

func coerceBool(field *BuiltField, raw any) (any, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, &ValidationError{FieldID: field.ID, Reason: fmt.Sprintf("expected a boolean, got %q", v)}
		}

		return parsed, nil
	default:
		return nil, &ValidationError{FieldID: field.ID, Reason: fmt.Sprintf("expected a boolean, got %T", raw)}
	}
}

func isEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}
