// Package actions performs the side effects a wizard step triggers:
// composer redirects, entity creation, group membership, messages, profile
// writes, and plain redirects. The set of action types is closed; dispatch
// is an exhaustive switch over models.ActionType.
package actions

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/guidekit/guidekit/pkg/host"
	"github.com/guidekit/guidekit/pkg/models"
	"github.com/guidekit/guidekit/pkg/otelhelper"
	"github.com/guidekit/guidekit/pkg/template"
)

// Run is the context one action executes in: the owning template, the
// acting user, and the submission as of this step. The executor writes
// action outputs into the submission so later actions and steps can
// interpolate them.
type Run struct {
	Template   *models.Template
	User       *models.User
	Submission *models.Submission
}

// interpolationContext rebuilds the template context from the current
// submission state, so outputs of earlier actions are visible.
func (r *Run) interpolationContext() *template.Context {
	return template.NewContext(r.User, r.Submission)
}

// Result records the outcome of one action. A failed side effect sets Err
// but is not raised; the updater isolates per-action failures.
type Result struct {
	ActionID string
	Success  bool

	// Skipped marks an action that did not apply (false run condition or a
	// disabled gating feature), as opposed to one that failed.
	Skipped bool

	// Redirect, when set, becomes the update result's redirect target
	// (first writer wins).
	Redirect string

	// Terminal stops evaluation of the step's remaining actions. Only
	// route_to sets it; a composer redirect lets siblings run.
	Terminal bool

	// Output holds the key/value pairs written into the submission on
	// behalf of this action, typically {actionID: createdEntityID}.
	Output map[string]any

	Err error
}

func (r *Result) setOutput(run *Run, key string, value any) {
	if r.Output == nil {
		r.Output = make(map[string]any)
	}

	r.Output[key] = value
	run.Submission.SetField(key, value)
}

// Executor dispatches actions to the host collaborators.
type Executor struct {
	host   *host.Host
	logger *slog.Logger
	tracer trace.Tracer
}

func NewExecutor(h *host.Host, logger *slog.Logger) *Executor {
	return &Executor{
		host:   h,
		logger: logger.With("module", "action_executor"),
	}
}

// WithTracer returns a copy of the executor that records a span per
// performed action.
func (e *Executor) WithTracer(tracer trace.Tracer) *Executor {
	clone := *e
	clone.tracer = tracer

	return &clone
}

// Perform runs one action. The returned result is never nil; side-effect
// failures are captured in Result.Err rather than returned.
func (e *Executor) Perform(ctx context.Context, action *models.Action, run *Run) *Result {
	result := &Result{ActionID: action.ID}

	logger := e.logger.With(
		"template_id", run.Template.ID,
		"user_id", run.User.ID,
		"action_id", action.ID,
		"action_type", string(action.Type),
	)

	if e.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, e.tracer, "wizard.action.perform",
			attribute.String(otelhelper.ActionIDKey, action.ID),
			attribute.String(otelhelper.ActionTypeKey, string(action.Type)),
			attribute.String(otelhelper.TemplateIDKey, run.Template.ID),
		)
		defer span.End()

		defer func() {
			if result.Err != nil {
				otelhelper.SetError(span, result.Err)
			}
		}()
	}

	var err error

	switch action.Type {
	case models.ActionOpenComposer:
		err = e.openComposer(action, run, result)
	case models.ActionCreateTopic:
		err = e.createTopic(ctx, action, run, result)
	case models.ActionCreateCategory:
		err = e.createCategory(ctx, action, run, result)
	case models.ActionCreateGroup:
		err = e.createGroup(ctx, action, run, result)
	case models.ActionAddToGroup:
		err = e.addToGroup(ctx, action, run, result)
	case models.ActionSendMessage:
		err = e.sendMessage(ctx, action, run, result)
	case models.ActionUpdateProfile:
		err = e.updateProfile(ctx, action, run, result)
	case models.ActionRouteTo:
		err = e.routeTo(action, run, result)
	default:
		err = fmt.Errorf("unknown action type %q", action.Type)
	}

	if err != nil {
		result.Success = false
		result.Err = err
		logger.Warn("Action failed", "error", err)

		return result
	}

	if result.Skipped {
		logger.Debug("Action skipped")

		return result
	}

	result.Success = true
	logger.Info("Action completed")

	return result
}
