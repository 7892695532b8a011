// Package wizard compiles templates into user-facing wizards and advances
// them step by step.
package wizard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/guidekit/guidekit/pkg/actions"
	"github.com/guidekit/guidekit/pkg/host"
	"github.com/guidekit/guidekit/pkg/models"
	"github.com/guidekit/guidekit/pkg/otelhelper"
	"github.com/guidekit/guidekit/pkg/persistence"
	"github.com/guidekit/guidekit/pkg/template"
)

// Builder turns a template plus an acting user into a Wizard: the
// permission-gated, visibility-filtered view of the template against the
// user's current submission.
type Builder struct {
	persistence persistence.Persistence
	host        *host.Host
	executor    *actions.Executor
	logger      *slog.Logger
	tracer      trace.Tracer
}

func NewBuilder(p persistence.Persistence, h *host.Host, logger *slog.Logger) *Builder {
	return &Builder{
		persistence: p,
		host:        h,
		executor:    actions.NewExecutor(h, logger),
		logger:      logger.With("module", "wizard_builder"),
	}
}

// WithTracer returns a copy of the builder that records spans for builds
// and updates.
func (b *Builder) WithTracer(tracer trace.Tracer) *Builder {
	clone := *b
	clone.tracer = tracer
	clone.executor = clone.executor.WithTracer(tracer)

	return &clone
}

// Build loads the template, checks the user against its gate, loads or
// creates the submission, and assembles the visible steps. Safe to call
// repeatedly; the only write is submission creation on first build.
func (b *Builder) Build(ctx context.Context, templateID string, user *models.User) (*Wizard, error) {
	if b.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, b.tracer, "wizard.build",
			attribute.String(otelhelper.TemplateIDKey, templateID),
			attribute.String(otelhelper.UserIDKey, user.ID),
		)
		defer span.End()
	}

	logger := b.logger.With("template_id", templateID, "user_id", user.ID)

	tmpl, err := b.persistence.Templates().GetByID(ctx, templateID)
	if err != nil {
		if persistence.IsTemplateNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, templateID)
		}

		return nil, fmt.Errorf("failed to load template %s: %w", templateID, err)
	}

	// The gate runs before any submission exists; a denied user leaves no
	// trace.
	if err := b.checkPermission(ctx, tmpl, user); err != nil {
		logger.Info("Build denied", "error", err)

		return nil, err
	}

	submission, err := b.loadOrCreateSubmission(ctx, tmpl, user)
	if err != nil {
		return nil, err
	}

	steps, err := b.buildSteps(tmpl, user, submission)
	if err != nil {
		return nil, err
	}

	logger.Debug("Built wizard", "visible_steps", len(steps))

	return &Wizard{
		Template:   tmpl,
		User:       user,
		Submission: submission,
		Steps:      steps,
		builder:    b,
	}, nil
}

func (b *Builder) checkPermission(ctx context.Context, tmpl *models.Template, user *models.User) error {
	// A subscription-gated template is closed while the feature is off,
	// regardless of who asks.
	if tmpl.RequiresSubscription && !b.host.Permissions.SubscriptionEnabled(ctx) {
		return fmt.Errorf("%w: template %s requires an active subscription", ErrPermissionDenied, tmpl.ID)
	}

	if user.TrustLevel < tmpl.MinTrustLevel {
		return fmt.Errorf("%w: template %s requires trust level %d", ErrPermissionDenied, tmpl.ID, tmpl.MinTrustLevel)
	}

	if len(tmpl.AllowedGroups) > 0 {
		member := false

		for _, group := range tmpl.AllowedGroups {
			ok, err := b.host.Permissions.IsGroupMember(ctx, user.ID, group)
			if err != nil {
				return fmt.Errorf("failed to check membership of %s: %w", group, err)
			}

			if ok {
				member = true

				break
			}
		}

		if !member {
			return fmt.Errorf("%w: template %s is restricted to specific groups", ErrPermissionDenied, tmpl.ID)
		}
	}

	return nil
}

func (b *Builder) loadOrCreateSubmission(ctx context.Context, tmpl *models.Template, user *models.User) (*models.Submission, error) {
	submissions := b.persistence.Submissions()

	submission, err := submissions.Get(ctx, tmpl.ID, user.ID)
	if err == nil {
		return submission, nil
	}

	if !persistence.IsSubmissionNotFound(err) {
		return nil, fmt.Errorf("failed to load submission: %w", err)
	}

	submission = models.NewSubmission(uuid.New().String(), tmpl.ID, user.ID)
	if len(tmpl.Steps) > 0 {
		submission.CurrentStepID = tmpl.Steps[0].ID
	}

	if err := submissions.Save(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	return submission, nil
}

// buildSteps evaluates visibility conditions in step order and resolves
// each visible field's value and rendered title.
func (b *Builder) buildSteps(tmpl *models.Template, user *models.User, submission *models.Submission) ([]*BuiltStep, error) {
	env := models.NewConditionEnv(user, submission)
	ipCtx := template.NewContext(user, submission)

	steps := make([]*BuiltStep, 0, len(tmpl.Steps))

	for _, step := range tmpl.Steps {
		visible, err := step.Condition.Evaluate(env)
		if err != nil {
			return nil, fmt.Errorf("step %s: %w", step.ID, err)
		}

		if !visible {
			continue
		}

		title, err := template.Interpolate(step.Title, ipCtx)
		if err != nil {
			return nil, fmt.Errorf("step %s: %w", step.ID, err)
		}

		built := &BuiltStep{
			ID:    step.ID,
			Title: title,
			step:  step,
		}

		for _, field := range step.Fields {
			fieldVisible, err := field.Condition.Evaluate(env)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", field.ID, err)
			}

			if !fieldVisible {
				continue
			}

			value, err := b.resolveFieldValue(field, submission, ipCtx)
			if err != nil {
				return nil, err
			}

			built.Fields = append(built.Fields, &BuiltField{
				ID:       field.ID,
				Type:     field.Type,
				Label:    field.Label,
				Required: field.Required,
				Value:    value,
			})
		}

		steps = append(steps, built)
	}

	return steps, nil
}

// resolveFieldValue prefers the submission's recorded value and falls back
// to the field's default expression.
func (b *Builder) resolveFieldValue(field *models.Field, submission *models.Submission, ipCtx *template.Context) (any, error) {
	if value, ok := submission.Field(field.ID); ok {
		return value, nil
	}

	if field.Default == "" {
		return nil, nil
	}

	value, err := template.Interpolate(field.Default, ipCtx)
	if err != nil {
		return nil, fmt.Errorf("field %s default: %w", field.ID, err)
	}

	return value, nil
}
