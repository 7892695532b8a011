package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guidekit/guidekit/pkg/host"
)

const flowTemplate = `{
	"id": "onboarding",
	"name": "Onboarding Wizard",
	"steps": [
		{
			"id": "step_1",
			"fields": [
				{"id": "step_1_field_1", "type": "text", "label": "Topic title", "required": true}
			]
		},
		{
			"id": "step_2",
			"fields": [
				{"id": "step_2_field_1", "type": "category", "label": "Category"}
			]
		},
		{
			"id": "step_3",
			"fields": [
				{"id": "step_3_field_1", "type": "textarea", "label": "Topic body"}
			]
		}
	],
	"actions": [
		{
			"id": "action_1",
			"type": "create_topic",
			"run_after": "step_3",
			"create_topic": {
				"title": "{{.fields.step_1_field_1}}",
				"body": "{{.fields.step_3_field_1}}",
				"category": "{{.fields.step_2_field_1}}"
			}
		}
	]
}`

func TestUpdater_FullFlow(t *testing.T) {
	h := newTestHarness(t, flowTemplate)
	ctx := context.Background()

	w, err := h.builder.Build(ctx, "onboarding", testUser(2))
	require.NoError(t, err)

	result, err := w.CreateUpdater("step_1", map[string]any{
		"step_1_field_1": "My Topic",
	}).Update(ctx)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "step_2", result.NextStepID)
	assert.False(t, result.Done)

	result, err = w.CreateUpdater("step_2", map[string]any{
		"step_2_field_1": "7",
	}).Update(ctx)
	require.NoError(t, err)
	assert.Equal(t, "step_3", result.NextStepID)

	result, err = w.CreateUpdater("step_3", map[string]any{
		"step_3_field_1": "Some body text",
	}).Update(ctx)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.Done)
	assert.Empty(t, result.NextStepID)
	assert.Empty(t, result.ActionFailures)

	// The final step's action sees every earlier answer.
	require.Len(t, h.host.Topics, 1)
	topic := h.host.Topics[0]
	assert.Equal(t, "My Topic", topic.Spec.Title)
	assert.Equal(t, "Some body text", topic.Spec.Body)
	assert.Equal(t, "7", topic.Spec.CategoryID)

	// The topic id is recorded under the action key.
	assert.Equal(t, topic.Ref.ID, result.Fields["action_1"])

	// The persisted submission carries the merged values and the step
	// pointer.
	stored, err := h.persistence.Submissions().Get(ctx, "onboarding", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "My Topic", stored.Fields["step_1_field_1"])
	assert.Equal(t, topic.Ref.ID, stored.Fields["action_1"])
	assert.Empty(t, stored.CurrentStepID)
}

func TestUpdater_InvalidStep(t *testing.T) {
	h := newTestHarness(t, flowTemplate)
	ctx := context.Background()

	w, err := h.builder.Build(ctx, "onboarding", testUser(2))
	require.NoError(t, err)

	_, err = w.CreateUpdater("step_99", map[string]any{}).Update(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidStep)
}

func TestUpdater_HiddenStepIsInvalid(t *testing.T) {
	h := newTestHarness(t, basicTemplate)
	ctx := context.Background()

	// Trust level 1 hides step_2, so updating it is rejected outright.
	w, err := h.builder.Build(ctx, "welcome", testUser(1))
	require.NoError(t, err)

	_, err = w.CreateUpdater("step_2", map[string]any{
		"step_2_field_1": "7",
	}).Update(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidStep)
}

func TestUpdater_MissingRequiredFieldIsSilentSuccess(t *testing.T) {
	h := newTestHarness(t, flowTemplate)
	ctx := context.Background()

	w, err := h.builder.Build(ctx, "onboarding", testUser(2))
	require.NoError(t, err)

	result, err := w.CreateUpdater("step_1", map[string]any{
		"step_1_field_1": "   ",
	}).Update(ctx)
	require.NoError(t, err)

	// The caller sees success, nothing is written, and the omission is
	// recorded in the audit history.
	assert.True(t, result.Success)
	assert.True(t, result.Skipped)
	assert.Empty(t, result.ActionFailures)

	_, ok := w.Submission.Field("step_1_field_1")
	assert.False(t, ok)

	require.Len(t, h.host.Entries, 1)
	entry := h.host.Entries[0]
	assert.Equal(t, "user-1", entry.ActorID)
	assert.Equal(t, "onboarding", entry.Context)
	assert.Equal(t, "step_1", entry.Subject)
	assert.Equal(t, host.HistoryActionStepSkipped, entry.Action)

	// The persisted submission is untouched.
	stored, err := h.persistence.Submissions().Get(ctx, "onboarding", "user-1")
	require.NoError(t, err)
	assert.Empty(t, stored.Fields)
	assert.Equal(t, "step_1", stored.CurrentStepID)
}

func TestUpdater_MalformedTypedInput(t *testing.T) {
	h := newTestHarness(t, flowTemplate)
	ctx := context.Background()

	w, err := h.builder.Build(ctx, "onboarding", testUser(2))
	require.NoError(t, err)

	_, err = w.CreateUpdater("step_2", map[string]any{
		"step_2_field_1": "not-a-number",
	}).Update(ctx)
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "step_2_field_1", validationErr.FieldID)
}

func TestUpdater_ConditionalAction(t *testing.T) {
	doc := `{
		"id": "conditional",
		"name": "Conditional Wizard",
		"steps": [
			{
				"id": "step_1",
				"fields": [
					{"id": "step_1_field_1", "type": "text", "label": "Answer"}
				]
			}
		],
		"actions": [
			{
				"id": "action_1",
				"type": "create_topic",
				"run_after": "step_1",
				"condition": "fields.step_1_field_1 == \"yes\"",
				"create_topic": {"title": "Agreed", "body": "body"}
			}
		]
	}`
	h := newTestHarness(t, doc)
	ctx := context.Background()

	w, err := h.builder.Build(ctx, "conditional", testUser(2))
	require.NoError(t, err)

	result, err := w.CreateUpdater("step_1", map[string]any{
		"step_1_field_1": "no",
	}).Update(ctx)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, h.host.Topics)

	result, err = w.CreateUpdater("step_1", map[string]any{
		"step_1_field_1": "yes",
	}).Update(ctx)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, h.host.Topics, 1)
}

func TestUpdater_ActionFailureDoesNotFailUpdate(t *testing.T) {
	doc := `{
		"id": "fragile",
		"name": "Fragile Wizard",
		"steps": [
			{
				"id": "step_1",
				"fields": [
					{"id": "step_1_field_1", "type": "text", "label": "Optional title"}
				]
			}
		],
		"actions": [
			{
				"id": "action_1",
				"type": "create_topic",
				"run_after": "step_1",
				"create_topic": {"title": "{{.fields.step_1_field_1}}", "body": "body"}
			},
			{
				"id": "action_2",
				"type": "send_message",
				"run_after": "step_1",
				"send_message": {"title": "Heads up", "body": "body", "targets": ["moderators"]}
			}
		]
	}`
	h := newTestHarness(t, doc)
	h.host.RejectBlankTitles = true
	ctx := context.Background()

	w, err := h.builder.Build(ctx, "fragile", testUser(2))
	require.NoError(t, err)

	// The optional field is left empty, so create_topic interpolates a
	// blank title and the host rejects it.
	result, err := w.CreateUpdater("step_1", map[string]any{}).Update(ctx)
	require.NoError(t, err)

	assert.True(t, result.Success)
	require.Len(t, result.ActionFailures, 1)
	assert.Equal(t, "action_1", result.ActionFailures[0].ActionID)
	assert.Empty(t, h.host.Topics)

	// The sibling action still ran.
	assert.Len(t, h.host.Messages, 1)
}

func TestUpdater_RouteToShortCircuits(t *testing.T) {
	doc := `{
		"id": "routed",
		"name": "Routed Wizard",
		"steps": [{"id": "step_1"}],
		"actions": [
			{
				"id": "action_1",
				"type": "route_to",
				"run_after": "step_1",
				"route_to": {"url": "/t/support/42"}
			},
			{
				"id": "action_2",
				"type": "create_topic",
				"run_after": "step_1",
				"create_topic": {"title": "Never created", "body": "body"}
			}
		]
	}`
	h := newTestHarness(t, doc)
	ctx := context.Background()

	w, err := h.builder.Build(ctx, "routed", testUser(2))
	require.NoError(t, err)

	result, err := w.CreateUpdater("step_1", map[string]any{}).Update(ctx)
	require.NoError(t, err)

	assert.Equal(t, "/t/support/42", result.RedirectOnNext)
	assert.Empty(t, h.host.Topics)
}

func TestUpdater_ComposerRedirectLetsSiblingsRun(t *testing.T) {
	doc := `{
		"id": "composed",
		"name": "Composer Wizard",
		"steps": [
			{
				"id": "step_1",
				"fields": [
					{"id": "step_1_field_1", "type": "text", "label": "Title"}
				]
			}
		],
		"actions": [
			{
				"id": "action_1",
				"type": "open_composer",
				"run_after": "step_1",
				"composer": {"title": "{{.fields.step_1_field_1}}"}
			},
			{
				"id": "action_2",
				"type": "route_to",
				"run_after": "step_1",
				"route_to": {"url": "/never-first"}
			}
		]
	}`
	h := newTestHarness(t, doc)
	ctx := context.Background()

	w, err := h.builder.Build(ctx, "composed", testUser(2))
	require.NoError(t, err)

	result, err := w.CreateUpdater("step_1", map[string]any{
		"step_1_field_1": "Draft title",
	}).Update(ctx)
	require.NoError(t, err)

	// Both actions ran; the composer redirect came first and wins.
	assert.Contains(t, result.RedirectOnNext, "/new-topic?")
	assert.Contains(t, result.Fields, "action_1")
}

func TestUpdater_NextStepSkipsHiddenSteps(t *testing.T) {
	doc := `{
		"id": "branching",
		"name": "Branching Wizard",
		"steps": [
			{
				"id": "step_1",
				"fields": [
					{"id": "step_1_field_1", "type": "text", "label": "Answer"}
				]
			},
			{
				"id": "step_2",
				"condition": "fields.step_1_field_1 == \"detail\"",
				"fields": [
					{"id": "step_2_field_1", "type": "textarea", "label": "Details"}
				]
			},
			{"id": "step_3"}
		]
	}`
	h := newTestHarness(t, doc)
	ctx := context.Background()

	w, err := h.builder.Build(ctx, "branching", testUser(2))
	require.NoError(t, err)

	result, err := w.CreateUpdater("step_1", map[string]any{
		"step_1_field_1": "skip it",
	}).Update(ctx)
	require.NoError(t, err)
	assert.Equal(t, "step_3", result.NextStepID)

	// Answering the branching value re-opens the hidden step.
	result, err = w.CreateUpdater("step_1", map[string]any{
		"step_1_field_1": "detail",
	}).Update(ctx)
	require.NoError(t, err)
	assert.Equal(t, "step_2", result.NextStepID)
}

func TestUpdater_CheckboxAndTagListCoercion(t *testing.T) {
	doc := `{
		"id": "typed",
		"name": "Typed Wizard",
		"steps": [
			{
				"id": "step_1",
				"fields": [
					{"id": "step_1_field_1", "type": "checkbox", "label": "Agree"},
					{"id": "step_1_field_2", "type": "tag_list", "label": "Tags"}
				]
			}
		]
	}`
	h := newTestHarness(t, doc)
	ctx := context.Background()

	w, err := h.builder.Build(ctx, "typed", testUser(2))
	require.NoError(t, err)

	_, err = w.CreateUpdater("step_1", map[string]any{
		"step_1_field_1": "true",
		"step_1_field_2": []any{"go", "wizard"},
	}).Update(ctx)
	require.NoError(t, err)

	agree, _ := w.Submission.Field("step_1_field_1")
	assert.Equal(t, true, agree)

	tags, _ := w.Submission.Field("step_1_field_2")
	assert.Equal(t, []string{"go", "wizard"}, tags)
}
