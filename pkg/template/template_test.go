package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guidekit/guidekit/pkg/models"
)

func testContext() *Context {
	user := &models.User{
		ID:         "user-1",
		Name:       "Angus McLeod",
		Username:   "angus",
		Email:      "angus@example.com",
		TrustLevel: 2,
	}

	submission := models.NewSubmission("sub-1", "welcome", "user-1")
	submission.SetField("step_1_field_1", "Hello World")
	submission.SetField("action_1", float64(99))

	return NewContext(user, submission)
}

func TestInterpolate_UserAndFieldScopes(t *testing.T) {
	tests := []struct {
		template string
		want     string
	}{
		{"plain text, no tokens", "plain text, no tokens"},
		{"{{.user.username}}", "angus"},
		{"Welcome, {{.user.name}}!", "Welcome, Angus McLeod!"},
		{"trust: {{.user.trust_level}}", "trust: 2"},
		{"{{.fields.step_1_field_1}}", "Hello World"},
		{"topic {{.fields.action_1}}", "topic 99"},
		{"{{.user.username}} said {{.fields.step_1_field_1}}", "angus said Hello World"},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			got, err := Interpolate(tt.template, testContext())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInterpolate_UnknownTokensRenderEmpty(t *testing.T) {
	got, err := Interpolate("[{{.user.no_such_attr}}][{{.fields.no_such_key}}]", testContext())
	require.NoError(t, err)
	assert.Equal(t, "[][]", got)
}

func TestInterpolate_Functions(t *testing.T) {
	got, err := Interpolate("{{lower .user.name}}", testContext())
	require.NoError(t, err)
	assert.Equal(t, "angus mcleod", got)

	got, err = Interpolate(`{{replace .fields.step_1_field_1 " " "-"}}`, testContext())
	require.NoError(t, err)
	assert.Equal(t, "Hello-World", got)
}

func TestInterpolate_ValuesStayRaw(t *testing.T) {
	submission := models.NewSubmission("sub-1", "welcome", "user-1")
	submission.SetField("title", "Budgets & Savings: $100 isn't much")

	ctx := NewContext(&models.User{ID: "user-1", Username: "angus"}, submission)

	got, err := Interpolate("{{.fields.title}}", ctx)
	require.NoError(t, err)
	assert.Equal(t, "Budgets & Savings: $100 isn't much", got)
}

func TestInterpolate_MalformedTemplateErrors(t *testing.T) {
	_, err := Interpolate("{{.fields.unclosed", testContext())
	assert.Error(t, err)
}

func TestInterpolateAll(t *testing.T) {
	got, err := InterpolateAll([]string{"{{.user.username}}", "literal"}, testContext())
	require.NoError(t, err)
	assert.Equal(t, []string{"angus", "literal"}, got)
}
