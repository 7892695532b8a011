package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmission_SetField_OrderTracksFirstWrite(t *testing.T) {
	submission := NewSubmission("sub-1", "welcome", "user-1")

	submission.SetField("step_1_field_1", "first")
	submission.SetField("step_1_field_2", "second")
	submission.SetField("step_1_field_1", "overwritten")

	assert.Equal(t, []string{"step_1_field_1", "step_1_field_2"}, submission.Order)

	value, ok := submission.Field("step_1_field_1")
	require.True(t, ok)
	assert.Equal(t, "overwritten", value)
}

func TestSubmission_StringFields(t *testing.T) {
	submission := NewSubmission("sub-1", "welcome", "user-1")
	submission.SetField("text", "hello")
	submission.SetField("category", float64(42))
	submission.SetField("score", 2.5)
	submission.SetField("agreed", true)
	submission.SetField("upload", map[string]any{"id": float64(7), "url": "/files/7"})
	submission.SetField("empty", nil)

	fields := submission.StringFields()

	assert.Equal(t, "hello", fields["text"])
	// Integral JSON numbers render without a trailing ".0" so entity ids
	// interpolate cleanly into URLs and references.
	assert.Equal(t, "42", fields["category"])
	assert.Equal(t, "2.5", fields["score"])
	assert.Equal(t, "true", fields["agreed"])
	assert.JSONEq(t, `{"id": 7, "url": "/files/7"}`, fields["upload"])
	assert.Equal(t, "", fields["empty"])
}

func TestUser_Attributes_CustomFieldsNeverShadowBuiltins(t *testing.T) {
	user := &User{
		ID:         "user-1",
		Name:       "Angus",
		Username:   "angus",
		TrustLevel: 3,
		CustomFields: map[string]string{
			"shirt_size": "XL",
			"username":   "impostor",
		},
	}

	attrs := user.Attributes()

	assert.Equal(t, "angus", attrs["username"])
	assert.Equal(t, "XL", attrs["shirt_size"])
	assert.Equal(t, "3", attrs["trust_level"])
}
