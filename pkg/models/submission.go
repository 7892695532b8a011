package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Submission is the persisted record of one user's progress through one
// wizard: accumulated field values, action outputs, and the current step
// pointer. Keyed per (template, user); never shared across users.
type Submission struct {
	ID         string `json:"id"`
	TemplateID string `json:"template_id"`
	UserID     string `json:"user_id"`

	Fields map[string]any `json:"fields"`

	// Order records which key was written when, oldest first. Lookup goes
	// through Fields; Order exists so interpolation provenance survives
	// serialization.
	Order []string `json:"order"`

	CurrentStepID string    `json:"current_step_id"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewSubmission returns an empty submission for the given template and user.
func NewSubmission(id, templateID, userID string) *Submission {
	return &Submission{
		ID:         id,
		TemplateID: templateID,
		UserID:     userID,
		Fields:     make(map[string]any),
		Order:      make([]string, 0),
	}
}

// SetField writes a value under key, overwriting any prior value. First
// writes append the key to the order log.
func (s *Submission) SetField(key string, value any) {
	if s.Fields == nil {
		s.Fields = make(map[string]any)
	}

	if _, exists := s.Fields[key]; !exists {
		s.Order = append(s.Order, key)
	}

	s.Fields[key] = value
}

// Field returns the value recorded under key.
func (s *Submission) Field(key string) (any, bool) {
	value, ok := s.Fields[key]

	return value, ok
}

// StringFields flattens every recorded value to its string form for
// interpolation. Structured values are rendered as compact JSON.
func (s *Submission) StringFields() map[string]string {
	out := make(map[string]string, len(s.Fields))

	for key, value := range s.Fields {
		out[key] = stringifyValue(value)
	}

	return out
}

func stringifyValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		// JSON numbers decode as float64; render integral values without
		// the trailing ".0" so entity ids interpolate cleanly.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}

		return fmt.Sprintf("%v", v)
	case int, int64, bool:
		return fmt.Sprintf("%v", v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}

		return string(encoded)
	}
}
