package models

// Step is one page of a wizard: an ordered set of fields plus a visibility
// condition. A step with a false condition is dropped from the build, and
// its fields are never validated.
type Step struct {
	ID     string   `json:"id"              yaml:"id"              validate:"required"`
	Title  string   `json:"title,omitempty" yaml:"title,omitempty"`
	Fields []*Field `json:"fields"          yaml:"fields"          validate:"dive"`

	Condition *Condition `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// FieldByID returns the field definition with the given id.
func (s *Step) FieldByID(id string) (*Field, bool) {
	for _, field := range s.Fields {
		if field.ID == id {
			return field, true
		}
	}

	return nil, false
}
