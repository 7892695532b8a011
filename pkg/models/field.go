package models

// FieldType enumerates the supported field kinds.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeNumber   FieldType = "number"
	FieldTypeCategory FieldType = "category"
	FieldTypeGroup    FieldType = "group"
	FieldTypeUpload   FieldType = "upload"
	FieldTypeTagList  FieldType = "tag_list"
	FieldTypeCheckbox FieldType = "checkbox"
)

// Field is one input within a step.
type Field struct {
	ID       string    `json:"id"             yaml:"id"             validate:"required"`
	Type     FieldType `json:"type"           yaml:"type"           validate:"required,oneof=text textarea number category group upload tag_list checkbox"`
	Label    string    `json:"label"          yaml:"label"`
	Required bool      `json:"required"       yaml:"required"`

	// Default is a template string evaluated against the user and
	// submission context when the submission holds no value yet.
	Default string `json:"default,omitempty" yaml:"default,omitempty"`

	// Condition hides the field when it evaluates false. Hidden fields are
	// never validated, required or not.
	Condition *Condition `json:"condition,omitempty" yaml:"condition,omitempty"`
}
