package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// TemplateFormat selects the document encoding for ParseTemplate.
type TemplateFormat string

const (
	FormatJSON TemplateFormat = "json"
	FormatYAML TemplateFormat = "yaml"
)

var ErrMissingActionParams = errors.New("action parameter block missing for declared type")

var validate = validator.New(validator.WithRequiredStructEnabled())

// templateSchema is the JSON-schema check applied to raw template documents
// before unmarshaling. It catches structural mistakes (wrong collection
// shapes, missing ids) with positional error messages.
var templateSchema = map[string]any{
	"type":     "object",
	"required": []any{"id", "name", "steps"},
	"properties": map[string]any{
		"id":   map[string]any{"type": "string", "minLength": 1},
		"name": map[string]any{"type": "string", "minLength": 3},
		"steps": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []any{"id"},
				"properties": map[string]any{
					"id":     map[string]any{"type": "string", "minLength": 1},
					"fields": map[string]any{"type": "array"},
				},
			},
		},
		"actions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"id", "type", "run_after"},
			},
		},
		"min_trust_level":       map[string]any{"type": "integer", "minimum": 0},
		"allowed_groups":        map[string]any{"type": "array"},
		"requires_subscription": map[string]any{"type": "boolean"},
	},
}

// ParseTemplate decodes, schema-checks, validates, and compiles a template
// document. Every load path goes through here so condition typos and
// malformed action declarations are rejected before a template is ever
// built.
func ParseTemplate(data []byte, format TemplateFormat) (*Template, error) {
	jsonData := data

	if format == FormatYAML {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML template: %w", err)
		}

		converted, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to convert YAML template: %w", err)
		}

		jsonData = converted
	}

	if err := validateTemplateSchema(jsonData); err != nil {
		return nil, err
	}

	var template Template
	if err := json.Unmarshal(jsonData, &template); err != nil {
		return nil, fmt.Errorf("failed to parse template document: %w", err)
	}

	if err := validate.Struct(&template); err != nil {
		return nil, fmt.Errorf("template %s is invalid: %w", template.ID, err)
	}

	for _, action := range template.Actions {
		if err := validateActionParams(action); err != nil {
			return nil, fmt.Errorf("template %s: %w", template.ID, err)
		}
	}

	if err := template.CompileConditions(); err != nil {
		return nil, fmt.Errorf("template %s: %w", template.ID, err)
	}

	return &template, nil
}

func validateTemplateSchema(jsonData []byte) error {
	schemaLoader := gojsonschema.NewGoLoader(templateSchema)
	documentLoader := gojsonschema.NewBytesLoader(jsonData)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("template schema validation failed: %w", err)
	}

	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, resultError := range result.Errors() {
			messages = append(messages, resultError.String())
		}

		return fmt.Errorf("template document is invalid: %s", strings.Join(messages, "; "))
	}

	return nil
}

// validateActionParams checks that the parameter block matching the declared
// action type is present and itself valid.
func validateActionParams(action *Action) error {
	var params any

	switch action.Type {
	case ActionOpenComposer:
		if action.Composer != nil {
			params = action.Composer
		}
	case ActionCreateTopic:
		if action.CreateTopic != nil {
			params = action.CreateTopic
		}
	case ActionCreateCategory:
		if action.CreateCategory != nil {
			params = action.CreateCategory
		}
	case ActionCreateGroup:
		if action.CreateGroup != nil {
			params = action.CreateGroup
		}
	case ActionAddToGroup:
		if action.AddToGroup != nil {
			params = action.AddToGroup
		}
	case ActionSendMessage:
		if action.SendMessage != nil {
			params = action.SendMessage
		}
	case ActionUpdateProfile:
		if action.UpdateProfile != nil {
			params = action.UpdateProfile
		}
	case ActionRouteTo:
		if action.RouteTo != nil {
			params = action.RouteTo
		}
	}

	if params == nil {
		return fmt.Errorf("%w: action %s declares type %s", ErrMissingActionParams, action.ID, action.Type)
	}

	if err := validate.Struct(params); err != nil {
		return fmt.Errorf("action %s has invalid %s parameters: %w", action.ID, action.Type, err)
	}

	return nil
}
