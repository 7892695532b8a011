// Package models defines the core domain models for template-driven wizards.
package models

import (
	"encoding/json"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ConditionEnv is the fixed schema conditions are compiled against. The
// compiler rejects references to anything outside this schema, so a typo in
// a template surfaces at load time instead of mid-wizard.
type ConditionEnv struct {
	User   ConditionUser  `expr:"user"`
	Fields map[string]any `expr:"fields"`
}

// ConditionUser enumerates the user attributes visible to conditions.
// Custom profile fields are exposed as a string map; an absent key
// evaluates to the empty string.
type ConditionUser struct {
	ID           string            `expr:"id"`
	Name         string            `expr:"name"`
	Username     string            `expr:"username"`
	Email        string            `expr:"email"`
	TrustLevel   int               `expr:"trust_level"`
	CustomFields map[string]string `expr:"custom_fields"`
}

// Condition is a boolean visibility or run expression, e.g.
// `user.trust_level >= 2 && fields.step_1_field_1 != nil`. The zero
// Condition (empty expression) always evaluates true.
type Condition struct {
	Expression string

	program *vm.Program
}

// Compile type-checks the expression against the condition schema. Must be
// called at template load; Evaluate returns an error for an uncompiled
// non-empty condition.
func (c *Condition) Compile() error {
	if c == nil || c.Expression == "" {
		return nil
	}

	program, err := expr.Compile(c.Expression, expr.Env(ConditionEnv{}), expr.AsBool())
	if err != nil {
		return fmt.Errorf("compile condition %q: %w", c.Expression, err)
	}

	c.program = program

	return nil
}

// Evaluate runs the compiled expression against the given environment.
func (c *Condition) Evaluate(env ConditionEnv) (bool, error) {
	if c == nil || c.Expression == "" {
		return true, nil
	}

	if c.program == nil {
		return false, fmt.Errorf("condition %q was not compiled", c.Expression)
	}

	output, err := expr.Run(c.program, env)
	if err != nil {
		return false, fmt.Errorf("eval condition %q: %w", c.Expression, err)
	}

	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("condition %q did not return bool (got %T)", c.Expression, output)
	}

	return result, nil
}

// NewConditionEnv assembles the evaluation environment from the acting user
// and the current submission values.
func NewConditionEnv(user *User, submission *Submission) ConditionEnv {
	env := ConditionEnv{
		Fields: make(map[string]any),
	}

	if user != nil {
		env.User = ConditionUser{
			ID:           user.ID,
			Name:         user.Name,
			Username:     user.Username,
			Email:        user.Email,
			TrustLevel:   user.TrustLevel,
			CustomFields: make(map[string]string, len(user.CustomFields)),
		}
		for k, v := range user.CustomFields {
			env.User.CustomFields[k] = v
		}
	}

	if submission != nil {
		for k, v := range submission.Fields {
			env.Fields[k] = v
		}
	}

	return env
}

// MarshalJSON/UnmarshalJSON treat a condition as its bare expression string
// in template documents.

func (c Condition) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Expression)
}

func (c *Condition) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &c.Expression)
}

func (c Condition) MarshalYAML() (any, error) {
	return c.Expression, nil
}

func (c *Condition) UnmarshalYAML(unmarshal func(any) error) error {
	return unmarshal(&c.Expression)
}
