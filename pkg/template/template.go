// Package template substitutes user attributes and submission values into
// wizard strings: action titles and bodies, redirect URLs, banner text.
package template

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/guidekit/guidekit/pkg/models"
)

// Context carries the values a template string can reference, scoped as
// `{{.user.attr}}` and `{{.fields.key}}`. Both scopes are flat string maps,
// so an unknown token renders as the empty string instead of failing.
type Context struct {
	User   map[string]string
	Fields map[string]string
}

// NewContext assembles an interpolation context from the acting user and
// the current submission.
func NewContext(user *models.User, submission *models.Submission) *Context {
	ctx := &Context{
		User:   make(map[string]string),
		Fields: make(map[string]string),
	}

	if user != nil {
		ctx.User = user.Attributes()
	}

	if submission != nil {
		ctx.Fields = submission.StringFields()
	}

	return ctx
}

var funcMap = template.FuncMap{
	"lower":     strings.ToLower,
	"upper":     strings.ToUpper,
	"contains":  strings.Contains,
	"hasPrefix": strings.HasPrefix,
	"hasSuffix": strings.HasSuffix,
	"replace":   strings.ReplaceAll,
	"join":      strings.Join,
	"split":     strings.Split,
}

// Interpolate renders the template string against ctx. Values are raw:
// any encoding (URL query, JSON) is the consumer's job and is applied once,
// after interpolation.
func Interpolate(templateStr string, ctx *Context) (string, error) {
	if !strings.Contains(templateStr, "{{") {
		return templateStr, nil
	}

	tmpl, err := template.
		New("wizard").
		Funcs(funcMap).
		Option("missingkey=zero").
		Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %q: %w", templateStr, err)
	}

	data := map[string]map[string]string{
		"user":   ctx.User,
		"fields": ctx.Fields,
	}

	var buf strings.Builder

	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template %q: %w", templateStr, err)
	}

	return buf.String(), nil
}

// InterpolateAll renders every element of values against ctx.
func InterpolateAll(values []string, ctx *Context) ([]string, error) {
	out := make([]string, 0, len(values))

	for _, value := range values {
		rendered, err := Interpolate(value, ctx)
		if err != nil {
			return nil, err
		}

		out = append(out, rendered)
	}

	return out, nil
}
