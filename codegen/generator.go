// Package codegen renders test plans into test source code. A plan is first
// flattened into StepContext values and then executed against the template
// of a named output kind.
package codegen

import (
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"go.rxlab.dev/toolbox/testkit"
)

// ErrUnknownKind is wrapped in a TemplateError when a plan is generated for
// an output kind that was never registered.
var ErrUnknownKind = errors.New("unknown output kind")

// TemplateError is returned for any failure to resolve, parse or execute the
// template of an output kind. It signals a programming or configuration
// error, so callers should report it rather than retry.
type TemplateError struct {
	Kind string
	Err  error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("output kind %q: %s", e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *TemplateError) Unwrap() error {
	return e.Err
}

// PlanContext is the plan metadata available to templates as .Plan.
type PlanContext struct {
	ID        string
	Name      string
	CreatedAt string
	StepCount int
}

// Document is the value every output kind template is executed with.
type Document struct {
	Plan  PlanContext
	Steps []StepContext
}

// NewDocument flattens plan into the template input.
func NewDocument(plan testkit.Plan) Document {
	return Document{
		Plan: PlanContext{
			ID:        plan.ID.String(),
			Name:      plan.Name,
			CreatedAt: plan.CreatedAt.UTC().Format(time.RFC3339),
			StepCount: plan.Len(),
		},
		Steps: FlattenPlan(plan),
	}
}

// OutputKind is a named template producing one kind of test source.
type OutputKind struct {
	Name        string
	Extension   string
	Description string

	tmpl *template.Template
}

// NewOutputKind parses source as the template of a new output kind.
func NewOutputKind(name, extension, description, source string) (*OutputKind, error) {
	if name == "" {
		return nil, errors.New("output kind name must not be empty")
	}
	if strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("output kind name %q cannot contain path separators", name)
	}
	tmpl, err := template.New(name).Funcs(funcMap()).Option("missingkey=error").Parse(source)
	if err != nil {
		return nil, &TemplateError{Kind: name, Err: err}
	}
	return &OutputKind{
		Name:        name,
		Extension:   strings.TrimPrefix(extension, "."),
		Description: description,
		tmpl:        tmpl,
	}, nil
}

// Render generates the source for plan. The output only depends on plan, so
// rendering the same plan twice gives byte-identical text.
func (k *OutputKind) Render(plan testkit.Plan) (string, error) {
	var buf strings.Builder
	if err := k.tmpl.Execute(&buf, NewDocument(plan)); err != nil {
		return "", &TemplateError{Kind: k.Name, Err: err}
	}
	return buf.String(), nil
}

// SuggestedFileName derives the file name for plan rendered as kind: the
// lower-cased plan name with spaces replaced by underscores, plus the
// extension of the kind.
func SuggestedFileName(planName string, kind *OutputKind) string {
	name := strings.ReplaceAll(strings.ToLower(planName), " ", "_")
	if kind.Extension == "" {
		return name
	}
	return name + "." + kind.Extension
}
