package template

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Context holds the only values a prompt template may reference. Judge
// templates see the generated output plus the whitelisted test-case fields
// for their category; nothing else from the test case can leak in.
type Context struct {
	PromptName string
	Category   string

	// Output is the generated artifact under evaluation.
	Output string

	// Fields carries the whitelisted test-case columns (from CSV).
	Fields map[string]string
}

// Render resolves template expressions in the given string.
// Uses Go's text/template syntax: {{.Output}}, {{.Fields.hypothesis}}.
// Unknown keys are render errors, not silent blanks. Returns the input
// unchanged if it contains no template delimiters.
func Render(tmpl string, ctx *Context) (string, error) {
	// Fast path: no template delimiters means no work to do.
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	t, err := template.New("").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("template: parse: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("template: render: %w", err)
	}

	return buf.String(), nil
}
