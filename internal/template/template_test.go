package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    string
		ctx     *Context
		want    string
		wantErr bool
	}{
		{
			name: "prompt name",
			tmpl: "Evaluating {{.PromptName}}",
			ctx:  &Context{PromptName: "email_generation"},
			want: "Evaluating email_generation",
		},
		{
			name: "category",
			tmpl: "Judge: {{.Category}}",
			ctx:  &Context{Category: "content_integrity"},
			want: "Judge: content_integrity",
		},
		{
			name: "generated output",
			tmpl: "Output under evaluation:\n{{.Output}}",
			ctx:  &Context{Output: `{"subject": "Cut Alert Noise Fast"}`},
			want: "Output under evaluation:\n{\"subject\": \"Cut Alert Noise Fast\"}",
		},
		{
			name: "whitelisted fields",
			tmpl: "Hypothesis: {{.Fields.hypothesis}} ({{.Fields.context_type}})",
			ctx: &Context{
				Fields: map[string]string{
					"hypothesis":   "devops teams drown in alerts",
					"context_type": "valid",
				},
			},
			want: "Hypothesis: devops teams drown in alerts (valid)",
		},
		{
			name: "no templates passthrough",
			tmpl: "plain string with no templates",
			ctx:  &Context{PromptName: "ignored"},
			want: "plain string with no templates",
		},
		{
			name: "empty string input",
			tmpl: "",
			ctx:  &Context{},
			want: "",
		},
		{
			name:    "field outside the whitelist",
			tmpl:    "{{.Fields.expected_company_name}}",
			ctx:     &Context{Fields: map[string]string{"hypothesis": "x"}},
			wantErr: true,
		},
		{
			name:    "nil Fields map with field access",
			tmpl:    "{{.Fields.key}}",
			ctx:     &Context{},
			wantErr: true,
		},
		{
			name:    "unknown context member",
			tmpl:    "{{.NoSuchField}}",
			ctx:     &Context{},
			wantErr: true,
		},
		{
			name: "conditional on category",
			tmpl: `{{if eq .Category "context_handling"}}context{{else}}other{{end}}`,
			ctx:  &Context{Category: "context_handling"},
			want: "context",
		},
		{
			name:    "invalid template syntax",
			tmpl:    "bad {{.Unclosed",
			ctx:     &Context{},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Render(tc.tmpl, tc.ctx)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
