// Package scaffold provides the file templates `eval create` writes when
// setting up a new prompt eval.
package scaffold

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidateName rejects empty names, path-traversal characters, and anything
// that would not survive as a prompt directory name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("prompt name must not be empty")
	}
	if strings.Contains(name, "/") || strings.Contains(name, "\\") || filepath.Clean(name) == ".." {
		return fmt.Errorf("prompt name %q contains invalid path characters", name)
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("prompt name %q must be lowercase letters, digits, hyphens or underscores", name)
	}
	return nil
}

// TitleCase converts a snake_case or kebab-case name to Title Case.
func TitleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// ConfigYAML returns a default config.yaml for a new prompt eval.
func ConfigYAML(name, module, function, model, fallback string) string {
	return fmt.Sprintf(`name: %s
service:
  module: %s
  function: %s
schema: %s.json
judges:
  deterministic:
    - json_validity
    - name: schema_compliance
      options:
        populated_threshold: 0.9
  llm:
    - content_integrity
    - context_handling
models:
  default: %s
  fallback: %s
`, name, module, function, name, model, fallback)
}

// SchemaJSON returns a starter output schema. The properties are
// illustrative; edit them to match what the service actually returns.
func SchemaJSON(name string) string {
	return fmt.Sprintf(`{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "%s output",
  "type": "object",
  "required": ["subject", "body"],
  "properties": {
    "subject": {
      "type": "string"
    },
    "body": {
      "type": "string"
    }
  }
}
`, TitleCase(name))
}

// SampleDataCSV returns a small starter dataset. The expected_output column
// feeds the offline testing.echo service; real services ignore it.
func SampleDataCSV() string {
	return `id,input_website_url,user_inputted_context,expected_company_name,account_profile_name,persona_profile_name,hypothesis,expected_output
case-1,https://www.lumenlytics.com,Series A analytics startup moving upmarket,Lumenlytics,Mid-market SaaS analytics teams,Head of Data Platform,They are outgrowing spreadsheet-based reporting,"{""subject"": ""Scaling past spreadsheets"", ""body"": ""Hi there, noticed Lumenlytics is growing fast.""}"
case-2,https://www.harborstack.io,Developer tools company after a big launch,HarborStack,Platform engineering orgs at 200+ seat companies,VP of Engineering,Deploy frequency is outpacing their review process,"{""subject"": ""Keeping launches boring"", ""body"": ""Hi there, congrats on the launch week.""}"
case-3,https://www.fernweh.travel,Boutique travel brand expanding into corporate retreats,Fernweh,Ops leaders planning offsites,Head of People Operations,Retreat logistics are eating their ops bandwidth,"{""subject"": ""Offsites without the spreadsheet maze"", ""body"": ""Hi there, planning retreats should not be a second job.""}"
`
}
