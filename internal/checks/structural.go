package checks

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/phillipou/blossomer-cli-sub000/internal/models"
)

type jsonValidityCheck struct{}

func (jsonValidityCheck) ID() models.CheckID { return models.CheckJSONValidity }

func (jsonValidityCheck) Structural() bool { return true }
func (jsonValidityCheck) Description() string {
	return "Generated output parses as a single JSON object"
}

func (c jsonValidityCheck) Run(in *Input) models.CheckResult {
	res := models.CheckResult{
		CheckName:   string(c.ID()),
		Description: c.Description(),
		InputsEvaluated: []models.FieldValue{
			{Field: "generated_output", Value: in.Output},
		},
	}

	if _, err := in.Object(); err != nil {
		res.Pass = false
		res.Rationale = fmt.Sprintf("Output is not a valid JSON object: %s", err)
		return res
	}

	res.Pass = true
	res.Rationale = "Output parses as a single JSON object"
	return res
}

// SchemaComplianceOptions tunes the schema_compliance check.
type SchemaComplianceOptions struct {
	// PopulatedThreshold is the minimum fraction of top-level schema fields
	// that must carry a non-empty value. Defaults to 0.9.
	PopulatedThreshold float64 `mapstructure:"populated_threshold"`
}

type schemaComplianceCheck struct {
	threshold float64
}

func newSchemaComplianceCheck(opts SchemaComplianceOptions) schemaComplianceCheck {
	threshold := opts.PopulatedThreshold
	if threshold == 0 {
		threshold = 0.9
	}
	return schemaComplianceCheck{threshold: threshold}
}

func (schemaComplianceCheck) ID() models.CheckID { return models.CheckSchemaCompliance }

func (schemaComplianceCheck) Structural() bool { return true }
func (schemaComplianceCheck) Description() string {
	return "Output conforms to the declared schema with most fields populated"
}

func (c schemaComplianceCheck) Run(in *Input) models.CheckResult {
	res := models.CheckResult{
		CheckName:       string(c.ID()),
		Description:     c.Description(),
		InputsEvaluated: []models.FieldValue{},
	}

	obj, err := in.Object()
	if err != nil {
		res.Pass = false
		res.Rationale = fmt.Sprintf("Cannot evaluate schema compliance: %s", err)
		return res
	}
	if in.Schema == nil {
		res.Pass = false
		res.Rationale = "No output schema available for this prompt"
		return res
	}

	var failures []string
	if err := in.Schema.Compiled.Validate(in.parsedAny); err != nil {
		failures = append(failures, fmt.Sprintf("schema validation failed: %v", err))
	}

	fields := in.Schema.Properties()
	populated := 0
	var missing []string
	for _, name := range fields {
		value, present := obj[name]
		res.InputsEvaluated = append(res.InputsEvaluated, models.FieldValue{
			Field: name,
			Value: stringifyValue(value),
		})
		if present && isPopulated(value) {
			populated++
		} else {
			missing = append(missing, name)
		}
	}

	if len(fields) > 0 {
		ratio := float64(populated) / float64(len(fields))
		if ratio < c.threshold {
			failures = append(failures, fmt.Sprintf(
				"only %d of %d schema fields populated (%.0f%%, need %.0f%%): missing %s",
				populated, len(fields), ratio*100, c.threshold*100, strings.Join(missing, ", ")))
		}
	}

	if len(failures) > 0 {
		res.Pass = false
		res.Rationale = strings.Join(failures, "; ")
		return res
	}

	res.Pass = true
	res.Rationale = fmt.Sprintf("Output is schema-valid with %d of %d fields populated", populated, len(fields))
	return res
}

// isPopulated reports whether a decoded JSON value carries content. Numbers
// and booleans always count; strings, arrays, and objects must be non-empty.
func isPopulated(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

// stringifyValue renders a decoded JSON value as the literal text recorded
// in check results. Strings pass through unquoted.
func stringifyValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
