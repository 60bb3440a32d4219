// Package checks implements the deterministic validators that run before,
// and gate, the LLM judge stage. Checks are pure: they never call a model
// and never error out of a test case.
package checks

import (
	"encoding/json"
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/phillipou/blossomer-cli-sub000/internal/dataset"
	"github.com/phillipou/blossomer-cli-sub000/internal/models"
)

// Input carries everything a deterministic check may examine for one test case.
type Input struct {
	// Output is the raw generated text under evaluation.
	Output string

	// TestCase is the dataset row that produced the output.
	TestCase dataset.Row

	// Schema is the declared output schema for the prompt.
	Schema *Schema

	parsed    map[string]any
	parsedAny any
	parseErr  error
}

// NewInput decodes the output once so every check shares the same parse.
func NewInput(output string, tc dataset.Row, schema *Schema) *Input {
	in := &Input{Output: output, TestCase: tc, Schema: schema}
	var value any
	if err := json.Unmarshal([]byte(output), &value); err != nil {
		in.parseErr = err
		return in
	}
	in.parsedAny = value
	obj, ok := value.(map[string]any)
	if !ok {
		in.parseErr = fmt.Errorf("output is JSON but not an object (got %T)", value)
		return in
	}
	in.parsed = obj
	return in
}

// Object returns the decoded output object, or nil with the parse error.
func (in *Input) Object() (map[string]any, error) {
	return in.parsed, in.parseErr
}

// Check is a single deterministic validator bound to a registry id.
type Check interface {
	ID() models.CheckID
	Description() string

	// Structural reports whether a failure of this check invalidates the
	// output's basic shape. A structural failure short-circuits every
	// remaining check and skips the judge stage entirely.
	Structural() bool

	Run(in *Input) models.CheckResult
}

// New builds the configured checks. Execution order is canonical registry
// order (structural checks first) regardless of how the config lists them:
// later checks assume the invariants earlier ones established.
func New(selections []models.CheckSelection) ([]Check, error) {
	byID := make(map[models.CheckID]models.CheckSelection, len(selections))
	for _, sel := range selections {
		byID[sel.Name] = sel
	}

	var list []Check
	for _, id := range models.KnownCheckIDs() {
		sel, ok := byID[id]
		if !ok {
			continue
		}
		c, err := create(sel)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, nil
}

func create(sel models.CheckSelection) (Check, error) {
	switch sel.Name {
	case models.CheckJSONValidity:
		return jsonValidityCheck{}, nil
	case models.CheckSchemaCompliance:
		var opts SchemaComplianceOptions
		if err := mapstructure.Decode(sel.Options, &opts); err != nil {
			return nil, fmt.Errorf("checks: %s options: %w", sel.Name, err)
		}
		return newSchemaComplianceCheck(opts), nil
	case models.CheckFormatCompliance:
		var opts FormatOptions
		if err := mapstructure.Decode(sel.Options, &opts); err != nil {
			return nil, fmt.Errorf("checks: %s options: %w", sel.Name, err)
		}
		return newFormatComplianceCheck(opts), nil
	case models.CheckFieldCardinality:
		var opts CardinalityOptions
		if err := mapstructure.Decode(sel.Options, &opts); err != nil {
			return nil, fmt.Errorf("checks: %s options: %w", sel.Name, err)
		}
		return newFieldCardinalityCheck(opts), nil
	case models.CheckIdentityConsistency:
		var opts IdentityOptions
		if err := mapstructure.Decode(sel.Options, &opts); err != nil {
			return nil, fmt.Errorf("checks: %s options: %w", sel.Name, err)
		}
		return newIdentityConsistencyCheck(opts), nil
	default:
		return nil, fmt.Errorf("checks: %q is not a registered check", sel.Name)
	}
}

// Run executes checks in order. After a structural failure the remaining
// checks report pass=false without examining the output; the caller must
// then skip the judge stage for this test case.
//
// A check that cannot execute still yields a failing result; the returned
// errors record those incidents without aborting the test case.
func Run(list []Check, in *Input) ([]models.CheckResult, []error) {
	results := make([]models.CheckResult, 0, len(list))
	var errs []error
	gateFailed := false

	for _, c := range list {
		if gateFailed {
			results = append(results, models.CheckResult{
				CheckName:       string(c.ID()),
				Description:     c.Description(),
				InputsEvaluated: []models.FieldValue{},
				Pass:            false,
				Rationale:       "Not applicable: a structural check failed before this check ran",
			})
			continue
		}

		res, err := runOne(c, in)
		if err != nil {
			errs = append(errs, err)
		}
		results = append(results, res)
		if c.Structural() && !res.Pass {
			gateFailed = true
		}
	}

	return results, errs
}

// runOne recovers a panicking check into a failing result so one broken
// validator cannot take down the whole run.
func runOne(c Check, in *Input) (res models.CheckResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &models.DeterministicCheckError{Check: string(c.ID()), Err: fmt.Errorf("panic: %v", r)}
			res = models.CheckResult{
				CheckName:       string(c.ID()),
				Description:     c.Description(),
				InputsEvaluated: []models.FieldValue{},
				Pass:            false,
				Rationale:       fmt.Sprintf("Check execution failed: %v", r),
			}
		}
	}()
	return c.Run(in), nil
}
