package checks

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/phillipou/blossomer-cli-sub000/internal/models"
)

// FormatOptions tunes the format_compliance check.
type FormatOptions struct {
	SubjectField    string `mapstructure:"subject_field"`
	BodyField       string `mapstructure:"body_field"`
	MaxSubjectWords int    `mapstructure:"max_subject_words"`
	MinBodyWords    int    `mapstructure:"min_body_words"`
	MaxBodyWords    int    `mapstructure:"max_body_words"`
}

type formatComplianceCheck struct {
	opts FormatOptions
}

func newFormatComplianceCheck(opts FormatOptions) formatComplianceCheck {
	if opts.SubjectField == "" {
		opts.SubjectField = "subject"
	}
	if opts.BodyField == "" {
		opts.BodyField = "body"
	}
	if opts.MaxSubjectWords == 0 {
		opts.MaxSubjectWords = 12
	}
	if opts.MinBodyWords == 0 {
		opts.MinBodyWords = 10
	}
	if opts.MaxBodyWords == 0 {
		opts.MaxBodyWords = 300
	}
	return formatComplianceCheck{opts: opts}
}

func (formatComplianceCheck) ID() models.CheckID { return models.CheckFormatCompliance }

func (formatComplianceCheck) Structural() bool { return false }

func (formatComplianceCheck) Description() string {
	return "Subject and body follow basic formatting rules"
}

// boilerplateKeys are scaffold labels that must not open a body line. Their
// presence means the model emitted message framing instead of message text.
var boilerplateKeys = regexp.MustCompile(`(?im)^\s*(subject|to|from|cc|bcc|name|company|title|date|re|body|email|recipient|sender)\s*:`)

func (c formatComplianceCheck) Run(in *Input) models.CheckResult {
	res := models.CheckResult{
		CheckName:       string(c.ID()),
		Description:     c.Description(),
		InputsEvaluated: []models.FieldValue{},
	}

	obj, err := in.Object()
	if err != nil {
		res.Pass = false
		res.Rationale = fmt.Sprintf("Cannot evaluate formatting: %s", err)
		return res
	}

	subject := stringField(obj, c.opts.SubjectField)
	body := stringField(obj, c.opts.BodyField)
	res.InputsEvaluated = append(res.InputsEvaluated,
		models.FieldValue{Field: c.opts.SubjectField, Value: subject},
		models.FieldValue{Field: c.opts.BodyField, Value: body},
	)

	var failures []string

	subjectWords := len(strings.Fields(subject))
	switch {
	case subjectWords == 0:
		failures = append(failures, fmt.Sprintf("field %q is empty", c.opts.SubjectField))
	case subjectWords > c.opts.MaxSubjectWords:
		failures = append(failures, fmt.Sprintf("subject has %d words, maximum is %d", subjectWords, c.opts.MaxSubjectWords))
	}
	if subject != "" {
		first := []rune(strings.TrimSpace(subject))[0]
		if unicode.IsLetter(first) && !unicode.IsUpper(first) {
			failures = append(failures, "subject does not start with a capital letter")
		}
		if isShouting(subject) {
			failures = append(failures, "subject is written in all caps")
		}
	}

	bodyWords := len(strings.Fields(body))
	switch {
	case bodyWords < c.opts.MinBodyWords:
		failures = append(failures, fmt.Sprintf("body has %d words, minimum is %d", bodyWords, c.opts.MinBodyWords))
	case bodyWords > c.opts.MaxBodyWords:
		failures = append(failures, fmt.Sprintf("body has %d words, maximum is %d", bodyWords, c.opts.MaxBodyWords))
	}
	if match := boilerplateKeys.FindString(body); match != "" {
		failures = append(failures, fmt.Sprintf("body contains boilerplate label %q", strings.TrimSpace(match)))
	}

	if len(failures) > 0 {
		res.Pass = false
		res.Rationale = strings.Join(failures, "; ")
		return res
	}

	res.Pass = true
	res.Rationale = fmt.Sprintf("Subject (%d words) and body (%d words) are within format limits", subjectWords, bodyWords)
	return res
}

// isShouting reports whether text longer than one word is entirely upper case.
func isShouting(text string) bool {
	if len(strings.Fields(text)) < 2 {
		return false
	}
	hasLetter := false
	for _, r := range text {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

// CardinalityOptions tunes the field_cardinality check. When Field is empty
// every top-level array field declared by the schema is examined.
type CardinalityOptions struct {
	Field string `mapstructure:"field"`
	Min   int    `mapstructure:"min"`
	Max   int    `mapstructure:"max"`
}

type fieldCardinalityCheck struct {
	opts CardinalityOptions
}

func newFieldCardinalityCheck(opts CardinalityOptions) fieldCardinalityCheck {
	if opts.Min == 0 {
		opts.Min = 1
	}
	if opts.Max == 0 {
		opts.Max = 10
	}
	return fieldCardinalityCheck{opts: opts}
}

func (fieldCardinalityCheck) ID() models.CheckID { return models.CheckFieldCardinality }

func (fieldCardinalityCheck) Structural() bool { return false }

func (fieldCardinalityCheck) Description() string {
	return "Array fields carry the expected number of elements"
}

func (c fieldCardinalityCheck) Run(in *Input) models.CheckResult {
	res := models.CheckResult{
		CheckName:       string(c.ID()),
		Description:     c.Description(),
		InputsEvaluated: []models.FieldValue{},
	}

	obj, err := in.Object()
	if err != nil {
		res.Pass = false
		res.Rationale = fmt.Sprintf("Cannot evaluate cardinality: %s", err)
		return res
	}

	targets := []string{c.opts.Field}
	if c.opts.Field == "" {
		if in.Schema == nil {
			res.Pass = true
			res.Rationale = "No array fields declared; nothing to count"
			return res
		}
		targets = in.Schema.ArrayProperties()
	}
	if len(targets) == 0 {
		res.Pass = true
		res.Rationale = "No array fields declared; nothing to count"
		return res
	}

	var failures []string
	counted := 0
	for _, name := range targets {
		value, present := obj[name]
		res.InputsEvaluated = append(res.InputsEvaluated, models.FieldValue{
			Field: name,
			Value: stringifyValue(value),
		})
		if !present {
			failures = append(failures, fmt.Sprintf("field %q is missing", name))
			continue
		}
		arr, ok := value.([]any)
		if !ok {
			failures = append(failures, fmt.Sprintf("field %q is not an array", name))
			continue
		}
		if len(arr) < c.opts.Min || len(arr) > c.opts.Max {
			failures = append(failures, fmt.Sprintf(
				"field %q has %d elements, expected between %d and %d", name, len(arr), c.opts.Min, c.opts.Max))
			continue
		}
		counted++
	}

	if len(failures) > 0 {
		res.Pass = false
		res.Rationale = strings.Join(failures, "; ")
		return res
	}

	res.Pass = true
	res.Rationale = fmt.Sprintf("All %d array fields are within [%d, %d] elements", counted, c.opts.Min, c.opts.Max)
	return res
}

// IdentityOptions tunes the identity_consistency check.
type IdentityOptions struct {
	// SenderField names the test case column holding the sending company.
	SenderField string `mapstructure:"sender_field"`
	BodyField   string `mapstructure:"body_field"`
}

type identityConsistencyCheck struct {
	opts IdentityOptions
}

func newIdentityConsistencyCheck(opts IdentityOptions) identityConsistencyCheck {
	if opts.SenderField == "" {
		opts.SenderField = "sender_company"
	}
	if opts.BodyField == "" {
		opts.BodyField = "body"
	}
	return identityConsistencyCheck{opts: opts}
}

func (identityConsistencyCheck) ID() models.CheckID { return models.CheckIdentityConsistency }

func (identityConsistencyCheck) Structural() bool { return false }

func (identityConsistencyCheck) Description() string {
	return "Output contains no unrendered placeholders and does not address the sender"
}

var (
	templatePlaceholder = regexp.MustCompile(`\{\{[^}]*\}\}`)
	bracketPlaceholder  = regexp.MustCompile(`(?i)\[(?:your|insert|company|recipient|contact|name|placeholder|first|last)[^\]\n]{0,38}\]`)
	stalePlaceholder    = regexp.MustCompile(`(?i)\b(?:TODO|TBD|FIXME|lorem ipsum|XXXX+)\b`)
	greetingLine        = regexp.MustCompile(`(?i)^(hi|hello|hey|dear)\b`)
)

func (c identityConsistencyCheck) Run(in *Input) models.CheckResult {
	res := models.CheckResult{
		CheckName:       string(c.ID()),
		Description:     c.Description(),
		InputsEvaluated: []models.FieldValue{},
	}

	text := in.Output
	var body string
	if obj, err := in.Object(); err == nil {
		var parts []string
		collectStrings(obj, &parts)
		text = strings.Join(parts, "\n")
		body = stringField(obj, c.opts.BodyField)
	}
	sender := strings.TrimSpace(in.TestCase[c.opts.SenderField])
	res.InputsEvaluated = append(res.InputsEvaluated,
		models.FieldValue{Field: c.opts.BodyField, Value: body},
		models.FieldValue{Field: c.opts.SenderField, Value: sender},
	)

	var failures []string
	var leaked []string
	leaked = append(leaked, templatePlaceholder.FindAllString(text, -1)...)
	leaked = append(leaked, bracketPlaceholder.FindAllString(text, -1)...)
	leaked = append(leaked, stalePlaceholder.FindAllString(text, -1)...)
	if len(leaked) > 0 {
		failures = append(failures, fmt.Sprintf("unrendered placeholders present: %s", strings.Join(dedupe(leaked), ", ")))
	}

	if sender != "" && body != "" {
		greeting := firstNonEmptyLine(body)
		if greetingLine.MatchString(greeting) && containsFold(greeting, sender) {
			failures = append(failures, fmt.Sprintf("greeting addresses the sender company %q", sender))
		}
	}

	if len(failures) > 0 {
		res.Pass = false
		res.Rationale = strings.Join(failures, "; ")
		return res
	}

	res.Pass = true
	res.Rationale = "No placeholders found and the greeting does not address the sender"
	return res
}

func stringField(obj map[string]any, name string) string {
	s, _ := obj[name].(string)
	return s
}

func collectStrings(value any, out *[]string) {
	switch v := value.(type) {
	case string:
		*out = append(*out, v)
	case []any:
		for _, item := range v {
			collectStrings(item, out)
		}
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			collectStrings(v[k], out)
		}
	}
}

func firstNonEmptyLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
