package judge

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/phillipou/blossomer-cli-sub000/internal/models"
)

// ResponseFormatError means the judge reply was not the promised JSON shape:
// not an object, a malformed check entry, or an out-of-enum rating.
type ResponseFormatError struct {
	Reason string
	Raw    string
}

func (e *ResponseFormatError) Error() string {
	return fmt.Sprintf("%s; raw response: %s", e.Reason, truncate(e.Raw, 200))
}

// MissingChecksError means the reply was a well-formed object but did not
// score every promised check.
type MissingChecksError struct {
	Category models.JudgeCategory
	Missing  []string
}

func (e *MissingChecksError) Error() string {
	return fmt.Sprintf("response for %s is missing promised checks: %s",
		e.Category, strings.Join(e.Missing, ", "))
}

// verdict is one scored check inside a judge response.
type verdict struct {
	Pass      *bool  `json:"pass"`
	Rating    string `json:"rating"`
	Rationale string `json:"rationale"`
}

// parseResponse decodes a judge reply strictly. Every promised check must be
// present, carry an explicit pass verdict, and use a known rating. Markdown
// code fences around the JSON are tolerated; nothing else is.
func parseResponse(cat models.JudgeCategory, raw string) (map[string]verdict, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var entries map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &entries); err != nil {
		return nil, &ResponseFormatError{
			Reason: fmt.Sprintf("response is not a JSON object: %v", err),
			Raw:    raw,
		}
	}
	if entries == nil {
		return nil, &ResponseFormatError{Reason: "response is JSON null, not an object", Raw: raw}
	}

	var missing []string
	for _, name := range promisedChecks[cat] {
		if _, ok := entries[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingChecksError{Category: cat, Missing: missing}
	}

	verdicts := make(map[string]verdict, len(entries))
	for _, name := range promisedChecks[cat] {
		var v verdict
		if err := json.Unmarshal(entries[name], &v); err != nil {
			return nil, &ResponseFormatError{
				Reason: fmt.Sprintf("check %q is malformed: %v", name, err),
				Raw:    raw,
			}
		}
		if v.Pass == nil {
			return nil, &ResponseFormatError{
				Reason: fmt.Sprintf("check %q has no pass verdict", name),
				Raw:    raw,
			}
		}
		if !models.ValidRating(v.Rating) {
			return nil, &ResponseFormatError{
				Reason: fmt.Sprintf("check %q has unknown rating %q", name, v.Rating),
				Raw:    raw,
			}
		}
		verdicts[name] = v
	}

	return verdicts, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
