// Package judge evaluates generated output qualitatively. Each category is
// one LLM call that scores a fixed set of named checks; failures of any kind
// collapse into a single failing result instead of aborting the test case.
package judge

import (
	"github.com/phillipou/blossomer-cli-sub000/internal/dataset"
	"github.com/phillipou/blossomer-cli-sub000/internal/models"
)

// promisedChecks maps each category to the check names its judge must score.
// The judge response is rejected unless every one of them is present.
var promisedChecks = map[models.JudgeCategory][]string{
	models.CategoryContentIntegrity: {
		"factual_grounding",
		"no_fabricated_details",
		"internally_consistent",
	},
	models.CategoryBusinessInsight: {
		"insight_specificity",
		"business_relevance",
	},
	models.CategoryAccountTargetingQuality: {
		"firmographic_fit",
		"signal_relevance",
	},
	models.CategoryPersonaTargetingQuality: {
		"role_alignment",
		"pain_point_relevance",
	},
	models.CategoryContextHandling: {
		"context_usage",
		"hypothesis_grounding",
	},
}

var checkDescriptions = map[string]string{
	"factual_grounding":     "Claims about the company are grounded in the provided inputs",
	"no_fabricated_details": "No invented names, metrics, or events appear in the output",
	"internally_consistent": "The output does not contradict itself",
	"insight_specificity":   "The business insight is specific to the target, not generic",
	"business_relevance":    "The insight matters commercially to the target account",
	"firmographic_fit":      "The targeted account matches the stated firmographic profile",
	"signal_relevance":      "Referenced buying signals apply to this account",
	"role_alignment":        "The message speaks to the persona's role and seniority",
	"pain_point_relevance":  "Referenced pain points match the persona's responsibilities",
	"context_usage":         "User-provided context is reflected in the output",
	"hypothesis_grounding":  "The output builds on the stated hypothesis rather than ignoring it",
}

// contextFields whitelists the test case columns each category's judge may
// see. Columns outside the whitelist never reach a prompt.
var contextFields = map[models.JudgeCategory][]string{
	models.CategoryContentIntegrity:        {"input_website_url", "user_inputted_context", "expected_company_name"},
	models.CategoryBusinessInsight:         {"input_website_url", "user_inputted_context"},
	models.CategoryAccountTargetingQuality: {"account_profile_name", "user_inputted_context"},
	models.CategoryPersonaTargetingQuality: {"persona_profile_name", "user_inputted_context"},
	models.CategoryContextHandling:         {"user_inputted_context", "hypothesis"},
}

// PromisedChecks returns the check names a category's judge must score.
func PromisedChecks(cat models.JudgeCategory) []string {
	checks := promisedChecks[cat]
	out := make([]string, len(checks))
	copy(out, checks)
	return out
}

// CheckDescription returns the human-readable summary for a judge check name.
func CheckDescription(name string) string {
	return checkDescriptions[name]
}

// ContextFields returns the whitelisted test case columns for a category.
func ContextFields(cat models.JudgeCategory) []string {
	fields := contextFields[cat]
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}

// whitelistedContext copies only the whitelisted columns out of a test case.
// Absent columns render as empty strings so templates stay total.
func whitelistedContext(cat models.JudgeCategory, tc dataset.Row) map[string]string {
	fields := contextFields[cat]
	out := make(map[string]string, len(fields))
	for _, name := range fields {
		out[name] = tc[name]
	}
	return out
}
