package models

import "time"

// CaseState tracks a test case through the evaluation pipeline. Every case
// reaches StateFinalized exactly once, including on generation or judge failure.
type CaseState string

const (
	StatePending                CaseState = "pending"
	StateGenerated              CaseState = "generated"
	StateDeterministicEvaluated CaseState = "deterministic_evaluated"
	StateEligibleForLLM         CaseState = "eligible_for_llm"
	StateSkippedLLM             CaseState = "skipped_llm"
	StateFinalized              CaseState = "finalized"
)

// LLMStatus distinguishes the three terminal shapes of a case's LLM stage:
// never attempted (failed the deterministic gate), attempted but errored,
// or completed with parsed judge results.
type LLMStatus string

const (
	LLMSkipped   LLMStatus = "skipped"
	LLMErrored   LLMStatus = "errored"
	LLMCompleted LLMStatus = "completed"
)

// Rating is the qualitative tier attached to LLM-judged checks only.
type Rating string

const (
	RatingPoor       Rating = "poor"
	RatingSufficient Rating = "sufficient"
	RatingImpressive Rating = "impressive"
)

// ValidRating reports whether s is one of the three known rating tiers.
func ValidRating(s string) bool {
	switch Rating(s) {
	case RatingPoor, RatingSufficient, RatingImpressive:
		return true
	}
	return false
}

// FieldValue records one literal input a check examined, in evaluation order.
type FieldValue struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// CheckResult is the outcome of a single check, deterministic or LLM-judged.
type CheckResult struct {
	CheckName       string       `json:"check_name"`
	Description     string       `json:"description"`
	InputsEvaluated []FieldValue `json:"inputs_evaluated"`
	Pass            bool         `json:"pass"`
	// Rating is set only on LLM-sourced checks.
	Rating    Rating `json:"rating,omitempty"`
	Rationale string `json:"rationale"`
}

// JudgeCategoryResult groups the named checks returned by one judge call.
type JudgeCategoryResult struct {
	Category JudgeCategory `json:"category"`
	Checks   []CheckResult `json:"checks"`
	Pass     bool          `json:"pass"`
}

// ComputePass sets Pass to the AND of all member checks.
func (j *JudgeCategoryResult) ComputePass() {
	j.Pass = AllPassed(j.Checks)
}

// AllPassed reports whether every check in the slice passed.
// An empty slice passes vacuously.
func AllPassed(checks []CheckResult) bool {
	for _, c := range checks {
		if !c.Pass {
			return false
		}
	}
	return true
}

// DeterministicResults is the deterministic stage of one test case.
type DeterministicResults struct {
	Checks      []CheckResult `json:"checks"`
	OverallPass bool          `json:"overall_pass"`
}

// LLMResults is the LLM-judge stage of one test case. Judges is explicitly
// empty (not nil) when Status is LLMSkipped.
type LLMResults struct {
	Status      LLMStatus             `json:"status"`
	Judges      []JudgeCategoryResult `json:"judges"`
	OverallPass bool                  `json:"overall_pass"`
}

// TestCaseResult is the finalized outcome of evaluating one test case.
type TestCaseResult struct {
	TestCaseID      string               `json:"test_case_id"`
	TestCase        map[string]string    `json:"test_case"`
	GeneratedOutput string               `json:"generated_output"`
	GenerationTime  float64              `json:"generation_time"`
	Deterministic   DeterministicResults `json:"deterministic_results"`
	LLM             LLMResults           `json:"llm_results"`
	OverallPass     bool                 `json:"overall_pass"`
	Errors          []string             `json:"errors"`
}

// Eligible reports whether the case passed its full deterministic stage and
// therefore qualified for LLM judging.
func (r *TestCaseResult) Eligible() bool {
	return r.Deterministic.OverallPass
}

// FinalizePass recomputes the case-level pass from both stages. A case whose
// judges were skipped already failed deterministically and stays failed.
func (r *TestCaseResult) FinalizePass() {
	r.OverallPass = r.Deterministic.OverallPass && r.LLM.OverallPass
}

// TestCaseStats summarizes case-level outcomes for a run.
type TestCaseStats struct {
	Total    int     `json:"total"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	PassRate float64 `json:"pass_rate"`
}

// DeterministicStats counts test cases whose deterministic stage fully
// passed, over all test cases.
type DeterministicStats struct {
	PassRate float64 `json:"pass_rate"`
	Passed   int     `json:"passed"`
	Total    int     `json:"total"`
}

// JudgeStats counts test cases whose LLM stage fully passed, over the
// eligible cases only. Eligible is a distinct count from the case total.
type JudgeStats struct {
	PassRate float64 `json:"pass_rate"`
	Passed   int     `json:"passed"`
	Eligible int     `json:"eligible"`
}

// UsageStats is the run-scoped cost counter: one increment per judge call.
type UsageStats struct {
	JudgeCalls       int64 `json:"judge_calls"`
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
}

// EvaluationRun is the complete, immutable artifact of one evaluation run.
type EvaluationRun struct {
	RunID           string             `json:"run_id"`
	PromptName      string             `json:"prompt_name"`
	Timestamp       time.Time          `json:"timestamp"`
	EvaluationTime  float64            `json:"evaluation_time"`
	TestCases       TestCaseStats      `json:"test_cases"`
	Deterministic   DeterministicStats `json:"deterministic_checks"`
	LLMJudges       JudgeStats         `json:"llm_judges"`
	Usage           UsageStats         `json:"usage"`
	DetailedResults []TestCaseResult   `json:"detailed_results"`
}

// PassRate returns passed/total, or 0.0 when total is zero. Rates are never
// an error or NaN.
func PassRate(passed, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(passed) / float64(total)
}
