package orchestration

import (
	"time"

	"github.com/google/uuid"

	"github.com/phillipou/blossomer-cli-sub000/internal/models"
)

// buildRun aggregates finalized case results into the run artifact. All
// three stat blocks count test cases: a case passes the deterministic block
// only when every configured check passed, and the judge block only counts
// cases that were eligible for judging at all.
func (r *EvalRunner) buildRun(results []models.TestCaseResult, start time.Time) *models.EvaluationRun {
	total := len(results)
	casesPassed := 0
	detPassed := 0
	eligible := 0
	llmPassed := 0

	for _, res := range results {
		if res.OverallPass {
			casesPassed++
		}
		if res.Deterministic.OverallPass {
			detPassed++
		}
		if res.Eligible() {
			eligible++
			if res.LLM.OverallPass {
				llmPassed++
			}
		}
	}

	return &models.EvaluationRun{
		RunID:          uuid.NewString(),
		PromptName:     r.cfg.Name,
		Timestamp:      start.UTC(),
		EvaluationTime: time.Since(start).Seconds(),
		TestCases: models.TestCaseStats{
			Total:    total,
			Passed:   casesPassed,
			Failed:   total - casesPassed,
			PassRate: models.PassRate(casesPassed, total),
		},
		Deterministic: models.DeterministicStats{
			Passed:   detPassed,
			Total:    total,
			PassRate: models.PassRate(detPassed, total),
		},
		LLMJudges: models.JudgeStats{
			Passed:   llmPassed,
			Eligible: eligible,
			PassRate: models.PassRate(llmPassed, eligible),
		},
		Usage: models.UsageStats{
			JudgeCalls:       r.judgeCalls.Load(),
			PromptTokens:     r.promptTokens.Load(),
			CompletionTokens: r.completionTokens.Load(),
		},
		DetailedResults: results,
	}
}

func countPassed(results []models.CheckResult) int {
	n := 0
	for _, res := range results {
		if res.Pass {
			n++
		}
	}
	return n
}
