package reporting

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phillipou/blossomer-cli-sub000/internal/models"
)

func TestInterpretPassRate(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "All test cases passed (100%)"},
		{0.85, "Most test cases passed (85%)"},
		{0.5, "About half the test cases passed (50%)"},
		{0.2, "Few test cases passed (20%)"},
		{0.0, "Few test cases passed (0%)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, InterpretPassRate(tt.rate))
	}
}

func TestSummaryLines(t *testing.T) {
	run := newTestRun()
	lines := SummaryLines(run)

	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Few test cases passed (33%)")
	assert.Contains(t, lines[1], "About half the test cases passed")
	assert.Contains(t, lines[2], "2 eligible of 3 test cases")
}

func TestSummaryLines_NoEligibleCases(t *testing.T) {
	run := newTestRun()
	run.LLMJudges = models.JudgeStats{}

	lines := SummaryLines(run)
	assert.Contains(t, lines[2], "no test cases were eligible")
}

func TestSummaryLines_EmptyRun(t *testing.T) {
	run := &models.EvaluationRun{PromptName: "email_generation"}

	lines := SummaryLines(run)
	require.Len(t, lines, 3)
	assert.Contains(t, lines[2], "no test cases were evaluated")

	joined := strings.Join(lines, "\n")
	assert.NotContains(t, joined, "NaN")
}

func TestRatingDistribution(t *testing.T) {
	dist := RatingDistribution(newTestRun())

	require.Len(t, dist, 1)
	assert.Equal(t, models.CategoryContextHandling, dist[0].Category)
	assert.Equal(t, 1, dist[0].Counts.Impressive)
	assert.Equal(t, 2, dist[0].Counts.Sufficient)
	assert.Equal(t, 1, dist[0].Counts.Poor)
	assert.Equal(t, 4, dist[0].Counts.Total())
}

func TestRatingDistribution_SkipsUnratedChecks(t *testing.T) {
	run := &models.EvaluationRun{
		DetailedResults: []models.TestCaseResult{{
			LLM: models.LLMResults{
				Status: models.LLMErrored,
				Judges: []models.JudgeCategoryResult{{
					Category: models.CategoryBusinessInsight,
					// Synthetic failure results have no rating.
					Checks: []models.CheckResult{{CheckName: "business_insight", Pass: false, Rationale: "Judge evaluation failed: timeout"}},
				}},
			},
		}},
	}

	dist := RatingDistribution(run)
	require.Len(t, dist, 1)
	assert.Equal(t, 0, dist[0].Counts.Total())
}
