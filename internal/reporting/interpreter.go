package reporting

import (
	"fmt"
	"sort"

	"github.com/phillipou/blossomer-cli-sub000/internal/models"
)

// InterpretPassRate returns a plain-language reading of a pass rate (0-1).
func InterpretPassRate(rate float64) string {
	pct := rate * 100
	switch {
	case pct >= 100:
		return fmt.Sprintf("All test cases passed (%.0f%%)", pct)
	case pct >= 80:
		return fmt.Sprintf("Most test cases passed (%.0f%%)", pct)
	case pct >= 50:
		return fmt.Sprintf("About half the test cases passed (%.0f%%)", pct)
	default:
		return fmt.Sprintf("Few test cases passed (%.0f%%)", pct)
	}
}

// SummaryLines produces the plain-language interpretation block for a run:
// one line per pipeline stage.
func SummaryLines(run *models.EvaluationRun) []string {
	lines := []string{
		fmt.Sprintf("Overall:       %s", InterpretPassRate(run.TestCases.PassRate)),
		fmt.Sprintf("Deterministic: %s", InterpretPassRate(run.Deterministic.PassRate)),
	}

	switch {
	case run.TestCases.Total == 0:
		lines = append(lines, "LLM judges:    no test cases were evaluated")
	case run.LLMJudges.Eligible == 0:
		lines = append(lines, "LLM judges:    no test cases were eligible (every case failed a deterministic check)")
	default:
		lines = append(lines, fmt.Sprintf("LLM judges:    %s among the %d eligible of %d test cases",
			InterpretPassRate(run.LLMJudges.PassRate), run.LLMJudges.Eligible, run.TestCases.Total))
	}
	return lines
}

// RatingCounts tallies judge ratings for one category across a run.
type RatingCounts struct {
	Impressive int
	Sufficient int
	Poor       int
}

// Total returns how many rated checks the category produced.
func (c RatingCounts) Total() int {
	return c.Impressive + c.Sufficient + c.Poor
}

// CategoryRatings pairs a judge category with its rating tallies.
type CategoryRatings struct {
	Category models.JudgeCategory
	Counts   RatingCounts
}

// RatingDistribution tallies LLM check ratings per category across every
// test case in a run. Synthetic failure results carry no rating and are
// not counted.
func RatingDistribution(run *models.EvaluationRun) []CategoryRatings {
	counts := map[models.JudgeCategory]*RatingCounts{}

	for _, res := range run.DetailedResults {
		for _, judge := range res.LLM.Judges {
			for _, check := range judge.Checks {
				c := counts[judge.Category]
				if c == nil {
					c = &RatingCounts{}
					counts[judge.Category] = c
				}
				switch check.Rating {
				case models.RatingImpressive:
					c.Impressive++
				case models.RatingSufficient:
					c.Sufficient++
				case models.RatingPoor:
					c.Poor++
				}
			}
		}
	}

	out := make([]CategoryRatings, 0, len(counts))
	for cat, c := range counts {
		out = append(out, CategoryRatings{Category: cat, Counts: *c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}
