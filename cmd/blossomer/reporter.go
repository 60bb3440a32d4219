package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/phillipou/blossomer-cli-sub000/internal/models"
	"github.com/phillipou/blossomer-cli-sub000/internal/reporting"
)

// formatDuration formats a duration in a consistent, human-readable way.
// This ensures stable output regardless of Go version changes.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	// Use the built-in formatting but ensure we control it
	return d.String()
}

// renderTable writes rows as display-width aligned columns. Cell padding is
// computed with runewidth so wide glyphs do not break the alignment.
func renderTable(w io.Writer, header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && runewidth.StringWidth(cell) > widths[i] {
				widths[i] = runewidth.StringWidth(cell)
			}
		}
	}

	printRow := func(cells []string) {
		var b strings.Builder
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(padRight(cell, widths[i]))
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " ")) //nolint:errcheck
	}

	printRow(header)
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = strings.Repeat("─", widths[i])
	}
	printRow(sep)
	for _, row := range rows {
		printRow(row)
	}
}

func padRight(s string, width int) string {
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}

func printRunSummary(w io.Writer, run *models.EvaluationRun) {
	fmt.Fprintln(w, "="+strings.Repeat("=", 50))
	fmt.Fprintf(w, " EVAL RESULTS: %s\n", run.PromptName)
	fmt.Fprintln(w, "="+strings.Repeat("=", 50))
	fmt.Fprintln(w)

	duration := time.Duration(run.EvaluationTime * float64(time.Second))

	fmt.Fprintf(w, "Test Cases:     %d total, %d passed, %d failed\n", run.TestCases.Total, run.TestCases.Passed, run.TestCases.Failed)
	fmt.Fprintf(w, "Pass Rate:      %.1f%%\n", run.TestCases.PassRate*100)
	fmt.Fprintf(w, "Deterministic:  %d/%d cases passed\n", run.Deterministic.Passed, run.Deterministic.Total)
	fmt.Fprintf(w, "LLM Judges:     %d/%d eligible cases passed\n", run.LLMJudges.Passed, run.LLMJudges.Eligible)
	if run.Usage.JudgeCalls > 0 {
		fmt.Fprintf(w, "Judge Calls:    %d (%d prompt / %d completion tokens)\n", run.Usage.JudgeCalls, run.Usage.PromptTokens, run.Usage.CompletionTokens)
	}
	fmt.Fprintf(w, "Duration:       %s\n", formatDuration(duration))
	fmt.Fprintln(w)

	for _, line := range reporting.SummaryLines(run) {
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)

	// Per-case breakdown
	fmt.Fprintln(w, "-"+strings.Repeat("-", 50))
	fmt.Fprintln(w, " PER-CASE BREAKDOWN")
	fmt.Fprintln(w, "-"+strings.Repeat("-", 50))
	for i := range run.DetailedResults {
		res := &run.DetailedResults[i]
		icon := "✓"
		if !res.OverallPass {
			icon = "✗"
		}
		fmt.Fprintf(w, "  %s %s  checks %s  llm %s\n", icon, res.TestCaseID, checksCell(res), llmCell(res))
	}
	fmt.Fprintln(w)

	printFailedCases(w, run)
	printRatingDistribution(w, run)
}

// printFailedCases lists every failing check and recorded error for cases
// that did not pass.
func printFailedCases(w io.Writer, run *models.EvaluationRun) {
	if run.TestCases.Failed == 0 {
		return
	}

	fmt.Fprintln(w, "Failed Cases:")
	for i := range run.DetailedResults {
		res := &run.DetailedResults[i]
		if res.OverallPass {
			continue
		}
		fmt.Fprintf(w, "  - %s\n", res.TestCaseID)

		for _, check := range res.Deterministic.Checks {
			if !check.Pass {
				fmt.Fprintf(w, "    • %s: %s\n", check.CheckName, check.Rationale)
			}
		}
		for _, judge := range res.LLM.Judges {
			for _, check := range judge.Checks {
				if check.Pass {
					continue
				}
				if check.Rating != "" {
					fmt.Fprintf(w, "    • %s/%s (%s): %s\n", judge.Category, check.CheckName, check.Rating, check.Rationale)
				} else {
					fmt.Fprintf(w, "    • %s/%s: %s\n", judge.Category, check.CheckName, check.Rationale)
				}
			}
		}
		for _, errMsg := range res.Errors {
			fmt.Fprintf(w, "    ! %s\n", errMsg)
		}
	}
	fmt.Fprintln(w)
}

func printRatingDistribution(w io.Writer, run *models.EvaluationRun) {
	dist := reporting.RatingDistribution(run)
	if len(dist) == 0 {
		return
	}

	fmt.Fprintln(w, "Rating Distribution:")
	header := []string{"CATEGORY", "IMPRESSIVE", "SUFFICIENT", "POOR"}
	rows := make([][]string, 0, len(dist))
	for _, cr := range dist {
		rows = append(rows, []string{
			string(cr.Category),
			strconv.Itoa(cr.Counts.Impressive),
			strconv.Itoa(cr.Counts.Sufficient),
			strconv.Itoa(cr.Counts.Poor),
		})
	}
	renderTable(w, header, rows)
	fmt.Fprintln(w)
}

// checksCell summarizes the deterministic stage of one case as passed/total.
func checksCell(res *models.TestCaseResult) string {
	passed := 0
	for _, c := range res.Deterministic.Checks {
		if c.Pass {
			passed++
		}
	}
	return fmt.Sprintf("%d/%d", passed, len(res.Deterministic.Checks))
}

// llmCell summarizes the LLM stage of one case: its status, or the passed
// category count when judges actually ran.
func llmCell(res *models.TestCaseResult) string {
	if res.LLM.Status != models.LLMCompleted || len(res.LLM.Judges) == 0 {
		return string(res.LLM.Status)
	}
	passed := 0
	for _, j := range res.LLM.Judges {
		if j.Pass {
			passed++
		}
	}
	return fmt.Sprintf("%d/%d", passed, len(res.LLM.Judges))
}

// FormatGitHubComment formats an evaluation run as a markdown comment for
// GitHub PRs.
func FormatGitHubComment(run *models.EvaluationRun) string {
	var b strings.Builder

	duration := time.Duration(run.EvaluationTime * float64(time.Second))

	// Header with overall status
	b.WriteString("## 🧪 Blossomer Eval Results\n\n")

	statusIcon := "✅ Passed"
	if run.TestCases.Failed > 0 {
		statusIcon = "❌ Failed"
	}

	b.WriteString(fmt.Sprintf("**Status:** %s | **Pass Rate:** %.1f%% | **Duration:** %s\n\n",
		statusIcon, run.TestCases.PassRate*100, formatDuration(duration)))

	// Summary stats
	b.WriteString(fmt.Sprintf("- **Test Cases:** %d total, %d passed, %d failed\n",
		run.TestCases.Total, run.TestCases.Passed, run.TestCases.Failed))
	b.WriteString(fmt.Sprintf("- **Deterministic:** %d/%d cases passed\n",
		run.Deterministic.Passed, run.Deterministic.Total))
	b.WriteString(fmt.Sprintf("- **LLM Judges:** %d/%d eligible cases passed\n",
		run.LLMJudges.Passed, run.LLMJudges.Eligible))
	if run.Usage.JudgeCalls > 0 {
		b.WriteString(fmt.Sprintf("- **Judge Calls:** %d (%d prompt / %d completion tokens)\n",
			run.Usage.JudgeCalls, run.Usage.PromptTokens, run.Usage.CompletionTokens))
	}
	b.WriteString("\n")

	// Per-case breakdown table
	b.WriteString("### Case Results\n\n")
	b.WriteString("| Case | Deterministic | LLM Judges | Status |\n")
	b.WriteString("|------|---------------|------------|--------|\n")

	for i := range run.DetailedResults {
		res := &run.DetailedResults[i]
		statusIcon := "✅"
		if !res.OverallPass {
			statusIcon = "❌"
		}
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			res.TestCaseID, checksCell(res), llmCell(res), statusIcon))
	}
	b.WriteString("\n")

	// Failing check details
	if run.TestCases.Failed > 0 {
		b.WriteString("### Failed Case Details\n\n")
		for i := range run.DetailedResults {
			res := &run.DetailedResults[i]
			if res.OverallPass {
				continue
			}
			b.WriteString(fmt.Sprintf("#### %s\n\n", res.TestCaseID))

			for _, check := range res.Deterministic.Checks {
				if !check.Pass {
					b.WriteString(fmt.Sprintf("- ❌ **%s**: %s\n", check.CheckName, check.Rationale))
				}
			}
			for _, judge := range res.LLM.Judges {
				for _, check := range judge.Checks {
					if check.Pass {
						continue
					}
					if check.Rating != "" {
						b.WriteString(fmt.Sprintf("- ❌ **%s/%s** (%s): %s\n", judge.Category, check.CheckName, check.Rating, check.Rationale))
					} else {
						b.WriteString(fmt.Sprintf("- ❌ **%s/%s**: %s\n", judge.Category, check.CheckName, check.Rationale))
					}
				}
			}
			for _, errMsg := range res.Errors {
				b.WriteString(fmt.Sprintf("- ⚠️ %s\n", errMsg))
			}
			b.WriteString("\n")
		}
	}

	// Footer with metadata
	b.WriteString("---\n\n")
	b.WriteString(fmt.Sprintf("**Prompt:** %s | **Run:** %s | **Timestamp:** %s\n",
		run.PromptName, run.RunID, run.Timestamp.Format(time.RFC3339)))

	return b.String()
}
