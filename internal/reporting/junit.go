package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/phillipou/blossomer-cli-sub000/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one evaluation run.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one evaluated test case.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
}

// JUnitFailure represents a content check that did not pass.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError represents a harness error (generation or judge infrastructure).
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit maps one evaluation run onto the JUnit schema.
func ConvertToJUnit(run *models.EvaluationRun) *JUnitTestSuites {
	return ConvertRunsToJUnit([]*models.EvaluationRun{run})
}

// ConvertRunsToJUnit maps evaluation runs onto the JUnit schema, one suite
// per run. Cases that failed on content become <failure> elements; cases
// whose pipeline recorded errors become <error> elements, so CI can tell the
// two apart.
func ConvertRunsToJUnit(runs []*models.EvaluationRun) *JUnitTestSuites {
	out := &JUnitTestSuites{}
	for _, run := range runs {
		suite := convertRun(run)
		out.Tests += suite.Tests
		out.Failures += suite.Failures
		out.Errors += suite.Errors
		out.Time += suite.Time
		out.TestSuites = append(out.TestSuites, suite)
	}
	return out
}

func convertRun(run *models.EvaluationRun) JUnitTestSuite {
	errored := 0
	failed := 0
	for _, res := range run.DetailedResults {
		switch {
		case len(res.Errors) > 0:
			errored++
		case !res.OverallPass:
			failed++
		}
	}

	suite := JUnitTestSuite{
		Name:      run.PromptName,
		Tests:     run.TestCases.Total,
		Failures:  failed,
		Errors:    errored,
		Time:      run.EvaluationTime,
		Timestamp: run.Timestamp.Format(time.RFC3339),
		Properties: []JUnitProperty{
			{Name: "run_id", Value: run.RunID},
			{Name: "pass_rate", Value: fmt.Sprintf("%.4f", run.TestCases.PassRate)},
			{Name: "llm_eligible", Value: strconv.Itoa(run.LLMJudges.Eligible)},
			{Name: "judge_calls", Value: strconv.FormatInt(run.Usage.JudgeCalls, 10)},
		},
	}

	for i := range run.DetailedResults {
		suite.TestCases = append(suite.TestCases, convertCase(run.PromptName, &run.DetailedResults[i]))
	}

	return suite
}

func convertCase(prompt string, res *models.TestCaseResult) JUnitTestCase {
	tc := JUnitTestCase{
		Name:      res.TestCaseID,
		Classname: prompt,
		Time:      res.GenerationTime,
	}

	switch {
	case len(res.Errors) > 0:
		tc.Error = &JUnitError{
			Message: res.Errors[0],
			Type:    "EvaluationError",
			Body:    strings.Join(res.Errors, "\n"),
		}
	case !res.OverallPass:
		details, count := formatFailedChecks(res)
		tc.Failure = &JUnitFailure{
			Message: fmt.Sprintf("%d check(s) failed", count),
			Type:    "CheckFailure",
			Body:    details,
		}
	}

	return tc
}

// formatFailedChecks lists every failing check with its rationale, in
// pipeline order: deterministic checks first, then judge checks by category.
func formatFailedChecks(res *models.TestCaseResult) (string, int) {
	var b strings.Builder
	count := 0

	for _, check := range res.Deterministic.Checks {
		if check.Pass {
			continue
		}
		count++
		fmt.Fprintf(&b, "[FAIL] %s: %s\n", check.CheckName, check.Rationale)
	}
	for _, judge := range res.LLM.Judges {
		for _, check := range judge.Checks {
			if check.Pass {
				continue
			}
			count++
			if check.Rating != "" {
				fmt.Fprintf(&b, "[FAIL] %s/%s (%s): %s\n", judge.Category, check.CheckName, check.Rating, check.Rationale)
			} else {
				fmt.Fprintf(&b, "[FAIL] %s/%s: %s\n", judge.Category, check.CheckName, check.Rationale)
			}
		}
	}

	return b.String(), count
}

// WriteJUnit writes suites as JUnit XML to the specified file path.
func WriteJUnit(suites *JUnitTestSuites, path string) error {
	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0o644)
}

// WriteJUnitXML writes one run as JUnit XML to the specified file path.
func WriteJUnitXML(run *models.EvaluationRun, path string) error {
	return WriteJUnit(ConvertToJUnit(run), path)
}
