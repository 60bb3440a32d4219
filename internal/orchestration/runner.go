// Package orchestration drives a full evaluation run: sample the dataset,
// invoke the service under test, gate each output with deterministic checks,
// judge the eligible ones, and aggregate everything into a run artifact.
package orchestration

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/phillipou/blossomer-cli-sub000/internal/checks"
	"github.com/phillipou/blossomer-cli-sub000/internal/dataset"
	"github.com/phillipou/blossomer-cli-sub000/internal/judge"
	"github.com/phillipou/blossomer-cli-sub000/internal/models"
	"github.com/phillipou/blossomer-cli-sub000/internal/services"
)

// DefaultWorkers bounds concurrent test case evaluation. Judge categories
// fan out further inside each case, so this stays conservative.
const DefaultWorkers = 3

// EventType represents the type of progress event.
type EventType string

// EventType constants
const (
	EventRunStart      EventType = "run_start"
	EventRunComplete   EventType = "run_complete"
	EventCaseStart     EventType = "case_start"
	EventCaseGenerated EventType = "case_generated"
	EventCaseChecked   EventType = "case_checked"
	EventCaseJudged    EventType = "case_judged"
	EventCaseComplete  EventType = "case_complete"
)

// ProgressEvent is a progress update emitted while a run executes.
type ProgressEvent struct {
	EventType  EventType
	TestCaseID string
	CaseNum    int
	TotalCases int
	State      models.CaseState
	Pass       bool
	DurationMs int64
	Details    map[string]any
}

// ProgressListener receives progress updates.
type ProgressListener func(event ProgressEvent)

// EvalRunner executes one prompt's evaluation pipeline end to end.
type EvalRunner struct {
	cfg       *models.PromptEvalConfig
	generator services.Generator
	checkList []checks.Check
	schema    *checks.Schema
	engine    *judge.Engine

	workers    int
	sampleSize int
	seed       int64

	judgeCalls       atomic.Int64
	promptTokens     atomic.Int64
	completionTokens atomic.Int64

	progressMu sync.Mutex
	listeners  []ProgressListener
}

// RunnerOption configures an EvalRunner.
type RunnerOption func(*EvalRunner)

// WithWorkers sets how many test cases run concurrently.
func WithWorkers(n int) RunnerOption {
	return func(r *EvalRunner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithSampleSize caps how many dataset rows are evaluated. It overrides the
// config's sample_size; zero means the full dataset.
func WithSampleSize(n int) RunnerOption {
	return func(r *EvalRunner) {
		r.sampleSize = n
	}
}

// WithSeed fixes the sampling seed so reruns draw the same rows.
func WithSeed(seed int64) RunnerOption {
	return func(r *EvalRunner) {
		r.seed = seed
	}
}

// NewEvalRunner wires the five pipeline stages together. The judge engine
// may be nil when the config selects no LLM categories.
func NewEvalRunner(cfg *models.PromptEvalConfig, generator services.Generator, checkList []checks.Check, schema *checks.Schema, engine *judge.Engine, opts ...RunnerOption) *EvalRunner {
	r := &EvalRunner{
		cfg:        cfg,
		generator:  generator,
		checkList:  checkList,
		schema:     schema,
		engine:     engine,
		workers:    DefaultWorkers,
		sampleSize: cfg.SampleSize,
		seed:       dataset.DefaultSeed,
		listeners:  []ProgressListener{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// OnProgress registers a progress listener.
func (r *EvalRunner) OnProgress(listener ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *EvalRunner) notifyProgress(event ProgressEvent) {
	r.progressMu.Lock()
	listeners := make([]ProgressListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Run evaluates the (sampled) dataset and returns the aggregated artifact.
// Per-case failures are captured inside the artifact, so Run reflects only
// harness-level health, never content quality.
func (r *EvalRunner) Run(ctx context.Context, rows []dataset.Row) (*models.EvaluationRun, error) {
	start := time.Now()

	sampled := dataset.Sample(rows, r.sampleSize, r.seed)

	r.notifyProgress(ProgressEvent{
		EventType:  EventRunStart,
		TotalCases: len(sampled),
	})

	results := r.runConcurrent(ctx, sampled)
	run := r.buildRun(results, start)

	r.notifyProgress(ProgressEvent{
		EventType:  EventRunComplete,
		TotalCases: len(sampled),
		Pass:       run.TestCases.Failed == 0,
		DurationMs: time.Since(start).Milliseconds(),
	})

	return run, nil
}

func (r *EvalRunner) runConcurrent(ctx context.Context, rows []dataset.Row) []models.TestCaseResult {
	type result struct {
		index int
		res   models.TestCaseResult
	}

	resultChan := make(chan result, len(rows))
	semaphore := make(chan struct{}, r.workers)

	var wg sync.WaitGroup

	for i, row := range rows {
		wg.Add(1)
		go func(idx int, tc dataset.Row) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			resultChan <- result{index: idx, res: r.runCase(ctx, idx+1, len(rows), tc)}
		}(i, row)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]models.TestCaseResult, len(rows))
	for res := range resultChan {
		results[res.index] = res.res
	}

	return results
}

// runCase walks one test case through the whole state machine. Every case
// reaches the finalized state no matter which stages fail along the way.
func (r *EvalRunner) runCase(ctx context.Context, caseNum, totalCases int, row dataset.Row) models.TestCaseResult {
	caseStart := time.Now()

	res := models.TestCaseResult{
		TestCaseID: row.ID(caseNum),
		TestCase:   row,
		Errors:     []string{},
	}

	r.notifyProgress(ProgressEvent{
		EventType:  EventCaseStart,
		TestCaseID: res.TestCaseID,
		CaseNum:    caseNum,
		TotalCases: totalCases,
		State:      models.StatePending,
	})

	inv := services.Invoke(ctx, r.generator, row)
	res.GeneratedOutput = inv.Output
	res.GenerationTime = inv.Elapsed
	if inv.Err != nil {
		res.Errors = append(res.Errors, inv.Err.Error())
	}
	r.notifyProgress(ProgressEvent{
		EventType:  EventCaseGenerated,
		TestCaseID: res.TestCaseID,
		CaseNum:    caseNum,
		TotalCases: totalCases,
		State:      models.StateGenerated,
		Pass:       inv.Err == nil,
		Details:    map[string]any{"generation_time": inv.Elapsed},
	})

	checkResults, checkErrs := checks.Run(r.checkList, checks.NewInput(inv.Output, row, r.schema))
	for _, err := range checkErrs {
		res.Errors = append(res.Errors, err.Error())
	}
	res.Deterministic = models.DeterministicResults{
		Checks:      checkResults,
		OverallPass: models.AllPassed(checkResults),
	}
	r.notifyProgress(ProgressEvent{
		EventType:  EventCaseChecked,
		TestCaseID: res.TestCaseID,
		CaseNum:    caseNum,
		TotalCases: totalCases,
		State:      models.StateDeterministicEvaluated,
		Pass:       res.Deterministic.OverallPass,
		Details: map[string]any{
			"checks_passed": countPassed(checkResults),
			"checks_total":  len(checkResults),
		},
	})

	res.LLM = r.runJudges(ctx, &res, row)
	r.notifyProgress(ProgressEvent{
		EventType:  EventCaseJudged,
		TestCaseID: res.TestCaseID,
		CaseNum:    caseNum,
		TotalCases: totalCases,
		State:      judgeState(res.LLM.Status),
		Pass:       res.LLM.OverallPass,
		Details:    map[string]any{"llm_status": string(res.LLM.Status)},
	})

	res.FinalizePass()
	r.notifyProgress(ProgressEvent{
		EventType:  EventCaseComplete,
		TestCaseID: res.TestCaseID,
		CaseNum:    caseNum,
		TotalCases: totalCases,
		State:      models.StateFinalized,
		Pass:       res.OverallPass,
		DurationMs: time.Since(caseStart).Milliseconds(),
	})

	return res
}

// runJudges resolves the tri-state LLM stage for one case. Ineligible cases
// never reach the engine at all.
func (r *EvalRunner) runJudges(ctx context.Context, res *models.TestCaseResult, row dataset.Row) models.LLMResults {
	if !res.Eligible() {
		return models.LLMResults{
			Status:      models.LLMSkipped,
			Judges:      []models.JudgeCategoryResult{},
			OverallPass: false,
		}
	}

	if len(r.cfg.Judges.LLM) == 0 {
		// Nothing to judge: the stage passes vacuously and the case stands
		// on its deterministic results alone.
		return models.LLMResults{
			Status:      models.LLMCompleted,
			Judges:      []models.JudgeCategoryResult{},
			OverallPass: true,
		}
	}

	if r.engine == nil {
		res.Errors = append(res.Errors, "llm judges configured but no judge engine available")
		return models.LLMResults{
			Status:      models.LLMErrored,
			Judges:      []models.JudgeCategoryResult{},
			OverallPass: false,
		}
	}

	judges, usage, errs := r.engine.Evaluate(ctx, r.cfg.Name, r.cfg.Judges.LLM, row, res.GeneratedOutput)
	r.judgeCalls.Add(usage.JudgeCalls)
	r.promptTokens.Add(usage.PromptTokens)
	r.completionTokens.Add(usage.CompletionTokens)

	status := models.LLMCompleted
	for _, err := range errs {
		res.Errors = append(res.Errors, err.Error())
		status = models.LLMErrored
	}

	pass := true
	for _, j := range judges {
		if !j.Pass {
			pass = false
		}
	}

	return models.LLMResults{Status: status, Judges: judges, OverallPass: pass}
}

func judgeState(status models.LLMStatus) models.CaseState {
	if status == models.LLMSkipped {
		return models.StateSkippedLLM
	}
	return models.StateEligibleForLLM
}
