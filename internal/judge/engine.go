package judge

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/phillipou/blossomer-cli-sub000/internal/dataset"
	"github.com/phillipou/blossomer-cli-sub000/internal/llm"
	"github.com/phillipou/blossomer-cli-sub000/internal/models"
	"github.com/phillipou/blossomer-cli-sub000/internal/template"
)

const (
	// DefaultCallTimeout bounds one judge model call. A call that exceeds it
	// counts as a provider failure and goes through the normal fallback path.
	DefaultCallTimeout = 60 * time.Second

	// DefaultMaxParallel bounds how many categories are judged at once for a
	// single test case.
	DefaultMaxParallel = 3
)

// Engine scores generated output against the configured judge categories.
// Category failures of any kind (render, provider, parse) collapse into a
// single failing result named after the category; Evaluate never errors.
type Engine struct {
	client      llm.Client
	library     *Library
	modelCfg    models.ModelConfig
	callTimeout time.Duration
	maxParallel int
}

// Option configures an Engine.
type Option func(*Engine)

// WithCallTimeout bounds each judge model call.
func WithCallTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.callTimeout = d
		}
	}
}

// WithMaxParallel bounds concurrent category calls per test case.
func WithMaxParallel(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxParallel = n
		}
	}
}

func NewEngine(client llm.Client, library *Library, modelCfg models.ModelConfig, opts ...Option) *Engine {
	e := &Engine{
		client:      client,
		library:     library,
		modelCfg:    modelCfg,
		callTimeout: DefaultCallTimeout,
		maxParallel: DefaultMaxParallel,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate judges every configured category concurrently and returns results
// in configured order, the usage the calls incurred, and the errors behind
// any synthetic failures.
func (e *Engine) Evaluate(ctx context.Context, promptName string, cats []models.JudgeCategory, tc dataset.Row, output string) ([]models.JudgeCategoryResult, models.UsageStats, []error) {
	results := make([]models.JudgeCategoryResult, len(cats))
	usages := make([]models.UsageStats, len(cats))
	catErrs := make([]error, len(cats))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxParallel)

	for i, cat := range cats {
		g.Go(func() error {
			results[i], usages[i], catErrs[i] = e.EvaluateCategory(gctx, promptName, cat, tc, output)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures become failing results

	var total models.UsageStats
	var errs []error
	for i, u := range usages {
		total.JudgeCalls += u.JudgeCalls
		total.PromptTokens += u.PromptTokens
		total.CompletionTokens += u.CompletionTokens
		if catErrs[i] != nil {
			errs = append(errs, catErrs[i])
		}
	}
	return results, total, errs
}

// EvaluateCategory runs one category: render the prompt pair, call the judge
// model with a single fallback retry, parse strictly, and map the verdicts
// onto the category's promised checks. A non-nil error reports why the
// category collapsed to a synthetic failure; the result is usable either way.
func (e *Engine) EvaluateCategory(ctx context.Context, promptName string, cat models.JudgeCategory, tc dataset.Row, output string) (models.JudgeCategoryResult, models.UsageStats, error) {
	var usage models.UsageStats

	tctx := &template.Context{
		PromptName: promptName,
		Category:   string(cat),
		Output:     output,
		Fields:     whitelistedContext(cat, tc),
	}

	system, err := e.library.Render(SystemTemplate, cat, tctx)
	if err != nil {
		ierr := &models.JudgeInvocationError{Category: string(cat), Model: e.modelCfg.Default, Err: err}
		return syntheticResult(cat, ierr), usage, ierr
	}
	user, err := e.library.Render(UserTemplate, cat, tctx)
	if err != nil {
		ierr := &models.JudgeInvocationError{Category: string(cat), Model: e.modelCfg.Default, Err: err}
		return syntheticResult(cat, ierr), usage, ierr
	}

	text, err := e.callWithFallback(ctx, cat, system, user, &usage)
	if err != nil {
		return syntheticResult(cat, err), usage, err
	}

	verdicts, err := parseResponse(cat, text)
	if err != nil {
		perr := &models.JudgeParseError{Category: string(cat), Err: err}
		return syntheticResult(cat, perr), usage, perr
	}

	inputs := contextInputs(cat, tc, output)
	names := promisedChecks[cat]
	checks := make([]models.CheckResult, 0, len(names))
	for _, name := range names {
		v := verdicts[name]
		checks = append(checks, models.CheckResult{
			CheckName:       name,
			Description:     checkDescriptions[name],
			InputsEvaluated: inputs,
			Pass:            *v.Pass,
			Rating:          models.Rating(v.Rating),
			Rationale:       v.Rationale,
		})
	}

	result := models.JudgeCategoryResult{Category: cat, Checks: checks}
	result.ComputePass()
	return result, usage, nil
}

// callWithFallback tries the default judge model, then the fallback model
// once. Timeouts and context errors take the same path as provider errors.
func (e *Engine) callWithFallback(ctx context.Context, cat models.JudgeCategory, system, user string, usage *models.UsageStats) (string, error) {
	text, err := e.call(ctx, e.modelCfg.Default, system, user, usage)
	if err == nil {
		return text, nil
	}
	slog.Debug("judge call failed, retrying with fallback",
		"category", cat, "model", e.modelCfg.Default, "error", err)

	fallback := e.modelCfg.FallbackModel()
	text, err = e.call(ctx, fallback, system, user, usage)
	if err == nil {
		return text, nil
	}
	return "", &models.JudgeInvocationError{Category: string(cat), Model: fallback, Err: err}
}

func (e *Engine) call(ctx context.Context, model, system, user string, usage *models.UsageStats) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	usage.JudgeCalls++
	resp, err := e.client.Complete(callCtx, llm.Request{
		Model:  model,
		System: system,
		User:   user,
	})
	if err != nil {
		return "", err
	}
	usage.PromptTokens += int64(resp.Usage.PromptTokens)
	usage.CompletionTokens += int64(resp.Usage.CompletionTokens)
	return resp.Text, nil
}

// syntheticResult collapses a failed category into a single failing check
// named after the category, preserving the raw error for debugging.
func syntheticResult(cat models.JudgeCategory, err error) models.JudgeCategoryResult {
	return models.JudgeCategoryResult{
		Category: cat,
		Checks: []models.CheckResult{{
			CheckName:       string(cat),
			Description:     "LLM judge category " + string(cat),
			InputsEvaluated: []models.FieldValue{},
			Pass:            false,
			Rationale:       "Judge evaluation failed: " + err.Error(),
		}},
		Pass: false,
	}
}

// contextInputs records the literal values this category's judge saw.
func contextInputs(cat models.JudgeCategory, tc dataset.Row, output string) []models.FieldValue {
	fields := contextFields[cat]
	inputs := make([]models.FieldValue, 0, len(fields)+1)
	inputs = append(inputs, models.FieldValue{Field: "generated_output", Value: output})
	for _, name := range fields {
		inputs = append(inputs, models.FieldValue{Field: name, Value: tc[name]})
	}
	return inputs
}
