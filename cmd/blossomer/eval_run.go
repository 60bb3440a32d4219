package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/phillipou/blossomer-cli-sub000/internal/checks"
	"github.com/phillipou/blossomer-cli-sub000/internal/dataset"
	"github.com/phillipou/blossomer-cli-sub000/internal/discovery"
	"github.com/phillipou/blossomer-cli-sub000/internal/judge"
	"github.com/phillipou/blossomer-cli-sub000/internal/llm"
	"github.com/phillipou/blossomer-cli-sub000/internal/models"
	"github.com/phillipou/blossomer-cli-sub000/internal/orchestration"
	"github.com/phillipou/blossomer-cli-sub000/internal/projectconfig"
	"github.com/phillipou/blossomer-cli-sub000/internal/reporting"
	"github.com/phillipou/blossomer-cli-sub000/internal/results"
	"github.com/phillipou/blossomer-cli-sub000/internal/services"
	"github.com/phillipou/blossomer-cli-sub000/internal/spinner"
)

var (
	runSampleSize   int
	runVerbose      bool
	runOutputPath   string
	runConcurrency  int
	runFormat       string
	runJUnitPath    string
	runJudgeTimeout time.Duration
)

func newEvalRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <prompt|all>",
		Short: "Run a prompt evaluation",
		Long: `Run the evaluation pipeline for one prompt eval, or for every
discovered prompt eval when the argument is "all".

Each sampled dataset row is sent to the configured generation service, the
output is checked deterministically, and structurally valid outputs are scored
by the configured LLM judge categories. Results are written to the evals
results directory as a timestamped JSON artifact.

The exit code reflects harness execution only: a run whose content failed
every check still exits 0.`,
		Args: cobra.ExactArgs(1),
		RunE: runCommandE,
	}

	cmd.Flags().IntVar(&runSampleSize, "sample-size", -1, "Evaluate at most N sampled rows (overrides config; 0 = full dataset)")
	cmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Verbose output with per-case progress")
	cmd.Flags().StringVarP(&runOutputPath, "output", "o", "", "Also write the result artifact to this path")
	cmd.Flags().IntVar(&runConcurrency, "concurrency", 0, "Concurrent test cases (default 3)")
	cmd.Flags().StringVar(&runFormat, "format", "default", "Output format: default, github-comment")
	cmd.Flags().StringVar(&runJUnitPath, "junit", "", "Write a JUnit XML report to this path")
	cmd.Flags().DurationVar(&runJudgeTimeout, "judge-timeout", 0, "Timeout per judge model call (default 60s)")

	return cmd
}

func runCommandE(cmd *cobra.Command, args []string) error {
	proj, err := loadProject()
	if err != nil {
		return err
	}
	root := resolveEvalsRoot(proj)

	if runFormat != "default" && runFormat != "github-comment" {
		return &models.ConfigError{Message: fmt.Sprintf("unknown output format %q (supported: default, github-comment)", runFormat)}
	}

	var prompts []discovery.DiscoveredPrompt
	if args[0] == "all" {
		prompts, err = discovery.Discover(root)
		if err != nil {
			return err
		}
		if len(prompts) == 0 {
			return &models.ConfigError{Message: fmt.Sprintf("no prompt evals under %s", root)}
		}
	} else {
		p, err := discovery.FindPrompt(root, args[0])
		if err != nil {
			return err
		}
		prompts = []discovery.DiscoveredPrompt{p}
	}

	verbose := runVerbose
	if !cmd.Flags().Changed("verbose") && proj.Defaults.Verbose != nil {
		verbose = *proj.Defaults.Verbose
	}

	store := results.NewStore(discovery.ResultsDir(root))
	runs := make([]*models.EvaluationRun, 0, len(prompts))

	for _, prompt := range prompts {
		run, err := runOnePrompt(cmd, proj, root, prompt, store, verbose, len(prompts) > 1)
		if err != nil {
			return err
		}
		runs = append(runs, run)
	}

	if runJUnitPath != "" {
		if err := reporting.WriteJUnit(reporting.ConvertRunsToJUnit(runs), runJUnitPath); err != nil {
			return fmt.Errorf("writing junit report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "JUnit report saved to: %s\n", runJUnitPath)
	}

	return nil
}

// runOnePrompt builds the pipeline for one prompt eval and executes it.
// Configuration problems abort with a typed error before any test case runs;
// once the run starts, per-case failures stay inside the artifact.
func runOnePrompt(cmd *cobra.Command, proj *projectconfig.ProjectConfig, root string, prompt discovery.DiscoveredPrompt, store *results.Store, verbose, multi bool) (*models.EvaluationRun, error) {
	cfg, err := models.LoadPromptEvalConfig(prompt.ConfigPath)
	if err != nil {
		return nil, err
	}

	if !prompt.HasData() {
		return nil, &models.ConfigError{Message: fmt.Sprintf("prompt %q has no dataset (expected data.csv or data.csv.gz in %s)", prompt.Name, prompt.Dir)}
	}
	rows, err := dataset.LoadCSV(prompt.DataPath)
	if err != nil {
		return nil, &models.ConfigError{Message: fmt.Sprintf("dataset for %q: %v", prompt.Name, err)}
	}

	schema, err := checks.LoadSchema(discovery.SchemaPath(root, cfg.Schema))
	if err != nil {
		return nil, &models.ConfigError{Message: err.Error()}
	}

	checkList, err := checks.New(cfg.Judges.Deterministic)
	if err != nil {
		return nil, &models.ConfigError{Message: err.Error()}
	}

	client, err := buildLLMClient(cfg)
	if err != nil {
		return nil, err
	}

	generator, err := services.NewRegistry(client).Resolve(cfg.Service)
	if err != nil {
		return nil, err
	}

	var engine *judge.Engine
	if len(cfg.Judges.LLM) > 0 {
		judgeOpts := []judge.Option{
			judge.WithMaxParallel(proj.Judge.MaxParallel),
		}
		if runJudgeTimeout > 0 {
			judgeOpts = append(judgeOpts, judge.WithCallTimeout(runJudgeTimeout))
		} else if proj.Judge.TimeoutSec > 0 {
			judgeOpts = append(judgeOpts, judge.WithCallTimeout(time.Duration(proj.Judge.TimeoutSec)*time.Second))
		}
		library := judge.NewLibrary(filepath.Join(root, "templates"))
		engine = judge.NewEngine(client, library, cfg.Models, judgeOpts...)
	}

	concurrency := runConcurrency
	if concurrency <= 0 {
		concurrency = proj.Defaults.Concurrency
	}

	runnerOpts := []orchestration.RunnerOption{
		orchestration.WithWorkers(concurrency),
	}
	if runSampleSize >= 0 {
		runnerOpts = append(runnerOpts, orchestration.WithSampleSize(runSampleSize))
	} else if cfg.SampleSize == 0 && proj.Defaults.SampleSize > 0 {
		runnerOpts = append(runnerOpts, orchestration.WithSampleSize(proj.Defaults.SampleSize))
	}

	runner := orchestration.NewEvalRunner(cfg, generator, checkList, schema, engine, runnerOpts...)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Running eval: %s\n", cfg.Name)
	fmt.Fprintf(out, "Service: %s\n", cfg.Service.String())
	if len(cfg.Judges.LLM) > 0 {
		fmt.Fprintf(out, "Judge model: %s (fallback: %s)\n", cfg.Models.Default, cfg.Models.FallbackModel())
	}
	fmt.Fprintf(out, "Workers: %d\n\n", concurrency)

	stopProgress := attachProgress(runner, out, verbose)
	run, err := runner.Run(cmd.Context(), rows)
	stopProgress()
	if err != nil {
		return nil, fmt.Errorf("eval run failed: %w", err)
	}

	switch runFormat {
	case "github-comment":
		fmt.Fprint(out, FormatGitHubComment(run))
	default:
		printRunSummary(out, run)
	}

	path, err := store.Save(run)
	if err != nil {
		return nil, fmt.Errorf("saving results: %w", err)
	}
	fmt.Fprintf(out, "\nResults saved to: %s\n", path)

	if runOutputPath != "" {
		outPath := runOutputPath
		if multi {
			ext := filepath.Ext(outPath)
			outPath = fmt.Sprintf("%s_%s%s", strings.TrimSuffix(outPath, ext), prompt.Name, ext)
		}
		if err := writeRunJSON(run, outPath); err != nil {
			return nil, fmt.Errorf("failed to save output: %w", err)
		}
		fmt.Fprintf(out, "Results copied to: %s\n", outPath)
	}

	return run, nil
}

// buildLLMClient returns a live client only when the run will call a model:
// either an LLM-backed generation service or at least one judge category.
func buildLLMClient(cfg *models.PromptEvalConfig) (llm.Client, error) {
	if cfg.Service.Module == "testing" && len(cfg.Judges.LLM) == 0 {
		return nil, nil
	}
	client, err := llm.NewOpenAIClient()
	if err != nil {
		return nil, &models.ConfigError{Message: err.Error()}
	}
	return client, nil
}

// attachProgress wires a progress listener suited to the output: verbose
// lines, a spinner on TTYs, or one line per case otherwise. The returned
// function must be called once the run finishes.
func attachProgress(runner *orchestration.EvalRunner, out io.Writer, verbose bool) (stop func()) {
	if verbose {
		runner.OnProgress(verboseProgressListener(out))
		return func() {}
	}

	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		sp := spinner.Start(out, "Evaluating test cases...")
		runner.OnProgress(func(event orchestration.ProgressEvent) {
			if event.EventType == orchestration.EventCaseComplete {
				sp.Update(fmt.Sprintf("Evaluated %d/%d test cases", event.CaseNum, event.TotalCases))
			}
		})
		return sp.Stop
	}

	runner.OnProgress(simpleProgressListener(out))
	return func() {}
}

func verboseProgressListener(out io.Writer) orchestration.ProgressListener {
	return func(event orchestration.ProgressEvent) {
		switch event.EventType {
		case orchestration.EventRunStart:
			fmt.Fprintf(out, "Starting run with %d test case(s)...\n\n", event.TotalCases)
		case orchestration.EventCaseStart:
			fmt.Fprintf(out, "[%d/%d] Evaluating case: %s\n", event.CaseNum, event.TotalCases, event.TestCaseID)
		case orchestration.EventCaseGenerated:
			if gt, ok := event.Details["generation_time"].(float64); ok {
				fmt.Fprintf(out, "  generated in %s\n", formatDuration(time.Duration(gt*float64(time.Second))))
			}
		case orchestration.EventCaseChecked:
			passed, _ := event.Details["checks_passed"].(int)
			total, _ := event.Details["checks_total"].(int)
			fmt.Fprintf(out, "  deterministic checks: %d/%d passed\n", passed, total)
		case orchestration.EventCaseJudged:
			status, _ := event.Details["llm_status"].(string)
			fmt.Fprintf(out, "  llm judges: %s\n", status)
		case orchestration.EventCaseComplete:
			icon := "✗"
			if event.Pass {
				icon = "✓"
			}
			fmt.Fprintf(out, "  %s case %s (%s)\n\n", icon, event.TestCaseID, formatDuration(time.Duration(event.DurationMs)*time.Millisecond))
		case orchestration.EventRunComplete:
			fmt.Fprintf(out, "Run completed in %s\n\n", formatDuration(time.Duration(event.DurationMs)*time.Millisecond))
		}
	}
}

func simpleProgressListener(out io.Writer) orchestration.ProgressListener {
	return func(event orchestration.ProgressEvent) {
		if event.EventType != orchestration.EventCaseComplete {
			return
		}
		icon := "✗"
		if event.Pass {
			icon = "✓"
		}
		fmt.Fprintf(out, "%s [%d/%d] %s\n", icon, event.CaseNum, event.TotalCases, event.TestCaseID)
	}
}

func writeRunJSON(run *models.EvaluationRun, path string) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
