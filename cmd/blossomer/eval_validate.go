package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/phillipou/blossomer-cli-sub000/internal/checks"
	"github.com/phillipou/blossomer-cli-sub000/internal/dataset"
	"github.com/phillipou/blossomer-cli-sub000/internal/discovery"
	"github.com/phillipou/blossomer-cli-sub000/internal/models"
	"github.com/phillipou/blossomer-cli-sub000/internal/services"
	"github.com/phillipou/blossomer-cli-sub000/internal/validation"
)

func newEvalValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <prompt>",
		Short: "Validate a prompt eval's config, schema and dataset",
		Long: `Validate checks everything eval run would need: config shape against the
embedded schema, check and judge names against the registries, the service
reference, the output schema, and the dataset. All problems are reported in
one pass.`,
		Args: cobra.ExactArgs(1),
		RunE: validateCommandE,
	}
}

func validateCommandE(cmd *cobra.Command, args []string) error {
	proj, err := loadProject()
	if err != nil {
		return err
	}
	root := resolveEvalsRoot(proj)

	prompt, err := discovery.FindPrompt(root, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	problems := validatePrompt(out, root, prompt)
	if len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintf(out, "  ✗ %s\n", p)
		}
		return &models.ConfigError{Message: fmt.Sprintf("%s: %d validation problem(s)", prompt.Name, len(problems))}
	}

	fmt.Fprintf(out, "✓ %s is valid\n", prompt.Name)
	return nil
}

// validatePrompt collects every problem with one prompt eval. Shape problems
// short-circuit the semantic checks, which would only repeat them.
func validatePrompt(out io.Writer, root string, prompt discovery.DiscoveredPrompt) []string {
	shapeProblems, err := validation.ValidateConfigFile(prompt.ConfigPath)
	if err != nil {
		return []string{fmt.Sprintf("reading config: %v", err)}
	}
	if len(shapeProblems) > 0 {
		return shapeProblems
	}

	var problems []string

	cfg, err := models.LoadPromptEvalConfig(prompt.ConfigPath)
	if err != nil {
		return []string{err.Error()}
	}

	if _, err := services.NewRegistry(nil).Resolve(cfg.Service); err != nil {
		problems = append(problems, err.Error())
	}

	if _, err := checks.New(cfg.Judges.Deterministic); err != nil {
		problems = append(problems, err.Error())
	}

	schemaPath := discovery.SchemaPath(root, cfg.Schema)
	if _, err := checks.LoadSchema(schemaPath); err != nil {
		problems = append(problems, err.Error())
	}

	if !prompt.HasData() {
		problems = append(problems, fmt.Sprintf("no dataset: expected data.csv or data.csv.gz in %s", prompt.Dir))
	} else if rows, err := dataset.LoadCSV(prompt.DataPath); err != nil {
		problems = append(problems, err.Error())
	} else {
		fmt.Fprintf(out, "  dataset: %d row(s)\n", len(rows))
	}

	return problems
}
