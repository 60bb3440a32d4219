package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/phillipou/blossomer-cli-sub000/internal/models"
	"github.com/phillipou/blossomer-cli-sub000/internal/scaffold"
	"github.com/phillipou/blossomer-cli-sub000/internal/wizard"
)

var (
	createServiceModule   string
	createServiceFunction string
	createModel           string
	createSampleData      bool
)

func newEvalCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Scaffold a new prompt eval",
		Long: `Create evals/prompts/<name>/config.yaml for a new prompt eval.

With --create-sample-data, a sample dataset and output schema are written
alongside it so the eval can run immediately.

When the service flags are omitted and the session is interactive, a wizard
collects the missing fields.`,
		Args: cobra.ExactArgs(1),
		RunE: createCommandE,
	}

	cmd.Flags().StringVar(&createServiceModule, "service-module", "", "Module of the generation service under test")
	cmd.Flags().StringVar(&createServiceFunction, "service-function", "", "Function within the service module")
	cmd.Flags().StringVar(&createModel, "model", "", "Judge model (default from .blossomer.yaml)")
	cmd.Flags().BoolVar(&createSampleData, "create-sample-data", false, "Also write a sample dataset and schema")

	return cmd
}

func createCommandE(cmd *cobra.Command, args []string) error {
	proj, err := loadProject()
	if err != nil {
		return err
	}
	root := resolveEvalsRoot(proj)

	spec := wizard.PromptSpec{
		Name:             args[0],
		ServiceModule:    createServiceModule,
		ServiceFunction:  createServiceFunction,
		Model:            createModel,
		Fallback:         proj.Defaults.Fallback,
		CreateSampleData: createSampleData,
	}
	if spec.Model == "" {
		spec.Model = proj.Defaults.Model
	}

	if err := scaffold.ValidateName(spec.Name); err != nil {
		return &models.ConfigError{Message: err.Error()}
	}

	if spec.ServiceModule == "" || spec.ServiceFunction == "" {
		// Check TTY from the command's input stream, not os.Stdin directly.
		in := cmd.InOrStdin()
		isTTY := false
		if f, ok := in.(*os.File); ok {
			isTTY = term.IsTerminal(int(f.Fd()))
		}
		if !isTTY {
			return &models.ConfigError{Message: "service module and function are required (--service-module, --service-function) when not running interactively"}
		}

		if err := wizard.RunPromptWizard(in, cmd.OutOrStdout(), &spec); err != nil {
			return err
		}
		// The wizard validates as it goes, but the name may have been edited.
		if err := scaffold.ValidateName(spec.Name); err != nil {
			return &models.ConfigError{Message: err.Error()}
		}
	}

	promptDir := filepath.Join(root, "prompts", spec.Name)
	dirs := []string{promptDir}
	if spec.CreateSampleData {
		dirs = append(dirs, filepath.Join(root, "schemas"))
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", d, err)
		}
	}

	files := []fileEntry{
		{filepath.Join(promptDir, "config.yaml"), scaffold.ConfigYAML(spec.Name, spec.ServiceModule, spec.ServiceFunction, spec.Model, spec.Fallback)},
	}
	if spec.CreateSampleData {
		files = append(files,
			fileEntry{filepath.Join(promptDir, "data.csv"), scaffold.SampleDataCSV()},
			fileEntry{filepath.Join(root, "schemas", spec.Name+".json"), scaffold.SchemaJSON(spec.Name)},
		)
	}

	if err := writeFiles(cmd, files); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nNext: blossomer eval validate %s\n", spec.Name) //nolint:errcheck
	return nil
}

// fileEntry pairs a path with its content for batch writing.
type fileEntry struct {
	path    string
	content string
}

// writeFiles writes each file, skipping any that already exist.
func writeFiles(cmd *cobra.Command, files []fileEntry) error {
	fmt.Fprintln(cmd.OutOrStdout(), "Scaffolding prompt eval:") //nolint:errcheck

	for _, f := range files {
		if _, err := os.Stat(f.path); err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "  skip %s (already exists)\n", f.path) //nolint:errcheck
			continue
		}

		if err := os.WriteFile(f.path, []byte(f.content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  create %s\n", f.path) //nolint:errcheck
	}

	return nil
}
