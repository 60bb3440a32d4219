package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phillipou/blossomer-cli-sub000/internal/models"
	"github.com/phillipou/blossomer-cli-sub000/internal/projectconfig"
)

// evalsDirEnv overrides the default evals root when --evals-dir is not set.
const evalsDirEnv = "BLOSSOMER_EVALS_DIR"

var evalsDir string

func newEvalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Discover, validate and run prompt evaluations",
		Long: `Work with prompt evaluations under the evals root (default ./evals).

Each prompt eval lives in evals/prompts/<name>/ with a config.yaml and a
data.csv dataset. Results are written to evals/results/ as timestamped
JSON artifacts.`,
	}

	cmd.PersistentFlags().StringVar(&evalsDir, "evals-dir", "", "Evals root directory (default ./evals, or $BLOSSOMER_EVALS_DIR)")

	cmd.AddCommand(newEvalListCommand())
	cmd.AddCommand(newEvalValidateCommand())
	cmd.AddCommand(newEvalRunCommand())
	cmd.AddCommand(newEvalCreateCommand())

	return cmd
}

// resolveEvalsRoot applies flag > environment > project config precedence.
func resolveEvalsRoot(proj *projectconfig.ProjectConfig) string {
	if evalsDir != "" {
		return evalsDir
	}
	if env := os.Getenv(evalsDirEnv); env != "" {
		return env
	}
	return proj.Paths.Evals
}

// loadProject reads .blossomer.yaml defaults starting from the working
// directory. A malformed project file is a configuration error.
func loadProject() (*projectconfig.ProjectConfig, error) {
	proj, err := projectconfig.Load(".")
	if err != nil {
		return nil, &models.ConfigError{Message: fmt.Sprintf("loading %s: %v", projectconfig.ConfigFileName, err)}
	}
	return proj, nil
}
