// Package wizard collects the fields eval create needs when they are not
// supplied as flags, using an interactive form on TTYs.
package wizard

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/phillipou/blossomer-cli-sub000/internal/scaffold"
)

// PromptSpec holds all fields collected for a new prompt eval. Fields set
// before the wizard runs become the form defaults.
type PromptSpec struct {
	Name             string
	ServiceModule    string
	ServiceFunction  string
	Model            string
	Fallback         string
	CreateSampleData bool
}

var identifierPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ValidateIdentifier returns a validator for a service module or function name.
func ValidateIdentifier(field string) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" {
			return fmt.Errorf("%s is required", field)
		}
		if !identifierPattern.MatchString(s) {
			return fmt.Errorf("%s must be a lowercase identifier (letters, digits, underscores)", field)
		}
		return nil
	}
}

// RunPromptWizard runs an interactive huh form to fill in spec.
func RunPromptWizard(in io.Reader, out io.Writer, spec *PromptSpec) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Prompt name").
				Description("Directory name under evals/prompts").
				Placeholder("email_generation").
				Value(&spec.Name).
				Validate(func(s string) error {
					return scaffold.ValidateName(strings.TrimSpace(s))
				}),
			huh.NewInput().
				Title("Service module").
				Description("Module of the generation service under test").
				Placeholder("email_generation").
				Value(&spec.ServiceModule).
				Validate(ValidateIdentifier("service module")),
			huh.NewInput().
				Title("Service function").
				Description("Function within the service module").
				Placeholder("generate_email").
				Value(&spec.ServiceFunction).
				Validate(ValidateIdentifier("service function")),
			huh.NewSelect[string]().
				Title("Judge model").
				Options(
					huh.NewOption("gpt-5", "gpt-5"),
					huh.NewOption("gpt-5-mini", "gpt-5-mini"),
					huh.NewOption("gpt-4.1", "gpt-4.1"),
				).
				Value(&spec.Model),
			huh.NewConfirm().
				Title("Create sample dataset and schema?").
				Value(&spec.CreateSampleData),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return fmt.Errorf("wizard failed: %w", err)
	}

	spec.Name = strings.TrimSpace(spec.Name)
	spec.ServiceModule = strings.TrimSpace(spec.ServiceModule)
	spec.ServiceFunction = strings.TrimSpace(spec.ServiceFunction)
	return nil
}
