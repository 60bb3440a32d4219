// Package services binds evaluation configs to the generation functions they
// exercise. The registry is closed: a config naming anything outside it is
// rejected before a single test case runs.
package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/phillipou/blossomer-cli-sub000/internal/dataset"
	"github.com/phillipou/blossomer-cli-sub000/internal/llm"
	"github.com/phillipou/blossomer-cli-sub000/internal/models"
)

// Generator produces one artifact for a test case.
type Generator interface {
	Name() string
	Generate(ctx context.Context, tc dataset.Row) (string, error)
}

// DefaultGenerationModel is used by LLM-backed generators unless overridden.
const DefaultGenerationModel = "gpt-5"

// Registry resolves service references against the known generators.
type Registry struct {
	client llm.Client
	model  string
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithGenerationModel overrides the model LLM-backed generators call.
func WithGenerationModel(model string) RegistryOption {
	return func(r *Registry) {
		if model != "" {
			r.model = model
		}
	}
}

func NewRegistry(client llm.Client, opts ...RegistryOption) *Registry {
	r := &Registry{client: client, model: DefaultGenerationModel}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Known returns every registered "module.function" name, sorted.
func Known() []string {
	names := []string{
		"email_generation.generate_email",
		"persona_generation.generate_persona",
		"testing.echo",
	}
	sort.Strings(names)
	return names
}

// Resolve maps a service reference to its generator. Unknown references are
// a config error: they mean the config was written against a service that
// does not exist, not that generation failed.
func (r *Registry) Resolve(ref models.ServiceRef) (Generator, error) {
	switch ref.String() {
	case "email_generation.generate_email":
		return &emailGenerator{client: r.client, model: r.model}, nil
	case "persona_generation.generate_persona":
		return &personaGenerator{client: r.client, model: r.model}, nil
	case "testing.echo":
		return echoGenerator{}, nil
	default:
		return nil, &models.ConfigError{Message: fmt.Sprintf(
			"unknown service %q; available services are: %s",
			ref.String(), strings.Join(Known(), ", "))}
	}
}

// Invocation is the captured outcome of one generation call. Err is non-nil
// when generation failed; the test case still proceeds to a final state.
type Invocation struct {
	Output  string
	Elapsed float64
	Err     error
}

// Invoke runs the generator and captures failure instead of propagating it.
func Invoke(ctx context.Context, gen Generator, tc dataset.Row) Invocation {
	start := time.Now()
	output, err := gen.Generate(ctx, tc)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		return Invocation{
			Elapsed: elapsed,
			Err:     &models.GenerationError{Service: gen.Name(), Err: err},
		}
	}
	return Invocation{Output: output, Elapsed: elapsed}
}
