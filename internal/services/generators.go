package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/phillipou/blossomer-cli-sub000/internal/dataset"
	"github.com/phillipou/blossomer-cli-sub000/internal/llm"
)

const emailSystemPrompt = `You write concise outbound sales emails for B2B go-to-market teams.

Respond with a single JSON object and nothing else. The object must have
exactly these fields:

  "subject": string, at most twelve words, capitalized like a headline
  "body": string, a short plain-text email of 40 to 150 words
  "opening_line_hypotheses": array of 2 to 4 strings, each a candidate
      opening observation about the prospect
  "call_to_action": string, the single closing ask used in the body

Ground every claim in the inputs you are given. Never invent names, metrics,
or events. Never include placeholders like [Your Name] or {{variable}}.`

const personaSystemPrompt = `You define target buyer personas for B2B go-to-market teams.

Respond with a single JSON object and nothing else. The object must have
exactly these fields:

  "persona_name": string, a short label for the persona
  "titles": array of 2 to 6 job titles this persona commonly holds
  "pain_points": array of 2 to 5 problems this persona owns
  "buying_triggers": array of 2 to 5 events that make them buy now
  "objections": array of 1 to 4 likely pushbacks

Ground the persona in the inputs you are given. Never invent company-specific
facts that the inputs do not support.`

type emailGenerator struct {
	client llm.Client
	model  string
}

func (g *emailGenerator) Name() string { return "email_generation.generate_email" }

func (g *emailGenerator) Generate(ctx context.Context, tc dataset.Row) (string, error) {
	resp, err := g.client.Complete(ctx, llm.Request{
		Model:  g.model,
		System: emailSystemPrompt,
		User:   buildGenerationInput(tc),
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

type personaGenerator struct {
	client llm.Client
	model  string
}

func (g *personaGenerator) Name() string { return "persona_generation.generate_persona" }

func (g *personaGenerator) Generate(ctx context.Context, tc dataset.Row) (string, error) {
	resp, err := g.client.Complete(ctx, llm.Request{
		Model:  g.model,
		System: personaSystemPrompt,
		User:   buildGenerationInput(tc),
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// generationFields are the test case columns passed to generators, in the
// order they appear in the prompt.
var generationFields = []struct {
	column string
	label  string
}{
	{"input_website_url", "Company website"},
	{"expected_company_name", "Company name"},
	{"account_profile_name", "Target account profile"},
	{"persona_profile_name", "Target persona profile"},
	{"user_inputted_context", "User-provided context"},
	{"hypothesis", "Hypothesis"},
}

func buildGenerationInput(tc dataset.Row) string {
	var b strings.Builder
	for _, f := range generationFields {
		if value := strings.TrimSpace(tc[f.column]); value != "" {
			fmt.Fprintf(&b, "%s: %s\n", f.label, value)
		}
	}
	return b.String()
}

// echoGenerator replays the test case's expected_output column. It exists so
// the whole pipeline can run offline, in tests and in CI, with no provider.
type echoGenerator struct{}

func (echoGenerator) Name() string { return "testing.echo" }

func (echoGenerator) Generate(_ context.Context, tc dataset.Row) (string, error) {
	output, ok := tc["expected_output"]
	if !ok || strings.TrimSpace(output) == "" {
		return "", errors.New("test case has no expected_output column to echo")
	}
	return output, nil
}
