package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/phillipou/blossomer-cli-sub000/internal/dataset"
	"github.com/phillipou/blossomer-cli-sub000/internal/llm"
	"github.com/phillipou/blossomer-cli-sub000/internal/models"
)

func TestResolve_KnownServices(t *testing.T) {
	reg := NewRegistry(nil)

	for _, name := range Known() {
		parts := splitRef(t, name)
		gen, err := reg.Resolve(models.ServiceRef{Module: parts[0], Function: parts[1]})
		require.NoError(t, err, name)
		assert.Equal(t, name, gen.Name())
	}
}

func TestResolve_UnknownServiceIsConfigError(t *testing.T) {
	reg := NewRegistry(nil)

	_, err := reg.Resolve(models.ServiceRef{Module: "email_generation", Function: "generate_emails"})
	require.Error(t, err)

	var cfgErr *models.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, cfgErr.Message, `"email_generation.generate_emails"`)
	assert.Contains(t, cfgErr.Message, "testing.echo")
}

func TestEmailGenerator_BuildsPromptFromRow(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := llm.NewMockClient(ctrl)

	row := dataset.Row{
		"input_website_url":     "https://meridianlabs.example",
		"user_inputted_context": "They just opened a second support hub",
		"hypothesis":            "Support tooling is straining",
	}

	var captured llm.Request
	client.EXPECT().
		Complete(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req llm.Request) (*llm.Response, error) {
			captured = req
			return &llm.Response{Text: `{"subject": "Hello"}`}, nil
		})

	reg := NewRegistry(client, WithGenerationModel("gpt-5-mini"))
	gen, err := reg.Resolve(models.ServiceRef{Module: "email_generation", Function: "generate_email"})
	require.NoError(t, err)

	out, err := gen.Generate(context.Background(), row)
	require.NoError(t, err)
	assert.Equal(t, `{"subject": "Hello"}`, out)

	assert.Equal(t, "gpt-5-mini", captured.Model)
	assert.Contains(t, captured.System, "opening_line_hypotheses")
	assert.Contains(t, captured.User, "https://meridianlabs.example")
	assert.Contains(t, captured.User, "second support hub")
	assert.NotContains(t, captured.User, "Target account profile", "absent columns are omitted")
}

func TestEchoGenerator(t *testing.T) {
	gen := echoGenerator{}

	out, err := gen.Generate(context.Background(), dataset.Row{"expected_output": `{"subject": "Hi"}`})
	require.NoError(t, err)
	assert.Equal(t, `{"subject": "Hi"}`, out)

	_, err = gen.Generate(context.Background(), dataset.Row{"id": "case-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected_output")
}

func TestInvoke_CapturesFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := llm.NewMockClient(ctrl)
	client.EXPECT().
		Complete(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("rate limited"))

	reg := NewRegistry(client)
	gen, err := reg.Resolve(models.ServiceRef{Module: "persona_generation", Function: "generate_persona"})
	require.NoError(t, err)

	inv := Invoke(context.Background(), gen, dataset.Row{})
	require.Error(t, inv.Err)
	assert.Empty(t, inv.Output)

	var genErr *models.GenerationError
	require.True(t, errors.As(inv.Err, &genErr))
	assert.Equal(t, "persona_generation.generate_persona", genErr.Service)
	assert.Contains(t, genErr.Error(), "rate limited")
}

func TestInvoke_RecordsElapsedTime(t *testing.T) {
	inv := Invoke(context.Background(), echoGenerator{}, dataset.Row{"expected_output": "{}"})
	require.NoError(t, inv.Err)
	assert.GreaterOrEqual(t, inv.Elapsed, 0.0)
}

func splitRef(t *testing.T, name string) [2]string {
	t.Helper()
	for i := range name {
		if name[i] == '.' {
			return [2]string{name[:i], name[i+1:]}
		}
	}
	t.Fatalf("service name %q has no module separator", name)
	return [2]string{}
}
