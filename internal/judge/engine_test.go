package judge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/phillipou/blossomer-cli-sub000/internal/dataset"
	"github.com/phillipou/blossomer-cli-sub000/internal/llm"
	"github.com/phillipou/blossomer-cli-sub000/internal/models"
)

var testModels = models.ModelConfig{Default: "gpt-5", Fallback: "gpt-4.1"}

func newTestEngine(client llm.Client, opts ...Option) *Engine {
	return NewEngine(client, NewLibrary(""), testModels, opts...)
}

func TestEngine_HappyPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := llm.NewMockClient(ctrl)

	client.EXPECT().
		Complete(gomock.Any(), gomock.Any()).
		Return(&llm.Response{
			Text:  businessInsightResponse,
			Usage: llm.Usage{PromptTokens: 120, CompletionTokens: 40},
		}, nil)

	engine := newTestEngine(client)
	result, usage, err := engine.EvaluateCategory(context.Background(),
		"email_generation", models.CategoryBusinessInsight, dataset.Row{}, `{"subject": "Hi"}`)
	require.NoError(t, err)

	require.Len(t, result.Checks, 2)
	assert.Equal(t, models.CategoryBusinessInsight, result.Category)
	assert.Equal(t, "insight_specificity", result.Checks[0].CheckName)
	assert.True(t, result.Checks[0].Pass)
	assert.Equal(t, models.RatingImpressive, result.Checks[0].Rating)
	assert.Equal(t, "business_relevance", result.Checks[1].CheckName)
	assert.False(t, result.Checks[1].Pass)
	assert.False(t, result.Pass)

	assert.Equal(t, int64(1), usage.JudgeCalls)
	assert.Equal(t, int64(120), usage.PromptTokens)
	assert.Equal(t, int64(40), usage.CompletionTokens)
}

func TestEngine_UnparseableResponseBecomesSingleSyntheticCheck(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := llm.NewMockClient(ctrl)

	client.EXPECT().
		Complete(gomock.Any(), gomock.Any()).
		Return(&llm.Response{Text: "not json"}, nil)

	engine := newTestEngine(client)
	result, usage, err := engine.EvaluateCategory(context.Background(),
		"email_generation", models.CategoryBusinessInsight, dataset.Row{}, `{"subject": "Hi"}`)

	require.Len(t, result.Checks, 1)
	synthetic := result.Checks[0]
	assert.Equal(t, "business_insight", synthetic.CheckName)
	assert.False(t, synthetic.Pass)
	assert.Contains(t, synthetic.Rationale, "Judge evaluation failed")
	assert.Contains(t, synthetic.Rationale, "not a JSON object")
	assert.False(t, result.Pass)

	var parseErr *models.JudgeParseError
	require.True(t, errors.As(err, &parseErr))
	var formatErr *ResponseFormatError
	assert.True(t, errors.As(err, &formatErr))

	// Parse failures are not retried.
	assert.Equal(t, int64(1), usage.JudgeCalls)
}

func TestEngine_MissingChecksBecomeSynthetic(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := llm.NewMockClient(ctrl)

	client.EXPECT().
		Complete(gomock.Any(), gomock.Any()).
		Return(&llm.Response{Text: `{"factual_grounding": {"pass": true, "rating": "sufficient", "rationale": "ok"}}`}, nil)

	engine := newTestEngine(client)
	result, _, err := engine.EvaluateCategory(context.Background(),
		"email_generation", models.CategoryContentIntegrity, dataset.Row{}, "{}")

	require.Len(t, result.Checks, 1)
	assert.Equal(t, "content_integrity", result.Checks[0].CheckName)
	assert.Contains(t, result.Checks[0].Rationale, "missing promised checks")
	assert.Contains(t, result.Checks[0].Rationale, "no_fabricated_details")

	var missingErr *MissingChecksError
	require.True(t, errors.As(err, &missingErr))
}

func TestEngine_FallbackRetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := llm.NewMockClient(ctrl)

	var seen []string
	client.EXPECT().
		Complete(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req llm.Request) (*llm.Response, error) {
			seen = append(seen, req.Model)
			if len(seen) == 1 {
				return nil, errors.New("connection reset")
			}
			return &llm.Response{Text: businessInsightResponse}, nil
		}).
		Times(2)

	engine := newTestEngine(client)
	result, usage, err := engine.EvaluateCategory(context.Background(),
		"email_generation", models.CategoryBusinessInsight, dataset.Row{}, "{}")
	require.NoError(t, err)

	assert.Equal(t, []string{"gpt-5", "gpt-4.1"}, seen)
	assert.Len(t, result.Checks, 2)
	assert.Equal(t, int64(2), usage.JudgeCalls)
}

func TestEngine_BothCallsFailBecomeSynthetic(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := llm.NewMockClient(ctrl)

	client.EXPECT().
		Complete(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection reset")).
		Times(2)

	engine := newTestEngine(client)
	result, usage, err := engine.EvaluateCategory(context.Background(),
		"email_generation", models.CategoryBusinessInsight, dataset.Row{}, "{}")

	require.Len(t, result.Checks, 1)
	assert.Equal(t, "business_insight", result.Checks[0].CheckName)
	assert.Contains(t, result.Checks[0].Rationale, "connection reset")
	assert.Contains(t, result.Checks[0].Rationale, "gpt-4.1")
	assert.Equal(t, int64(2), usage.JudgeCalls)

	var invErr *models.JudgeInvocationError
	require.True(t, errors.As(err, &invErr))
	assert.Equal(t, "gpt-4.1", invErr.Model)
}

func TestEngine_TimeoutIsProviderFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := llm.NewMockClient(ctrl)

	client.EXPECT().
		Complete(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ llm.Request) (*llm.Response, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}).
		Times(2)

	engine := newTestEngine(client, WithCallTimeout(20*time.Millisecond))
	result, _, err := engine.EvaluateCategory(context.Background(),
		"email_generation", models.CategoryBusinessInsight, dataset.Row{}, "{}")

	require.Len(t, result.Checks, 1)
	assert.Contains(t, result.Checks[0].Rationale, "deadline")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestEngine_OnlyWhitelistedFieldsReachThePrompt(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := llm.NewMockClient(ctrl)

	row := dataset.Row{
		"user_inputted_context": "They just hired three SDRs",
		"hypothesis":            "Outbound volume is about to spike",
		"expected_company_name": "Meridian Labs",
	}

	var captured llm.Request
	client.EXPECT().
		Complete(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req llm.Request) (*llm.Response, error) {
			captured = req
			return &llm.Response{Text: `{
				"context_usage": {"pass": true, "rating": "sufficient", "rationale": "ok"},
				"hypothesis_grounding": {"pass": true, "rating": "sufficient", "rationale": "ok"}
			}`}, nil
		})

	engine := newTestEngine(client)
	result, _, err := engine.EvaluateCategory(context.Background(),
		"email_generation", models.CategoryContextHandling, row, `{"subject": "Hi"}`)
	require.NoError(t, err)

	assert.True(t, result.Pass)
	assert.Contains(t, captured.User, "They just hired three SDRs")
	assert.Contains(t, captured.User, "Outbound volume is about to spike")
	assert.NotContains(t, captured.User, "Meridian Labs")
	assert.NotContains(t, captured.System, "Meridian Labs")

	// The literal inputs the judge saw are recorded on every check.
	for _, check := range result.Checks {
		fields := make(map[string]string)
		for _, fv := range check.InputsEvaluated {
			fields[fv.Field] = fv.Value
		}
		assert.Equal(t, `{"subject": "Hi"}`, fields["generated_output"])
		assert.Equal(t, "They just hired three SDRs", fields["user_inputted_context"])
		_, leaked := fields["expected_company_name"]
		assert.False(t, leaked)
	}
}

func TestEngine_EvaluateRunsCategoriesInConfiguredOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := llm.NewMockClient(ctrl)

	// One response that satisfies both categories; extra keys are ignored.
	combined := `{
		"factual_grounding": {"pass": true, "rating": "sufficient", "rationale": "ok"},
		"no_fabricated_details": {"pass": true, "rating": "sufficient", "rationale": "ok"},
		"internally_consistent": {"pass": true, "rating": "sufficient", "rationale": "ok"},
		"insight_specificity": {"pass": true, "rating": "impressive", "rationale": "ok"},
		"business_relevance": {"pass": true, "rating": "sufficient", "rationale": "ok"}
	}`
	client.EXPECT().
		Complete(gomock.Any(), gomock.Any()).
		Return(&llm.Response{Text: combined, Usage: llm.Usage{PromptTokens: 10, CompletionTokens: 5}}, nil).
		Times(2)

	engine := newTestEngine(client)
	cats := []models.JudgeCategory{models.CategoryContentIntegrity, models.CategoryBusinessInsight}
	results, usage, errs := engine.Evaluate(context.Background(), "email_generation", cats, dataset.Row{}, "{}")
	assert.Empty(t, errs)

	require.Len(t, results, 2)
	assert.Equal(t, models.CategoryContentIntegrity, results[0].Category)
	assert.Equal(t, models.CategoryBusinessInsight, results[1].Category)
	assert.Len(t, results[0].Checks, 3)
	assert.Len(t, results[1].Checks, 2)
	assert.True(t, results[0].Pass)

	assert.Equal(t, int64(2), usage.JudgeCalls)
	assert.Equal(t, int64(20), usage.PromptTokens)
	assert.Equal(t, int64(10), usage.CompletionTokens)
}

func TestEngine_RenderFailureBecomesSynthetic(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := llm.NewMockClient(ctrl)

	dir := t.TempDir()
	writeTemplate(t, dir, "user", "business_insight.tmpl", "{{.Fields.not_whitelisted}}")

	engine := NewEngine(client, NewLibrary(dir), testModels)
	result, usage, err := engine.EvaluateCategory(context.Background(),
		"email_generation", models.CategoryBusinessInsight, dataset.Row{}, "{}")

	require.Len(t, result.Checks, 1)
	assert.Contains(t, result.Checks[0].Rationale, "Judge evaluation failed")
	assert.Zero(t, usage.JudgeCalls)

	var invErr *models.JudgeInvocationError
	require.True(t, errors.As(err, &invErr))
}
