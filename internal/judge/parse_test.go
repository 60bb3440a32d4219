package judge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phillipou/blossomer-cli-sub000/internal/models"
)

const businessInsightResponse = `{
	"insight_specificity": {"pass": true, "rating": "impressive", "rationale": "Names the support hub expansion directly."},
	"business_relevance": {"pass": false, "rating": "poor", "rationale": "Never ties the observation to revenue or cost."}
}`

func TestParseResponse(t *testing.T) {
	verdicts, err := parseResponse(models.CategoryBusinessInsight, businessInsightResponse)
	require.NoError(t, err)
	require.Len(t, verdicts, 2)

	spec := verdicts["insight_specificity"]
	require.NotNil(t, spec.Pass)
	assert.True(t, *spec.Pass)
	assert.Equal(t, "impressive", spec.Rating)
	assert.Contains(t, spec.Rationale, "support hub")

	rel := verdicts["business_relevance"]
	require.NotNil(t, rel.Pass)
	assert.False(t, *rel.Pass)
}

func TestParseResponse_FencedJSON(t *testing.T) {
	fenced := "```json\n" + businessInsightResponse + "\n```"
	verdicts, err := parseResponse(models.CategoryBusinessInsight, fenced)
	require.NoError(t, err)
	assert.Len(t, verdicts, 2)
}

func TestParseResponse_ExtraKeysIgnored(t *testing.T) {
	withExtra := `{
		"insight_specificity": {"pass": true, "rating": "sufficient", "rationale": "ok"},
		"business_relevance": {"pass": true, "rating": "sufficient", "rationale": "ok"},
		"overall_vibe": {"pass": true, "rating": "impressive", "rationale": "unrequested"}
	}`
	verdicts, err := parseResponse(models.CategoryBusinessInsight, withExtra)
	require.NoError(t, err)
	assert.Len(t, verdicts, 2)
	_, ok := verdicts["overall_vibe"]
	assert.False(t, ok)
}

func TestParseResponse_NotJSON(t *testing.T) {
	_, err := parseResponse(models.CategoryBusinessInsight, "not json")
	require.Error(t, err)

	var formatErr *ResponseFormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Contains(t, formatErr.Reason, "not a JSON object")
	assert.Equal(t, "not json", formatErr.Raw)
}

func TestParseResponse_JSONNull(t *testing.T) {
	_, err := parseResponse(models.CategoryBusinessInsight, "null")
	var formatErr *ResponseFormatError
	require.True(t, errors.As(err, &formatErr))
}

func TestParseResponse_MissingChecks(t *testing.T) {
	_, err := parseResponse(models.CategoryContentIntegrity, `{
		"factual_grounding": {"pass": true, "rating": "sufficient", "rationale": "ok"}
	}`)
	require.Error(t, err)

	var missingErr *MissingChecksError
	require.True(t, errors.As(err, &missingErr))
	assert.Equal(t, models.CategoryContentIntegrity, missingErr.Category)
	assert.Equal(t, []string{"no_fabricated_details", "internally_consistent"}, missingErr.Missing)
}

func TestParseResponse_NoPassVerdict(t *testing.T) {
	_, err := parseResponse(models.CategoryBusinessInsight, `{
		"insight_specificity": {"rating": "poor", "rationale": "no verdict given"},
		"business_relevance": {"pass": true, "rating": "sufficient", "rationale": "ok"}
	}`)
	var formatErr *ResponseFormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Contains(t, formatErr.Reason, "no pass verdict")
}

func TestParseResponse_UnknownRating(t *testing.T) {
	_, err := parseResponse(models.CategoryBusinessInsight, `{
		"insight_specificity": {"pass": true, "rating": "stellar", "rationale": "ok"},
		"business_relevance": {"pass": true, "rating": "sufficient", "rationale": "ok"}
	}`)
	var formatErr *ResponseFormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Contains(t, formatErr.Reason, `unknown rating "stellar"`)
}
