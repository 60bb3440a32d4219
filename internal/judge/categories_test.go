package judge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phillipou/blossomer-cli-sub000/internal/dataset"
	"github.com/phillipou/blossomer-cli-sub000/internal/models"
)

func TestEveryCategoryPromisesNamedChecks(t *testing.T) {
	seen := make(map[string]models.JudgeCategory)
	for _, cat := range models.KnownJudgeCategories() {
		checks := PromisedChecks(cat)
		require.NotEmpty(t, checks, "category %s promises no checks", cat)
		require.NotEmpty(t, ContextFields(cat), "category %s has no context whitelist", cat)

		for _, name := range checks {
			if other, dup := seen[name]; dup {
				t.Fatalf("check %q promised by both %s and %s", name, other, cat)
			}
			seen[name] = cat
			assert.NotEmpty(t, CheckDescription(name), "check %s has no description", name)
		}
	}
}

func TestPromisedChecksReturnsACopy(t *testing.T) {
	first := PromisedChecks(models.CategoryBusinessInsight)
	first[0] = "tampered"

	second := PromisedChecks(models.CategoryBusinessInsight)
	assert.Equal(t, "insight_specificity", second[0])
}

func TestWhitelistedContextFillsAbsentColumns(t *testing.T) {
	fields := whitelistedContext(models.CategoryContextHandling, dataset.Row{
		"user_inputted_context": "ctx",
	})
	assert.Equal(t, "ctx", fields["user_inputted_context"])

	// Absent columns still get a key so templates never hit a missing map entry.
	val, ok := fields["hypothesis"]
	assert.True(t, ok)
	assert.Equal(t, "", val)
}
