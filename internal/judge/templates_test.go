package judge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phillipou/blossomer-cli-sub000/internal/models"
	"github.com/phillipou/blossomer-cli-sub000/internal/template"
)

func writeTemplate(t *testing.T, dir, kind, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, kind), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, kind, name), []byte(content), 0o644))
}

func TestLibrary_BuiltinsCoverEveryCategory(t *testing.T) {
	lib := NewLibrary("")

	for _, cat := range models.KnownJudgeCategories() {
		system, err := lib.Source(SystemTemplate, cat)
		require.NoError(t, err, cat)
		user, err := lib.Source(UserTemplate, cat)
		require.NoError(t, err, cat)

		// The system prompt must name every check it promises to score.
		for _, check := range PromisedChecks(cat) {
			assert.Contains(t, system, check, "system template for %s", cat)
		}
		assert.Contains(t, user, "{{.Output}}", "user template for %s", cat)
	}
}

func TestLibrary_UserTemplatesRenderWithWhitelistedFields(t *testing.T) {
	lib := NewLibrary("")

	for _, cat := range models.KnownJudgeCategories() {
		fields := make(map[string]string)
		for _, name := range ContextFields(cat) {
			fields[name] = "value-" + name
		}
		out, err := lib.Render(UserTemplate, cat, &template.Context{
			PromptName: "email_generation",
			Category:   string(cat),
			Output:     `{"subject": "Hi"}`,
			Fields:     fields,
		})
		require.NoError(t, err, cat)
		assert.Contains(t, out, `{"subject": "Hi"}`)
	}
}

func TestLibrary_OverrideShadowsBuiltin(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "system", "content_integrity.tmpl", "custom rubric for {{.Category}}")

	lib := NewLibrary(dir)

	system, err := lib.Render(SystemTemplate, models.CategoryContentIntegrity, &template.Context{
		Category: "content_integrity",
	})
	require.NoError(t, err)
	assert.Equal(t, "custom rubric for content_integrity", system)

	// Only the overridden file is shadowed.
	user, err := lib.Source(UserTemplate, models.CategoryContentIntegrity)
	require.NoError(t, err)
	assert.Contains(t, user, "{{.Output}}")
}

func TestLibrary_UnknownCategoryHasNoTemplate(t *testing.T) {
	lib := NewLibrary("")
	_, err := lib.Source(SystemTemplate, models.JudgeCategory("made_up"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no built-in")
}
