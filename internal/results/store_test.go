package results

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phillipou/blossomer-cli-sub000/internal/models"
)

func sampleRun(prompt string, ts time.Time) *models.EvaluationRun {
	return &models.EvaluationRun{
		RunID:      "run-1",
		PromptName: prompt,
		Timestamp:  ts,
		TestCases:  models.TestCaseStats{Total: 2, Passed: 1, Failed: 1, PassRate: 0.5},
		DetailedResults: []models.TestCaseResult{
			{
				TestCaseID: "case-1",
				Deterministic: models.DeterministicResults{
					Checks: []models.CheckResult{{
						CheckName:       "json_validity",
						Description:     "output parses as a JSON object",
						InputsEvaluated: []models.FieldValue{{Field: "generated_output", Value: `{"subject": "Hi"}`}},
						Pass:            true,
						Rationale:       "Output is a valid JSON object",
					}},
					OverallPass: true,
				},
			},
		},
	}
}

func TestStore_SaveUsesTimestampedName(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	path, err := NewStore(dir).Save(sampleRun("email_generation", ts))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "email_generation_20250314_092653.json"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestStore_SaveNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	store := NewStore(dir)

	first, err := store.Save(sampleRun("email_generation", ts))
	require.NoError(t, err)
	second, err := store.Save(sampleRun("email_generation", ts))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.FileExists(t, first)
	assert.FileExists(t, second)
	assert.Contains(t, second, "email_generation_20250314_092653_2.json")
}

func TestStore_RoundTripPreservesInspectedValues(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	path, err := NewStore(dir).Save(sampleRun("email_generation", ts))
	require.NoError(t, err)

	run, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "email_generation", run.PromptName)
	require.Len(t, run.DetailedResults, 1)

	check := run.DetailedResults[0].Deterministic.Checks[0]
	require.Len(t, check.InputsEvaluated, 1)
	assert.Equal(t, "generated_output", check.InputsEvaluated[0].Field)
	assert.Equal(t, `{"subject": "Hi"}`, check.InputsEvaluated[0].Value)
}

func TestStore_ListNewestFirstAndFiltered(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	times := []time.Time{
		time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 13, 9, 0, 0, 0, time.UTC),
	}
	for _, ts := range times {
		_, err := store.Save(sampleRun("email_generation", ts))
		require.NoError(t, err)
	}
	_, err := store.Save(sampleRun("persona_generation", times[0]))
	require.NoError(t, err)

	entries, err := store.List("email_generation")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC), entries[0].Timestamp)
	assert.Equal(t, time.Date(2025, 3, 13, 9, 0, 0, 0, time.UTC), entries[2].Timestamp)

	all, err := store.List("")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestStore_ListIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "badname.json"), []byte("{}"), 0o644))

	entries, err := NewStore(dir).List("")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_ListMissingDirIsEmpty(t *testing.T) {
	entries, err := NewStore(filepath.Join(t.TempDir(), "nope")).List("")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_Latest(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	_, ok := store.Latest("email_generation")
	assert.False(t, ok, "no artifacts yet")

	old := sampleRun("email_generation", time.Date(2025, 3, 13, 9, 0, 0, 0, time.UTC))
	old.RunID = "older"
	_, err := store.Save(old)
	require.NoError(t, err)

	newer := sampleRun("email_generation", time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC))
	newer.RunID = "newer"
	_, err = store.Save(newer)
	require.NoError(t, err)

	run, ok := store.Latest("email_generation")
	require.True(t, ok)
	assert.Equal(t, "newer", run.RunID)
}

func TestLoad_RejectsCorruptArtifact(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "email_generation_20250314_092653.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing email_generation_20250314_092653.json")
}
