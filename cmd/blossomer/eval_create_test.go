package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phillipou/blossomer-cli-sub000/internal/models"
)

func TestCreateCommand_WritesConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	root := t.TempDir()

	output, err := runEval(t, "create", "outreach_email", "--evals-dir", root,
		"--service-module", "email_generation",
		"--service-function", "generate_email")
	require.NoError(t, err)

	assert.Contains(t, output, "Scaffolding prompt eval:")
	assert.Contains(t, output, "Next: blossomer eval validate outreach_email")

	configPath := filepath.Join(root, "prompts", "outreach_email", "config.yaml")
	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "module: email_generation")
	assert.Contains(t, string(data), "function: generate_email")

	assert.NoFileExists(t, filepath.Join(root, "prompts", "outreach_email", "data.csv"))
	assert.NoFileExists(t, filepath.Join(root, "schemas", "outreach_email.json"))
}

func TestCreateCommand_SampleDataAndSchema(t *testing.T) {
	t.Chdir(t.TempDir())
	root := t.TempDir()

	_, err := runEval(t, "create", "outreach_email", "--evals-dir", root,
		"--service-module", "email_generation",
		"--service-function", "generate_email",
		"--create-sample-data")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(root, "prompts", "outreach_email", "data.csv"))
	assert.FileExists(t, filepath.Join(root, "schemas", "outreach_email.json"))
}

func TestCreateCommand_SkipsExistingFiles(t *testing.T) {
	t.Chdir(t.TempDir())
	root := t.TempDir()
	args := []string{"create", "outreach_email", "--evals-dir", root,
		"--service-module", "email_generation",
		"--service-function", "generate_email"}

	_, err := runEval(t, args...)
	require.NoError(t, err)

	configPath := filepath.Join(root, "prompts", "outreach_email", "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("# edited by hand\n"), 0o644))

	output, err := runEval(t, args...)
	require.NoError(t, err)
	assert.Contains(t, output, "skip")

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, "# edited by hand\n", string(data), "existing files must not be overwritten")
}

func TestCreateCommand_RejectsBadName(t *testing.T) {
	t.Chdir(t.TempDir())
	root := t.TempDir()

	_, err := runEval(t, "create", "Bad/Name", "--evals-dir", root,
		"--service-module", "email_generation",
		"--service-function", "generate_email")
	require.Error(t, err)

	var configErr *models.ConfigError
	assert.True(t, errors.As(err, &configErr))
}

func TestCreateCommand_NonTTYRequiresServiceFlags(t *testing.T) {
	t.Chdir(t.TempDir())
	root := t.TempDir()

	cmd := newEvalCommand()
	cmd.SetIn(strings.NewReader(""))
	cmd.SetOut(&strings.Builder{})
	cmd.SetErr(&strings.Builder{})
	cmd.SetArgs([]string{"create", "outreach_email", "--evals-dir", root})

	err := cmd.Execute()
	require.Error(t, err)

	var configErr *models.ConfigError
	require.True(t, errors.As(err, &configErr))
	assert.Contains(t, configErr.Message, "service module and function are required")
}

func TestCreateCommand_ScaffoldValidates(t *testing.T) {
	t.Chdir(t.TempDir())
	root := t.TempDir()

	_, err := runEval(t, "create", "outreach_email", "--evals-dir", root,
		"--service-module", "email_generation",
		"--service-function", "generate_email",
		"--create-sample-data")
	require.NoError(t, err)

	output, err := runEval(t, "validate", "outreach_email", "--evals-dir", root)
	require.NoError(t, err)
	assert.Contains(t, output, "✓ outreach_email is valid")
	assert.Contains(t, output, "dataset: 3 row(s)")
}
