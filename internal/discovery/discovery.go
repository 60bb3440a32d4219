// Package discovery locates prompt evals under an evals root. The layout is
// fixed: prompts/<name>/config.yaml with an optional dataset beside it,
// schemas/ and results/ as siblings of prompts/.
package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/phillipou/blossomer-cli-sub000/internal/models"
)

// DiscoveredPrompt represents one prompt eval found under the evals root.
type DiscoveredPrompt struct {
	Name       string // directory name under prompts/
	ConfigPath string // absolute path to config.yaml
	DataPath   string // absolute path to the dataset (empty if not found)
	Dir        string // absolute path to the prompt directory
}

// HasData returns true if the prompt has a dataset file beside its config.
func (d DiscoveredPrompt) HasData() bool {
	return d.DataPath != ""
}

// Discover lists every directory under <root>/prompts carrying a config.yaml,
// sorted by name. Hidden directories are skipped.
func Discover(root string) ([]DiscoveredPrompt, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving evals root: %w", err)
	}

	promptsDir := filepath.Join(absRoot, "prompts")
	entries, err := os.ReadDir(promptsDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &models.ConfigError{Message: fmt.Sprintf("evals root %s has no prompts directory", absRoot)}
	}
	if err != nil {
		return nil, fmt.Errorf("evals root: %w", err)
	}

	var prompts []DiscoveredPrompt
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		dir := filepath.Join(promptsDir, entry.Name())
		configPath := filepath.Join(dir, "config.yaml")
		if !fileExists(configPath) {
			continue
		}

		prompts = append(prompts, DiscoveredPrompt{
			Name:       entry.Name(),
			ConfigPath: configPath,
			DataPath:   findDataset(dir),
			Dir:        dir,
		})
	}

	return prompts, nil
}

// FindPrompt returns the named prompt. An unknown name is a config error
// listing what is available, so the CLI exits with the validation code.
func FindPrompt(root, name string) (DiscoveredPrompt, error) {
	prompts, err := Discover(root)
	if err != nil {
		return DiscoveredPrompt{}, err
	}

	var names []string
	for _, p := range prompts {
		if p.Name == name {
			return p, nil
		}
		names = append(names, p.Name)
	}

	if len(names) == 0 {
		return DiscoveredPrompt{}, &models.ConfigError{
			Message: fmt.Sprintf("prompt %q not found: no prompt evals under %s", name, filepath.Join(root, "prompts")),
		}
	}
	return DiscoveredPrompt{}, &models.ConfigError{
		Message: fmt.Sprintf("prompt %q not found; available prompts: %s", name, strings.Join(names, ", ")),
	}
}

// SchemaPath resolves a config's schema reference against the evals root.
func SchemaPath(root, schemaRef string) string {
	return filepath.Join(root, "schemas", schemaRef)
}

// ResultsDir returns where run artifacts for this evals root are stored.
func ResultsDir(root string) string {
	return filepath.Join(root, "results")
}

// findDataset looks for the dataset beside a config in priority order:
// data.csv over data.csv.gz.
func findDataset(promptDir string) string {
	candidates := []string{
		filepath.Join(promptDir, "data.csv"),
		filepath.Join(promptDir, "data.csv.gz"),
	}

	for _, c := range candidates {
		if fileExists(c) {
			return c
		}
	}
	return ""
}

// fileExists checks if a path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
