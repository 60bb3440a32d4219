// Package projectconfig provides the ProjectConfig struct and loader for
// .blossomer.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the project config file looked up from the working
// directory upward.
const ConfigFileName = ".blossomer.yaml"

// Default values for project configuration. New() references them; command
// flags override whatever Load returns.
const (
	DefaultEvalsDir = "evals"

	DefaultJudgeModel    = "gpt-5"
	DefaultFallbackModel = "gpt-4.1"

	DefaultConcurrency      = 3
	DefaultJudgeTimeoutSec  = 60
	DefaultJudgeMaxParallel = 3
)

// PathsConfig holds the evals root directory.
type PathsConfig struct {
	Evals string `yaml:"evals,omitempty"`
}

// DefaultsConfig holds default run parameters.
type DefaultsConfig struct {
	Model       string `yaml:"model,omitempty"`
	Fallback    string `yaml:"fallback,omitempty"`
	Concurrency int    `yaml:"concurrency,omitempty"`
	SampleSize  int    `yaml:"sample_size,omitempty"`
	Verbose     *bool  `yaml:"verbose,omitempty"`
}

// JudgeConfig holds judge call settings.
type JudgeConfig struct {
	TimeoutSec  int `yaml:"timeout_sec,omitempty"`
	MaxParallel int `yaml:"max_parallel,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .blossomer.yaml.
type ProjectConfig struct {
	Paths    PathsConfig    `yaml:"paths,omitempty"`
	Defaults DefaultsConfig `yaml:"defaults,omitempty"`
	Judge    JudgeConfig    `yaml:"judge,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Paths: PathsConfig{
			Evals: DefaultEvalsDir,
		},
		Defaults: DefaultsConfig{
			Model:       DefaultJudgeModel,
			Fallback:    DefaultFallbackModel,
			Concurrency: DefaultConcurrency,
			Verbose:     boolPtr(false),
		},
		Judge: JudgeConfig{
			TimeoutSec:  DefaultJudgeTimeoutSec,
			MaxParallel: DefaultJudgeMaxParallel,
		},
	}
}

// Load finds .blossomer.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // no file found, use defaults
		}
		return nil, fmt.Errorf("loading %s: %w", ConfigFileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ConfigFileName, err)
	}

	mergeConfig(cfg, &fileCfg)
	return cfg, nil
}

// findConfigFile walks up from dir looking for .blossomer.yaml (max 10
// levels). Returns os.ErrNotExist if no config file is found. Propagates
// real I/O errors (e.g. permission denied) instead of silently swallowing them.
func findConfigFile(dir string) ([]byte, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, ConfigFileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	if src.Paths.Evals != "" {
		dst.Paths.Evals = src.Paths.Evals
	}

	if src.Defaults.Model != "" {
		dst.Defaults.Model = src.Defaults.Model
	}
	if src.Defaults.Fallback != "" {
		dst.Defaults.Fallback = src.Defaults.Fallback
	}
	if src.Defaults.Concurrency != 0 {
		dst.Defaults.Concurrency = src.Defaults.Concurrency
	}
	if src.Defaults.SampleSize != 0 {
		dst.Defaults.SampleSize = src.Defaults.SampleSize
	}
	if src.Defaults.Verbose != nil {
		dst.Defaults.Verbose = src.Defaults.Verbose
	}

	if src.Judge.TimeoutSec != 0 {
		dst.Judge.TimeoutSec = src.Judge.TimeoutSec
	}
	if src.Judge.MaxParallel != 0 {
		dst.Judge.MaxParallel = src.Judge.MaxParallel
	}
}

func boolPtr(b bool) *bool {
	return &b
}
