package models

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CheckID identifies a deterministic check (e.g. json_validity, field_cardinality).
type CheckID string

const (
	CheckJSONValidity        CheckID = "json_validity"
	CheckSchemaCompliance    CheckID = "schema_compliance"
	CheckFormatCompliance    CheckID = "format_compliance"
	CheckFieldCardinality    CheckID = "field_cardinality"
	CheckIdentityConsistency CheckID = "identity_consistency"
)

// JudgeCategory identifies a group of qualitative checks serviced by a single LLM call.
type JudgeCategory string

const (
	CategoryContentIntegrity        JudgeCategory = "content_integrity"
	CategoryBusinessInsight         JudgeCategory = "business_insight"
	CategoryAccountTargetingQuality JudgeCategory = "account_targeting_quality"
	CategoryPersonaTargetingQuality JudgeCategory = "persona_targeting_quality"
	CategoryContextHandling         JudgeCategory = "context_handling"
)

// KnownCheckIDs returns every deterministic check id in registry order.
// Structural checks come first; execution follows this order.
func KnownCheckIDs() []CheckID {
	return []CheckID{
		CheckJSONValidity,
		CheckSchemaCompliance,
		CheckFormatCompliance,
		CheckFieldCardinality,
		CheckIdentityConsistency,
	}
}

// KnownJudgeCategories returns every judge category name in registry order.
func KnownJudgeCategories() []JudgeCategory {
	return []JudgeCategory{
		CategoryContentIntegrity,
		CategoryBusinessInsight,
		CategoryAccountTargetingQuality,
		CategoryPersonaTargetingQuality,
		CategoryContextHandling,
	}
}

// IsKnownCheckID reports whether id names a registered deterministic check.
func IsKnownCheckID(id CheckID) bool {
	for _, known := range KnownCheckIDs() {
		if id == known {
			return true
		}
	}
	return false
}

// IsKnownJudgeCategory reports whether cat names a registered judge category.
func IsKnownJudgeCategory(cat JudgeCategory) bool {
	for _, known := range KnownJudgeCategories() {
		if cat == known {
			return true
		}
	}
	return false
}

// PromptEvalConfig describes how one prompt's outputs are evaluated.
type PromptEvalConfig struct {
	Name    string         `yaml:"name"`
	Service ServiceRef     `yaml:"service"`
	Schema  string         `yaml:"schema"`
	Judges  JudgeSelection `yaml:"judges"`
	Models  ModelConfig    `yaml:"models"`

	// SampleSize limits how many dataset rows are evaluated per run.
	// Zero means the full dataset. The run command flag overrides it.
	SampleSize int `yaml:"sample_size,omitempty"`
}

// ServiceRef names the generation service under evaluation. Module and
// function are resolved against the service registry at load time.
type ServiceRef struct {
	Module   string `yaml:"module"`
	Function string `yaml:"function"`
}

func (s ServiceRef) String() string {
	return s.Module + "." + s.Function
}

// JudgeSelection lists the configured deterministic checks and LLM judge categories.
type JudgeSelection struct {
	Deterministic []CheckSelection `yaml:"deterministic"`
	LLM           []JudgeCategory  `yaml:"llm"`
}

// CheckSelection is one entry under judges.deterministic: either a bare
// check id or a mapping carrying per-check options.
type CheckSelection struct {
	Name    CheckID
	Options map[string]any
}

func (c *CheckSelection) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var name string
		if err := node.Decode(&name); err != nil {
			return err
		}
		c.Name = CheckID(name)
		return nil
	case yaml.MappingNode:
		var raw struct {
			Name    string         `yaml:"name"`
			Options map[string]any `yaml:"options"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		c.Name = CheckID(raw.Name)
		c.Options = raw.Options
		return nil
	default:
		return fmt.Errorf("deterministic check entry must be a string or a mapping (line %d)", node.Line)
	}
}

// ModelConfig holds the judge model identifiers.
type ModelConfig struct {
	Default  string `yaml:"default"`
	Fallback string `yaml:"fallback,omitempty"`
}

// FallbackModel returns the retry model, falling back to the default
// when no distinct fallback is configured.
func (m ModelConfig) FallbackModel() string {
	if m.Fallback != "" {
		return m.Fallback
	}
	return m.Default
}

// LoadPromptEvalConfig loads a prompt evaluation config from a YAML file.
func LoadPromptEvalConfig(path string) (*PromptEvalConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg PromptEvalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigError{Message: fmt.Sprintf("parsing %s: %v", path, err)}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the config against the closed check and judge registries.
// Unknown names are rejected here, before any test case runs.
func (c *PromptEvalConfig) Validate() error {
	if c.Name == "" {
		return &ConfigError{Message: "name must not be empty"}
	}
	if c.Service.Module == "" || c.Service.Function == "" {
		return &ConfigError{Message: fmt.Sprintf("config %q: service.module and service.function are required", c.Name)}
	}
	if c.Schema == "" {
		return &ConfigError{Message: fmt.Sprintf("config %q: schema is required", c.Name)}
	}
	if len(c.Judges.Deterministic) == 0 && len(c.Judges.LLM) == 0 {
		return &ConfigError{Message: fmt.Sprintf("config %q: at least one deterministic check or llm judge is required", c.Name)}
	}
	if c.SampleSize < 0 {
		return &ConfigError{Message: fmt.Sprintf("config %q: sample_size must not be negative, got %d", c.Name, c.SampleSize)}
	}

	seen := map[CheckID]bool{}
	for _, sel := range c.Judges.Deterministic {
		if !IsKnownCheckID(sel.Name) {
			return &ConfigError{Message: fmt.Sprintf(
				"config %q: unknown deterministic check %q; valid checks are: %s",
				c.Name, sel.Name, joinCheckIDs(KnownCheckIDs()))}
		}
		if seen[sel.Name] {
			return &ConfigError{Message: fmt.Sprintf("config %q: duplicate deterministic check %q", c.Name, sel.Name)}
		}
		seen[sel.Name] = true
	}

	seenCat := map[JudgeCategory]bool{}
	for _, cat := range c.Judges.LLM {
		if !IsKnownJudgeCategory(cat) {
			return &ConfigError{Message: fmt.Sprintf(
				"config %q: unknown judge category %q; valid categories are: %s",
				c.Name, cat, joinCategories(KnownJudgeCategories()))}
		}
		if seenCat[cat] {
			return &ConfigError{Message: fmt.Sprintf("config %q: duplicate judge category %q", c.Name, cat)}
		}
		seenCat[cat] = true
	}

	if c.Models.Default == "" {
		return &ConfigError{Message: fmt.Sprintf("config %q: models.default is required", c.Name)}
	}

	return nil
}

func joinCheckIDs(ids []CheckID) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	return strings.Join(names, ", ")
}

func joinCategories(cats []JudgeCategory) string {
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
