package judge

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/phillipou/blossomer-cli-sub000/internal/models"
	"github.com/phillipou/blossomer-cli-sub000/internal/template"
)

//go:embed templates
var builtinTemplates embed.FS

// TemplateKind selects the system or user half of a judge prompt pair.
type TemplateKind string

const (
	SystemTemplate TemplateKind = "system"
	UserTemplate   TemplateKind = "user"
)

// Library resolves judge prompt templates. Files under the override
// directory (laid out as <dir>/{system,user}/<category>.tmpl) shadow the
// built-in defaults, so a judge can be tuned without a rebuild.
type Library struct {
	overrideDir string
}

func NewLibrary(overrideDir string) *Library {
	return &Library{overrideDir: overrideDir}
}

// Source returns the raw template text for one half of a category's prompt.
func (l *Library) Source(kind TemplateKind, cat models.JudgeCategory) (string, error) {
	name := string(cat) + ".tmpl"

	if l.overrideDir != "" {
		override := filepath.Join(l.overrideDir, string(kind), name)
		data, err := os.ReadFile(override)
		if err == nil {
			return string(data), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("judge: read template override %s: %w", override, err)
		}
	}

	data, err := fs.ReadFile(builtinTemplates, path.Join("templates", string(kind), name))
	if err != nil {
		return "", fmt.Errorf("judge: no built-in %s template for category %s: %w", kind, cat, err)
	}
	return string(data), nil
}

// Render produces the final prompt text for one category and test case.
func (l *Library) Render(kind TemplateKind, cat models.JudgeCategory, ctx *template.Context) (string, error) {
	src, err := l.Source(kind, cat)
	if err != nil {
		return "", err
	}
	return template.Render(src, ctx)
}
