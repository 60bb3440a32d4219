package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/phillipou/blossomer-cli-sub000/internal/models"
)

func newDocsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Documentation utilities",
	}
	cmd.AddCommand(newDocsLinksCommand())
	return cmd
}

func newDocsLinksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "links [dir]",
		Short: "Check relative links in markdown docs",
		Long: `Check every relative link and image reference in the markdown files under
a directory (default: docs). External URLs are not fetched; links that step
outside the directory are followed as long as the target exists.`,
		Args: cobra.MaximumNArgs(1),
		RunE: docsLinksE,
	}
}

// linkIssue describes a single link problem found during validation.
type linkIssue struct {
	Source string // source file, relative to the scanned directory
	Target string // link target as written
	Reason string
}

func docsLinksE(cmd *cobra.Command, args []string) error {
	dir := "docs"
	if len(args) == 1 {
		dir = args[0]
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", dir, err)
	}
	if info, err := os.Stat(absDir); err != nil || !info.IsDir() {
		return &models.ConfigError{Message: fmt.Sprintf("%s is not a directory", dir)}
	}

	issues, total := checkDocLinks(absDir)

	out := cmd.OutOrStdout()
	if len(issues) == 0 {
		fmt.Fprintf(out, "✓ %d relative link(s) OK under %s\n", total, dir) //nolint:errcheck
		return nil
	}

	for _, issue := range issues {
		fmt.Fprintf(out, "  ✗ %s → %s: %s\n", issue.Source, issue.Target, issue.Reason) //nolint:errcheck
	}
	return fmt.Errorf("%d broken link(s) under %s", len(issues), dir)
}

// checkDocLinks validates every relative markdown link under dir and returns
// the problems plus the number of links inspected.
func checkDocLinks(dir string) (issues []linkIssue, total int) {
	for _, file := range collectMarkdownFiles(dir) {
		relPath, _ := filepath.Rel(dir, file)
		relPath = filepath.ToSlash(relPath)

		for _, target := range extractLinkTargets(file) {
			if isExternalURL(target) || strings.HasPrefix(target, "mailto:") {
				continue
			}
			local := stripFragment(target)
			if local == "" {
				continue // fragment-only link within the same file
			}
			total++

			resolved := filepath.Clean(filepath.Join(filepath.Dir(file), filepath.FromSlash(local)))
			info, err := os.Stat(resolved)
			if err != nil {
				issues = append(issues, linkIssue{Source: relPath, Target: target, Reason: "target does not exist"})
				continue
			}
			if info.IsDir() {
				issues = append(issues, linkIssue{Source: relPath, Target: target, Reason: "target is a directory, not a file"})
			}
		}
	}
	return issues, total
}

// collectMarkdownFiles walks dir and returns paths to .md and .mdx files.
func collectMarkdownFiles(dir string) []string {
	var files []string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".md" || ext == ".mdx" {
			files = append(files, path)
		}
		return nil
	})
	return files
}

// extractLinkTargets parses a markdown file and returns all link and image
// destinations.
func extractLinkTargets(filePath string) []string {
	source, err := os.ReadFile(filePath)
	if err != nil {
		return nil
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	var targets []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Link:
			targets = append(targets, string(v.Destination))
		case *ast.Image:
			targets = append(targets, string(v.Destination))
		}
		return ast.WalkContinue, nil
	})
	return targets
}

// isExternalURL returns true for http:// and https:// URLs.
func isExternalURL(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}

// stripFragment removes the #fragment portion of a URL or path.
func stripFragment(target string) string {
	if idx := strings.Index(target, "#"); idx >= 0 {
		return target[:idx]
	}
	return target
}
