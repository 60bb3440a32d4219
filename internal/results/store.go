package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/phillipou/blossomer-cli-sub000/internal/models"
)

// artifactPattern matches <prompt>_<YYYYMMDD>_<HHMMSS>[_<n>].json. Prompt
// names may themselves contain underscores, so the timestamp anchors the split.
var artifactPattern = regexp.MustCompile(`^(.+)_(\d{8})_(\d{6})(?:_(\d+))?\.json$`)

const timestampLayout = "20060102_150405"

// Entry describes one stored run artifact.
type Entry struct {
	Prompt    string
	Path      string
	Timestamp time.Time
}

// Store persists evaluation runs as timestamped JSON artifacts in a single
// directory. Artifacts are append-only: Save never rewrites an existing file.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore creates a store rooted at dir, typically <evals-root>/results.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory artifacts are written to.
func (s *Store) Dir() string { return s.dir }

// Save writes run as a new artifact named <prompt>_<YYYYMMDD>_<HHMMSS>.json
// and returns its path. A same-second collision gets a numeric suffix rather
// than overwriting the earlier artifact.
func (s *Store) Save(run *models.EvaluationRun) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("results: creating directory: %w", err)
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return "", fmt.Errorf("results: marshaling run: %w", err)
	}

	ts := run.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	base := fmt.Sprintf("%s_%s", run.PromptName, ts.UTC().Format(timestampLayout))

	path := filepath.Join(s.dir, base+".json")
	for n := 2; fileExists(path); n++ {
		path = filepath.Join(s.dir, fmt.Sprintf("%s_%d.json", base, n))
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("results: writing artifact: %w", err)
	}
	return path, nil
}

// List returns stored artifacts newest first. An empty prompt lists every
// prompt; a missing results directory is an empty list, not an error.
func (s *Store) List(prompt string) ([]Entry, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("results: reading directory: %w", err)
	}

	var out []Entry
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := artifactPattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		if prompt != "" && m[1] != prompt {
			continue
		}
		ts, err := time.Parse(timestampLayout, m[2]+"_"+m[3])
		if err != nil {
			continue
		}
		out = append(out, Entry{
			Prompt:    m[1],
			Path:      filepath.Join(s.dir, entry.Name()),
			Timestamp: ts,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].Path > out[j].Path
	})
	return out, nil
}

// Latest loads the newest artifact for a prompt. Missing or unreadable
// artifacts are a miss, not an error.
func (s *Store) Latest(prompt string) (*models.EvaluationRun, bool) {
	entries, err := s.List(prompt)
	if err != nil || len(entries) == 0 {
		return nil, false
	}
	run, err := Load(entries[0].Path)
	if err != nil {
		return nil, false
	}
	return run, true
}

// Load reads one artifact back into an EvaluationRun.
func Load(path string) (*models.EvaluationRun, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("results: reading artifact: %w", err)
	}
	var run models.EvaluationRun
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("results: parsing %s: %w", filepath.Base(path), err)
	}
	return &run, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
