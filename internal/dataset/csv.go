package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Row is a single test case: one CSV row mapping column name to value.
type Row map[string]string

// ID returns the stable test case id for a row: the value of the id column
// when present, otherwise case-N for the 1-based dataset position.
func (r Row) ID(position int) string {
	if id := strings.TrimSpace(r["id"]); id != "" {
		return id
	}
	return fmt.Sprintf("case-%d", position)
}

// LoadCSV reads a dataset file and returns rows as maps of column to value.
// The first row is treated as headers (column names). Files ending in .gz
// are decompressed transparently.
func LoadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	var src io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("dataset: gzip %s: %w", path, err)
		}
		defer gz.Close() //nolint:errcheck
		src = gz
	}

	records, err := csv.NewReader(src).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: parse %s: %w", path, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("dataset: %s is empty (no header row)", path)
	}

	headers := records[0]
	rows := make([]Row, 0, len(records)-1)

	for i, record := range records[1:] {
		if len(record) != len(headers) {
			return nil, fmt.Errorf("dataset: row %d has %d columns, expected %d", i+2, len(record), len(headers))
		}
		row := make(Row, len(headers))
		for j, h := range headers {
			row[h] = record[j]
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// Resolve returns the dataset path for a prompt directory, preferring
// data.csv and falling back to data.csv.gz.
func Resolve(promptDir string) (string, error) {
	candidates := []string{"data.csv", "data.csv.gz"}
	for _, name := range candidates {
		path := filepath.Join(promptDir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("dataset: no data.csv or data.csv.gz in %s", promptDir)
}
