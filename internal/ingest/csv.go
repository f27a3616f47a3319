package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// table is one parsed CSV file: rows addressable by column name. The export
// CSVs vary in column order between tables, so everything goes through the
// header index.
type table struct {
	header map[string]int
	rows   [][]string
}

// readCSV loads a CSV file into a table.
func readCSV(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	// Descriptions contain embedded newlines and quotes; keep the reader lax
	// on per-row field counts since archived exports carry extra columns.
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv %s is empty", path)
	}

	header := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		header[strings.TrimSpace(name)] = i
	}

	return &table{header: header, rows: records[1:]}, nil
}

// has reports whether the table has a column of the given name.
func (t *table) has(column string) bool {
	_, ok := t.header[column]
	return ok
}

// get returns the value of column in row, or "" when the column is absent or
// the row is short.
func (t *table) get(row []string, column string) string {
	idx, ok := t.header[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// getInt parses an integer column, returning 0 for empty/invalid values.
// The exports write integer ids as floats ("12.0") in some tables.
func (t *table) getInt(row []string, column string) int {
	s := strings.TrimSpace(t.get(row, column))
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

// getBool parses a boolean column ("true"/"false", "TRUE", "1", "t").
func (t *table) getBool(row []string, column string) bool {
	switch strings.ToLower(strings.TrimSpace(t.get(row, column))) {
	case "true", "t", "1", "yes":
		return true
	default:
		return false
	}
}
