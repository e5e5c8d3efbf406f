// Package normalize coerces raw acquired tables into typed, validated
// consumption datasets.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mlefevre/consoscope/internal/source"
	"github.com/mlefevre/consoscope/pkg/models"
)

// SchemaError indicates a required column is missing from the acquired
// table. Fatal for the acquisition attempt: no partial dataset is
// produced.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("required column %q not found in source data", e.Column)
}

// Schema names the columns to extract from a raw table
type Schema struct {
	DateColumn   string
	ValueColumn  string
	SourceColumn string // optional, may be empty
}

// Result is a normalized dataset plus the number of rows dropped for
// unparsable dates, non-numeric values, or duplicate dates.
type Result struct {
	Dataset models.Dataset
	Dropped int
}

// Date layouts seen across the ODRE API and local CSV files
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize converts a raw table into a Dataset. Malformed rows are
// dropped and counted rather than failing the whole acquisition; a
// missing required column is fatal. Source row order is preserved, and
// at most one record per calendar date survives (first occurrence
// wins, later duplicates count as dropped).
func Normalize(table *source.RawTable, schema Schema) (*Result, error) {
	dateIdx, err := findColumn(table.Columns, schema.DateColumn)
	if err != nil {
		return nil, err
	}
	valueIdx, err := findColumn(table.Columns, schema.ValueColumn)
	if err != nil {
		return nil, err
	}

	sourceIdx := -1
	if schema.SourceColumn != "" {
		if idx, err := findColumn(table.Columns, schema.SourceColumn); err == nil {
			sourceIdx = idx
		}
	}

	result := &Result{}
	seen := make(map[string]bool)

	for _, row := range table.Rows {
		if dateIdx >= len(row) || valueIdx >= len(row) {
			result.Dropped++
			continue
		}

		date, ok := parseDate(row[dateIdx])
		if !ok {
			result.Dropped++
			continue
		}

		value, err := strconv.ParseFloat(strings.TrimSpace(row[valueIdx]), 64)
		if err != nil {
			result.Dropped++
			continue
		}

		key := date.Format("2006-01-02")
		if seen[key] {
			result.Dropped++
			continue
		}
		seen[key] = true

		rec := models.ConsumptionRecord{Date: date, Value: value}
		if sourceIdx >= 0 && sourceIdx < len(row) {
			rec.Source = row[sourceIdx]
		}
		result.Dataset = append(result.Dataset, rec)
	}

	return result, nil
}

// findColumn locates a column by name, case-insensitively
func findColumn(columns []string, name string) (int, error) {
	for i, col := range columns {
		if strings.EqualFold(strings.TrimSpace(col), name) {
			return i, nil
		}
	}
	return -1, &SchemaError{Column: name}
}

// parseDate tries the known layouts and truncates to the calendar date
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
