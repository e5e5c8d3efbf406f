// Package export serializes datasets to delimited text files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/mlefevre/consoscope/pkg/models"
)

// Column names of the export format. The local source adapter reads
// these back, so exporting and re-importing a dataset round-trips.
const (
	DateColumn   = "date"
	ValueColumn  = "consumption_value"
	SourceColumn = "source"
)

// ExportError represents a failed write of the export file
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("exporting to %q: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// WriteCSV writes the dataset to path as comma-delimited UTF-8 text,
// one header row plus one row per record. An existing file at path is
// overwritten without confirmation.
func WriteCSV(dataset models.Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return &ExportError{Path: path, Err: fmt.Errorf("creating file: %w", err)}
	}

	w := csv.NewWriter(f)

	if err := w.Write([]string{DateColumn, ValueColumn, SourceColumn}); err != nil {
		f.Close()
		return &ExportError{Path: path, Err: fmt.Errorf("writing header: %w", err)}
	}

	for _, rec := range dataset {
		row := []string{
			rec.Date.Format("2006-01-02"),
			strconv.FormatFloat(rec.Value, 'f', -1, 64),
			rec.Source,
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return &ExportError{Path: path, Err: fmt.Errorf("writing record: %w", err)}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return &ExportError{Path: path, Err: fmt.Errorf("flushing writer: %w", err)}
	}

	if err := f.Close(); err != nil {
		return &ExportError{Path: path, Err: fmt.Errorf("closing file: %w", err)}
	}

	return nil
}
