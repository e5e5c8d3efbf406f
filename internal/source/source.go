// Package source acquires raw consumption tables from the ODRE
// open-data API or from local delimited files.
package source

import (
	"context"
	"fmt"
)

// Mode selects where a dataset is acquired from
type Mode string

const (
	ModeRemote Mode = "remote"
	ModeLocal  Mode = "local"
)

// RawTable holds an acquired payload before normalization. Both the
// remote and local adapters produce this shape so the normalizer does
// not care where the data came from.
type RawTable struct {
	Columns []string
	Rows    [][]string
}

// AcquisitionError represents a failed acquisition attempt: an I/O
// failure, a non-success HTTP status, or an unparsable payload. Line
// is 1-based and only set for parse failures.
type AcquisitionError struct {
	Mode     Mode
	Location string
	Line     int
	Err      error
}

func (e *AcquisitionError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("acquiring from %s source %q: line %d: %v", e.Mode, e.Location, e.Line, e.Err)
	}
	return fmt.Sprintf("acquiring from %s source %q: %v", e.Mode, e.Location, e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// Acquirer obtains a raw table from one configured source
type Acquirer interface {
	Acquire(ctx context.Context) (*RawTable, error)
}
