// Package session ties acquisition, normalization, statistics, and
// export together behind the interface a frontend calls.
package session

import (
	"context"
	"fmt"

	"github.com/mlefevre/consoscope/internal/config"
	"github.com/mlefevre/consoscope/internal/export"
	"github.com/mlefevre/consoscope/internal/normalize"
	"github.com/mlefevre/consoscope/internal/source"
	"github.com/mlefevre/consoscope/internal/stats"
	"github.com/mlefevre/consoscope/pkg/models"
)

// StatKind names an aggregate query
type StatKind string

const (
	StatMin        StatKind = "min"
	StatMax        StatKind = "max"
	StatMean       StatKind = "mean"
	StatCountAbove StatKind = "count_above"
	StatCountBelow StatKind = "count_below"
)

// Session holds the currently loaded dataset. Acquisitions run to
// completion synchronously; a failed acquisition leaves the previous
// dataset in place. Not safe for concurrent use, which matches the
// single-consumer model: there is only ever one frontend driving it.
type Session struct {
	cfg     *config.Config
	dataset models.Dataset
	dropped int
	loaded  bool

	// newAcquirer is swapped out in tests
	newAcquirer func(mode source.Mode, location string) (source.Acquirer, error)
}

// New creates a session with no dataset loaded
func New(cfg *config.Config) *Session {
	s := &Session{cfg: cfg}
	s.newAcquirer = s.defaultAcquirer
	return s
}

func (s *Session) defaultAcquirer(mode source.Mode, location string) (source.Acquirer, error) {
	switch mode {
	case source.ModeRemote:
		endpoint := location
		if endpoint == "" {
			endpoint = s.cfg.GetURL()
		}
		return source.NewRemoteSource(endpoint, s.cfg.GetDateField(), s.cfg.GetValueField(), s.cfg.GetRecordLimit(), s.cfg.GetTimeout()), nil
	case source.ModeLocal:
		if location == "" {
			return nil, fmt.Errorf("local mode requires a file path")
		}
		return source.NewLocalSource(location), nil
	default:
		return nil, fmt.Errorf("unknown acquisition mode: %s", mode)
	}
}

// Acquire fetches and normalizes a dataset, replacing the current one
// on success. It returns the number of rows dropped during
// normalization so callers can surface data-quality signals.
func (s *Session) Acquire(ctx context.Context, mode source.Mode, location string) (int, error) {
	acq, err := s.newAcquirer(mode, location)
	if err != nil {
		return 0, err
	}

	table, err := acq.Acquire(ctx)
	if err != nil {
		return 0, err
	}

	result, err := normalize.Normalize(table, s.schemaFor(table))
	if err != nil {
		return 0, err
	}

	s.dataset = result.Dataset
	s.dropped = result.Dropped
	s.loaded = true

	return result.Dropped, nil
}

// schemaFor picks column names based on what the table actually
// carries: our own export format uses "date"/"consumption_value",
// everything else is assumed to follow the configured API schema.
func (s *Session) schemaFor(table *source.RawTable) normalize.Schema {
	for _, col := range table.Columns {
		if col == export.DateColumn {
			return normalize.Schema{
				DateColumn:   export.DateColumn,
				ValueColumn:  export.ValueColumn,
				SourceColumn: export.SourceColumn,
			}
		}
	}
	return normalize.Schema{
		DateColumn:  s.cfg.GetDateField(),
		ValueColumn: s.cfg.GetValueField(),
	}
}

// Loaded reports whether a dataset is currently loaded
func (s *Session) Loaded() bool {
	return s.loaded
}

// Dataset returns the currently loaded dataset. Callers must treat it
// as read-only.
func (s *Session) Dataset() models.Dataset {
	return s.dataset
}

// DroppedRows returns the drop count from the last acquisition
func (s *Session) DroppedRows() int {
	return s.dropped
}

// Statistics computes one aggregate over the loaded dataset. The
// threshold is only consulted for the count kinds; counts are returned
// as their float value.
func (s *Session) Statistics(kind StatKind, threshold float64) (float64, error) {
	switch kind {
	case StatMin:
		return stats.Min(s.dataset)
	case StatMax:
		return stats.Max(s.dataset)
	case StatMean:
		return stats.Mean(s.dataset)
	case StatCountAbove:
		return float64(stats.CountAbove(s.dataset, threshold)), nil
	case StatCountBelow:
		return float64(stats.CountBelow(s.dataset, threshold)), nil
	default:
		return 0, fmt.Errorf("unknown statistic kind: %s", kind)
	}
}

// Summary computes the full summary of the loaded dataset
func (s *Session) Summary() (*stats.Summary, error) {
	return stats.Summarize(s.dataset)
}

// Export writes the loaded dataset to path as CSV
func (s *Session) Export(path string) error {
	return export.WriteCSV(s.dataset, path)
}
