package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/mlefevre/consoscope/internal/config"
	"github.com/mlefevre/consoscope/internal/source"
	"github.com/mlefevre/consoscope/internal/stats"
)

// fakeAcquirer returns a canned table or error
type fakeAcquirer struct {
	table *source.RawTable
	err   error
}

func (f *fakeAcquirer) Acquire(ctx context.Context) (*source.RawTable, error) {
	return f.table, f.err
}

func newTestSession(acq source.Acquirer) *Session {
	s := New(&config.Config{})
	s.newAcquirer = func(mode source.Mode, location string) (source.Acquirer, error) {
		return acq, nil
	}
	return s
}

func goodTable() *source.RawTable {
	return &source.RawTable{
		Columns: []string{"date", "consumption_value"},
		Rows: [][]string{
			{"2024-01-01", "100.0"},
			{"2024-01-02", "200.0"},
			{"2024-01-03", "300.0"},
		},
	}
}

func TestAcquireLoadsDataset(t *testing.T) {
	s := newTestSession(&fakeAcquirer{table: goodTable()})

	if s.Loaded() {
		t.Error("new session reports a loaded dataset")
	}

	dropped, err := s.Acquire(context.Background(), source.ModeRemote, "")
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	if dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}
	if !s.Loaded() || len(s.Dataset()) != 3 {
		t.Errorf("Loaded=%v len=%d, want loaded dataset of 3", s.Loaded(), len(s.Dataset()))
	}
}

func TestFailedAcquireKeepsPreviousDataset(t *testing.T) {
	s := newTestSession(&fakeAcquirer{table: goodTable()})
	if _, err := s.Acquire(context.Background(), source.ModeRemote, ""); err != nil {
		t.Fatalf("initial Acquire returned error: %v", err)
	}

	// Second acquisition fails like an HTTP 500
	acqErr := &source.AcquisitionError{
		Mode:     source.ModeRemote,
		Location: "https://example.invalid",
		Err:      fmt.Errorf("API returned status 500"),
	}
	s.newAcquirer = func(mode source.Mode, location string) (source.Acquirer, error) {
		return &fakeAcquirer{err: acqErr}, nil
	}

	_, err := s.Acquire(context.Background(), source.ModeRemote, "")
	var gotErr *source.AcquisitionError
	if !errors.As(err, &gotErr) {
		t.Fatalf("expected *AcquisitionError, got %v", err)
	}

	if !s.Loaded() {
		t.Error("previous dataset was discarded after failed acquisition")
	}
	if len(s.Dataset()) != 3 {
		t.Errorf("len(Dataset) = %d after failed acquisition, want 3", len(s.Dataset()))
	}
}

func TestFailedNormalizationKeepsPreviousDataset(t *testing.T) {
	s := newTestSession(&fakeAcquirer{table: goodTable()})
	if _, err := s.Acquire(context.Background(), source.ModeRemote, ""); err != nil {
		t.Fatalf("initial Acquire returned error: %v", err)
	}

	s.newAcquirer = func(mode source.Mode, location string) (source.Acquirer, error) {
		return &fakeAcquirer{table: &source.RawTable{
			Columns: []string{"something", "else"},
			Rows:    [][]string{{"a", "b"}},
		}}, nil
	}

	if _, err := s.Acquire(context.Background(), source.ModeRemote, ""); err == nil {
		t.Fatal("expected schema error")
	}
	if len(s.Dataset()) != 3 {
		t.Errorf("len(Dataset) = %d after schema error, want 3", len(s.Dataset()))
	}
}

func TestStatistics(t *testing.T) {
	s := newTestSession(&fakeAcquirer{table: goodTable()})
	if _, err := s.Acquire(context.Background(), source.ModeRemote, ""); err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}

	cases := []struct {
		kind      StatKind
		threshold float64
		want      float64
	}{
		{StatMin, 0, 100.0},
		{StatMax, 0, 300.0},
		{StatMean, 0, 200.0},
		{StatCountAbove, 150.0, 2},
		{StatCountBelow, 150.0, 1},
	}

	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			got, err := s.Statistics(tc.kind, tc.threshold)
			if err != nil {
				t.Fatalf("Statistics(%s) returned error: %v", tc.kind, err)
			}
			if got != tc.want {
				t.Errorf("Statistics(%s) = %v, want %v", tc.kind, got, tc.want)
			}
		})
	}

	if _, err := s.Statistics("median", 0); err == nil {
		t.Error("expected error for unknown statistic kind")
	}
}

func TestStatisticsEmptySession(t *testing.T) {
	s := New(&config.Config{})

	for _, kind := range []StatKind{StatMin, StatMax, StatMean} {
		if _, err := s.Statistics(kind, 0); !errors.Is(err, stats.ErrEmptyDataset) {
			t.Errorf("Statistics(%s) on empty session: got %v, want ErrEmptyDataset", kind, err)
		}
	}

	for _, kind := range []StatKind{StatCountAbove, StatCountBelow} {
		got, err := s.Statistics(kind, 100)
		if err != nil || got != 0 {
			t.Errorf("Statistics(%s) on empty session = %v, %v; want 0, nil", kind, got, err)
		}
	}
}

func TestDroppedRowsReported(t *testing.T) {
	table := goodTable()
	table.Rows = append(table.Rows, []string{"not-a-date", "abc"})

	s := newTestSession(&fakeAcquirer{table: table})
	dropped, err := s.Acquire(context.Background(), source.ModeRemote, "")
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	if dropped != 1 || s.DroppedRows() != 1 {
		t.Errorf("dropped = %d / %d, want 1", dropped, s.DroppedRows())
	}
	if len(s.Dataset()) != 3 {
		t.Errorf("len(Dataset) = %d, want 3", len(s.Dataset()))
	}
}

func TestAcquireExportAcquireRoundTrip(t *testing.T) {
	s := newTestSession(&fakeAcquirer{table: goodTable()})
	if _, err := s.Acquire(context.Background(), source.ModeRemote, ""); err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "export.csv")
	if err := s.Export(path); err != nil {
		t.Fatalf("Export returned error: %v", err)
	}

	// A fresh session re-imports the export through the real local source
	s2 := New(&config.Config{})
	if _, err := s2.Acquire(context.Background(), source.ModeLocal, path); err != nil {
		t.Fatalf("re-acquiring export: %v", err)
	}

	if len(s2.Dataset()) != len(s.Dataset()) {
		t.Fatalf("round trip produced %d records, want %d", len(s2.Dataset()), len(s.Dataset()))
	}
	for i, rec := range s2.Dataset() {
		orig := s.Dataset()[i]
		if !rec.Date.Equal(orig.Date) || rec.Value != orig.Value {
			t.Errorf("record %d: got (%v, %v), want (%v, %v)", i, rec.Date, rec.Value, orig.Date, orig.Value)
		}
	}
}

func TestLocalModeRequiresPath(t *testing.T) {
	s := New(&config.Config{})
	if _, err := s.Acquire(context.Background(), source.ModeLocal, ""); err == nil {
		t.Error("expected error for local mode without a path")
	}
}
