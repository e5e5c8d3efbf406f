package stats

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/mlefevre/consoscope/pkg/models"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parsing date %q: %v", s, err)
	}
	return d
}

func testDataset(t *testing.T, values ...float64) models.Dataset {
	t.Helper()
	start := day(t, "2024-01-01")
	var d models.Dataset
	for i, v := range values {
		d = append(d, models.ConsumptionRecord{
			Date:  start.AddDate(0, 0, i),
			Value: v,
		})
	}
	return d
}

func TestAggregatesScenario(t *testing.T) {
	d := testDataset(t, 100.0, 200.0, 300.0)

	max, err := Max(d)
	if err != nil {
		t.Fatalf("Max returned error: %v", err)
	}
	if max != 300.0 {
		t.Errorf("Max = %v, want 300.0", max)
	}

	min, err := Min(d)
	if err != nil {
		t.Fatalf("Min returned error: %v", err)
	}
	if min != 100.0 {
		t.Errorf("Min = %v, want 100.0", min)
	}

	mean, err := Mean(d)
	if err != nil {
		t.Fatalf("Mean returned error: %v", err)
	}
	if mean != 200.0 {
		t.Errorf("Mean = %v, want 200.0", mean)
	}

	if got := CountAbove(d, 150.0); got != 2 {
		t.Errorf("CountAbove(150.0) = %d, want 2", got)
	}
	if got := CountBelow(d, 150.0); got != 1 {
		t.Errorf("CountBelow(150.0) = %d, want 1", got)
	}
}

func TestEmptyDataset(t *testing.T) {
	var d models.Dataset

	if _, err := Max(d); !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("Max on empty dataset: got %v, want ErrEmptyDataset", err)
	}
	if _, err := Min(d); !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("Min on empty dataset: got %v, want ErrEmptyDataset", err)
	}
	if _, err := Mean(d); !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("Mean on empty dataset: got %v, want ErrEmptyDataset", err)
	}
	if _, err := Summarize(d); !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("Summarize on empty dataset: got %v, want ErrEmptyDataset", err)
	}

	// Counts are well-defined over zero records
	if got := CountAbove(d, 10); got != 0 {
		t.Errorf("CountAbove on empty dataset = %d, want 0", got)
	}
	if got := CountBelow(d, 10); got != 0 {
		t.Errorf("CountBelow on empty dataset = %d, want 0", got)
	}
}

func TestThresholdIsStrictBothSides(t *testing.T) {
	d := testDataset(t, 100.0, 150.0, 200.0)

	if got := CountAbove(d, 150.0); got != 1 {
		t.Errorf("CountAbove(150.0) = %d, want 1 (boundary record excluded)", got)
	}
	if got := CountBelow(d, 150.0); got != 1 {
		t.Errorf("CountBelow(150.0) = %d, want 1 (boundary record excluded)", got)
	}
}

func TestThresholdPartition(t *testing.T) {
	cases := []struct {
		name      string
		values    []float64
		threshold float64
	}{
		{"no boundary hits", []float64{100, 200, 300}, 150},
		{"one boundary hit", []float64{100, 150, 200}, 150},
		{"all equal", []float64{150, 150, 150}, 150},
		{"negative values", []float64{-10, 0, 10}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := testDataset(t, tc.values...)

			above := CountAbove(d, tc.threshold)
			below := CountBelow(d, tc.threshold)
			equal := 0
			for _, rec := range d {
				if rec.Value == tc.threshold {
					equal++
				}
			}

			if above+below+equal != len(d) {
				t.Errorf("partition: above=%d below=%d equal=%d, sum %d != len %d",
					above, below, equal, above+below+equal, len(d))
			}
		})
	}
}

func TestMinMeanMaxOrdering(t *testing.T) {
	cases := [][]float64{
		{42.0},
		{100, 200, 300},
		{-5.5, 0, 5.5, 17.3},
		{1000, 1000, 1000},
	}

	for _, values := range cases {
		d := testDataset(t, values...)

		min, _ := Min(d)
		mean, _ := Mean(d)
		max, _ := Max(d)

		if min > mean || mean > max {
			t.Errorf("values %v: min=%v mean=%v max=%v violates min <= mean <= max", values, min, mean, max)
		}
	}
}

func TestSummarize(t *testing.T) {
	d := testDataset(t, 300.0, 100.0, 200.0)

	s, err := Summarize(d)
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}

	if s.Count != 3 {
		t.Errorf("Count = %d, want 3", s.Count)
	}
	if s.Min != 100.0 || s.Max != 300.0 {
		t.Errorf("Min/Max = %v/%v, want 100.0/300.0", s.Min, s.Max)
	}
	if math.Abs(s.Mean-200.0) > 1e-9 {
		t.Errorf("Mean = %v, want 200.0", s.Mean)
	}
	if !s.From.Equal(day(t, "2024-01-01")) || !s.To.Equal(day(t, "2024-01-03")) {
		t.Errorf("date range = %s to %s, want 2024-01-01 to 2024-01-03",
			s.From.Format("2006-01-02"), s.To.Format("2006-01-02"))
	}
}
