// Package stats computes descriptive statistics over a consumption
// dataset. All functions are pure: no I/O, no mutation of the input.
package stats

import (
	"errors"
	"time"

	"github.com/mlefevre/consoscope/pkg/models"
)

// ErrEmptyDataset is returned by aggregates that are undefined over
// zero records. Threshold counts are well-defined on an empty dataset
// and return 0 instead.
var ErrEmptyDataset = errors.New("dataset has no records")

// Max returns the largest consumption value
func Max(d models.Dataset) (float64, error) {
	if len(d) == 0 {
		return 0, ErrEmptyDataset
	}
	max := d[0].Value
	for _, rec := range d[1:] {
		if rec.Value > max {
			max = rec.Value
		}
	}
	return max, nil
}

// Min returns the smallest consumption value
func Min(d models.Dataset) (float64, error) {
	if len(d) == 0 {
		return 0, ErrEmptyDataset
	}
	min := d[0].Value
	for _, rec := range d[1:] {
		if rec.Value < min {
			min = rec.Value
		}
	}
	return min, nil
}

// Mean returns the arithmetic mean of the consumption values
func Mean(d models.Dataset) (float64, error) {
	if len(d) == 0 {
		return 0, ErrEmptyDataset
	}
	var sum float64
	for _, rec := range d {
		sum += rec.Value
	}
	return sum / float64(len(d)), nil
}

// CountAbove counts records strictly greater than threshold. A record
// exactly equal to the threshold counts as neither above nor below.
func CountAbove(d models.Dataset, threshold float64) int {
	count := 0
	for _, rec := range d {
		if rec.Value > threshold {
			count++
		}
	}
	return count
}

// CountBelow counts records strictly less than threshold
func CountBelow(d models.Dataset, threshold float64) int {
	count := 0
	for _, rec := range d {
		if rec.Value < threshold {
			count++
		}
	}
	return count
}

// Summary aggregates a dataset for display or publishing
type Summary struct {
	Count int       `json:"count"`
	Min   float64   `json:"min"`
	Max   float64   `json:"max"`
	Mean  float64   `json:"mean"`
	From  time.Time `json:"from"`
	To    time.Time `json:"to"`
}

// Summarize computes the full summary in one pass
func Summarize(d models.Dataset) (*Summary, error) {
	if len(d) == 0 {
		return nil, ErrEmptyDataset
	}

	s := &Summary{
		Count: len(d),
		Min:   d[0].Value,
		Max:   d[0].Value,
		From:  d[0].Date,
		To:    d[0].Date,
	}

	var sum float64
	for _, rec := range d {
		sum += rec.Value
		if rec.Value < s.Min {
			s.Min = rec.Value
		}
		if rec.Value > s.Max {
			s.Max = rec.Value
		}
		if rec.Date.Before(s.From) {
			s.From = rec.Date
		}
		if rec.Date.After(s.To) {
			s.To = rec.Date
		}
	}
	s.Mean = sum / float64(len(d))

	return s, nil
}
