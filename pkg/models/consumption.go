package models

import "time"

// ConsumptionRecord represents one day's national consumption reading
type ConsumptionRecord struct {
	ID     int       `json:"id,omitempty"`
	Date   time.Time `json:"date"`   // Calendar date (daily granularity)
	Value  float64   `json:"value"`  // Consumption in MW
	Source string    `json:"source"` // "odre" or "local"
}

// Dataset is an ordered sequence of daily consumption records.
// Records are chronological and hold at most one entry per calendar
// date once normalized.
type Dataset []ConsumptionRecord

// Values returns the consumption values in record order
func (d Dataset) Values() []float64 {
	vals := make([]float64, len(d))
	for i, rec := range d {
		vals[i] = rec.Value
	}
	return vals
}
