package models

import (
	"sort"
	"time"
)

// Observation represents a single smart meter reading. The timestamp is
// required; every measured value may be absent (nil) when the meter did not
// report it in that sample.
type Observation struct {
	SensorID       string    `json:"sensor_id"`
	MeasuredAt     time.Time `json:"measured_at"`
	CumulativeKWh  *float64  `json:"cumlative_kwh"`
	InstantWatt    *float64  `json:"instant_watt"`
	InstantAmpereR *float64  `json:"instant_ampere_R"`
	InstantAmpereT *float64  `json:"instant_ampere_T"`
}

// Table is an ordered collection of observations covering one time window.
type Table struct {
	Rows []Observation
}

// Sort orders the rows by timestamp ascending. Sources return rows in store
// order, so callers must sort before charting or exporting.
func (t *Table) Sort() {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		return t.Rows[i].MeasuredAt.Before(t.Rows[j].MeasuredAt)
	})
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return len(t.Rows) == 0
}

// Bounds returns the first and last timestamps of a sorted table.
func (t *Table) Bounds() (first, last time.Time, ok bool) {
	if len(t.Rows) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return t.Rows[0].MeasuredAt, t.Rows[len(t.Rows)-1].MeasuredAt, true
}

// Series is one plottable value sequence extracted from a table. Rows with an
// absent value are dropped, so gaps in the data stay gaps on the chart.
type Series struct {
	Times  []time.Time
	Values []float64
}

// Len returns the number of points in the series.
func (s Series) Len() int { return len(s.Values) }

// Min returns the smallest value in the series.
func (s Series) Min() float64 {
	min := s.Values[0]
	for _, v := range s.Values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the largest value in the series.
func (s Series) Max() float64 {
	max := s.Values[0]
	for _, v := range s.Values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Peak locates the maximum of the series. ok is false for an empty series.
func (s Series) Peak() (at time.Time, value float64, ok bool) {
	if len(s.Values) == 0 {
		return time.Time{}, 0, false
	}
	idx := 0
	for i, v := range s.Values {
		if v > s.Values[idx] {
			idx = i
		}
	}
	return s.Times[idx], s.Values[idx], true
}

// Extract builds a series from one observation field, skipping absent values.
func (t *Table) Extract(field func(Observation) *float64) Series {
	var s Series
	for _, row := range t.Rows {
		v := field(row)
		if v == nil {
			continue
		}
		s.Times = append(s.Times, row.MeasuredAt)
		s.Values = append(s.Values, *v)
	}
	return s
}

// StackedCurrent builds the stacked phase-current series: for every row where
// at least one phase reported, bottom carries the R-phase value (zero when
// absent) and top the T-phase value. Combined is the per-row sum used for the
// combined-peak annotation.
func (t *Table) StackedCurrent() (times []time.Time, bottom, top, combined []float64) {
	for _, row := range t.Rows {
		if row.InstantAmpereR == nil && row.InstantAmpereT == nil {
			continue
		}
		var r, tt float64
		if row.InstantAmpereR != nil {
			r = *row.InstantAmpereR
		}
		if row.InstantAmpereT != nil {
			tt = *row.InstantAmpereT
		}
		times = append(times, row.MeasuredAt)
		bottom = append(bottom, r)
		top = append(top, tt)
		combined = append(combined, r+tt)
	}
	return times, bottom, top, combined
}
