package render

import (
	"time"

	"gonum.org/v1/plot"
)

// dayTicker produces the shared daily time axis: a coarse weekday/date label
// on every local midnight, a fine time-of-day label every two hours and an
// unlabeled mark every 30 minutes. X values are Unix seconds.
type dayTicker struct {
	loc *time.Location
}

// Ticks implements plot.Ticker.
func (d dayTicker) Ticks(min, max float64) []plot.Tick {
	if max <= min {
		return nil
	}

	start := time.Unix(int64(min), 0).In(d.loc)
	first := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, d.loc)

	var ticks []plot.Tick
	for t := first; ; t = t.Add(30 * time.Minute) {
		x := float64(t.Unix())
		if x > max {
			break
		}
		if x < min {
			continue
		}

		tick := plot.Tick{Value: x}
		switch {
		case t.Hour() == 0 && t.Minute() == 0:
			tick.Label = t.Format("Mon 2006-01-02")
		case t.Minute() == 0 && t.Hour()%2 == 0:
			tick.Label = t.Format("15:04")
		}
		ticks = append(ticks, tick)
	}
	return ticks
}
