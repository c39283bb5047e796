package timeseries

import (
	"time"
)

// Partition is one half-open chart bucket aligned to local midnight:
// [Begin, End) where both bounds are 00:00:00 in the target timezone.
type Partition struct {
	Begin time.Time
	End   time.Time
}

// BaseName derives the deterministic output file name (without extension)
// from the partition's local start and end, e.g. "2022-03-05T0000to2359".
// The end label is the last representable instant inside the bucket.
func (p Partition) BaseName() string {
	last := p.End.Add(-time.Microsecond)
	return p.Begin.Format("2006-01-02T1504") + "to" + last.Format("1504")
}

// FloorDay returns the local midnight at or before t.
func FloorDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// CeilDay returns the local midnight strictly after t.
func CeilDay(t time.Time, loc *time.Location) time.Time {
	return FloorDay(t, loc).AddDate(0, 0, 1)
}

// dateSequence enumerates the local midnights of every calendar day touched
// by [first, last].
func dateSequence(first, last time.Time, loc *time.Location) []time.Time {
	var days []time.Time
	end := FloorDay(last, loc)
	for d := FloorDay(first, loc); !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// groupKey identifies one bucket. Keys carry the year so that ranges spanning
// a year boundary, or more than one week/month cycle, never collapse distinct
// periods into one group.
type groupKey struct {
	year int
	num  int
}

func groupDates(days []time.Time, key func(time.Time) groupKey) [][]time.Time {
	var groups [][]time.Time
	for i, d := range days {
		k := key(d)
		if i == 0 || k != key(days[i-1]) {
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], d)
	}
	return groups
}

func partitions(groups [][]time.Time) []Partition {
	parts := make([]Partition, 0, len(groups))
	for _, g := range groups {
		parts = append(parts, Partition{
			Begin: g[0],
			End:   g[len(g)-1].AddDate(0, 0, 1),
		})
	}
	return parts
}

// SplitDaily partitions [first, last] into consecutive one-day buckets in
// loc. The buckets are contiguous, non-overlapping and cover exactly
// [FloorDay(first), CeilDay(last)).
func SplitDaily(first, last time.Time, loc *time.Location) []Partition {
	days := dateSequence(first, last, loc)
	return partitions(groupDates(days, func(d time.Time) groupKey {
		return groupKey{year: d.Year(), num: d.YearDay()}
	}))
}

// SplitWeekly partitions [first, last] into ISO-week buckets in loc. The
// first and last bucket may be shorter than seven days when the range starts
// or ends mid-week.
func SplitWeekly(first, last time.Time, loc *time.Location) []Partition {
	days := dateSequence(first, last, loc)
	return partitions(groupDates(days, func(d time.Time) groupKey {
		y, w := d.ISOWeek()
		return groupKey{year: y, num: w}
	}))
}
