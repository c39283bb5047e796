package timeseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestSplitDailyCoversRange(t *testing.T) {
	loc := mustLoc(t, "Asia/Tokyo")
	first := time.Date(2022, 3, 5, 9, 30, 0, 0, loc)
	last := time.Date(2022, 3, 8, 1, 15, 0, 0, loc)

	parts := SplitDaily(first, last, loc)
	require.Len(t, parts, 4)

	assert.Equal(t, time.Date(2022, 3, 5, 0, 0, 0, 0, loc), parts[0].Begin)
	assert.Equal(t, time.Date(2022, 3, 9, 0, 0, 0, 0, loc), parts[len(parts)-1].End)

	for i, p := range parts {
		assert.Equal(t, p.Begin.AddDate(0, 0, 1), p.End, "partition %d is one day", i)
		if i > 0 {
			assert.Equal(t, parts[i-1].End, p.Begin, "partition %d is contiguous", i)
		}
	}
}

func TestSplitDailySingleInstant(t *testing.T) {
	loc := mustLoc(t, "Asia/Tokyo")
	at := time.Date(2022, 3, 5, 12, 0, 0, 0, loc)

	parts := SplitDaily(at, at, loc)
	require.Len(t, parts, 1)
	assert.Equal(t, time.Date(2022, 3, 5, 0, 0, 0, 0, loc), parts[0].Begin)
	assert.Equal(t, time.Date(2022, 3, 6, 0, 0, 0, 0, loc), parts[0].End)
}

func TestSplitDailyNeverMergesSameDayNumber(t *testing.T) {
	loc := mustLoc(t, "Asia/Tokyo")
	// More than seven consecutive days: the reference grouped on the bare ISO
	// day-of-week number, which would fold day 8 into day 1 here.
	first := time.Date(2022, 3, 1, 0, 0, 0, 0, loc)
	last := time.Date(2022, 3, 10, 23, 0, 0, 0, loc)

	parts := SplitDaily(first, last, loc)
	require.Len(t, parts, 10)
	for i, p := range parts {
		assert.Equal(t, p.Begin.AddDate(0, 0, 1), p.End, "partition %d is one day", i)
	}
}

func TestSplitDailyAcrossYearBoundary(t *testing.T) {
	loc := mustLoc(t, "Asia/Tokyo")
	first := time.Date(2021, 12, 30, 6, 0, 0, 0, loc)
	last := time.Date(2022, 1, 2, 6, 0, 0, 0, loc)

	parts := SplitDaily(first, last, loc)
	require.Len(t, parts, 4)
	assert.Equal(t, time.Date(2021, 12, 30, 0, 0, 0, 0, loc), parts[0].Begin)
	assert.Equal(t, time.Date(2022, 1, 3, 0, 0, 0, 0, loc), parts[3].End)
}

func TestSplitWeeklyAcrossYearBoundary(t *testing.T) {
	loc := mustLoc(t, "Asia/Tokyo")
	// 2021-12-27 (Mon) through 2022-01-09 (Sun) spans ISO weeks 52/2021,
	// 1/2022 and 2/2022. Grouping on the bare week number must not merge
	// anything across the year change.
	first := time.Date(2021, 12, 27, 0, 0, 0, 0, loc)
	last := time.Date(2022, 1, 9, 12, 0, 0, 0, loc)

	parts := SplitWeekly(first, last, loc)
	require.Len(t, parts, 2)
	assert.Equal(t, time.Date(2021, 12, 27, 0, 0, 0, 0, loc), parts[0].Begin)
	assert.Equal(t, time.Date(2022, 1, 3, 0, 0, 0, 0, loc), parts[0].End)
	assert.Equal(t, time.Date(2022, 1, 10, 0, 0, 0, 0, loc), parts[1].End)
}

func TestSplitWeeklyPartialEdges(t *testing.T) {
	loc := mustLoc(t, "Asia/Tokyo")
	// Wednesday to the following Tuesday: a short leading group and a short
	// trailing group.
	first := time.Date(2022, 3, 2, 10, 0, 0, 0, loc)
	last := time.Date(2022, 3, 8, 10, 0, 0, 0, loc)

	parts := SplitWeekly(first, last, loc)
	require.Len(t, parts, 2)
	assert.Equal(t, time.Date(2022, 3, 2, 0, 0, 0, 0, loc), parts[0].Begin)
	assert.Equal(t, time.Date(2022, 3, 7, 0, 0, 0, 0, loc), parts[0].End)
	assert.Equal(t, time.Date(2022, 3, 7, 0, 0, 0, 0, loc), parts[1].Begin)
	assert.Equal(t, time.Date(2022, 3, 9, 0, 0, 0, 0, loc), parts[1].End)
}

func TestPartitionBaseName(t *testing.T) {
	loc := mustLoc(t, "Asia/Tokyo")
	p := Partition{
		Begin: time.Date(2022, 3, 5, 0, 0, 0, 0, loc),
		End:   time.Date(2022, 3, 6, 0, 0, 0, 0, loc),
	}
	assert.Equal(t, "2022-03-05T0000to2359", p.BaseName())
}

func TestFloorCeilDay(t *testing.T) {
	loc := mustLoc(t, "Asia/Tokyo")
	at := time.Date(2022, 3, 5, 23, 59, 59, 0, loc)

	assert.Equal(t, time.Date(2022, 3, 5, 0, 0, 0, 0, loc), FloorDay(at, loc))
	assert.Equal(t, time.Date(2022, 3, 6, 0, 0, 0, 0, loc), CeilDay(at, loc))

	// A UTC instant floors to the day it falls on in the target zone.
	utc := time.Date(2022, 3, 5, 20, 0, 0, 0, time.UTC) // 2022-03-06 05:00 JST
	assert.Equal(t, time.Date(2022, 3, 6, 0, 0, 0, 0, loc), FloorDay(utc, loc))
}
