package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/meterplot/pkg/models"
)

func fptr(v float64) *float64 { return &v }

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := New(filepath.Join(t.TempDir(), "test.db"), "smartmeter")
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestInsertAndQuery(t *testing.T) {
	a := openTestArchive(t)
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	t0 := time.Date(2022, 3, 5, 0, 30, 0, 0, loc)
	require.NoError(t, a.Insert(&models.Observation{
		SensorID:      "smartmeter",
		MeasuredAt:    t0,
		CumulativeKWh: fptr(100.5),
		InstantWatt:   fptr(420),
	}))
	require.NoError(t, a.Insert(&models.Observation{
		SensorID:   "smartmeter",
		MeasuredAt: t0.Add(time.Minute),
	}))

	records, err := a.Query(context.Background(), t0.Add(-time.Hour), t0.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "smartmeter", records[0]["sensor_id"])
	assert.Equal(t, 100.5, records[0]["cumlative_kwh"])
	assert.Nil(t, records[1]["cumlative_kwh"])
	assert.Nil(t, records[1]["instant_watt"])
}

func TestInsertIsIdempotent(t *testing.T) {
	a := openTestArchive(t)

	obs := &models.Observation{
		SensorID:    "smartmeter",
		MeasuredAt:  time.Date(2022, 3, 5, 0, 30, 0, 0, time.UTC),
		InstantWatt: fptr(420),
	}
	require.NoError(t, a.Insert(obs))
	require.NoError(t, a.Insert(obs))

	records, err := a.Query(context.Background(),
		obs.MeasuredAt.Add(-time.Hour), obs.MeasuredAt.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestBounds(t *testing.T) {
	a := openTestArchive(t)

	_, _, ok, err := a.Bounds(context.Background())
	require.NoError(t, err)
	assert.False(t, ok, "empty archive has no bounds")

	t0 := time.Date(2022, 3, 5, 0, 30, 0, 0, time.UTC)
	for _, at := range []time.Time{t0.Add(time.Hour), t0, t0.Add(2 * time.Hour)} {
		require.NoError(t, a.Insert(&models.Observation{SensorID: "smartmeter", MeasuredAt: at}))
	}

	first, last, ok, err := a.Bounds(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, t0.Equal(first))
	assert.True(t, t0.Add(2*time.Hour).Equal(last))
}

func TestBoundsIgnoreOtherSensors(t *testing.T) {
	a := openTestArchive(t)

	require.NoError(t, a.Insert(&models.Observation{
		SensorID:   "other",
		MeasuredAt: time.Date(2022, 3, 5, 0, 30, 0, 0, time.UTC),
	}))

	_, _, ok, err := a.Bounds(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDailyConsumption(t *testing.T) {
	a := openTestArchive(t)
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	day1 := time.Date(2022, 3, 5, 0, 30, 0, 0, loc)
	day2 := time.Date(2022, 3, 6, 9, 0, 0, 0, loc)

	samples := []models.Observation{
		{SensorID: "smartmeter", MeasuredAt: day1, CumulativeKWh: fptr(100), InstantWatt: fptr(200)},
		{SensorID: "smartmeter", MeasuredAt: day1.Add(time.Hour), CumulativeKWh: fptr(101.5), InstantWatt: fptr(900)},
		{SensorID: "smartmeter", MeasuredAt: day1.Add(2 * time.Hour), InstantWatt: fptr(300)},
		{SensorID: "smartmeter", MeasuredAt: day2, CumulativeKWh: fptr(110)},
	}
	for i := range samples {
		require.NoError(t, a.Insert(&samples[i]))
	}

	days, err := a.DailyConsumption(context.Background(), loc)
	require.NoError(t, err)
	require.Len(t, days, 2)

	assert.Equal(t, time.Date(2022, 3, 5, 0, 0, 0, 0, loc), days[0].Date)
	assert.InDelta(t, 1.5, days[0].ConsumedKWh, 1e-9)
	require.NotNil(t, days[0].PeakWatt)
	assert.Equal(t, 900.0, *days[0].PeakWatt)
	assert.True(t, day1.Add(time.Hour).Equal(days[0].PeakAt))
	assert.Equal(t, 3, days[0].Samples)

	assert.Equal(t, time.Date(2022, 3, 6, 0, 0, 0, 0, loc), days[1].Date)
	assert.Equal(t, 0.0, days[1].ConsumedKWh)
	assert.Nil(t, days[1].PeakWatt)
}
