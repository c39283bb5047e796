package render

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/jgoulah/meterplot/internal/timeseries"
	"github.com/jgoulah/meterplot/pkg/models"
)

func fptr(v float64) *float64 { return &v }

func sampleTable(loc *time.Location) *models.Table {
	t0 := time.Date(2022, 3, 5, 0, 30, 0, 0, loc)
	tbl := &models.Table{}
	for i := 0; i < 6; i++ {
		at := t0.Add(time.Duration(i) * 30 * time.Minute)
		kwh := 100.0 + float64(i)*0.5
		watt := []float64{10, 55, 20, 40, 15, 30}[i]
		tbl.Rows = append(tbl.Rows, models.Observation{
			SensorID:       "smartmeter",
			MeasuredAt:     at,
			CumulativeKWh:  &kwh,
			InstantWatt:    &watt,
			InstantAmpereR: fptr(5 + float64(i)),
			InstantAmpereT: fptr(3),
		})
	}
	// one gap row: timestamp only
	tbl.Rows = append(tbl.Rows, models.Observation{
		SensorID:   "smartmeter",
		MeasuredAt: t0.Add(4 * time.Hour),
	})
	return tbl
}

func dayPartition(loc *time.Location) timeseries.Partition {
	return timeseries.Partition{
		Begin: time.Date(2022, 3, 5, 0, 0, 0, 0, loc),
		End:   time.Date(2022, 3, 6, 0, 0, 0, 0, loc),
	}
}

func TestRenderWritesFile(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// keep the test figure small
	r := New(loc, Options{Width: 8 * vg.Inch, Height: 6 * vg.Inch})
	path := filepath.Join(t.TempDir(), "2022-03-05T0000to2359.png")

	require.NoError(t, r.Render(sampleTable(loc), dayPartition(loc), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRenderLeavesNoTempFile(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	r := New(loc, Options{Width: 8 * vg.Inch, Height: 6 * vg.Inch})
	dir := t.TempDir()
	path := filepath.Join(dir, "chart.png")

	require.NoError(t, r.Render(sampleTable(loc), dayPartition(loc), path))

	// the figure lands under its final name only; a crash mid-write must not
	// leave a file the exists-check would mistake for a finished chart
	_, err = os.Stat(path)
	require.NoError(t, err)
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRenderSplitPhases(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	r := New(loc, Options{SplitPhases: true, Width: 8 * vg.Inch, Height: 8 * vg.Inch})
	path := filepath.Join(t.TempDir(), "split.png")

	require.NoError(t, r.Render(sampleTable(loc), dayPartition(loc), path))

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestRenderEmptyTableFails(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	r := New(loc, Options{})
	path := filepath.Join(t.TempDir(), "empty.png")

	require.Error(t, r.Render(&models.Table{}, dayPartition(loc), path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "no file may be written for an empty table")
}

func TestTimeBarsDataRange(t *testing.T) {
	bars := NewTimeBars(plotter.XYs{{X: 100, Y: 5}, {X: 200, Y: 8}}, 60, colorBlue)

	xmin, xmax, ymin, ymax := bars.DataRange()
	assert.Equal(t, 100.0, xmin)
	assert.Equal(t, 260.0, xmax)
	assert.Equal(t, 0.0, ymin)
	assert.Equal(t, 8.0, ymax)
}

func TestTimeBarsDataRangeStacked(t *testing.T) {
	bars := NewTimeBars(plotter.XYs{{X: 100, Y: 3}}, 60, colorBlue)
	bars.Bottom = []float64{5}

	_, _, _, ymax := bars.DataRange()
	assert.Equal(t, 8.0, ymax, "stacked bar tops include the base")
}

func TestDayTickerLabels(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	midnight := time.Date(2022, 3, 5, 0, 0, 0, 0, loc)
	min := float64(midnight.Unix())
	max := float64(midnight.Add(6 * time.Hour).Unix())

	ticks := dayTicker{loc: loc}.Ticks(min, max)
	require.NotEmpty(t, ticks)

	labels := map[float64]string{}
	for _, tick := range ticks {
		labels[tick.Value] = tick.Label
		assert.GreaterOrEqual(t, tick.Value, min)
		assert.LessOrEqual(t, tick.Value, max)
	}

	assert.Equal(t, "Sat 2022-03-05", labels[min])
	assert.Equal(t, "02:00", labels[float64(midnight.Add(2*time.Hour).Unix())])
	// half-hour marks are present but unlabeled
	assert.Equal(t, "", labels[float64(midnight.Add(30*time.Minute).Unix())])
}

func TestSeriesXYsUsesUnixSeconds(t *testing.T) {
	at := time.Date(2022, 3, 5, 0, 30, 0, 0, time.UTC)
	xys := seriesXYs(models.Series{Times: []time.Time{at}, Values: []float64{7}})

	require.Len(t, xys, 1)
	assert.Equal(t, float64(at.Unix()), xys[0].X)
	assert.Equal(t, 7.0, xys[0].Y)
}
