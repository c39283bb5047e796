package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jgoulah/meterplot/internal/timeseries"
	"github.com/jgoulah/meterplot/pkg/models"
)

// Archive is a local sqlite copy of cloud observations. It satisfies the same
// source contract as the cloud stores, so archived data can be plotted and
// exported offline.
type Archive struct {
	conn     *sql.DB
	sensorID string
}

// New opens the archive database and initializes the schema.
func New(dbPath, sensorID string) (*Archive, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	a := &Archive{conn: conn, sensorID: sensorID}
	if err := a.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return a, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.conn.Close()
}

func (a *Archive) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS observations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sensor_id TEXT NOT NULL,
		measured_at TEXT NOT NULL,
		cumlative_kwh REAL,
		instant_watt REAL,
		instant_ampere_R REAL,
		instant_ampere_T REAL,
		created_at TEXT NOT NULL,
		UNIQUE(sensor_id, measured_at)
	);
	CREATE INDEX IF NOT EXISTS idx_observations_sensor ON observations(sensor_id);
	CREATE INDEX IF NOT EXISTS idx_observations_measured_at ON observations(measured_at);
	`

	_, err := a.conn.Exec(schema)
	return err
}

// Insert stores one observation, ignoring duplicates on
// (sensor_id, measured_at).
func (a *Archive) Insert(obs *models.Observation) error {
	query := `
	INSERT OR IGNORE INTO observations
		(sensor_id, measured_at, cumlative_kwh, instant_watt, instant_ampere_R, instant_ampere_T, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	measuredAt := obs.MeasuredAt.UTC().Format(time.RFC3339)
	createdAt := time.Now().UTC().Format(time.RFC3339)

	_, err := a.conn.Exec(query, obs.SensorID, measuredAt,
		nullable(obs.CumulativeKWh), nullable(obs.InstantWatt),
		nullable(obs.InstantAmpereR), nullable(obs.InstantAmpereT), createdAt)
	if err != nil {
		return fmt.Errorf("inserting observation: %w", err)
	}

	return nil
}

func nullable(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// Fields is the mapper field set matching the archive's column names.
func (a *Archive) Fields() []timeseries.Field {
	return timeseries.TableFields()
}

// Bounds returns the earliest and latest archived timestamps for the sensor.
// Timestamps are stored as RFC3339 UTC text, so MIN/MAX order correctly.
func (a *Archive) Bounds(ctx context.Context) (time.Time, time.Time, bool, error) {
	query := `SELECT MIN(measured_at), MAX(measured_at) FROM observations WHERE sensor_id = ?`

	var minStr, maxStr sql.NullString
	if err := a.conn.QueryRowContext(ctx, query, a.sensorID).Scan(&minStr, &maxStr); err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("querying bounds: %w", err)
	}
	if !minStr.Valid || !maxStr.Valid {
		return time.Time{}, time.Time{}, false, nil
	}

	first, err := time.Parse(time.RFC3339, minStr.String)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("parsing bound %q: %w", minStr.String, err)
	}
	last, err := time.Parse(time.RFC3339, maxStr.String)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("parsing bound %q: %w", maxStr.String, err)
	}
	return first, last, true, nil
}

// Query returns raw records with begin <= measured_at < end in timestamp
// order, shaped for the row mapper like any other source.
func (a *Archive) Query(ctx context.Context, begin, end time.Time) ([]map[string]interface{}, error) {
	query := `
	SELECT sensor_id, measured_at, cumlative_kwh, instant_watt, instant_ampere_R, instant_ampere_T
	FROM observations
	WHERE sensor_id = ? AND measured_at >= ? AND measured_at < ?
	ORDER BY measured_at
	`

	rows, err := a.conn.QueryContext(ctx, query, a.sensorID,
		begin.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("querying observations: %w", err)
	}
	defer rows.Close()

	var records []map[string]interface{}
	for rows.Next() {
		var sensorID, measuredAt string
		var kwh, watt, ampR, ampT sql.NullFloat64

		if err := rows.Scan(&sensorID, &measuredAt, &kwh, &watt, &ampR, &ampT); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		records = append(records, map[string]interface{}{
			"sensor_id":        sensorID,
			"measured_at":      measuredAt,
			"cumlative_kwh":    nullValue(kwh),
			"instant_watt":     nullValue(watt),
			"instant_ampere_R": nullValue(ampR),
			"instant_ampere_T": nullValue(ampT),
		})
	}

	return records, rows.Err()
}

func nullValue(v sql.NullFloat64) interface{} {
	if !v.Valid {
		return nil
	}
	return v.Float64
}

// DailyUsage summarizes one local calendar day of archived observations.
type DailyUsage struct {
	Date        time.Time
	ConsumedKWh float64
	PeakWatt    *float64
	PeakAt      time.Time
	Samples     int
}

// DailyConsumption groups the archive by local calendar day: consumed energy
// is the cumulative counter's span within the day, the peak is the largest
// instantaneous power sample.
func (a *Archive) DailyConsumption(ctx context.Context, loc *time.Location) ([]DailyUsage, error) {
	first, last, ok, err := a.Bounds(ctx)
	if err != nil || !ok {
		return nil, err
	}

	records, err := a.Query(ctx, first, last.Add(time.Second))
	if err != nil {
		return nil, err
	}

	mapper := timeseries.NewMapper(loc, a.Fields())
	tbl, err := mapper.Map(records)
	if err != nil {
		return nil, err
	}
	tbl.Sort()

	var days []DailyUsage
	var cur *DailyUsage
	var kwhMin, kwhMax float64
	var haveKWh bool

	flush := func() {
		if cur == nil {
			return
		}
		if haveKWh {
			cur.ConsumedKWh = kwhMax - kwhMin
		}
		days = append(days, *cur)
		cur = nil
	}

	for _, row := range tbl.Rows {
		day := timeseries.FloorDay(row.MeasuredAt, loc)
		if cur == nil || !cur.Date.Equal(day) {
			flush()
			cur = &DailyUsage{Date: day}
			haveKWh = false
		}
		cur.Samples++
		if row.CumulativeKWh != nil {
			v := *row.CumulativeKWh
			if !haveKWh || v < kwhMin {
				kwhMin = v
			}
			if !haveKWh || v > kwhMax {
				kwhMax = v
			}
			haveKWh = true
		}
		if row.InstantWatt != nil && (cur.PeakWatt == nil || *row.InstantWatt > *cur.PeakWatt) {
			w := *row.InstantWatt
			cur.PeakWatt = &w
			cur.PeakAt = row.MeasuredAt
		}
	}
	flush()

	return days, nil
}
