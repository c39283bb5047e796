package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/araddon/dateparse"

	"github.com/jgoulah/meterplot/internal/timeseries"
	"github.com/jgoulah/meterplot/pkg/models"
)

// csvColumns is the on-disk column order, shared by the source and the
// per-day export.
var csvColumns = []string{
	"measured_at",
	"sensor_id",
	"cumlative_kwh",
	"instant_watt",
	"instant_ampere_R",
	"instant_ampere_T",
}

// CSVStore reads observation rows from every *.csv file in a directory.
type CSVStore struct {
	dir      string
	sensorID string
}

// NewCSV creates a CSV directory source.
func NewCSV(dir, sensorID string) *CSVStore {
	return &CSVStore{dir: dir, sensorID: sensorID}
}

// Fields returns the snake_case table field set.
func (s *CSVStore) Fields() []timeseries.Field {
	return timeseries.TableFields()
}

func (s *CSVStore) loadAll() ([]map[string]interface{}, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("listing csv files: %w", err)
	}

	var records []map[string]interface{}
	for _, path := range paths {
		rows, err := readCSVFile(path)
		if err != nil {
			return nil, err
		}
		records = append(records, rows...)
	}
	return records, nil
}

func readCSVFile(path string) ([]map[string]interface{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	all, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(all) < 1 {
		return nil, nil
	}

	header := all[0]
	var records []map[string]interface{}
	for _, row := range all[1:] {
		rec := make(map[string]interface{}, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// Bounds scans every file for the earliest and latest timestamp column value.
func (s *CSVStore) Bounds(ctx context.Context) (time.Time, time.Time, bool, error) {
	records, err := s.loadAll()
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}

	var first, last time.Time
	found := false
	for _, rec := range records {
		at, err := recordTime(rec)
		if err != nil {
			return time.Time{}, time.Time{}, false, err
		}
		if !found || at.Before(first) {
			first = at
		}
		if !found || at.After(last) {
			last = at
		}
		found = true
	}
	return first, last, found, nil
}

// Query filters the loaded rows to the sensor and [begin, end).
func (s *CSVStore) Query(ctx context.Context, begin, end time.Time) ([]map[string]interface{}, error) {
	records, err := s.loadAll()
	if err != nil {
		return nil, err
	}

	var out []map[string]interface{}
	for _, rec := range records {
		if sid, _ := rec["sensor_id"].(string); sid != "" && sid != s.sensorID {
			continue
		}
		at, err := recordTime(rec)
		if err != nil {
			return nil, err
		}
		if at.Before(begin) || !at.Before(end) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func recordTime(rec map[string]interface{}) (time.Time, error) {
	raw, _ := rec["measured_at"].(string)
	if raw == "" {
		return time.Time{}, fmt.Errorf("row without measured_at")
	}
	at, err := dateparse.ParseAny(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing measured_at %q: %w", raw, err)
	}
	return at, nil
}

// WriteTable writes one day's table as a CSV file in the export column order.
// Absent values become empty cells so a reload reproduces the same table.
func WriteTable(path string, tbl models.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvColumns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, row := range tbl.Rows {
		record := []string{
			row.MeasuredAt.Format(time.RFC3339),
			row.SensorID,
			formatCell(row.CumulativeKWh),
			formatCell(row.InstantWatt),
			formatCell(row.InstantAmpereR),
			formatCell(row.InstantAmpereT),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return nil
}

func formatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
