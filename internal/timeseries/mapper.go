package timeseries

import (
	"fmt"
	"strconv"
	"time"

	"github.com/araddon/dateparse"

	"github.com/jgoulah/meterplot/pkg/models"
)

// Field pairs a raw record key with the parser that assigns its value onto an
// observation. The field order is fixed per source variant.
type Field struct {
	Name   string
	Assign func(m *Mapper, obs *models.Observation, raw interface{}) error
}

// Mapper converts raw key/value records from a source into a typed table.
// Absent or null raw values become absent fields; a present but malformed
// value is an error that aborts the whole run.
type Mapper struct {
	Loc    *time.Location
	Fields []Field
}

// NewMapper builds a mapper converting timestamps into loc.
func NewMapper(loc *time.Location, fields []Field) *Mapper {
	return &Mapper{Loc: loc, Fields: fields}
}

// Map applies each field parser to every record, in field order, producing
// one row per record. Rows are returned in record order; callers sort.
func (m *Mapper) Map(records []map[string]interface{}) (models.Table, error) {
	var tbl models.Table
	for i, rec := range records {
		var obs models.Observation
		for _, f := range m.Fields {
			if err := f.Assign(m, &obs, rec[f.Name]); err != nil {
				return models.Table{}, fmt.Errorf("record %d field %s: %w", i, f.Name, err)
			}
		}
		tbl.Rows = append(tbl.Rows, obs)
	}
	return tbl, nil
}

// DocumentFields is the field set for the document store, which uses
// camelCase attribute names.
func DocumentFields() []Field {
	return []Field{
		{"sensorId", assignSensorID},
		{"measuredAt", assignMeasuredAt},
		{"cumlativeKwh", assignFloat(func(o *models.Observation) **float64 { return &o.CumulativeKWh })},
		{"instantWatt", assignFloat(func(o *models.Observation) **float64 { return &o.InstantWatt })},
		{"instantAmpereR", assignFloat(func(o *models.Observation) **float64 { return &o.InstantAmpereR })},
		{"instantAmpereT", assignFloat(func(o *models.Observation) **float64 { return &o.InstantAmpereT })},
	}
}

// TableFields is the field set for the key-value table, the CSV files and the
// local archive, which all use snake_case column names.
func TableFields() []Field {
	return []Field{
		{"sensor_id", assignSensorID},
		{"measured_at", assignMeasuredAt},
		{"cumlative_kwh", assignFloat(func(o *models.Observation) **float64 { return &o.CumulativeKWh })},
		{"instant_watt", assignFloat(func(o *models.Observation) **float64 { return &o.InstantWatt })},
		{"instant_ampere_R", assignFloat(func(o *models.Observation) **float64 { return &o.InstantAmpereR })},
		{"instant_ampere_T", assignFloat(func(o *models.Observation) **float64 { return &o.InstantAmpereT })},
	}
}

func assignSensorID(m *Mapper, obs *models.Observation, raw interface{}) error {
	if raw == nil {
		return nil
	}
	s, ok := raw.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", raw)
	}
	obs.SensorID = s
	return nil
}

func assignMeasuredAt(m *Mapper, obs *models.Observation, raw interface{}) error {
	t, err := m.parseTime(raw)
	if err != nil {
		return err
	}
	obs.MeasuredAt = t
	return nil
}

func assignFloat(field func(*models.Observation) **float64) func(*Mapper, *models.Observation, interface{}) error {
	return func(m *Mapper, obs *models.Observation, raw interface{}) error {
		v, err := parseFloat(raw)
		if err != nil {
			return err
		}
		*field(obs) = v
		return nil
	}
}

// parseTime accepts the textual timestamp representations the stores emit and
// converts the result into the mapper's timezone. Text without a zone offset
// is read as local time in that timezone. A missing timestamp is an error: it
// is the table index and every row must have one.
func (m *Mapper) parseTime(raw interface{}) (time.Time, error) {
	switch v := raw.(type) {
	case nil:
		return time.Time{}, fmt.Errorf("missing timestamp")
	case time.Time:
		return v.In(m.Loc), nil
	case string:
		if v == "" {
			return time.Time{}, fmt.Errorf("missing timestamp")
		}
		t, err := dateparse.ParseIn(v, m.Loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", v, err)
		}
		return t.In(m.Loc), nil
	default:
		return time.Time{}, fmt.Errorf("expected timestamp, got %T", raw)
	}
}

// parseFloat maps nil and the empty string to an absent value. Anything else
// must be numeric.
func parseFloat(raw interface{}) (*float64, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case float64:
		return &v, nil
	case float32:
		f := float64(v)
		return &f, nil
	case int:
		f := float64(v)
		return &f, nil
	case int64:
		f := float64(v)
		return &f, nil
	case string:
		if v == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing number %q: %w", v, err)
		}
		return &f, nil
	default:
		return nil, fmt.Errorf("expected number, got %T", raw)
	}
}
