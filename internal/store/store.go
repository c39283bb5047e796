package store

import (
	"context"
	"time"

	"github.com/jgoulah/meterplot/internal/timeseries"
)

// Source is a paginated range-query capability over one observation store.
// Implementations follow the store's continuation tokens until exhausted and
// return raw records for the row mapper; they never deduplicate and never
// retry.
type Source interface {
	// Bounds returns the timestamps of the earliest and latest records
	// matching the configured sensor. ok is false when the store is empty.
	Bounds(ctx context.Context) (first, last time.Time, ok bool, err error)

	// Query returns every matching record with begin <= timestamp < end,
	// in store order.
	Query(ctx context.Context, begin, end time.Time) ([]map[string]interface{}, error)

	// Fields is the mapper field set matching this source's record keys.
	Fields() []timeseries.Field
}
