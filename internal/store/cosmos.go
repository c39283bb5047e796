package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
	"github.com/araddon/dateparse"

	"github.com/jgoulah/meterplot/internal/timeseries"
)

// CosmosStore reads measurement documents from an Azure Cosmos DB container.
// The sensor id doubles as the partition key.
type CosmosStore struct {
	container *azcosmos.ContainerClient
	sensorID  string
}

// NewCosmos connects to the given container with key auth.
func NewCosmos(endpoint, key, database, container, sensorID string) (*CosmosStore, error) {
	cred, err := azcosmos.NewKeyCredential(key)
	if err != nil {
		return nil, fmt.Errorf("creating credential: %w", err)
	}
	client, err := azcosmos.NewClientWithKey(endpoint, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}
	cc, err := client.NewContainer(database, container)
	if err != nil {
		return nil, fmt.Errorf("opening container %s/%s: %w", database, container, err)
	}
	return &CosmosStore{container: cc, sensorID: sensorID}, nil
}

// Fields returns the camelCase document field set.
func (s *CosmosStore) Fields() []timeseries.Field {
	return timeseries.DocumentFields()
}

// Bounds queries the earliest and latest measured-at values for the sensor.
func (s *CosmosStore) Bounds(ctx context.Context) (time.Time, time.Time, bool, error) {
	first, ok, err := s.boundQuery(ctx, "SELECT VALUE MIN(c.measuredAt) FROM c WHERE c.sensorId = @sid")
	if err != nil || !ok {
		return time.Time{}, time.Time{}, false, err
	}
	last, ok, err := s.boundQuery(ctx, "SELECT VALUE MAX(c.measuredAt) FROM c WHERE c.sensorId = @sid")
	if err != nil || !ok {
		return time.Time{}, time.Time{}, false, err
	}
	return first, last, true, nil
}

func (s *CosmosStore) boundQuery(ctx context.Context, query string) (time.Time, bool, error) {
	opts := &azcosmos.QueryOptions{
		QueryParameters: []azcosmos.QueryParameter{{Name: "@sid", Value: s.sensorID}},
	}
	pager := s.container.NewQueryItemsPager(query, azcosmos.NewPartitionKeyString(s.sensorID), opts)
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("querying bounds: %w", err)
		}
		for _, item := range resp.Items {
			var at *string
			if err := json.Unmarshal(item, &at); err != nil {
				return time.Time{}, false, fmt.Errorf("decoding bound: %w", err)
			}
			if at == nil {
				return time.Time{}, false, nil
			}
			t, err := dateparse.ParseAny(*at)
			if err != nil {
				return time.Time{}, false, fmt.Errorf("parsing bound %q: %w", *at, err)
			}
			return t, true, nil
		}
	}
	return time.Time{}, false, nil
}

// Query fetches all documents with begin <= measuredAt < end, following the
// pager until the store reports no further pages.
func (s *CosmosStore) Query(ctx context.Context, begin, end time.Time) ([]map[string]interface{}, error) {
	query := "SELECT * FROM c WHERE c.sensorId = @sid AND c.measuredAt >= @begin AND c.measuredAt < @end"
	opts := &azcosmos.QueryOptions{
		QueryParameters: []azcosmos.QueryParameter{
			{Name: "@sid", Value: s.sensorID},
			{Name: "@begin", Value: begin.UTC().Format(time.RFC3339)},
			{Name: "@end", Value: end.UTC().Format(time.RFC3339)},
		},
	}
	pager := s.container.NewQueryItemsPager(query, azcosmos.NewPartitionKeyString(s.sensorID), opts)

	var records []map[string]interface{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("querying items: %w", err)
		}
		for _, item := range resp.Items {
			var rec map[string]interface{}
			if err := json.Unmarshal(item, &rec); err != nil {
				return nil, fmt.Errorf("decoding item: %w", err)
			}
			records = append(records, rec)
		}
	}
	return records, nil
}

// DeleteSensor deletes every document belonging to the sensor, one item at a
// time. A 404 on an individual delete means another run already removed it
// and counts as success. There is no batching and no rollback; a failed run
// leaves the partition partially deleted.
func (s *CosmosStore) DeleteSensor(ctx context.Context, progress func(id string)) (int, error) {
	opts := &azcosmos.QueryOptions{
		QueryParameters: []azcosmos.QueryParameter{{Name: "@sid", Value: s.sensorID}},
	}
	pk := azcosmos.NewPartitionKeyString(s.sensorID)
	pager := s.container.NewQueryItemsPager("SELECT c.id FROM c WHERE c.sensorId = @sid", pk, opts)

	var ids []string
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("listing items: %w", err)
		}
		for _, item := range resp.Items {
			var row struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(item, &row); err != nil {
				return 0, fmt.Errorf("decoding id: %w", err)
			}
			ids = append(ids, row.ID)
		}
	}

	deleted := 0
	for _, id := range ids {
		if progress != nil {
			progress(id)
		}
		if _, err := s.container.DeleteItem(ctx, pk, id, nil); err != nil {
			if isNotFound(err) {
				continue
			}
			return deleted, fmt.Errorf("deleting item %s: %w", id, err)
		}
		deleted++
	}
	return deleted, nil
}

func isNotFound(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}
