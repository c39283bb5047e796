package store

import (
	"context"
	"fmt"
	"time"

	"github.com/araddon/dateparse"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"

	"github.com/jgoulah/meterplot/internal/timeseries"
)

// DynamoStore reads measurements from a DynamoDB table keyed on
// (device_id, timestamp) with the sensor payload under a nested "data" map.
type DynamoStore struct {
	svc      *dynamodb.DynamoDB
	table    string
	deviceID string
	sensorID string
}

// NewDynamo connects to DynamoDB with static credentials.
func NewDynamo(region, accessKey, secretKey, table, deviceID, sensorID string) (*DynamoStore, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewStaticCredentials(accessKey, secretKey, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return &DynamoStore{
		svc:      dynamodb.New(sess),
		table:    table,
		deviceID: deviceID,
		sensorID: sensorID,
	}, nil
}

type dynamoItem struct {
	DeviceID  string                 `dynamodbav:"device_id"`
	Timestamp int64                  `dynamodbav:"timestamp"`
	Data      map[string]interface{} `dynamodbav:"data"`
}

// Fields returns the snake_case table field set.
func (s *DynamoStore) Fields() []timeseries.Field {
	return timeseries.TableFields()
}

func (s *DynamoStore) baseInput() *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("device_id = :dev"),
		FilterExpression:       aws.String("#data.sensor_id = :sid"),
		ExpressionAttributeNames: map[string]*string{
			"#data": aws.String("data"),
		},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":dev": {S: aws.String(s.deviceID)},
			":sid": {S: aws.String(s.sensorID)},
		},
	}
}

// Bounds scans forward and backward for the first and last items matching the
// sensor filter. The filter runs after the key read, so pages may come back
// empty; keep following the continuation key until an item shows up.
func (s *DynamoStore) Bounds(ctx context.Context) (time.Time, time.Time, bool, error) {
	first, ok, err := s.boundQuery(ctx, true)
	if err != nil || !ok {
		return time.Time{}, time.Time{}, false, err
	}
	last, ok, err := s.boundQuery(ctx, false)
	if err != nil || !ok {
		return time.Time{}, time.Time{}, false, err
	}
	return first, last, true, nil
}

func (s *DynamoStore) boundQuery(ctx context.Context, forward bool) (time.Time, bool, error) {
	input := s.baseInput()
	input.Limit = aws.Int64(1)
	input.ScanIndexForward = aws.Bool(forward)

	for {
		out, err := s.svc.QueryWithContext(ctx, input)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("querying bound: %w", err)
		}
		if len(out.Items) > 0 {
			var item dynamoItem
			if err := dynamodbattribute.UnmarshalMap(out.Items[0], &item); err != nil {
				return time.Time{}, false, fmt.Errorf("decoding item: %w", err)
			}
			raw, _ := item.Data["measured_at"].(string)
			t, err := dateparse.ParseAny(raw)
			if err != nil {
				return time.Time{}, false, fmt.Errorf("parsing bound %q: %w", raw, err)
			}
			return t, true, nil
		}
		if out.LastEvaluatedKey == nil {
			return time.Time{}, false, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// Query fetches every item in [begin, end), following LastEvaluatedKey until
// the table reports no further pages, and returns the nested data maps.
func (s *DynamoStore) Query(ctx context.Context, begin, end time.Time) ([]map[string]interface{}, error) {
	input := s.baseInput()
	input.KeyConditionExpression = aws.String("device_id = :dev AND #ts BETWEEN :begin AND :end")
	input.ExpressionAttributeNames["#ts"] = aws.String("timestamp")
	input.ExpressionAttributeValues[":begin"] = &dynamodb.AttributeValue{
		N: aws.String(fmt.Sprintf("%d", begin.Unix())),
	}
	input.ExpressionAttributeValues[":end"] = &dynamodb.AttributeValue{
		N: aws.String(fmt.Sprintf("%d", end.Add(-time.Microsecond).Unix())),
	}

	var records []map[string]interface{}
	for {
		out, err := s.svc.QueryWithContext(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("querying items: %w", err)
		}
		var items []dynamoItem
		if err := dynamodbattribute.UnmarshalListOfMaps(out.Items, &items); err != nil {
			return nil, fmt.Errorf("decoding items: %w", err)
		}
		for _, item := range items {
			records = append(records, item.Data)
		}
		if out.LastEvaluatedKey == nil {
			return records, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}
