package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/torn-watcher/internal/domain"
)

// EventRepo provides typed DynamoDB operations for the events table.
type EventRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewEventRepo(client *dynamodb.Client, tableName string) *EventRepo {
	return &EventRepo{client: client, tableName: tableName}
}

// PutBatch upserts events keyed by log_hash.
func (r *EventRepo) PutBatch(ctx context.Context, events []domain.Event) error {
	items := make([]map[string]types.AttributeValue, 0, len(events))
	for i := range events {
		item, err := attributevalue.MarshalMap(&events[i])
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
		items = append(items, item)
	}
	return batchPut(ctx, r.client, r.tableName, items)
}
