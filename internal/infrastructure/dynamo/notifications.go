package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/torn-watcher/internal/domain"
)

// NotificationRepo provides typed DynamoDB operations for the notifications table.
type NotificationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewNotificationRepo(client *dynamodb.Client, tableName string) *NotificationRepo {
	return &NotificationRepo{client: client, tableName: tableName}
}

// PutBatch records sent notifications as history rows.
func (r *NotificationRepo) PutBatch(ctx context.Context, ns []domain.Notification) error {
	items := make([]map[string]types.AttributeValue, 0, len(ns))
	for i := range ns {
		item, err := attributevalue.MarshalMap(&ns[i])
		if err != nil {
			return fmt.Errorf("marshal notification: %w", err)
		}
		items = append(items, item)
	}
	return batchPut(ctx, r.client, r.tableName, items)
}
