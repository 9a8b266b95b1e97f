package dynamo

import (
	"context"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/torn-watcher/internal/domain"
)

// ItemRepo provides typed DynamoDB operations for the items table.
type ItemRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewItemRepo(client *dynamodb.Client, tableName string) *ItemRepo {
	return &ItemRepo{client: client, tableName: tableName}
}

// UpsertCatalog sets the catalog fields of an item and leaves watched and
// lowest_bazaar_price untouched.
func (r *ItemRepo) UpsertCatalog(ctx context.Context, it domain.Item) error {
	return r.update(ctx, it.ID, map[string]interface{}{
		"name":         it.Name,
		"type":         it.Type,
		"market_value": it.MarketValue,
		"circulation":  it.Circulation,
		fieldUpdatedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// ListWatched returns up to limit items flagged for bazaar tracking, lowest id first.
func (r *ItemRepo) ListWatched(ctx context.Context, limit int) ([]domain.Item, error) {
	items, err := scanAll(ctx, r.client, &dynamodb.ScanInput{
		TableName:                aws.String(r.tableName),
		FilterExpression:         aws.String("#w = :t"),
		ExpressionAttributeNames: map[string]string{"#w": fieldWatched},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if err != nil {
		return nil, err
	}
	var out []domain.Item
	if err := attributevalue.UnmarshalListOfMaps(items, &out); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ItemRepo) UpdateLowestPrice(ctx context.Context, itemID, price int64) error {
	return r.update(ctx, itemID, map[string]interface{}{
		fieldLowestBazaarPrice: price,
		fieldUpdatedAt:         time.Now().UTC().Format(time.RFC3339),
	})
}

func (r *ItemRepo) update(ctx context.Context, itemID int64, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       numKey("id", itemID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

