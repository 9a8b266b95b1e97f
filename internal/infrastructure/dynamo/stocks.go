package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/torn-watcher/internal/domain"
)

// StockRepo provides typed DynamoDB operations for the stocks table.
type StockRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewStockRepo(client *dynamodb.Client, tableName string) *StockRepo {
	return &StockRepo{client: client, tableName: tableName}
}

// ListAll returns every stored stock keyed by stock_id.
func (r *StockRepo) ListAll(ctx context.Context) (map[int64]domain.Stock, error) {
	items, err := scanAll(ctx, r.client, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
	if err != nil {
		return nil, err
	}
	var stocks []domain.Stock
	if err := attributevalue.UnmarshalListOfMaps(items, &stocks); err != nil {
		return nil, err
	}
	byID := make(map[int64]domain.Stock, len(stocks))
	for _, s := range stocks {
		byID[s.StockID] = s
	}
	return byID, nil
}

// PutBatch upserts stocks keyed by stock_id.
func (r *StockRepo) PutBatch(ctx context.Context, stocks []domain.Stock) error {
	items := make([]map[string]types.AttributeValue, 0, len(stocks))
	for i := range stocks {
		item, err := attributevalue.MarshalMap(&stocks[i])
		if err != nil {
			return fmt.Errorf("marshal stock: %w", err)
		}
		items = append(items, item)
	}
	return batchPut(ctx, r.client, r.tableName, items)
}
