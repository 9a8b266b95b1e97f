package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/torn-watcher/internal/domain"
)

// StockAlertRepo provides typed DynamoDB operations for the stock_alerts table.
type StockAlertRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewStockAlertRepo(client *dynamodb.Client, tableName string) *StockAlertRepo {
	return &StockAlertRepo{client: client, tableName: tableName}
}

func (r *StockAlertRepo) ListAll(ctx context.Context) ([]domain.StockAlert, error) {
	items, err := scanAll(ctx, r.client, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
	if err != nil {
		return nil, err
	}
	var alerts []domain.StockAlert
	if err := attributevalue.UnmarshalListOfMaps(items, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *StockAlertRepo) UpdateLastQty(ctx context.Context, userID int64, alertKey string, qty int64) error {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldLastQty: qty})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       numStrKey("user_id", userID, "alert_key", alertKey),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}
