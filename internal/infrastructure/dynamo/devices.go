package dynamo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/torn-watcher/internal/domain"
)

// DeviceRepo provides typed DynamoDB operations for the devices table.
type DeviceRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewDeviceRepo(client *dynamodb.Client, tableName string) *DeviceRepo {
	return &DeviceRepo{client: client, tableName: tableName}
}

// Register upserts the device row for a push token. The row key is derived
// from the token, so registering the same token again (for the same or a new
// user) rewrites one row instead of adding another.
func (r *DeviceRepo) Register(ctx context.Context, d *domain.Device) error {
	now := time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(map[string]interface{}{
		"user_id":      d.UserID,
		"token":        d.Token,
		"platform":     d.Platform,
		fieldEnable:    true,
		fieldUpdatedAt: now,
	})
	if err != nil {
		return err
	}
	ue.Names["#c"] = "created_at"
	ue.Values[":c"] = &types.AttributeValueMemberS{Value: now}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("device_id", domain.DeviceIDForToken(d.Token)),
		UpdateExpression:          aws.String(ue.Expr + ", #c = if_not_exists(#c, :c)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if err != nil {
		return fmt.Errorf("register device: %w", err)
	}
	return nil
}

// ListByUser returns the enabled devices of a user that carry a push token.
func (r *DeviceRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Device, error) {
	items, err := queryAll(ctx, r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		FilterExpression:       aws.String("#en = :t AND attribute_exists(#tok)"),
		ExpressionAttributeNames: map[string]string{
			"#en":  fieldEnable,
			"#tok": "token",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberN{Value: strconv.FormatInt(userID, 10)},
			":t":   &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if err != nil {
		return nil, err
	}
	var devices []domain.Device
	if err := attributevalue.UnmarshalListOfMaps(items, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}
