package dynamo

import (
	"context"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/torn-watcher/internal/domain"
)

// ChainTargetRepo provides typed DynamoDB operations for the chain_targets queue table.
type ChainTargetRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewChainTargetRepo(client *dynamodb.Client, tableName string) *ChainTargetRepo {
	return &ChainTargetRepo{client: client, tableName: tableName}
}

// ListDue returns up to limit targets, least recently checked first.
// Targets that were never checked sort before everything else.
func (r *ChainTargetRepo) ListDue(ctx context.Context, limit int) ([]domain.ChainTarget, error) {
	items, err := scanAll(ctx, r.client, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
	if err != nil {
		return nil, err
	}
	var targets []domain.ChainTarget
	if err := attributevalue.UnmarshalListOfMaps(items, &targets); err != nil {
		return nil, err
	}
	sort.SliceStable(targets, func(i, j int) bool {
		if targets[i].CheckedAt.Equal(targets[j].CheckedAt) {
			return targets[i].TornID < targets[j].TornID
		}
		return targets[i].CheckedAt.Before(targets[j].CheckedAt)
	})
	if limit > 0 && len(targets) > limit {
		targets = targets[:limit]
	}
	return targets, nil
}

// UpdateStatus writes back the result of a status check.
func (r *ChainTargetRepo) UpdateStatus(ctx context.Context, t domain.ChainTarget) error {
	updates := map[string]interface{}{
		"status":       t.Status,
		"description":  t.Description,
		"until":        t.Until,
		fieldCheckedAt: t.CheckedAt.UTC().Format(time.RFC3339Nano),
	}
	if t.Name != "" {
		updates["name"] = t.Name
	}
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       numKey("torn_id", t.TornID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}
