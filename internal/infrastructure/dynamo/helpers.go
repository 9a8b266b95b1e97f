package dynamo

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// numKey builds a DynamoDB primary key map with a single numeric attribute.
func numKey(name string, value int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberN{Value: strconv.FormatInt(value, 10)},
	}
}

func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// numStrKey builds a composite key with a numeric partition key and a string sort key.
func numStrKey(pkName string, pkValue int64, skName, skValue string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		pkName: &types.AttributeValueMemberN{Value: strconv.FormatInt(pkValue, 10)},
		skName: &types.AttributeValueMemberS{Value: skValue},
	}
}

type updateExpr struct {
	Expr      string
	Condition string
	Names     map[string]string
	Values    map[string]types.AttributeValue
}

// buildUpdateExpr converts a map of field->value into a DynamoDB SET expression.
// Fields are emitted in sorted order so the expression is deterministic.
func buildUpdateExpr(updates map[string]interface{}) (updateExpr, error) {
	ue := updateExpr{
		Names:  make(map[string]string),
		Values: make(map[string]types.AttributeValue),
	}
	if len(updates) == 0 {
		return ue, fmt.Errorf("no fields to update")
	}
	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for i, k := range keys {
		nameKey := fmt.Sprintf("#f%d", i)
		valueKey := fmt.Sprintf(":v%d", i)
		av, err := attributevalue.Marshal(updates[k])
		if err != nil {
			return ue, fmt.Errorf("marshal field %s: %w", k, err)
		}
		ue.Names[nameKey] = k
		ue.Values[valueKey] = av
		parts = append(parts, fmt.Sprintf("%s = %s", nameKey, valueKey))
	}
	ue.Expr = "SET " + strings.Join(parts, ", ")
	return ue, nil
}

// buildFlagUpdate sets every flag in next and guards each one with a
// compare-and-swap on its previously read value. A flag that was read as
// false also matches a row where the attribute was never written.
func buildFlagUpdate(next, previous map[string]bool, extra map[string]interface{}) (updateExpr, error) {
	updates := make(map[string]interface{}, len(next)+len(extra))
	for k, v := range next {
		updates[k] = v
	}
	for k, v := range extra {
		updates[k] = v
	}
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return ue, err
	}

	byField := make(map[string]string, len(ue.Names))
	for placeholder, field := range ue.Names {
		byField[field] = placeholder
	}
	flags := make([]string, 0, len(next))
	for k := range next {
		flags = append(flags, k)
	}
	sort.Strings(flags)

	conds := make([]string, 0, len(flags))
	for i, f := range flags {
		name := byField[f]
		prevKey := fmt.Sprintf(":p%d", i)
		prev := previous[f]
		ue.Values[prevKey] = &types.AttributeValueMemberBOOL{Value: prev}
		if prev {
			conds = append(conds, fmt.Sprintf("%s = %s", name, prevKey))
		} else {
			conds = append(conds, fmt.Sprintf("(attribute_not_exists(%s) OR %s = %s)", name, name, prevKey))
		}
	}
	ue.Condition = strings.Join(conds, " AND ")
	return ue, nil
}
