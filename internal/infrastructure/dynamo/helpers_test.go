package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdateExpr_SingleField(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"name": "Chedburn"})
	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0", ue.Expr)
	assert.Equal(t, map[string]string{"#f0": "name"}, ue.Names)
	_, ok := ue.Values[":v0"]
	assert.True(t, ok)
}

func TestBuildUpdateExpr_MultipleFields_Deterministic(t *testing.T) {
	updates := map[string]interface{}{
		"status":      "Okay",
		"description": "Okay",
		"checked_at":  "2024-01-01T00:00:00Z",
	}
	ue1, err := buildUpdateExpr(updates)
	require.NoError(t, err)
	ue2, err := buildUpdateExpr(updates)
	require.NoError(t, err)

	assert.Equal(t, ue1.Expr, ue2.Expr)

	// Keys must be sorted: checked_at < description < status
	assert.Equal(t, "checked_at", ue1.Names["#f0"])
	assert.Equal(t, "description", ue1.Names["#f1"])
	assert.Equal(t, "status", ue1.Names["#f2"])
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1, #f2 = :v2", ue1.Expr)
}

func TestBuildUpdateExpr_ValuesMarshalledCorrectly(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"energy_full": true})
	require.NoError(t, err)
	av, ok := ue.Values[":v0"]
	require.True(t, ok)
	boolVal, isBool := av.(*types.AttributeValueMemberBOOL)
	require.True(t, isBool)
	assert.True(t, boolVal.Value)
}

func TestBuildUpdateExpr_EmptyMap_ReturnsError(t *testing.T) {
	_, err := buildUpdateExpr(map[string]interface{}{})
	assert.ErrorContains(t, err, "no fields to update")
}

func TestBuildFlagUpdate_GuardsEachFlag(t *testing.T) {
	ue, err := buildFlagUpdate(
		map[string]bool{"energy_full": true, "nerve_full": false},
		map[string]bool{"energy_full": false, "nerve_full": true},
		map[string]interface{}{"updated_at": "now"},
	)
	require.NoError(t, err)

	// energy_full < nerve_full < updated_at
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1, #f2 = :v2", ue.Expr)
	assert.Equal(t, "(attribute_not_exists(#f0) OR #f0 = :p0) AND #f1 = :p1", ue.Condition)

	p0 := ue.Values[":p0"].(*types.AttributeValueMemberBOOL)
	p1 := ue.Values[":p1"].(*types.AttributeValueMemberBOOL)
	assert.False(t, p0.Value)
	assert.True(t, p1.Value)
}

func TestBuildFlagUpdate_NoFlags_ReturnsError(t *testing.T) {
	_, err := buildFlagUpdate(nil, nil, nil)
	assert.ErrorContains(t, err, "no fields to update")
}

func TestNumStrKey(t *testing.T) {
	k := numStrKey("user_id", 42, "alert_key", "206#mex")
	assert.Equal(t, "42", k["user_id"].(*types.AttributeValueMemberN).Value)
	assert.Equal(t, "206#mex", k["alert_key"].(*types.AttributeValueMemberS).Value)
}
