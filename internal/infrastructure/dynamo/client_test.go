package dynamo

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// throttlingWriter leaves the last item of every call unprocessed until
// throttled calls have been made.
type throttlingWriter struct {
	throttled int
	calls     []time.Time
	written   int
}

func (w *throttlingWriter) BatchWriteItem(_ context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	w.calls = append(w.calls, time.Now())
	out := &dynamodb.BatchWriteItemOutput{UnprocessedItems: map[string][]types.WriteRequest{}}
	for table, reqs := range in.RequestItems {
		if len(w.calls) <= w.throttled {
			w.written += len(reqs) - 1
			out.UnprocessedItems[table] = reqs[len(reqs)-1:]
			continue
		}
		w.written += len(reqs)
	}
	return out, nil
}

func rows(n int) []map[string]types.AttributeValue {
	out := make([]map[string]types.AttributeValue, n)
	for i := range out {
		out[i] = map[string]types.AttributeValue{"log_hash": &types.AttributeValueMemberS{Value: strconv.Itoa(i)}}
	}
	return out
}

func withRetryBase(t *testing.T, d time.Duration) {
	t.Helper()
	prev := batchRetryBase
	batchRetryBase = d
	t.Cleanup(func() { batchRetryBase = prev })
}

func TestBatchPut_BacksOffOnUnprocessed(t *testing.T) {
	withRetryBase(t, 10*time.Millisecond)
	w := &throttlingWriter{throttled: 3}

	err := batchPut(context.Background(), w, "events", rows(3))

	require.NoError(t, err)
	assert.Equal(t, 3, w.written)
	require.Len(t, w.calls, 4)
	for i := 1; i < len(w.calls); i++ {
		want := 10 * time.Millisecond << (i - 1)
		assert.GreaterOrEqual(t, w.calls[i].Sub(w.calls[i-1]), want, "gap before attempt %d", i+1)
	}
}

func TestBatchPut_GivesUpAfterMaxAttempts(t *testing.T) {
	withRetryBase(t, time.Millisecond)
	w := &throttlingWriter{throttled: 100}

	err := batchPut(context.Background(), w, "events", rows(2))

	assert.ErrorContains(t, err, "1 items left unprocessed")
	assert.Len(t, w.calls, batchWriteAttempts)
}

func TestBatchPut_StopsWhenContextEnds(t *testing.T) {
	withRetryBase(t, time.Hour)
	w := &throttlingWriter{throttled: 100}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := batchPut(ctx, w, "events", rows(2))

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, w.calls, 1)
}

func TestBatchPut_ChunksOf25(t *testing.T) {
	w := &throttlingWriter{}

	require.NoError(t, batchPut(context.Background(), w, "events", rows(60)))

	assert.Len(t, w.calls, 3)
	assert.Equal(t, 60, w.written)
}

type pagedQuerier struct {
	pages  [][]map[string]types.AttributeValue
	starts []map[string]types.AttributeValue
}

func (q *pagedQuerier) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	q.starts = append(q.starts, in.ExclusiveStartKey)
	i := len(q.starts) - 1
	out := &dynamodb.QueryOutput{Items: q.pages[i]}
	if i < len(q.pages)-1 {
		out.LastEvaluatedKey = map[string]types.AttributeValue{"device_id": &types.AttributeValueMemberS{Value: strconv.Itoa(i)}}
	}
	return out, nil
}

func TestQueryAll_FollowsLastEvaluatedKey(t *testing.T) {
	q := &pagedQuerier{pages: [][]map[string]types.AttributeValue{rows(2), rows(1), rows(3)}}

	items, err := queryAll(context.Background(), q, &dynamodb.QueryInput{})

	require.NoError(t, err)
	assert.Len(t, items, 6)
	require.Len(t, q.starts, 3)
	assert.Nil(t, q.starts[0])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "1"}, q.starts[2]["device_id"])
}
