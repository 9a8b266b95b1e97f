package distribute

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/torn-watcher/internal/domain"
)

func creds(n int) []domain.UserCredential {
	out := make([]domain.UserCredential, n)
	for i := range out {
		out[i] = domain.UserCredential{UserID: int64(i + 1), DecryptedKey: "key"}
	}
	return out
}

func targets(m int) []int {
	out := make([]int, m)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestAssign_RoundRobin(t *testing.T) {
	lanes := Assign(creds(3), targets(7))

	require.Len(t, lanes, 3)
	assert.Equal(t, []int{0, 3, 6}, lanes[0].Targets)
	assert.Equal(t, []int{1, 4}, lanes[1].Targets)
	assert.Equal(t, []int{2, 5}, lanes[2].Targets)
	assert.Equal(t, int64(2), lanes[1].Credential.UserID)
}

func TestAssign_BalancedAndComplete(t *testing.T) {
	for _, tc := range []struct{ n, m int }{{1, 0}, {1, 20}, {4, 20}, {6, 20}, {20, 3}, {7, 50}} {
		lanes := Assign(creds(tc.n), targets(tc.m))
		require.Len(t, lanes, tc.n)

		floor, ceil := tc.m/tc.n, (tc.m+tc.n-1)/tc.n
		seen := map[int]int{}
		for _, l := range lanes {
			assert.GreaterOrEqual(t, len(l.Targets), floor)
			assert.LessOrEqual(t, len(l.Targets), ceil)
			for _, tg := range l.Targets {
				seen[tg]++
			}
		}
		assert.Len(t, seen, tc.m)
		for tg, count := range seen {
			assert.Equalf(t, 1, count, "target %d assigned %d times", tg, count)
		}
	}
}

func TestAssign_NoCredentials(t *testing.T) {
	assert.Nil(t, Assign(nil, targets(5)))
}

func TestRun_SpacesCallsWithinLane(t *testing.T) {
	var mu sync.Mutex
	var calls []time.Time

	lanes := Assign(creds(1), targets(3))
	err := Run(context.Background(), lanes, 20*time.Millisecond, func(_ context.Context, _ domain.UserCredential, _ int) {
		mu.Lock()
		calls = append(calls, time.Now())
		mu.Unlock()
	})

	require.NoError(t, err)
	require.Len(t, calls, 3)
	for i := 1; i < len(calls); i++ {
		assert.GreaterOrEqual(t, calls[i].Sub(calls[i-1]), 15*time.Millisecond)
	}
}

func TestRun_EveryTargetHandledOnce(t *testing.T) {
	var mu sync.Mutex
	got := map[int]int64{}

	lanes := Assign(creds(4), targets(10))
	err := Run(context.Background(), lanes, 0, func(_ context.Context, c domain.UserCredential, tg int) {
		mu.Lock()
		got[tg] = c.UserID
		mu.Unlock()
	})

	require.NoError(t, err)
	assert.Len(t, got, 10)
	assert.Equal(t, int64(1), got[8])
	assert.Equal(t, int64(2), got[9])
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	lanes := Assign(creds(1), targets(5))
	err := Run(ctx, lanes, time.Hour, func(context.Context, domain.UserCredential, int) {
		calls++
		cancel()
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
