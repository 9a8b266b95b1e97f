// Package distribute spreads work units over the available API keys so that
// no single key exceeds the upstream per-key rate limit.
package distribute

import (
	"context"
	"time"

	"github.com/torn-watcher/internal/domain"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Lane is the ordered work one credential performs within a run.
type Lane[T any] struct {
	Credential domain.UserCredential
	Targets    []T
}

// Assign hands targets[i] to creds[i mod N], keeping input order inside each
// lane. Every credential gets a lane, possibly empty. No credentials yields nil.
func Assign[T any](creds []domain.UserCredential, targets []T) []Lane[T] {
	if len(creds) == 0 {
		return nil
	}
	lanes := make([]Lane[T], len(creds))
	for i, c := range creds {
		lanes[i].Credential = c
	}
	for i, t := range targets {
		l := &lanes[i%len(creds)]
		l.Targets = append(l.Targets, t)
	}
	return lanes
}

// Run executes every lane concurrently. Inside a lane, calls are spaced at
// least spacing apart; spacing 0 disables the pause. fn handles its own
// errors, so Run only returns the context error when the run was cut short.
func Run[T any](ctx context.Context, lanes []Lane[T], spacing time.Duration, fn func(ctx context.Context, cred domain.UserCredential, target T)) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, lane := range lanes {
		if len(lane.Targets) == 0 {
			continue
		}
		g.Go(func() error {
			limiter := rate.NewLimiter(rate.Inf, 1)
			if spacing > 0 {
				limiter = rate.NewLimiter(rate.Every(spacing), 1)
			}
			for _, t := range lane.Targets {
				if err := limiter.Wait(gctx); err != nil {
					return err
				}
				fn(gctx, lane.Credential, t)
			}
			return nil
		})
	}
	return g.Wait()
}
