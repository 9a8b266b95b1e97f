// Package events is the event-sync function: it copies every user's Torn
// event log into the events table, keyed so re-syncing is idempotent.
package events

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/torn-watcher/internal/application/credential"
	"github.com/torn-watcher/internal/domain"
	"github.com/torn-watcher/internal/infrastructure/torn"
	"github.com/torn-watcher/internal/pkg/fanout"
)

const Name = "event-sync"

type Service interface {
	Run(ctx context.Context, runID string, opts domain.RunOptions) (*domain.RunSummary, error)
}

type eventStore interface {
	PutBatch(ctx context.Context, events []domain.Event) error
}

type userFetcher interface {
	User(ctx context.Context, key string, id int64, selections ...string) (*torn.UserResponse, error)
}

type ServiceDeps struct {
	Credentials credential.Source
	EventRepo   eventStore
	Torn        userFetcher
	Concurrency int
}

type service struct {
	creds       credential.Source
	events      eventStore
	torn        userFetcher
	concurrency int
}

func NewService(deps ServiceDeps) Service {
	return &service{creds: deps.Credentials, events: deps.EventRepo, torn: deps.Torn, concurrency: deps.Concurrency}
}

// LogHash is the table key of one event: sha256 of "user_id:event_id", hex encoded.
func LogHash(userID int64, eventID string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%s", userID, eventID)))
	return hex.EncodeToString(sum[:])
}

func (s *service) Run(ctx context.Context, runID string, opts domain.RunOptions) (*domain.RunSummary, error) {
	summary := domain.NewRunSummary(Name, runID)

	creds, err := s.creds.ListCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	if len(creds) == 0 {
		summary.Fail("credentials", domain.ErrNoCredentials)
		return summary, nil
	}
	if opts.Limit > 0 && len(creds) > opts.Limit {
		creds = creds[:opts.Limit]
	}

	err = fanout.Each(ctx, creds, s.concurrency, func(ctx context.Context, c domain.UserCredential) {
		unit := fmt.Sprintf("user %d", c.UserID)
		resp, err := s.torn.User(ctx, c.DecryptedKey, 0, torn.SelEvents)
		if err != nil {
			if torn.IsAPIError(err) {
				slog.Info("torn rejected event fetch", "user_id", c.UserID, "error", err)
				summary.AddSkipped(1)
				return
			}
			summary.Fail(unit, err)
			return
		}
		summary.AddProcessed(1)

		batch := toEvents(c.UserID, resp.Events, time.Now().UTC())
		if len(batch) == 0 {
			return
		}
		if err := s.events.PutBatch(ctx, batch); err != nil {
			summary.Fail(unit, err)
			return
		}
		summary.AddUpdated(len(batch))
	})
	if err != nil {
		summary.Fail("run", err)
	}
	return summary, nil
}

func toEvents(userID int64, raw map[string]torn.Event, syncedAt time.Time) []domain.Event {
	out := make([]domain.Event, 0, len(raw))
	for eventID, e := range raw {
		out = append(out, domain.Event{
			LogHash:   LogHash(userID, eventID),
			UserID:    userID,
			EventID:   eventID,
			Timestamp: e.Timestamp,
			Text:      e.Event,
			Seen:      e.Seen != 0,
			SyncedAt:  syncedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}
