package market

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/torn-watcher/internal/application/credential"
	"github.com/torn-watcher/internal/application/distribute"
	"github.com/torn-watcher/internal/domain"
	"github.com/torn-watcher/internal/infrastructure/torn"
)

type BazaarSyncDeps struct {
	Credentials credential.Source
	ItemRepo    itemStore
	Torn        catalogFetcher
	BatchLimit  int
	CallSpacing time.Duration
}

type bazaarSync struct {
	BazaarSyncDeps
}

func NewBazaarSync(deps BazaarSyncDeps) Service {
	return &bazaarSync{deps}
}

func (s *bazaarSync) Run(ctx context.Context, runID string, opts domain.RunOptions) (*domain.RunSummary, error) {
	summary := domain.NewRunSummary(BazaarSyncName, runID)

	creds, err := s.Credentials.ListCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	if len(creds) == 0 {
		summary.Fail("credentials", domain.ErrNoCredentials)
		return summary, nil
	}

	limit := s.BatchLimit
	if opts.Limit > 0 && (limit <= 0 || opts.Limit < limit) {
		limit = opts.Limit
	}
	items, err := s.ItemRepo.ListWatched(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list watched items: %w", err)
	}

	lanes := distribute.Assign(creds, items)
	err = distribute.Run(ctx, lanes, s.CallSpacing, func(ctx context.Context, c domain.UserCredential, it domain.Item) {
		unit := fmt.Sprintf("item %d", it.ID)
		listings, err := s.Torn.Bazaar(ctx, c.DecryptedKey, it.ID)
		if err != nil {
			if torn.IsAPIError(err) {
				slog.Info("torn rejected bazaar lookup", "item_id", it.ID, "error", err)
				summary.AddSkipped(1)
				return
			}
			summary.Fail(unit, err)
			return
		}
		summary.AddProcessed(1)
		if err := s.ItemRepo.UpdateLowestPrice(ctx, it.ID, LowestPrice(listings)); err != nil {
			summary.Fail(unit, err)
			return
		}
		summary.AddUpdated(1)
	})
	if err != nil {
		summary.Fail("run", err)
	}
	return summary, nil
}

// LowestPrice is the cheapest listing cost, or 0 when nothing is listed.
func LowestPrice(listings []torn.Listing) int64 {
	var lowest int64
	for _, l := range listings {
		if l.Quantity <= 0 {
			continue
		}
		if lowest == 0 || l.Cost < lowest {
			lowest = l.Cost
		}
	}
	return lowest
}
