package market

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/torn-watcher/internal/application/credential"
	"github.com/torn-watcher/internal/domain"
	"github.com/torn-watcher/internal/pkg/fanout"
)

type itemStore interface {
	UpsertCatalog(ctx context.Context, it domain.Item) error
	ListWatched(ctx context.Context, limit int) ([]domain.Item, error)
	UpdateLowestPrice(ctx context.Context, itemID, price int64) error
}

type ItemSyncDeps struct {
	Credentials credential.Source
	ItemRepo    itemStore
	Torn        catalogFetcher
	Archiver    Archiver
	Concurrency int
}

type itemSync struct {
	ItemSyncDeps
}

func NewItemSync(deps ItemSyncDeps) Service {
	return &itemSync{deps}
}

func (s *itemSync) Run(ctx context.Context, runID string, opts domain.RunOptions) (*domain.RunSummary, error) {
	summary := domain.NewRunSummary(ItemSyncName, runID)

	cred, ok, err := firstCredential(ctx, s.Credentials)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	if !ok {
		summary.Fail("credentials", domain.ErrNoCredentials)
		return summary, nil
	}

	resp, err := s.Torn.Items(ctx, cred.DecryptedKey)
	if err != nil {
		return nil, fmt.Errorf("fetch item catalog: %w", err)
	}
	archive(ctx, s.Archiver, summary, resp.Raw)

	items := make([]domain.Item, 0, len(resp.Items))
	for rawID, info := range resp.Items {
		itemID, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			summary.Fail("item "+rawID, err)
			continue
		}
		items = append(items, domain.Item{
			ID:          itemID,
			Name:        info.Name,
			Type:        info.Type,
			MarketValue: info.MarketValue,
			Circulation: info.Circulation,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	if opts.Limit > 0 && len(items) > opts.Limit {
		items = items[:opts.Limit]
	}

	err = fanout.Each(ctx, items, s.Concurrency, func(ctx context.Context, it domain.Item) {
		summary.AddProcessed(1)
		if err := s.ItemRepo.UpsertCatalog(ctx, it); err != nil {
			summary.Fail(fmt.Sprintf("item %d", it.ID), err)
			return
		}
		summary.AddUpdated(1)
	})
	if err != nil {
		summary.Fail("run", err)
	}
	return summary, nil
}
