package market

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/torn-watcher/internal/application/credential"
	"github.com/torn-watcher/internal/domain"
)

type stockStore interface {
	ListAll(ctx context.Context) (map[int64]domain.Stock, error)
	PutBatch(ctx context.Context, stocks []domain.Stock) error
}

type StockSyncDeps struct {
	Credentials credential.Source
	StockRepo   stockStore
	Torn        catalogFetcher
	Archiver    Archiver
}

type stockSync struct {
	StockSyncDeps
}

func NewStockSync(deps StockSyncDeps) Service {
	return &stockSync{deps}
}

func (s *stockSync) Run(ctx context.Context, runID string, _ domain.RunOptions) (*domain.RunSummary, error) {
	summary := domain.NewRunSummary(StockSyncName, runID)

	cred, ok, err := firstCredential(ctx, s.Credentials)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	if !ok {
		summary.Fail("credentials", domain.ErrNoCredentials)
		return summary, nil
	}

	resp, err := s.Torn.Stocks(ctx, cred.DecryptedKey)
	if err != nil {
		return nil, fmt.Errorf("fetch stocks: %w", err)
	}
	archive(ctx, s.Archiver, summary, resp.Raw)

	previous, err := s.StockRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read stored stocks: %w", err)
	}

	now := time.Now().UTC()
	stocks := make([]domain.Stock, 0, len(resp.Stocks))
	for _, info := range resp.Stocks {
		prev := previous[info.StockID].CurrentPrice
		stocks = append(stocks, domain.Stock{
			StockID:       info.StockID,
			Acronym:       info.Acronym,
			Name:          info.Name,
			CurrentPrice:  info.CurrentPrice,
			PreviousPrice: prev,
			ChangePercent: ChangePercent(prev, info.CurrentPrice),
			UpdatedAt:     now,
		})
	}
	sort.Slice(stocks, func(i, j int) bool { return stocks[i].StockID < stocks[j].StockID })
	summary.AddProcessed(len(stocks))

	if err := s.StockRepo.PutBatch(ctx, stocks); err != nil {
		summary.Fail("stocks", err)
		return summary, nil
	}
	summary.AddUpdated(len(stocks))
	return summary, nil
}

// ChangePercent is the move from prev to cur in percent, rounded to two
// decimals. A stock with no previous price has not moved.
func ChangePercent(prev, cur float64) float64 {
	if prev == 0 {
		return 0
	}
	return math.Round((cur-prev)/prev*100*100) / 100
}
