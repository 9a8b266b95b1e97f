// Package market holds the catalog sync functions: item-sync, bazaar-sync and
// stock-sync. Each writes the latest Torn market data into its table.
package market

import (
	"context"
	"log/slog"

	"github.com/torn-watcher/internal/application/credential"
	"github.com/torn-watcher/internal/domain"
	"github.com/torn-watcher/internal/infrastructure/torn"
)

const (
	ItemSyncName   = "item-sync"
	BazaarSyncName = "bazaar-sync"
	StockSyncName  = "stock-sync"
)

type Service interface {
	Run(ctx context.Context, runID string, opts domain.RunOptions) (*domain.RunSummary, error)
}

type catalogFetcher interface {
	Items(ctx context.Context, key string) (*torn.ItemsResponse, error)
	Stocks(ctx context.Context, key string) (*torn.StocksResponse, error)
	Bazaar(ctx context.Context, key string, itemID int64) ([]torn.Listing, error)
}

// Archiver keeps the raw API payload of a run. A nil Archiver disables it.
type Archiver interface {
	Archive(ctx context.Context, function, runID string, payload []byte) (string, error)
}

// firstCredential picks the key used for the global torn/ selections.
func firstCredential(ctx context.Context, src credential.Source) (domain.UserCredential, bool, error) {
	creds, err := src.ListCredentials(ctx)
	if err != nil || len(creds) == 0 {
		return domain.UserCredential{}, false, err
	}
	return creds[0], true, nil
}

func archive(ctx context.Context, a Archiver, summary *domain.RunSummary, payload []byte) {
	if a == nil || len(payload) == 0 {
		return
	}
	loc, err := a.Archive(ctx, summary.Function, summary.RunID, payload)
	if err != nil {
		summary.Fail("archive", err)
		return
	}
	slog.Info("snapshot archived", "function", summary.Function, "location", loc)
}
