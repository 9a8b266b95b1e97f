// Package stockalert is the stock-alerts function. It compares foreign shelf
// quantities with the last quantity each user saw and sends restock,
// sold-out and running-low messages.
package stockalert

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/torn-watcher/internal/application/notify"
	"github.com/torn-watcher/internal/application/transition"
	"github.com/torn-watcher/internal/domain"
	"github.com/torn-watcher/internal/pkg/fanout"
)

const Name = "stock-alerts"

type Service interface {
	Run(ctx context.Context, runID string, opts domain.RunOptions) (*domain.RunSummary, error)
}

type alertStore interface {
	ListAll(ctx context.Context) ([]domain.StockAlert, error)
	UpdateLastQty(ctx context.Context, userID int64, alertKey string, qty int64) error
}

type stockFeed interface {
	ForeignStock(ctx context.Context) ([]domain.ForeignStock, error)
}

type ServiceDeps struct {
	AlertRepo   alertStore
	Feed        stockFeed
	Notifier    notify.Dispatcher
	Concurrency int
	// SendTimeout bounds the push dispatch, which runs past the run deadline.
	SendTimeout time.Duration
}

type service struct {
	alerts      alertStore
	feed        stockFeed
	notifier    notify.Dispatcher
	concurrency int
	sendTimeout time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		alerts:      deps.AlertRepo,
		feed:        deps.Feed,
		notifier:    deps.Notifier,
		concurrency: deps.Concurrency,
		sendTimeout: deps.SendTimeout,
	}
}

func (s *service) Run(ctx context.Context, runID string, opts domain.RunOptions) (*domain.RunSummary, error) {
	summary := domain.NewRunSummary(Name, runID)

	alerts, err := s.alerts.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stock alerts: %w", err)
	}
	if opts.Limit > 0 && len(alerts) > opts.Limit {
		alerts = alerts[:opts.Limit]
	}
	if len(alerts) == 0 {
		return summary, nil
	}

	stock, err := s.feed.ForeignStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("read foreign stock: %w", err)
	}
	shelves := make(map[string]domain.ForeignStock, len(stock))
	for _, fs := range stock {
		shelves[domain.StockAlertKey(fs.ItemID, fs.CountryCode)] = fs
	}

	var mu sync.Mutex
	var notices []domain.Notice
	err = fanout.Each(ctx, alerts, s.concurrency, func(ctx context.Context, a domain.StockAlert) {
		key := a.AlertKey
		if key == "" {
			key = domain.StockAlertKey(a.ItemID, a.CountryCode)
		}
		shelf, ok := shelves[domain.StockAlertKey(a.ItemID, a.CountryCode)]
		if !ok {
			slog.Debug("item not sold abroad", "item_id", a.ItemID, "country", a.CountryCode)
			summary.AddSkipped(1)
			return
		}
		summary.AddProcessed(1)
		if a.ItemName == "" {
			a.ItemName = shelf.Name
		}

		kind := transition.Stock(a.LastQty, shelf.Quantity)
		if err := s.alerts.UpdateLastQty(ctx, a.UserID, key, shelf.Quantity); err != nil {
			summary.Fail(fmt.Sprintf("alert %d/%s", a.UserID, key), err)
			return
		}
		summary.AddUpdated(1)

		if n, fire := transition.StockNotice(a, shelf.Quantity, kind); fire {
			mu.Lock()
			notices = append(notices, n)
			mu.Unlock()
		}
	})
	if err != nil {
		summary.Fail("run", err)
	}

	sendCtx, cancel := notify.SendContext(ctx, s.sendTimeout)
	defer cancel()
	sent, err := s.notifier.Dispatch(sendCtx, notices)
	summary.AddNotified(sent)
	if err != nil {
		summary.Fail("push", err)
	}
	return summary, nil
}
