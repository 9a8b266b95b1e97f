// Package notify turns per-user notices into push messages and sends them.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/torn-watcher/internal/domain"
	"github.com/torn-watcher/internal/pkg/id"
)

type Dispatcher interface {
	// Dispatch resolves device tokens, sends every message in one gateway
	// call and records history. It returns how many messages were sent.
	// Errors are for the run summary; callers never abort on them.
	Dispatch(ctx context.Context, notices []domain.Notice) (int, error)
}

// DefaultSendTimeout bounds a dispatch when no timeout is configured.
const DefaultSendTimeout = 10 * time.Second

// SendContext returns a context for Dispatch that outlives ctx's deadline and
// cancellation but keeps its values. Flag and quantity writes that already
// landed must still be delivered when the run deadline hits during fan-out.
func SendContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}

type deviceStore interface {
	ListByUser(ctx context.Context, userID int64) ([]domain.Device, error)
}

type historyStore interface {
	PutBatch(ctx context.Context, ns []domain.Notification) error
}

type gateway interface {
	Send(ctx context.Context, msgs []domain.NotificationMessage) error
}

type dispatcher struct {
	devices deviceStore
	history historyStore
	gateway gateway
}

func NewDispatcher(devices deviceStore, history historyStore, gw gateway) Dispatcher {
	return &dispatcher{devices: devices, history: history, gateway: gw}
}

func (d *dispatcher) Dispatch(ctx context.Context, notices []domain.Notice) (int, error) {
	if len(notices) == 0 {
		return 0, nil
	}

	var errs []error
	tokens := map[int64][]string{}
	var msgs []domain.NotificationMessage
	var delivered []domain.Notice
	for _, n := range notices {
		userTokens, ok := tokens[n.UserID]
		if !ok {
			devices, err := d.devices.ListByUser(ctx, n.UserID)
			if err != nil {
				errs = append(errs, fmt.Errorf("devices for user %d: %w", n.UserID, err))
			}
			seen := make(map[string]bool, len(devices))
			for _, dev := range devices {
				if dev.Enable && dev.Token != "" && !seen[dev.Token] {
					seen[dev.Token] = true
					userTokens = append(userTokens, dev.Token)
				}
			}
			tokens[n.UserID] = userTokens
		}
		if len(userTokens) == 0 {
			continue
		}
		for _, tok := range userTokens {
			msgs = append(msgs, domain.NotificationMessage{PushToken: tok, Title: n.Title, Body: n.Body})
		}
		delivered = append(delivered, n)
	}

	if len(msgs) == 0 {
		return 0, errors.Join(errs...)
	}
	if err := d.gateway.Send(ctx, msgs); err != nil {
		slog.Error("push batch failed", "messages", len(msgs), "error", err)
		errs = append(errs, fmt.Errorf("push: %w", err))
		return 0, errors.Join(errs...)
	}

	now := time.Now().UTC()
	history := make([]domain.Notification, 0, len(delivered))
	for _, n := range delivered {
		history = append(history, domain.Notification{
			NotificationID: id.New(),
			UserID:         n.UserID,
			Kind:           n.Kind,
			Title:          n.Title,
			Body:           n.Body,
			CreatedAt:      now,
		})
	}
	if err := d.history.PutBatch(ctx, history); err != nil {
		slog.Warn("notification history not recorded", "count", len(history), "error", err)
		errs = append(errs, fmt.Errorf("history: %w", err))
	}
	return len(msgs), errors.Join(errs...)
}
