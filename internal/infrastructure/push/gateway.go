package push

import (
	"context"

	"github.com/torn-watcher/internal/domain"
)

// Gateway delivers a batch of push messages. A returned error covers the
// whole batch; callers log it and move on.
type Gateway interface {
	Send(ctx context.Context, msgs []domain.NotificationMessage) error
}
