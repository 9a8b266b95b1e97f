// Package watcher is the status watcher function: for every user with a key
// it fetches bars, cooldowns, travel, education and profile state, detects
// rising edges on the per-user flags and pushes one message per edge.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/torn-watcher/internal/application/credential"
	"github.com/torn-watcher/internal/application/notify"
	"github.com/torn-watcher/internal/application/transition"
	"github.com/torn-watcher/internal/domain"
	"github.com/torn-watcher/internal/infrastructure/torn"
	"github.com/torn-watcher/internal/pkg/fanout"
)

const Name = "status-watcher"

var selections = []string{torn.SelBars, torn.SelCooldowns, torn.SelTravel, torn.SelEducation, torn.SelProfile}

type Service interface {
	Run(ctx context.Context, runID string, opts domain.RunOptions) (*domain.RunSummary, error)
}

type userStore interface {
	Get(ctx context.Context, userID int64) (*domain.User, error)
	UpdateFlags(ctx context.Context, userID int64, next, previous map[domain.Flag]bool) error
}

type userFetcher interface {
	User(ctx context.Context, key string, id int64, selections ...string) (*torn.UserResponse, error)
}

type ServiceDeps struct {
	Credentials credential.Source
	UserRepo    userStore
	Torn        userFetcher
	Notifier    notify.Dispatcher
	Concurrency int
	// SendTimeout bounds the push dispatch, which runs past the run deadline.
	SendTimeout time.Duration
}

type service struct {
	creds       credential.Source
	users       userStore
	torn        userFetcher
	notifier    notify.Dispatcher
	concurrency int
	sendTimeout time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		creds:       deps.Credentials,
		users:       deps.UserRepo,
		torn:        deps.Torn,
		notifier:    deps.Notifier,
		concurrency: deps.Concurrency,
		sendTimeout: deps.SendTimeout,
	}
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

	var mu sync.Mutex
	var notices []domain.Notice
	err = fanout.Each(ctx, creds, s.concurrency, func(ctx context.Context, c domain.UserCredential) {
		out := s.checkUser(ctx, c, summary)
		if len(out) == 0 {
			return
		}
		mu.Lock()
		notices = append(notices, out...)
		mu.Unlock()
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

// checkUser handles one user end to end up to the flag write and returns the
// notices that may be sent. Notices are only returned once the write landed.
func (s *service) checkUser(ctx context.Context, c domain.UserCredential, summary *domain.RunSummary) []domain.Notice {
	unit := fmt.Sprintf("user %d", c.UserID)

	state, err := s.torn.User(ctx, c.DecryptedKey, 0, selections...)
	if err != nil {
		if torn.IsAPIError(err) {
			slog.Info("torn rejected user fetch", "user_id", c.UserID, "error", err)
			summary.AddSkipped(1)
			return nil
		}
		summary.Fail(unit, err)
		return nil
	}

	user, err := s.users.Get(ctx, c.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		user = &domain.User{UserID: c.UserID}
	} else if err != nil {
		summary.Fail(unit, err)
		return nil
	}
	summary.AddProcessed(1)

	changes := transition.Evaluate(user.UserStatusFlags, state)
	if len(changes) == 0 {
		return nil
	}

	next := make(map[domain.Flag]bool, len(changes))
	previous := make(map[domain.Flag]bool, len(changes))
	for _, ch := range changes {
		next[ch.Flag] = ch.Value
		previous[ch.Flag] = user.Get(ch.Flag)
	}
	if err := s.users.UpdateFlags(ctx, c.UserID, next, previous); err != nil {
		if errors.Is(err, domain.ErrStaleFlag) {
			slog.Info("flags changed by a concurrent run", "user_id", c.UserID)
			summary.AddSkipped(1)
			return nil
		}
		summary.Fail(unit, err)
		return nil
	}
	summary.AddUpdated(1)

	var notices []domain.Notice
	for _, ch := range changes {
		if !ch.Notify || !user.Wants(ch.Flag) {
			continue
		}
		notices = append(notices, domain.Notice{UserID: c.UserID, Kind: string(ch.Flag), Title: ch.Title, Body: ch.Body})
	}
	return notices
}
