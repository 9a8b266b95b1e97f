// Package chain is the chain-status function. It refreshes the status of
// queued chain targets, spreading lookups over every available key.
package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/torn-watcher/internal/application/credential"
	"github.com/torn-watcher/internal/application/distribute"
	"github.com/torn-watcher/internal/domain"
	"github.com/torn-watcher/internal/infrastructure/torn"
)

const Name = "chain-status"

type Service interface {
	Run(ctx context.Context, runID string, opts domain.RunOptions) (*domain.RunSummary, error)
}

type targetStore interface {
	ListDue(ctx context.Context, limit int) ([]domain.ChainTarget, error)
	UpdateStatus(ctx context.Context, t domain.ChainTarget) error
}

type userFetcher interface {
	User(ctx context.Context, key string, id int64, selections ...string) (*torn.UserResponse, error)
}

type ServiceDeps struct {
	Credentials credential.Source
	TargetRepo  targetStore
	Torn        userFetcher
	BatchLimit  int
	CallSpacing time.Duration
}

type service struct {
	creds      credential.Source
	targets    targetStore
	torn       userFetcher
	batchLimit int
	spacing    time.Duration
	now        func() time.Time
}

func NewService(deps ServiceDeps) Service {
	return &service{
		creds:      deps.Credentials,
		targets:    deps.TargetRepo,
		torn:       deps.Torn,
		batchLimit: deps.BatchLimit,
		spacing:    deps.CallSpacing,
		now:        time.Now,
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

	limit := s.batchLimit
	if opts.Limit > 0 && (limit <= 0 || opts.Limit < limit) {
		limit = opts.Limit
	}
	targets, err := s.targets.ListDue(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("read chain queue: %w", err)
	}

	lanes := distribute.Assign(creds, targets)
	slog.Info("chain status lanes", "run_id", runID, "targets", len(targets), "credentials", len(creds))
	err = distribute.Run(ctx, lanes, s.spacing, func(ctx context.Context, c domain.UserCredential, t domain.ChainTarget) {
		s.refresh(ctx, c, t, summary)
	})
	if err != nil {
		summary.Fail("run", err)
	}
	return summary, nil
}

func (s *service) refresh(ctx context.Context, c domain.UserCredential, t domain.ChainTarget, summary *domain.RunSummary) {
	unit := fmt.Sprintf("target %d", t.TornID)

	profile, err := s.torn.User(ctx, c.DecryptedKey, t.TornID, torn.SelProfile)
	if err != nil {
		if torn.IsAPIError(err) {
			slog.Info("torn rejected target lookup", "torn_id", t.TornID, "user_id", c.UserID, "error", err)
			summary.AddSkipped(1)
			return
		}
		summary.Fail(unit, err)
		return
	}
	summary.AddProcessed(1)
	if profile.Status == nil {
		summary.Fail(unit, errors.New("profile without status"))
		return
	}

	t.Status = profile.Status.State
	t.Description = profile.Status.Description
	t.Until = profile.Status.Until
	t.CheckedAt = s.now().UTC()
	if profile.Name != "" {
		t.Name = profile.Name
	}
	if err := s.targets.UpdateStatus(ctx, t); err != nil {
		summary.Fail(unit, err)
		return
	}
	summary.AddUpdated(1)
}
