package watcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/torn-watcher/internal/domain"
	"github.com/torn-watcher/internal/infrastructure/torn"
)

// --- mocks ---

type mockSource struct{ mock.Mock }

func (m *mockSource) ListCredentials(ctx context.Context) ([]domain.UserCredential, error) {
	args := m.Called(ctx)
	cs, _ := args.Get(0).([]domain.UserCredential)
	return cs, args.Error(1)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID int64) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) UpdateFlags(ctx context.Context, userID int64, next, previous map[domain.Flag]bool) error {
	return m.Called(ctx, userID, next, previous).Error(0)
}

type mockFetcher struct{ mock.Mock }

func (m *mockFetcher) User(ctx context.Context, key string, id int64, selections ...string) (*torn.UserResponse, error) {
	args := m.Called(ctx, key, id)
	if u, _ := args.Get(0).(*torn.UserResponse); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockDispatcher struct{ mock.Mock }

func (m *mockDispatcher) Dispatch(ctx context.Context, notices []domain.Notice) (int, error) {
	args := m.Called(ctx, notices)
	return args.Int(0), args.Error(1)
}

// --- helpers ---

func newSvc(src *mockSource, us *mockUserStore, f *mockFetcher, d *mockDispatcher) Service {
	return NewService(ServiceDeps{Credentials: src, UserRepo: us, Torn: f, Notifier: d, Concurrency: 2})
}

func fullEnergy() *torn.UserResponse {
	return &torn.UserResponse{Energy: &torn.Bar{Current: 100, Maximum: 100}}
}

// --- tests ---

func TestRun_EnergyFullNotifiesAndPersists(t *testing.T) {
	src, us, f, d := &mockSource{}, &mockUserStore{}, &mockFetcher{}, &mockDispatcher{}
	src.On("ListCredentials", mock.Anything).Return([]domain.UserCredential{{UserID: 1, DecryptedKey: "k1"}}, nil)
	f.On("User", mock.Anything, "k1", int64(0)).Return(fullEnergy(), nil)
	us.On("Get", mock.Anything, int64(1)).Return(&domain.User{UserID: 1}, nil)
	us.On("UpdateFlags", mock.Anything, int64(1),
		map[domain.Flag]bool{domain.FlagEnergyFull: true},
		map[domain.Flag]bool{domain.FlagEnergyFull: false},
	).Return(nil).Once()
	d.On("Dispatch", mock.Anything, []domain.Notice{{
		UserID: 1, Kind: "energy_full", Title: "⚡ Energy Full", Body: "Energy is full (100/100)",
	}}).Return(1, nil).Once()

	summary, err := newSvc(src, us, f, d).Run(context.Background(), "run-1", domain.RunOptions{})

	require.NoError(t, err)
	assert.Equal(t, Name, summary.Function)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Notified)
	assert.Empty(t, summary.Errors)
	us.AssertExpectations(t)
	d.AssertExpectations(t)
}

func TestRun_DeadlineAfterFlagWriteStillDispatches(t *testing.T) {
	src, us, f, d := &mockSource{}, &mockUserStore{}, &mockFetcher{}, &mockDispatcher{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src.On("ListCredentials", mock.Anything).Return([]domain.UserCredential{{UserID: 1, DecryptedKey: "k1"}}, nil)
	f.On("User", mock.Anything, "k1", int64(0)).Return(fullEnergy(), nil)
	us.On("Get", mock.Anything, int64(1)).Return(&domain.User{UserID: 1}, nil)
	us.On("UpdateFlags", mock.Anything, int64(1), mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).Return(nil).Once()
	var sendErr error
	var sendDeadline bool
	d.On("Dispatch", mock.Anything, mock.MatchedBy(func(ns []domain.Notice) bool { return len(ns) == 1 })).
		Run(func(args mock.Arguments) {
			sendCtx := args.Get(0).(context.Context)
			sendErr = sendCtx.Err()
			_, sendDeadline = sendCtx.Deadline()
		}).Return(1, nil).Once()

	svc := NewService(ServiceDeps{Credentials: src, UserRepo: us, Torn: f, Notifier: d, SendTimeout: time.Second})
	summary, err := svc.Run(ctx, "run-1", domain.RunOptions{})

	require.NoError(t, err)
	d.AssertExpectations(t)
	assert.NoError(t, sendErr)
	assert.True(t, sendDeadline)
	assert.Equal(t, 1, summary.Notified)
}

func TestRun_SecondRunIsSilent(t *testing.T) {
	src, us, f, d := &mockSource{}, &mockUserStore{}, &mockFetcher{}, &mockDispatcher{}
	src.On("ListCredentials", mock.Anything).Return([]domain.UserCredential{{UserID: 1, DecryptedKey: "k1"}}, nil)
	f.On("User", mock.Anything, "k1", int64(0)).Return(fullEnergy(), nil)
	us.On("Get", mock.Anything, int64(1)).Return(&domain.User{UserID: 1, UserStatusFlags: domain.UserStatusFlags{EnergyFull: true}}, nil)
	d.On("Dispatch", mock.Anything, []domain.Notice(nil)).Return(0, nil)

	summary, err := newSvc(src, us, f, d).Run(context.Background(), "run-2", domain.RunOptions{})

	require.NoError(t, err)
	assert.Zero(t, summary.Notified)
	assert.Zero(t, summary.Updated)
	us.AssertNotCalled(t, "UpdateFlags", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_StaleFlagDropsNotice(t *testing.T) {
	src, us, f, d := &mockSource{}, &mockUserStore{}, &mockFetcher{}, &mockDispatcher{}
	src.On("ListCredentials", mock.Anything).Return([]domain.UserCredential{{UserID: 1, DecryptedKey: "k1"}}, nil)
	f.On("User", mock.Anything, "k1", int64(0)).Return(fullEnergy(), nil)
	us.On("Get", mock.Anything, int64(1)).Return(nil, domain.ErrNotFound)
	us.On("UpdateFlags", mock.Anything, int64(1), mock.Anything, mock.Anything).Return(domain.ErrStaleFlag)
	d.On("Dispatch", mock.Anything, []domain.Notice(nil)).Return(0, nil)

	summary, err := newSvc(src, us, f, d).Run(context.Background(), "run-3", domain.RunOptions{})

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Zero(t, summary.Notified)
	assert.Empty(t, summary.Errors)
}

func TestRun_MutedFlagStillTracked(t *testing.T) {
	src, us, f, d := &mockSource{}, &mockUserStore{}, &mockFetcher{}, &mockDispatcher{}
	src.On("ListCredentials", mock.Anything).Return([]domain.UserCredential{{UserID: 1, DecryptedKey: "k1"}}, nil)
	f.On("User", mock.Anything, "k1", int64(0)).Return(fullEnergy(), nil)
	us.On("Get", mock.Anything, int64(1)).Return(&domain.User{UserID: 1, NotifyPrefs: map[string]bool{"energy_full": false}}, nil)
	us.On("UpdateFlags", mock.Anything, int64(1), map[domain.Flag]bool{domain.FlagEnergyFull: true}, mock.Anything).Return(nil).Once()
	d.On("Dispatch", mock.Anything, []domain.Notice(nil)).Return(0, nil)

	summary, err := newSvc(src, us, f, d).Run(context.Background(), "run-4", domain.RunOptions{})

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
	assert.Zero(t, summary.Notified)
	us.AssertExpectations(t)
}

func TestRun_FailuresAreIsolatedPerUser(t *testing.T) {
	src, us, f, d := &mockSource{}, &mockUserStore{}, &mockFetcher{}, &mockDispatcher{}
	src.On("ListCredentials", mock.Anything).Return([]domain.UserCredential{
		{UserID: 1, DecryptedKey: "k1"},
		{UserID: 2, DecryptedKey: "k2"},
		{UserID: 3, DecryptedKey: "k3"},
	}, nil)
	f.On("User", mock.Anything, "k1", int64(0)).Return(nil, &torn.APIError{Code: 2, Message: "Incorrect key"})
	f.On("User", mock.Anything, "k2", int64(0)).Return(nil, errors.New("connection reset"))
	f.On("User", mock.Anything, "k3", int64(0)).Return(fullEnergy(), nil)
	us.On("Get", mock.Anything, int64(3)).Return(&domain.User{UserID: 3}, nil)
	us.On("UpdateFlags", mock.Anything, int64(3), mock.Anything, mock.Anything).Return(nil)
	d.On("Dispatch", mock.Anything, mock.MatchedBy(func(ns []domain.Notice) bool {
		return len(ns) == 1 && ns[0].UserID == 3
	})).Return(1, nil)

	summary, err := newSvc(src, us, f, d).Run(context.Background(), "run-5", domain.RunOptions{})

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Notified)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "user 2")
}

func TestRun_NoCredentials(t *testing.T) {
	src := &mockSource{}
	src.On("ListCredentials", mock.Anything).Return([]domain.UserCredential{}, nil)

	summary, err := newSvc(src, &mockUserStore{}, &mockFetcher{}, &mockDispatcher{}).Run(context.Background(), "run-6", domain.RunOptions{})

	require.NoError(t, err)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "no credentials available")
}

func TestRun_CredentialStoreDown(t *testing.T) {
	src := &mockSource{}
	src.On("ListCredentials", mock.Anything).Return(nil, errors.New("rpc failed"))

	_, err := newSvc(src, &mockUserStore{}, &mockFetcher{}, &mockDispatcher{}).Run(context.Background(), "run-7", domain.RunOptions{})

	assert.ErrorContains(t, err, "rpc failed")
}

func TestRun_LimitCapsUsers(t *testing.T) {
	src, us, f, d := &mockSource{}, &mockUserStore{}, &mockFetcher{}, &mockDispatcher{}
	src.On("ListCredentials", mock.Anything).Return([]domain.UserCredential{
		{UserID: 1, DecryptedKey: "k1"},
		{UserID: 2, DecryptedKey: "k2"},
	}, nil)
	f.On("User", mock.Anything, "k1", int64(0)).Return(&torn.UserResponse{}, nil)
	us.On("Get", mock.Anything, int64(1)).Return(&domain.User{UserID: 1}, nil)
	d.On("Dispatch", mock.Anything, mock.Anything).Return(0, nil)

	summary, err := newSvc(src, us, f, d).Run(context.Background(), "run-8", domain.RunOptions{Limit: 1})

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	f.AssertNotCalled(t, "User", mock.Anything, "k2", int64(0))
}
