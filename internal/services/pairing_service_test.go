package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nimasrn/ledger-reconciler/internal/model"
	"github.com/nimasrn/ledger-reconciler/internal/pairing"
	"github.com/nimasrn/ledger-reconciler/internal/repository"
	"github.com/nimasrn/ledger-reconciler/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) RunAll(ctx context.Context) (pairing.Result, error) {
	args := m.Called(ctx)
	return args.Get(0).(pairing.Result), args.Error(1)
}

func (m *mockRunner) PairSelfTransfers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockRunner) PairStatementPayments(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockLister struct {
	mock.Mock
}

func (m *mockLister) List(ctx context.Context, f repository.LinkFilter) ([]model.TransactionLink, int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]model.TransactionLink), args.Get(1).(int64), args.Error(2)
}

func setupLocks(t *testing.T) (redis.Adapter, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redis.NewAdapterFromClient("test", client), srv
}

func TestPairingService_RunReleasesLease(t *testing.T) {
	locks, srv := setupLocks(t)

	runner := &mockRunner{}
	runner.On("RunAll", mock.Anything).Return(pairing.Result{SelfTransfers: 1, Total: 1}, nil)

	svc := NewPairingService(runner, &mockLister{}, locks, time.Minute)

	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	runner.AssertExpectations(t)

	assert.False(t, srv.Exists("test:"+runLockKey), "lease must be released after the run")
}

func TestPairingService_ConcurrentRunRejected(t *testing.T) {
	locks, _ := setupLocks(t)

	started := make(chan struct{})
	finish := make(chan struct{})
	runner := &mockRunner{}
	runner.On("RunAll", mock.Anything).Run(func(mock.Arguments) {
		close(started)
		<-finish
	}).Return(pairing.Result{}, nil).Once()

	svc := NewPairingService(runner, &mockLister{}, locks, time.Minute)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Run(context.Background())
		done <- err
	}()
	<-started

	_, err := svc.Run(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(finish)
	require.NoError(t, <-done)

	// With the lease back, a fresh run goes through.
	runner.On("RunAll", mock.Anything).Return(pairing.Result{}, nil)
	_, err = svc.Run(context.Background())
	assert.NoError(t, err)
}

func TestPairingService_EngineFailureStillReleasesLease(t *testing.T) {
	locks, srv := setupLocks(t)

	boom := errors.New("snapshot read failed")
	runner := &mockRunner{}
	runner.On("RunAll", mock.Anything).Return(pairing.Result{}, boom)

	svc := NewPairingService(runner, &mockLister{}, locks, time.Minute)

	_, err := svc.Run(context.Background())
	require.ErrorIs(t, err, boom)
	assert.False(t, srv.Exists("test:"+runLockKey), "failed run must not keep the lease")
}

func TestPairingService_SinglePassRunsUnderLease(t *testing.T) {
	locks, srv := setupLocks(t)

	runner := &mockRunner{}
	runner.On("PairSelfTransfers", mock.Anything).Return(2, nil)
	runner.On("PairStatementPayments", mock.Anything).Return(1, nil)

	svc := NewPairingService(runner, &mockLister{}, locks, time.Minute)

	n, err := svc.RunSelfTransfers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = svc.RunStatementPayments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	runner.AssertExpectations(t)
	assert.False(t, srv.Exists("test:"+runLockKey))
}

func TestPairingService_ListLinksDelegates(t *testing.T) {
	locks, _ := setupLocks(t)

	want := []model.TransactionLink{{ID: 1, PrimaryTxnID: "a", SecondaryTxnID: "b"}}
	lister := &mockLister{}
	filter := repository.LinkFilter{Limit: 10}
	lister.On("List", mock.Anything, filter).Return(want, int64(1), nil)

	svc := NewPairingService(&mockRunner{}, lister, locks, time.Minute)

	got, total, err := svc.ListLinks(context.Background(), filter)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, want, got)
	lister.AssertExpectations(t)
}
