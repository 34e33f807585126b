package pairing

import (
	"context"
	"errors"
	"testing"

	"github.com/nimasrn/ledger-reconciler/internal/model"
	"github.com/nimasrn/ledger-reconciler/internal/repository"
	"github.com/nimasrn/ledger-reconciler/test/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAll_AggregatesBothPasses(t *testing.T) {
	txns := []model.Transaction{
		fixtures.NewDebit("d1", 500_000, fixtures.BaseTime, "BANK-A", "1111"),
		fixtures.NewCredit("c1", 500_000, fixtures.BaseTime+6*fixtures.Hour, "BANK-B", "2222"),
		fixtures.NewStatement("s1", 1_000_000, fixtures.BaseTime, "1234"),
		fixtures.NewPayment("p1", 1_000_000, fixtures.BaseTime+2*fixtures.Day, "1234"),
	}
	eng, store := newTestEngine(txns, "1111", "2222")

	res, err := eng.RunAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.SelfTransfers)
	assert.Equal(t, 1, res.CCPayments)
	assert.Equal(t, 2, res.Total)
	assert.Len(t, store.links, 2)
}

func TestRunAll_SecondRunCreatesNothing(t *testing.T) {
	txns := []model.Transaction{
		fixtures.NewDebit("d1", 500_000, fixtures.BaseTime, "BANK-A", "1111"),
		fixtures.NewCredit("c1", 500_000, fixtures.BaseTime+6*fixtures.Hour, "BANK-B", "2222"),
		fixtures.NewStatement("s1", 1_000_000, fixtures.BaseTime, "1234"),
		fixtures.NewPayment("p1", 1_000_000, fixtures.BaseTime+2*fixtures.Day, "1234"),
	}
	eng, store := newTestEngine(txns, "1111", "2222")

	first, err := eng.RunAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, first.Total)

	second, err := eng.RunAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.SelfTransfers)
	assert.Zero(t, second.CCPayments)
	assert.Zero(t, second.Total)
	assert.Len(t, store.links, 2, "rerun must not append links")
}

func TestRunAll_IdConsumedByFirstPassIsOffLimitsToSecond(t *testing.T) {
	// A LIABILITY_PAYMENT can leg a self-transfer and settle a statement.
	// Within one run it may do only one of those: the self-transfer pass
	// runs first and consumes it.
	payment := fixtures.NewTxn("lp1", model.TypeLiabilityPayment, 1_000_000, fixtures.BaseTime)
	payment.Sender = "BANK-A"
	credit := fixtures.NewCredit("c1", 1_000_000, fixtures.BaseTime+fixtures.Hour, "BANK-B", "")
	statement := fixtures.NewStatement("s1", 1_000_000, fixtures.BaseTime-fixtures.Day, "")

	eng, store := newTestEngine([]model.Transaction{payment, credit, statement})

	res, err := eng.RunAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.SelfTransfers)
	assert.Zero(t, res.CCPayments, "payment consumed as self-transfer leg must not settle the statement")

	require.Len(t, store.links, 1)
	assert.Equal(t, model.LinkSelfTransfer, store.links[0].LinkType)
	assert.Equal(t, "lp1", store.links[0].PrimaryTxnID)
	assert.Equal(t, "c1", store.links[0].SecondaryTxnID)
}

func TestRunAll_LedgerFailureAborts(t *testing.T) {
	boom := errors.New("connection refused")
	eng := New(&fakeLedger{err: boom}, &fakeAccounts{}, &fakeLinkStore{})

	_, err := eng.RunAll(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestRunAll_InfrastructureInsertFailureAborts(t *testing.T) {
	txns := []model.Transaction{
		fixtures.NewDebit("d1", 500_000, fixtures.BaseTime, "BANK-A", ""),
		fixtures.NewCredit("c1", 500_000, fixtures.BaseTime+fixtures.Hour, "BANK-B", ""),
	}
	store := &fakeLinkStore{insertErr: errors.New("connection reset")}
	eng := New(&fakeLedger{txns: txns}, &fakeAccounts{}, store)

	_, err := eng.RunAll(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, context.Canceled)
}

func TestRunAll_DuplicateInsertIsNonFatal(t *testing.T) {
	// The store already holds a link for c1 that the engine's snapshot
	// did not see (simulating a racing writer). The duplicate rejection
	// is absorbed and the remaining pair still links.
	txns := []model.Transaction{
		fixtures.NewDebit("d1", 500_000, fixtures.BaseTime, "BANK-A", ""),
		fixtures.NewCredit("c1", 500_000, fixtures.BaseTime+fixtures.Hour, "BANK-B", ""),
		fixtures.NewDebit("d2", 900_000, fixtures.BaseTime+fixtures.Day, "BANK-A", ""),
		fixtures.NewCredit("c2", 900_000, fixtures.BaseTime+fixtures.Day+fixtures.Hour, "BANK-B", ""),
	}
	eng, store := newTestEngine(txns)

	racing := racingLinkStore{inner: store, stealID: "c1"}
	eng.links = &racing

	res, err := eng.RunAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.SelfTransfers, "d1/c1 abandoned, d2/c2 still paired")
	require.Len(t, store.links, 1)
	assert.Equal(t, "d2", store.links[0].PrimaryTxnID)
}

func TestEngine_SnapshotOrderIsDeterministic(t *testing.T) {
	// Reader returns transactions shuffled; the engine re-sorts by time
	// then id, so c1 (earlier) wins over c2 regardless of reader order.
	debit := fixtures.NewDebit("d1", 500_000, fixtures.BaseTime+5*fixtures.Hour, "BANK-A", "")
	late := fixtures.NewCredit("c2", 500_000, fixtures.BaseTime+7*fixtures.Hour, "BANK-B", "")
	early := fixtures.NewCredit("c1", 500_000, fixtures.BaseTime+6*fixtures.Hour, "BANK-C", "")

	eng, store := newTestEngine([]model.Transaction{late, early, debit})

	n, err := eng.PairSelfTransfers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, store.links, 1)
	assert.Equal(t, "c1", store.links[0].SecondaryTxnID)
}

// racingLinkStore pretends another engine instance linked stealID between
// this run's snapshot and its insert.
type racingLinkStore struct {
	inner   *fakeLinkStore
	stealID string
}

func (r *racingLinkStore) LinkedTransactionIDs(ctx context.Context) (map[string]struct{}, error) {
	return map[string]struct{}{}, nil
}

func (r *racingLinkStore) Insert(ctx context.Context, link *model.TransactionLink) (*model.TransactionLink, error) {
	if link.PrimaryTxnID == r.stealID || link.SecondaryTxnID == r.stealID {
		return nil, repository.ErrDuplicateLink
	}
	return r.inner.Insert(ctx, link)
}
