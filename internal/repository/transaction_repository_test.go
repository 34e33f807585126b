package repository

import (
	"context"
	"testing"

	"github.com/nimasrn/ledger-reconciler/internal/model"
	"github.com/nimasrn/ledger-reconciler/test/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTransactionRepository(db)

	txn := fixtures.NewDebit("d1", 500_000, fixtures.BaseTime, "BANK-A", "1111")
	created, err := repo.Create(context.Background(), &txn)
	require.NoError(t, err)
	assert.Equal(t, "d1", created.ID)
	assert.Equal(t, model.TypeExpense, created.Type)
	assert.EqualValues(t, 500_000, created.AmountMinor)
}

func TestTransactionRepository_CreateRejectsInvalid(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTransactionRepository(db)

	missingID := fixtures.NewDebit("", 500_000, fixtures.BaseTime, "BANK-A", "1111")
	_, err := repo.Create(context.Background(), &missingID)
	assert.Error(t, err)

	badType := fixtures.NewTxn("t1", model.TransactionType("GIFT"), 100, fixtures.BaseTime)
	_, err = repo.Create(context.Background(), &badType)
	assert.Error(t, err)
}

func TestTransactionRepository_TransactionsOrdering(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTransactionRepository(db)

	// Inserted out of order; b and c share a timestamp so the id breaks
	// the tie.
	seedTransactions(t, repo,
		fixtures.NewCredit("c", 100, fixtures.BaseTime+fixtures.Hour, "BANK-A", ""),
		fixtures.NewCredit("a", 100, fixtures.BaseTime, "BANK-A", ""),
		fixtures.NewCredit("b", 100, fixtures.BaseTime+fixtures.Hour, "BANK-A", ""),
	)

	all, err := repo.Transactions(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "b", all[1].ID)
	assert.Equal(t, "c", all[2].ID)
}
