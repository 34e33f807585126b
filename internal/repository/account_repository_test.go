package repository

import (
	"context"
	"testing"

	"github.com/nimasrn/ledger-reconciler/test/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_UpsertIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)

	account := fixtures.NewAccount("1111", "BANK-A")
	_, err := repo.Upsert(context.Background(), &account)
	require.NoError(t, err)

	// Re-discovery keeps the original row.
	again := fixtures.NewAccount("1111", "BANK-B")
	kept, err := repo.Upsert(context.Background(), &again)
	require.NoError(t, err)
	assert.Equal(t, "BANK-A", kept.BankName)

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAccountRepository_UpsertRejectsBadLast4(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)

	short := fixtures.NewAccount("111", "BANK-A")
	_, err := repo.Upsert(context.Background(), &short)
	assert.Error(t, err)
}

func TestAccountRepository_KnownLast4s(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)

	set, err := repo.KnownLast4s(context.Background())
	require.NoError(t, err)
	assert.Empty(t, set)

	for _, last4 := range []string{"1111", "2222"} {
		account := fixtures.NewAccount(last4, "BANK-A")
		_, err := repo.Upsert(context.Background(), &account)
		require.NoError(t, err)
	}

	set, err = repo.KnownLast4s(context.Background())
	require.NoError(t, err)
	assert.Len(t, set, 2)
	assert.Contains(t, set, "1111")
	assert.Contains(t, set, "2222")
}
