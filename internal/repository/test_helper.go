package repository

import (
	"testing"

	"github.com/nimasrn/ledger-reconciler/pkg/pg"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *pg.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(&TransactionEntity{}, &UserAccountEntity{}, &LinkEntity{})
	require.NoError(t, err)

	return pg.Wrap(db)
}
