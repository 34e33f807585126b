package repository

import (
	"context"

	"github.com/nimasrn/ledger-reconciler/internal/model"
	"github.com/nimasrn/ledger-reconciler/pkg/pg"
)

type TransactionRepository struct {
	*pg.DB
}

func NewTransactionRepository(db *pg.DB) *TransactionRepository {
	return &TransactionRepository{
		db,
	}
}

// Create persists one ledger entry. Used by ingestion and seeding; the
// pairing engine itself never writes transactions.
func (r *TransactionRepository) Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	if err := txn.Validate(); err != nil {
		return nil, err
	}
	entity := toTransactionEntity(txn)

	if err := r.Session(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toTransactionModel(entity), nil
}

// Transactions returns the full ledger snapshot in deterministic order:
// ascending occurrence time, ties broken by id. The pairing engine depends
// on this order for reproducible greedy matching.
func (r *TransactionRepository) Transactions(ctx context.Context) ([]model.Transaction, error) {
	var entities []*TransactionEntity
	err := r.Session(ctx).
		Order("occurred_at_millis ASC, id ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toTransactionModels(entities), nil
}
