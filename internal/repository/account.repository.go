package repository

import (
	"context"

	"github.com/nimasrn/ledger-reconciler/internal/model"
	"github.com/nimasrn/ledger-reconciler/pkg/pg"
)

type AccountRepository struct {
	*pg.DB
}

func NewAccountRepository(db *pg.DB) *AccountRepository {
	return &AccountRepository{
		db,
	}
}

// Upsert records an account discovered by the upstream collaborator.
// Re-discovering a known account is a no-op.
func (r *AccountRepository) Upsert(ctx context.Context, account *model.UserAccount) (*model.UserAccount, error) {
	if err := account.Validate(); err != nil {
		return nil, err
	}
	entity := toUserAccountEntity(account)

	err := r.Session(ctx).
		Where(&UserAccountEntity{AccountLast4: entity.AccountLast4}).
		FirstOrCreate(entity).Error
	if err != nil {
		return nil, err
	}
	return toUserAccountModel(entity), nil
}

func (r *AccountRepository) List(ctx context.Context) ([]model.UserAccount, error) {
	var entities []*UserAccountEntity
	if err := r.Session(ctx).Order("account_last4 ASC").Find(&entities).Error; err != nil {
		return nil, err
	}
	accounts := make([]model.UserAccount, len(entities))
	for i, e := range entities {
		accounts[i] = *toUserAccountModel(e)
	}
	return accounts, nil
}

// KnownLast4s returns the set of account-last-4 identifiers known to belong
// to the user.
func (r *AccountRepository) KnownLast4s(ctx context.Context) (map[string]struct{}, error) {
	var last4s []string
	err := r.Session(ctx).
		Model(&UserAccountEntity{}).
		Pluck("account_last4", &last4s).Error
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(last4s))
	for _, v := range last4s {
		set[v] = struct{}{}
	}
	return set, nil
}
