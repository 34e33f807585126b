package repository

import (
	"github.com/nimasrn/ledger-reconciler/internal/model"
)

type UserAccountEntity struct {
	AccountLast4 string `db:"account_last4" gorm:"primaryKey;column:account_last4"`
	BankName     string `db:"bank_name"     gorm:"column:bank_name"`
	AccountType  string `db:"account_type"  gorm:"column:account_type"`
}

func (UserAccountEntity) TableName() string {
	return "user_accounts"
}

func toUserAccountEntity(m *model.UserAccount) *UserAccountEntity {
	if m == nil {
		return nil
	}
	return &UserAccountEntity{
		AccountLast4: m.AccountLast4,
		BankName:     m.BankName,
		AccountType:  m.AccountType,
	}
}

func toUserAccountModel(e *UserAccountEntity) *model.UserAccount {
	if e == nil {
		return nil
	}
	return &model.UserAccount{
		AccountLast4: e.AccountLast4,
		BankName:     e.BankName,
		AccountType:  e.AccountType,
	}
}
