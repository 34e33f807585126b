package repository

import (
	"github.com/nimasrn/ledger-reconciler/internal/model"
)

type TransactionEntity struct {
	ID           string `db:"id"                 gorm:"primaryKey;column:id"`
	Type         string `db:"type"               gorm:"column:type;not null;index"`
	AmountMinor  uint64 `db:"amount_minor"       gorm:"column:amount_minor;not null"`
	OccurredAt   int64  `db:"occurred_at_millis" gorm:"column:occurred_at_millis;not null;index"`
	Sender       string `db:"sender"             gorm:"column:sender"`
	AccountLast4 string `db:"account_last4"      gorm:"column:account_last4"`
}

func (TransactionEntity) TableName() string {
	return "transactions"
}

func toTransactionEntity(m *model.Transaction) *TransactionEntity {
	if m == nil {
		return nil
	}
	return &TransactionEntity{
		ID:           m.ID,
		Type:         string(m.Type),
		AmountMinor:  m.AmountMinor,
		OccurredAt:   m.OccurredAt,
		Sender:       m.Sender,
		AccountLast4: m.AccountLast4,
	}
}

func toTransactionModel(e *TransactionEntity) *model.Transaction {
	if e == nil {
		return nil
	}
	return &model.Transaction{
		ID:           e.ID,
		Type:         model.TransactionType(e.Type),
		AmountMinor:  e.AmountMinor,
		OccurredAt:   e.OccurredAt,
		Sender:       e.Sender,
		AccountLast4: e.AccountLast4,
	}
}

func toTransactionModels(entities []*TransactionEntity) []model.Transaction {
	models := make([]model.Transaction, len(entities))
	for i, e := range entities {
		models[i] = *toTransactionModel(e)
	}
	return models
}
