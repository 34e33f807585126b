package model

import (
	"errors"
	"fmt"
	"time"
)

// TransactionType is the closed set of transaction categories produced by
// upstream ingestion. Adding a value here requires revisiting every switch
// over the type, in particular the debit/credit leg classification below.
type TransactionType string

const (
	TypeExpense                TransactionType = "EXPENSE"
	TypeIncome                 TransactionType = "INCOME"
	TypeTransfer               TransactionType = "TRANSFER"
	TypeRefund                 TransactionType = "REFUND"
	TypeCashback               TransactionType = "CASHBACK"
	TypeInvestmentOutflow      TransactionType = "INVESTMENT_OUTFLOW"
	TypeInvestmentContribution TransactionType = "INVESTMENT_CONTRIBUTION"
	TypeLiabilityPayment       TransactionType = "LIABILITY_PAYMENT"
	TypeStatement              TransactionType = "STATEMENT"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeExpense, TypeIncome, TypeTransfer, TypeRefund, TypeCashback,
		TypeInvestmentOutflow, TypeInvestmentContribution,
		TypeLiabilityPayment, TypeStatement:
		return true
	}
	return false
}

// IsDebitLeg reports whether a transaction of this type can represent money
// leaving an account. TRANSFER appears on both sides because a transfer
// record can be read as either leg depending on its role in a pair.
func (t TransactionType) IsDebitLeg() bool {
	switch t {
	case TypeExpense, TypeTransfer, TypeInvestmentOutflow,
		TypeInvestmentContribution, TypeLiabilityPayment:
		return true
	case TypeIncome, TypeRefund, TypeCashback, TypeStatement:
		return false
	}
	return false
}

// IsCreditLeg reports whether a transaction of this type can represent money
// arriving in an account.
func (t TransactionType) IsCreditLeg() bool {
	switch t {
	case TypeIncome, TypeRefund, TypeCashback, TypeTransfer:
		return true
	case TypeExpense, TypeInvestmentOutflow, TypeInvestmentContribution,
		TypeLiabilityPayment, TypeStatement:
		return false
	}
	return false
}

// Transaction is one ledger entry as read by the pairing engine. Records are
// created and mutated only by upstream ingestion; the engine treats them as
// read-only values.
type Transaction struct {
	ID           string          `json:"id"                 db:"id"                 gorm:"primaryKey;column:id"`
	Type         TransactionType `json:"type"               db:"type"               gorm:"column:type;not null;index"`
	AmountMinor  uint64          `json:"amount_minor"       db:"amount_minor"       gorm:"column:amount_minor;not null"`
	OccurredAt   int64           `json:"occurred_at_millis" db:"occurred_at_millis" gorm:"column:occurred_at_millis;not null;index"` // epoch millis
	Sender       string          `json:"sender,omitempty"   db:"sender"             gorm:"column:sender"`        // originating message sender, may be empty
	AccountLast4 string          `json:"account_last4,omitempty" db:"account_last4" gorm:"column:account_last4"` // may be empty
}

func (Transaction) TableName() string { return "transactions" }

// OccurredTime returns the occurrence instant as a time.Time.
func (t Transaction) OccurredTime() time.Time {
	return time.UnixMilli(t.OccurredAt)
}

func (t Transaction) Validate() error {
	if t.ID == "" {
		return errors.New("transaction id is required")
	}
	if !t.Type.Valid() {
		return fmt.Errorf("unknown transaction type %q", t.Type)
	}
	if t.AccountLast4 != "" && len(t.AccountLast4) != 4 {
		return fmt.Errorf("account_last4 must be 4 digits, got %q", t.AccountLast4)
	}
	return nil
}
