package fixtures

import (
	"time"

	"github.com/nimasrn/ledger-reconciler/internal/model"
)

const Hour = int64(time.Hour / time.Millisecond)
const Day = 24 * Hour

// BaseTime is an arbitrary fixed origin so test timestamps are stable.
const BaseTime = int64(1_700_000_000_000)

func NewTxn(id string, typ model.TransactionType, amount uint64, at int64) model.Transaction {
	return model.Transaction{
		ID:          id,
		Type:        typ,
		AmountMinor: amount,
		OccurredAt:  at,
	}
}

func NewDebit(id string, amount uint64, at int64, sender, last4 string) model.Transaction {
	t := NewTxn(id, model.TypeExpense, amount, at)
	t.Sender = sender
	t.AccountLast4 = last4
	return t
}

func NewCredit(id string, amount uint64, at int64, sender, last4 string) model.Transaction {
	t := NewTxn(id, model.TypeIncome, amount, at)
	t.Sender = sender
	t.AccountLast4 = last4
	return t
}

func NewStatement(id string, amount uint64, at int64, last4 string) model.Transaction {
	t := NewTxn(id, model.TypeStatement, amount, at)
	t.AccountLast4 = last4
	return t
}

func NewPayment(id string, amount uint64, at int64, last4 string) model.Transaction {
	t := NewTxn(id, model.TypeLiabilityPayment, amount, at)
	t.AccountLast4 = last4
	return t
}

func NewAccount(last4, bank string) model.UserAccount {
	return model.UserAccount{
		AccountLast4: last4,
		BankName:     bank,
		AccountType:  "savings",
	}
}
