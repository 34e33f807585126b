package model

import "errors"

// UserAccount is one of the user's own bank accounts, keyed by the last four
// digits as they appear in transaction messages. Owned by the account
// discovery collaborator; read-only to the pairing engine.
type UserAccount struct {
	AccountLast4 string `json:"account_last4" db:"account_last4" gorm:"primaryKey;column:account_last4"`
	BankName     string `json:"bank_name"     db:"bank_name"     gorm:"column:bank_name"`
	AccountType  string `json:"account_type"  db:"account_type"  gorm:"column:account_type"` // e.g. "savings" | "credit_card"
}

func (UserAccount) TableName() string { return "user_accounts" }

func (a UserAccount) Validate() error {
	if len(a.AccountLast4) != 4 {
		return errors.New("account_last4 must be exactly 4 digits")
	}
	return nil
}
