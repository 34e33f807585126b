package model

import (
	"errors"
	"fmt"
	"time"
)

// LinkType identifies the semantic relationship a TransactionLink records.
type LinkType string

const (
	// LinkSelfTransfer pairs a debit with the credit that received the same
	// money in another of the user's own accounts.
	LinkSelfTransfer LinkType = "SELF_TRANSFER"
	// LinkCCPayment pairs a credit-card statement with the payment that
	// settled it.
	LinkCCPayment LinkType = "CC_PAYMENT"
)

func (lt LinkType) Valid() bool {
	switch lt {
	case LinkSelfTransfer, LinkCCPayment:
		return true
	}
	return false
}

// MinConfidence is the acceptance threshold a link of this type must meet at
// creation time.
func (lt LinkType) MinConfidence() int {
	switch lt {
	case LinkSelfTransfer:
		return 80
	case LinkCCPayment:
		return 60
	}
	return 100
}

// CreatedBy records whether a link was produced by the engine or a human.
type CreatedBy string

const (
	CreatedByAuto   CreatedBy = "AUTO"
	CreatedByManual CreatedBy = "MANUAL"
)

func (c CreatedBy) Valid() bool {
	switch c {
	case CreatedByAuto, CreatedByManual:
		return true
	}
	return false
}

// TransactionLink is the engine's sole write product: an append-only record
// pairing two existing transactions. Links are never updated or deleted.
type TransactionLink struct {
	ID             int64     `json:"id"               db:"id"               gorm:"primaryKey;autoIncrement;column:id"`
	PrimaryTxnID   string    `json:"primary_txn_id"   db:"primary_txn_id"   gorm:"column:primary_txn_id;not null"`
	SecondaryTxnID string    `json:"secondary_txn_id" db:"secondary_txn_id" gorm:"column:secondary_txn_id;not null"`
	LinkType       LinkType  `json:"link_type"        db:"link_type"        gorm:"column:link_type;not null"`
	Confidence     int       `json:"confidence"       db:"confidence"       gorm:"column:confidence;not null"` // 0-100
	CreatedBy      CreatedBy `json:"created_by"       db:"created_by"       gorm:"column:created_by;not null"`
	CreatedAt      time.Time `json:"created_at"       db:"created_at"       gorm:"column:created_at;autoCreateTime"`
}

func (TransactionLink) TableName() string { return "transaction_links" }

func (l TransactionLink) Validate() error {
	if l.PrimaryTxnID == "" || l.SecondaryTxnID == "" {
		return errors.New("link requires both transaction ids")
	}
	if l.PrimaryTxnID == l.SecondaryTxnID {
		return errors.New("link cannot pair a transaction with itself")
	}
	if !l.LinkType.Valid() {
		return fmt.Errorf("unknown link type %q", l.LinkType)
	}
	if !l.CreatedBy.Valid() {
		return fmt.Errorf("unknown created_by %q", l.CreatedBy)
	}
	if l.Confidence < 0 || l.Confidence > 100 {
		return fmt.Errorf("confidence %d outside 0-100", l.Confidence)
	}
	if l.Confidence < l.LinkType.MinConfidence() {
		return fmt.Errorf("confidence %d below %s threshold %d", l.Confidence, l.LinkType, l.LinkType.MinConfidence())
	}
	return nil
}
