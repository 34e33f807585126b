package repository

import (
	"time"

	"github.com/nimasrn/ledger-reconciler/internal/model"
)

// LinkEntity rows are append-only. The two composite unique indexes are the
// store-side guard against racing engine runs: a duplicate insert for an
// already-consumed transaction fails instead of producing a second link of
// the same type.
type LinkEntity struct {
	ID             int64     `db:"id"               gorm:"primaryKey;autoIncrement;column:id"`
	PrimaryTxnID   string    `db:"primary_txn_id"   gorm:"column:primary_txn_id;not null;uniqueIndex:uq_links_primary_type"`
	SecondaryTxnID string    `db:"secondary_txn_id" gorm:"column:secondary_txn_id;not null;uniqueIndex:uq_links_secondary_type"`
	LinkType       string    `db:"link_type"        gorm:"column:link_type;not null;uniqueIndex:uq_links_primary_type;uniqueIndex:uq_links_secondary_type"`
	Confidence     int       `db:"confidence"       gorm:"column:confidence;not null"`
	CreatedBy      string    `db:"created_by"       gorm:"column:created_by;not null"`
	CreatedAt      time.Time `db:"created_at"       gorm:"column:created_at;autoCreateTime"`

	PrimaryTxn   *TransactionEntity `gorm:"foreignKey:PrimaryTxnID;references:ID;constraint:OnDelete:RESTRICT"`
	SecondaryTxn *TransactionEntity `gorm:"foreignKey:SecondaryTxnID;references:ID;constraint:OnDelete:RESTRICT"`
}

func (LinkEntity) TableName() string {
	return "transaction_links"
}

func toLinkEntity(m *model.TransactionLink) *LinkEntity {
	if m == nil {
		return nil
	}
	return &LinkEntity{
		ID:             m.ID,
		PrimaryTxnID:   m.PrimaryTxnID,
		SecondaryTxnID: m.SecondaryTxnID,
		LinkType:       string(m.LinkType),
		Confidence:     m.Confidence,
		CreatedBy:      string(m.CreatedBy),
		CreatedAt:      m.CreatedAt,
	}
}

func toLinkModel(e *LinkEntity) *model.TransactionLink {
	if e == nil {
		return nil
	}
	return &model.TransactionLink{
		ID:             e.ID,
		PrimaryTxnID:   e.PrimaryTxnID,
		SecondaryTxnID: e.SecondaryTxnID,
		LinkType:       model.LinkType(e.LinkType),
		Confidence:     e.Confidence,
		CreatedBy:      model.CreatedBy(e.CreatedBy),
		CreatedAt:      e.CreatedAt,
	}
}

func toLinkModels(entities []*LinkEntity) []model.TransactionLink {
	models := make([]model.TransactionLink, len(entities))
	for i, e := range entities {
		models[i] = *toLinkModel(e)
	}
	return models
}
