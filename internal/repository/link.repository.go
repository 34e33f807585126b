package repository

import (
	"context"
	"errors"

	"github.com/nimasrn/ledger-reconciler/internal/model"
	"github.com/nimasrn/ledger-reconciler/pkg/pg"
	"gorm.io/gorm"
)

var (
	// ErrDuplicateLink means a unique index rejected the insert: one of the
	// transactions already participates in a link of that type.
	ErrDuplicateLink = errors.New("transaction already linked")
	// ErrInvalidLink means the link itself is malformed or references a
	// transaction that does not exist.
	ErrInvalidLink = errors.New("invalid transaction link")
)

type LinkRepository struct {
	*pg.DB
}

func NewLinkRepository(db *pg.DB) *LinkRepository {
	return &LinkRepository{
		db,
	}
}

// Insert appends one link. Constraint failures are classified so callers
// can distinguish the non-fatal duplicate/invalid cases from infrastructure
// errors.
func (r *LinkRepository) Insert(ctx context.Context, link *model.TransactionLink) (*model.TransactionLink, error) {
	if err := link.Validate(); err != nil {
		return nil, errors.Join(ErrInvalidLink, err)
	}
	entity := toLinkEntity(link)
	entity.PrimaryTxn = nil
	entity.SecondaryTxn = nil

	if err := r.Session(ctx).Create(entity).Error; err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, ErrDuplicateLink
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return nil, ErrInvalidLink
		default:
			return nil, err
		}
	}
	return toLinkModel(entity), nil
}

type LinkFilter struct {
	LinkType *model.LinkType
	Limit    int // default 50
	Offset   int
}

func (r *LinkRepository) List(ctx context.Context, f LinkFilter) ([]model.TransactionLink, int64, error) {
	q := r.Session(ctx).Model(&LinkEntity{})
	if f.LinkType != nil {
		q = q.Where("link_type = ?", string(*f.LinkType))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	var entities []*LinkEntity
	err := q.Order("id ASC").Limit(limit).Offset(f.Offset).Find(&entities).Error
	if err != nil {
		return nil, 0, err
	}
	return toLinkModels(entities), total, nil
}

// LinkedTransactionIDs returns every transaction id that appears on either
// side of any existing link. The engine treats these as already consumed.
func (r *LinkRepository) LinkedTransactionIDs(ctx context.Context) (map[string]struct{}, error) {
	var rows []struct {
		PrimaryTxnID   string
		SecondaryTxnID string
	}
	err := r.Session(ctx).
		Model(&LinkEntity{}).
		Select("primary_txn_id", "secondary_txn_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	ids := make(map[string]struct{}, len(rows)*2)
	for _, row := range rows {
		ids[row.PrimaryTxnID] = struct{}{}
		ids[row.SecondaryTxnID] = struct{}{}
	}
	return ids, nil
}
