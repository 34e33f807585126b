package pairing

import (
	"context"
	"errors"

	"github.com/nimasrn/ledger-reconciler/internal/model"
	"github.com/nimasrn/ledger-reconciler/internal/repository"
)

// In-memory collaborators for engine tests. The fake link store enforces
// the same per-type uniqueness the real table does.

type fakeLedger struct {
	txns []model.Transaction
	err  error
}

func (f *fakeLedger) Transactions(ctx context.Context) ([]model.Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Transaction, len(f.txns))
	copy(out, f.txns)
	return out, nil
}

type fakeAccounts struct {
	last4s map[string]struct{}
	err    error
}

func (f *fakeAccounts) KnownLast4s(ctx context.Context) (map[string]struct{}, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.last4s == nil {
		return map[string]struct{}{}, nil
	}
	return f.last4s, nil
}

type fakeLinkStore struct {
	links     []model.TransactionLink
	insertErr error // returned by every Insert when set
}

func (f *fakeLinkStore) LinkedTransactionIDs(ctx context.Context) (map[string]struct{}, error) {
	ids := make(map[string]struct{})
	for _, l := range f.links {
		ids[l.PrimaryTxnID] = struct{}{}
		ids[l.SecondaryTxnID] = struct{}{}
	}
	return ids, nil
}

func (f *fakeLinkStore) Insert(ctx context.Context, link *model.TransactionLink) (*model.TransactionLink, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	if err := link.Validate(); err != nil {
		return nil, errors.Join(repository.ErrInvalidLink, err)
	}
	for _, l := range f.links {
		if l.LinkType != link.LinkType {
			continue
		}
		if l.PrimaryTxnID == link.PrimaryTxnID || l.SecondaryTxnID == link.SecondaryTxnID ||
			l.PrimaryTxnID == link.SecondaryTxnID || l.SecondaryTxnID == link.PrimaryTxnID {
			return nil, repository.ErrDuplicateLink
		}
	}
	stored := *link
	stored.ID = int64(len(f.links) + 1)
	f.links = append(f.links, stored)
	return &stored, nil
}

func (f *fakeLinkStore) byType(lt model.LinkType) []model.TransactionLink {
	var out []model.TransactionLink
	for _, l := range f.links {
		if l.LinkType == lt {
			out = append(out, l)
		}
	}
	return out
}

func newTestEngine(txns []model.Transaction, userLast4s ...string) (*Engine, *fakeLinkStore) {
	set := make(map[string]struct{}, len(userLast4s))
	for _, v := range userLast4s {
		set[v] = struct{}{}
	}
	store := &fakeLinkStore{}
	eng := New(&fakeLedger{txns: txns}, &fakeAccounts{last4s: set}, store)
	return eng, store
}
