// Package pairing implements the reconciliation engine that discovers
// relationships between ledger transactions: self-transfers between the
// user's own accounts, and credit-card statements matched to the payments
// that settled them.
//
// Matching is greedy and order-dependent: each debit or statement accepts
// the first sufficiently-confident candidate in snapshot order rather than
// searching for a globally optimal assignment. This mirrors the observable
// behavior the engine is specified against; callers should not expect a
// maximum-weight pairing. The snapshot order is deterministic (ascending
// occurrence time, then id), so repeated runs over the same ledger make the
// same decisions.
package pairing

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/nimasrn/ledger-reconciler/internal/model"
	"github.com/nimasrn/ledger-reconciler/internal/repository"
	"github.com/nimasrn/ledger-reconciler/pkg/logger"
)

// LedgerReader supplies the full transaction snapshot for one run.
type LedgerReader interface {
	Transactions(ctx context.Context) ([]model.Transaction, error)
}

// AccountRegistry supplies the set of account-last-4 identifiers known to
// belong to the user.
type AccountRegistry interface {
	KnownLast4s(ctx context.Context) (map[string]struct{}, error)
}

// LinkStore persists links and reports which transaction ids are already
// consumed by existing links.
type LinkStore interface {
	LinkedTransactionIDs(ctx context.Context) (map[string]struct{}, error)
	Insert(ctx context.Context, link *model.TransactionLink) (*model.TransactionLink, error)
}

// Engine pairs transactions against one consistent snapshot per run. It
// holds no state between runs: every invocation re-reads the ledger, the
// account set and the already-linked ids, which is what makes re-running it
// over a grown ledger safe.
type Engine struct {
	ledger   LedgerReader
	accounts AccountRegistry
	links    LinkStore
}

func New(ledger LedgerReader, accounts AccountRegistry, links LinkStore) *Engine {
	return &Engine{
		ledger:   ledger,
		accounts: accounts,
		links:    links,
	}
}

// Result summarizes one engine run.
type Result struct {
	SelfTransfers int `json:"self_transfers_paired"`
	CCPayments    int `json:"cc_payments_paired"`
	Total         int `json:"total_paired"`
}

// RunAll executes the self-transfer pass followed by the statement-payment
// pass against a single snapshot. A transaction id consumed by the first
// pass is off-limits to the second within the same run.
func (e *Engine) RunAll(ctx context.Context) (Result, error) {
	start := time.Now()

	snap, err := e.snapshot(ctx)
	if err != nil {
		return Result{}, err
	}
	consumed := snap.consumedSet()

	selfTransfers, err := e.pairSelfTransfers(ctx, snap, consumed)
	if err != nil {
		return Result{}, err
	}
	ccPayments, err := e.pairStatementPayments(ctx, snap, consumed)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		SelfTransfers: selfTransfers,
		CCPayments:    ccPayments,
		Total:         selfTransfers + ccPayments,
	}
	observeRunDuration(time.Since(start))
	logger.Info("pairing run finished",
		"self_transfers", res.SelfTransfers,
		"cc_payments", res.CCPayments,
		"total", res.Total,
		"duration", time.Since(start).String(),
	)
	return res, nil
}

// PairSelfTransfers runs only the self-transfer pass against a fresh
// snapshot.
func (e *Engine) PairSelfTransfers(ctx context.Context) (int, error) {
	snap, err := e.snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return e.pairSelfTransfers(ctx, snap, snap.consumedSet())
}

// PairStatementPayments runs only the statement-payment pass against a
// fresh snapshot.
func (e *Engine) PairStatementPayments(ctx context.Context) (int, error) {
	snap, err := e.snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return e.pairStatementPayments(ctx, snap, snap.consumedSet())
}

type snapshot struct {
	txns      []model.Transaction
	userLast4 map[string]struct{}
	linked    map[string]struct{}
}

func (e *Engine) snapshot(ctx context.Context) (*snapshot, error) {
	txns, err := e.ledger.Transactions(ctx)
	if err != nil {
		return nil, err
	}
	userLast4, err := e.accounts.KnownLast4s(ctx)
	if err != nil {
		return nil, err
	}
	linked, err := e.links.LinkedTransactionIDs(ctx)
	if err != nil {
		return nil, err
	}

	// Re-sort regardless of reader order so greedy decisions stay
	// reproducible with any LedgerReader implementation.
	sort.SliceStable(txns, func(i, j int) bool {
		if txns[i].OccurredAt != txns[j].OccurredAt {
			return txns[i].OccurredAt < txns[j].OccurredAt
		}
		return txns[i].ID < txns[j].ID
	})

	return &snapshot{txns: txns, userLast4: userLast4, linked: linked}, nil
}

func (s *snapshot) consumedSet() map[string]struct{} {
	consumed := make(map[string]struct{}, len(s.linked))
	for id := range s.linked {
		consumed[id] = struct{}{}
	}
	return consumed
}

// insertLink writes one link through the store. Returns ok=false when the
// store rejected the candidate as a duplicate or invalid reference; that is
// a normal outcome under racing runs and is absorbed without failing the
// pass. Any other error is an infrastructure failure and aborts the run.
func (e *Engine) insertLink(ctx context.Context, link *model.TransactionLink) (bool, error) {
	if _, err := e.links.Insert(ctx, link); err != nil {
		if errors.Is(err, repository.ErrDuplicateLink) || errors.Is(err, repository.ErrInvalidLink) {
			logger.Warn("link rejected by store",
				"link_type", link.LinkType,
				"primary", link.PrimaryTxnID,
				"secondary", link.SecondaryTxnID,
				"error", err,
			)
			recordInsertConflict(link.LinkType)
			return false, nil
		}
		return false, err
	}
	recordLinkCreated(link.LinkType)
	return true, nil
}

// timeGap is the absolute distance between two occurrence instants.
func timeGap(a, b model.Transaction) time.Duration {
	gap := time.Duration(a.OccurredAt-b.OccurredAt) * time.Millisecond
	if gap < 0 {
		gap = -gap
	}
	return gap
}

// Signal bonuses can sum past 100; stored confidence is capped there.
func clampScore(score int) int {
	if score > 100 {
		return 100
	}
	return score
}
