package pairing

import (
	"context"
	"time"

	"github.com/nimasrn/ledger-reconciler/internal/model"
	"github.com/nimasrn/ledger-reconciler/pkg/logger"
)

// A debit and credit qualify as a self-transfer candidate only when the
// amounts match exactly and the legs are at most two days apart.
const (
	selfTransferWindow      = 48 * time.Hour
	selfTransferTightWindow = 24 * time.Hour
)

const (
	selfTransferBaseScore      = 40 // exact amount match is the entry ticket
	selfTransferTightTimeBonus = 30 // legs within one day
	selfTransferLooseTimeBonus = 20
	selfTransferSenderBonus    = 30 // both senders known and different
	selfTransferAccountBonus   = 25 // two distinct accounts, both the user's own
)

// pairSelfTransfers scans debits against credits and links pairs that look
// like money moving between the user's own accounts. Greedy: the first
// credit scoring at or above the threshold wins the debit.
func (e *Engine) pairSelfTransfers(ctx context.Context, snap *snapshot, consumed map[string]struct{}) (int, error) {
	var debits, credits []model.Transaction
	for _, t := range snap.txns {
		// TRANSFER lands in both sets; either leg role is possible.
		if t.Type.IsDebitLeg() {
			debits = append(debits, t)
		}
		if t.Type.IsCreditLeg() {
			credits = append(credits, t)
		}
	}

	created := 0
	for _, d := range debits {
		if _, ok := consumed[d.ID]; ok {
			continue
		}
		for _, c := range credits {
			if c.ID == d.ID {
				continue
			}
			if _, ok := consumed[c.ID]; ok {
				continue
			}
			if c.AmountMinor != d.AmountMinor {
				continue
			}
			if timeGap(d, c) > selfTransferWindow {
				continue
			}
			if d.Sender != "" && c.Sender != "" && d.Sender == c.Sender {
				// The same sender reporting both legs is not a
				// cross-account movement.
				recordPairRejected(model.LinkSelfTransfer, "same_sender")
				continue
			}

			score := scoreSelfTransfer(d, c, snap.userLast4)
			if score < model.LinkSelfTransfer.MinConfidence() {
				continue
			}

			link := &model.TransactionLink{
				PrimaryTxnID:   d.ID,
				SecondaryTxnID: c.ID,
				LinkType:       model.LinkSelfTransfer,
				Confidence:     clampScore(score),
				CreatedBy:      model.CreatedByAuto,
			}
			ok, err := e.insertLink(ctx, link)
			if err != nil {
				return created, err
			}
			if !ok {
				// Candidate abandoned; move on to the next debit.
				break
			}

			consumed[d.ID] = struct{}{}
			consumed[c.ID] = struct{}{}
			created++
			logger.Info("paired self transfer",
				"debit", d.ID,
				"credit", c.ID,
				"amount_minor", d.AmountMinor,
				"confidence", link.Confidence,
			)
			break
		}
	}
	return created, nil
}

// scoreSelfTransfer assumes the amount and window gates already passed.
// Missing sender or account fields simply forfeit their bonus.
func scoreSelfTransfer(d, c model.Transaction, userLast4 map[string]struct{}) int {
	score := selfTransferBaseScore

	if timeGap(d, c) <= selfTransferTightWindow {
		score += selfTransferTightTimeBonus
	} else {
		score += selfTransferLooseTimeBonus
	}

	if d.Sender != "" && c.Sender != "" && d.Sender != c.Sender {
		score += selfTransferSenderBonus
	}

	if d.AccountLast4 != "" && c.AccountLast4 != "" && d.AccountLast4 != c.AccountLast4 {
		_, dOwned := userLast4[d.AccountLast4]
		_, cOwned := userLast4[c.AccountLast4]
		if dOwned && cOwned {
			score += selfTransferAccountBonus
		}
	}

	return score
}
