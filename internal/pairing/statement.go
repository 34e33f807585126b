package pairing

import (
	"context"
	"math"
	"time"

	"github.com/nimasrn/ledger-reconciler/internal/model"
	"github.com/nimasrn/ledger-reconciler/pkg/logger"
)

// A statement and payment qualify as a candidate only when at most seven
// days apart. Unlike self-transfers the amounts need not match exactly:
// partial interest or fees shift the settled amount slightly, so up to 10%
// relative difference is tolerated.
const (
	statementWindow      = 7 * 24 * time.Hour
	statementTightWindow = 3 * 24 * time.Hour
)

const (
	paymentAccountBonus     = 40 // both last-4 known and equal
	paymentExactAmountBonus = 40
	paymentNearAmountBonus  = 30 // within 5% of the statement amount
	paymentFarAmountBonus   = 20 // within 10%
	paymentTightTimeBonus   = 20 // settled within three days
	paymentLooseTimeBonus   = 10
)

// pairStatementPayments links credit-card statements to the payments that
// settled them. Greedy, same shape as the self-transfer pass.
func (e *Engine) pairStatementPayments(ctx context.Context, snap *snapshot, consumed map[string]struct{}) (int, error) {
	var statements, payments []model.Transaction
	for _, t := range snap.txns {
		switch t.Type {
		case model.TypeStatement:
			statements = append(statements, t)
		case model.TypeLiabilityPayment:
			payments = append(payments, t)
		}
	}

	created := 0
	for _, s := range statements {
		if _, ok := consumed[s.ID]; ok {
			continue
		}
		for _, p := range payments {
			if p.ID == s.ID {
				continue
			}
			if _, ok := consumed[p.ID]; ok {
				continue
			}
			if timeGap(s, p) > statementWindow {
				continue
			}

			score, ok := scoreStatementPayment(s, p)
			if !ok {
				recordPairRejected(model.LinkCCPayment, "amount_gap")
				continue
			}
			if score < model.LinkCCPayment.MinConfidence() {
				continue
			}

			link := &model.TransactionLink{
				PrimaryTxnID:   s.ID,
				SecondaryTxnID: p.ID,
				LinkType:       model.LinkCCPayment,
				Confidence:     clampScore(score),
				CreatedBy:      model.CreatedByAuto,
			}
			inserted, err := e.insertLink(ctx, link)
			if err != nil {
				return created, err
			}
			if !inserted {
				break
			}

			consumed[s.ID] = struct{}{}
			consumed[p.ID] = struct{}{}
			created++
			logger.Info("paired statement payment",
				"statement", s.ID,
				"payment", p.ID,
				"statement_amount_minor", s.AmountMinor,
				"payment_amount_minor", p.AmountMinor,
				"confidence", link.Confidence,
			)
			break
		}
	}
	return created, nil
}

// scoreStatementPayment returns ok=false when the relative amount
// difference exceeds the 10% tolerance; such candidates are rejected
// outright, whatever their other signals.
func scoreStatementPayment(s, p model.Transaction) (int, bool) {
	score := 0

	if s.AccountLast4 != "" && p.AccountLast4 != "" && s.AccountLast4 == p.AccountLast4 {
		score += paymentAccountBonus
	}

	switch diff := relativeAmountDiff(s.AmountMinor, p.AmountMinor); {
	case s.AmountMinor == p.AmountMinor:
		score += paymentExactAmountBonus
	case diff <= 0.05:
		score += paymentNearAmountBonus
	case diff <= 0.10:
		score += paymentFarAmountBonus
	default:
		return 0, false
	}

	if timeGap(s, p) <= statementTightWindow {
		score += paymentTightTimeBonus
	} else {
		score += paymentLooseTimeBonus
	}

	return score, true
}

// relativeAmountDiff measures the gap between statement and payment amounts
// against the statement amount.
func relativeAmountDiff(statement, payment uint64) float64 {
	if statement == 0 {
		if payment == 0 {
			return 0
		}
		return math.Inf(1)
	}
	var diff uint64
	if statement > payment {
		diff = statement - payment
	} else {
		diff = payment - statement
	}
	return float64(diff) / float64(statement)
}
