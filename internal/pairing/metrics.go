package pairing

import (
	"time"

	"github.com/nimasrn/ledger-reconciler/internal/model"
	"github.com/nimasrn/ledger-reconciler/pkg/prom"
)

// No-ops until prom.Create has been called, so the engine stays metric-free
// in tests and one-shot CLI runs.

func recordLinkCreated(lt model.LinkType) {
	prom.IncCounterVec(prom.SystemPairing, prom.MetricLinksCreated, string(lt))
}

func recordInsertConflict(lt model.LinkType) {
	prom.IncCounterVec(prom.SystemPairing, prom.MetricInsertConflicts, string(lt))
}

func recordPairRejected(lt model.LinkType, reason string) {
	prom.IncCounterVec(prom.SystemPairing, prom.MetricPairsRejected, string(lt), reason)
}

func observeRunDuration(d time.Duration) {
	prom.AddHistogram(prom.SystemPairing, prom.MetricRunDuration, d.Seconds())
}
