package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nimasrn/ledger-reconciler/internal/model"
	"github.com/nimasrn/ledger-reconciler/internal/pairing"
	"github.com/nimasrn/ledger-reconciler/internal/repository"
	"github.com/nimasrn/ledger-reconciler/pkg/logger"
	"github.com/nimasrn/ledger-reconciler/pkg/redis"
)

// ErrRunInProgress is returned when another pairing run currently holds the
// cross-instance lease.
var ErrRunInProgress = errors.New("pairing run already in progress")

const runLockKey = "pairing:run-lock"

// PairingRunner is the engine surface the service drives.
type PairingRunner interface {
	RunAll(ctx context.Context) (pairing.Result, error)
	PairSelfTransfers(ctx context.Context) (int, error)
	PairStatementPayments(ctx context.Context) (int, error)
}

// LinkLister is the read surface exposed through the API.
type LinkLister interface {
	List(ctx context.Context, f repository.LinkFilter) ([]model.TransactionLink, int64, error)
}

// PairingService serializes engine runs. The engine's dedup check is
// read-then-write, so two concurrent runs against the same store could race;
// a redis lease guarantees at most one run at a time across instances. The
// store's unique indexes remain the backstop if a lease ever expires under
// a still-running engine.
type PairingService struct {
	engine   PairingRunner
	links    LinkLister
	locks    redis.Adapter
	leaseTTL time.Duration
}

func NewPairingService(engine PairingRunner, links LinkLister, locks redis.Adapter, leaseTTL time.Duration) *PairingService {
	if leaseTTL <= 0 {
		leaseTTL = 5 * time.Minute
	}
	return &PairingService{
		engine:   engine,
		links:    links,
		locks:    locks,
		leaseTTL: leaseTTL,
	}
}

// Run executes one full pairing pass under the run lease.
func (s *PairingService) Run(ctx context.Context) (pairing.Result, error) {
	token, release, err := s.acquire(ctx)
	if err != nil {
		return pairing.Result{}, err
	}
	defer release()

	logger.Info("pairing run started", "run_id", token)
	res, err := s.engine.RunAll(ctx)
	if err != nil {
		logger.Error("pairing run failed", "run_id", token, "error", err)
		return pairing.Result{}, err
	}
	return res, nil
}

// RunSelfTransfers executes only the self-transfer pass under the lease.
func (s *PairingService) RunSelfTransfers(ctx context.Context) (int, error) {
	token, release, err := s.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	logger.Info("self-transfer pass started", "run_id", token)
	return s.engine.PairSelfTransfers(ctx)
}

// RunStatementPayments executes only the statement-payment pass under the
// lease.
func (s *PairingService) RunStatementPayments(ctx context.Context) (int, error) {
	token, release, err := s.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	logger.Info("statement-payment pass started", "run_id", token)
	return s.engine.PairStatementPayments(ctx)
}

func (s *PairingService) ListLinks(ctx context.Context, f repository.LinkFilter) ([]model.TransactionLink, int64, error) {
	return s.links.List(ctx, f)
}

func (s *PairingService) acquire(ctx context.Context) (token string, release func(), err error) {
	token = uuid.NewString()
	ok, err := s.locks.AcquireLease(ctx, runLockKey, token, s.leaseTTL)
	if err != nil {
		return "", nil, fmt.Errorf("acquire run lease: %w", err)
	}
	if !ok {
		return "", nil, ErrRunInProgress
	}
	release = func() {
		if err := s.locks.ReleaseLease(context.WithoutCancel(ctx), runLockKey, token); err != nil {
			logger.Warn("failed to release run lease", "run_id", token, "error", err)
		}
	}
	return token, release, nil
}
