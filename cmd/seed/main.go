package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/nimasrn/ledger-reconciler/internal/config"
	"github.com/nimasrn/ledger-reconciler/internal/model"
	"github.com/nimasrn/ledger-reconciler/internal/repository"
	"github.com/nimasrn/ledger-reconciler/pkg/pg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Development tool: fills the database with a synthetic ledger containing
// plantable self-transfer pairs, statement/payment pairs and noise, so the
// engine has something to chew on locally.

var banks = []string{"HDFCBK", "ICICIB", "SBIBNK", "AXISBK", "KOTAKB"}

type seeder struct {
	txns     *repository.TransactionRepository
	accounts *repository.AccountRepository
	rng      *rand.Rand
}

func main() {
	var (
		envPath       = flag.String("env", "", "path to env file")
		pairs         = flag.Int("pairs", 10, "number of planted self-transfer pairs")
		statements    = flag.Int("statements", 5, "number of planted statement/payment pairs")
		noise         = flag.Int("noise", 50, "number of unrelated transactions")
		seed          = flag.Int64("seed", time.Now().UnixNano(), "rng seed")
		accountsCount = flag.Int("accounts", 3, "number of user accounts")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := config.Load(*envPath); err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := pg.Open(pg.Config{
		User:     config.Get().PostgresUser,
		Host:     config.Get().PostgresHost,
		Port:     config.Get().PostgresPort,
		Password: config.Get().PostgresPassword,
		Database: config.Get().PostgresDatabase,
	}, false)
	if err != nil {
		log.Fatal().Err(err).Msg("failed connecting to pg")
	}

	s := &seeder{
		txns:     repository.NewTransactionRepository(db),
		accounts: repository.NewAccountRepository(db),
		rng:      rand.New(rand.NewSource(*seed)),
	}
	ctx := context.Background()

	last4s := make([]string, 0, *accountsCount)
	for i := 0; i < *accountsCount; i++ {
		last4 := fmt.Sprintf("%04d", s.rng.Intn(10000))
		if _, err := s.accounts.Upsert(ctx, &model.UserAccount{
			AccountLast4: last4,
			BankName:     banks[s.rng.Intn(len(banks))],
			AccountType:  "savings",
		}); err != nil {
			log.Fatal().Err(err).Msg("failed to seed account")
		}
		last4s = append(last4s, last4)
		log.Info().Str("last4", last4).Msg("seeded user account")
	}

	now := time.Now().UnixMilli()

	for i := 0; i < *pairs; i++ {
		amount := uint64(s.rng.Intn(900_000) + 100_000)
		at := now - int64(s.rng.Intn(30*24))*int64(time.Hour/time.Millisecond)
		gap := int64(s.rng.Intn(20)+1) * int64(time.Hour/time.Millisecond)
		from, to := s.pickTwo(last4s)

		s.create(ctx, model.Transaction{
			ID:           uuid.NewString(),
			Type:         model.TypeTransfer,
			AmountMinor:  amount,
			OccurredAt:   at,
			Sender:       banks[s.rng.Intn(len(banks))],
			AccountLast4: from,
		})
		s.create(ctx, model.Transaction{
			ID:           uuid.NewString(),
			Type:         model.TypeIncome,
			AmountMinor:  amount,
			OccurredAt:   at + gap,
			Sender:       banks[s.rng.Intn(len(banks))],
			AccountLast4: to,
		})
	}
	log.Info().Int("pairs", *pairs).Msg("seeded self-transfer pairs")

	for i := 0; i < *statements; i++ {
		amount := uint64(s.rng.Intn(2_000_000) + 500_000)
		at := now - int64(s.rng.Intn(60*24))*int64(time.Hour/time.Millisecond)
		gap := int64(s.rng.Intn(5*24)+1) * int64(time.Hour/time.Millisecond)
		card := last4s[s.rng.Intn(len(last4s))]

		s.create(ctx, model.Transaction{
			ID:           uuid.NewString(),
			Type:         model.TypeStatement,
			AmountMinor:  amount,
			OccurredAt:   at,
			Sender:       banks[s.rng.Intn(len(banks))],
			AccountLast4: card,
		})
		s.create(ctx, model.Transaction{
			ID:           uuid.NewString(),
			Type:         model.TypeLiabilityPayment,
			AmountMinor:  amount,
			OccurredAt:   at + gap,
			Sender:       banks[s.rng.Intn(len(banks))],
			AccountLast4: card,
		})
	}
	log.Info().Int("statements", *statements).Msg("seeded statement/payment pairs")

	noiseTypes := []model.TransactionType{
		model.TypeExpense, model.TypeIncome, model.TypeRefund, model.TypeCashback,
	}
	for i := 0; i < *noise; i++ {
		s.create(ctx, model.Transaction{
			ID:          uuid.NewString(),
			Type:        noiseTypes[s.rng.Intn(len(noiseTypes))],
			AmountMinor: uint64(s.rng.Intn(500_000) + 100),
			OccurredAt:  now - int64(s.rng.Intn(90*24))*int64(time.Hour/time.Millisecond),
			Sender:      banks[s.rng.Intn(len(banks))],
		})
	}
	log.Info().Int("noise", *noise).Int64("seed", *seed).Msg("ledger seeded")
}

func (s *seeder) create(ctx context.Context, t model.Transaction) {
	if _, err := s.txns.Create(ctx, &t); err != nil {
		log.Fatal().Err(err).Str("id", t.ID).Msg("failed to seed transaction")
	}
}

func (s *seeder) pickTwo(last4s []string) (string, string) {
	if len(last4s) < 2 {
		return last4s[0], last4s[0]
	}
	i := s.rng.Intn(len(last4s))
	j := s.rng.Intn(len(last4s) - 1)
	if j >= i {
		j++
	}
	return last4s[i], last4s[j]
}
