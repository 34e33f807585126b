package main

import (
	"context"
	"os"
	"strings"

	"github.com/nimasrn/ledger-reconciler/internal/config"
	"github.com/nimasrn/ledger-reconciler/internal/pairing"
	"github.com/nimasrn/ledger-reconciler/internal/repository"
	"github.com/nimasrn/ledger-reconciler/pkg/logger"
	"github.com/nimasrn/ledger-reconciler/pkg/pg"
)

// Operator tool: `cli migrate [--dir=./migrations]` applies schema
// migrations, `cli run` executes one pairing pass directly against the
// database, without the lease (intended for a stopped deployment).
func main() {
	err := config.Load(getEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
	}

	pgConf := pg.Config{
		User:     config.Get().PostgresUser,
		Host:     config.Get().PostgresHost,
		Port:     config.Get().PostgresPort,
		Password: config.Get().PostgresPassword,
		Database: config.Get().PostgresDatabase,
	}

	switch command() {
	case "migrate":
		if err := pg.Migrate(pgConf, getMigrationPath()); err != nil {
			logger.Error("migration: error running migrations", "error", err)
		}
	case "run":
		db, err := pg.Open(pgConf, false)
		if err != nil {
			logger.Error("failed connecting to pg", "error", err)
			return
		}
		engine := pairing.New(
			repository.NewTransactionRepository(db),
			repository.NewAccountRepository(db),
			repository.NewLinkRepository(db),
		)
		res, err := engine.RunAll(context.Background())
		if err != nil {
			logger.Error("pairing run failed", "error", err)
			return
		}
		logger.Info("pairing run done",
			"self_transfers", res.SelfTransfers,
			"cc_payments", res.CCPayments,
			"total", res.Total,
		)
	default:
		logger.Error("usage: cli <migrate|run> [--env=path] [--dir=path]")
	}
}

func command() string {
	for _, v := range os.Args[1:] {
		if !strings.HasPrefix(v, "--") {
			return v
		}
	}
	return ""
}

func getEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	if _, err := os.Open(".env"); err != nil {
		return ""
	}
	return ".env"
}

func getMigrationPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--dir=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed migration dir, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return "./migrations"
}
