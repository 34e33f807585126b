package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nimasrn/ledger-reconciler/internal/config"
	"github.com/nimasrn/ledger-reconciler/internal/pairing"
	"github.com/nimasrn/ledger-reconciler/internal/repository"
	"github.com/nimasrn/ledger-reconciler/internal/services"
	"github.com/nimasrn/ledger-reconciler/pkg/logger"
	"github.com/nimasrn/ledger-reconciler/pkg/pg"
	"github.com/nimasrn/ledger-reconciler/pkg/prom"
	"github.com/nimasrn/ledger-reconciler/pkg/redis"
	"github.com/nimasrn/ledger-reconciler/pkg/worker"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type runRequest struct {
	trigger string
}

func main() {
	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	pgConf := pg.Config{
		User:     config.Get().PostgresUser,
		Host:     config.Get().PostgresHost,
		Port:     config.Get().PostgresPort,
		Password: config.Get().PostgresPassword,
		Database: config.Get().PostgresDatabase,
	}
	db, err := pg.Open(pgConf, false)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	redisAdap, err := redis.NewAdapter("default", config.Get().RedisKeyPrefix, &redis.Options{
		Addrs:      []string{config.Get().RedisAddr},
		ClientName: "default",
		DB:         config.Get().RedisDatabase,
		Username:   config.Get().RedisUsername,
		Password:   config.Get().RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	transactionRepo := repository.NewTransactionRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	linkRepo := repository.NewLinkRepository(db)

	engine := pairing.New(transactionRepo, accountRepo, linkRepo)
	pairingService := services.NewPairingService(engine, linkRepo, redisAdap, config.Get().PairingLockTTL)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	if err := prom.Create(hostname, config.Get().AppEnv, config.Get().PromNamespace); err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}
	go func() {
		prom.ListenAndServe(config.Get().MetricsAddr, config.Get().MetricsEndpoint)
	}()

	// A single worker keeps pairing runs strictly serial inside this
	// process; the redis lease covers other instances.
	pool := worker.NewPool(16, 1)
	pool.SetHandler(func(workerIndex int, job any) {
		req, ok := job.(runRequest)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), config.Get().PairingLockTTL)
		defer cancel()

		res, err := pairingService.Run(ctx)
		switch {
		case errors.Is(err, services.ErrRunInProgress):
			logger.Debug("pairing run skipped, another run holds the lease", "trigger", req.trigger)
		case err != nil:
			logger.Error("pairing run failed", "trigger", req.trigger, "error", err)
		default:
			logger.Info("scheduled pairing run done",
				"trigger", req.trigger,
				"self_transfers", res.SelfTransfers,
				"cc_payments", res.CCPayments,
				"total", res.Total,
			)
		}
	})
	pool.Start()

	logger.Info("runner started",
		"version", version, "commit", commit, "built", date,
		"interval", config.Get().PairingRunInterval.String(),
	)

	pool.Enqueue(runRequest{trigger: "startup"})

	ticker := time.NewTicker(config.Get().PairingRunInterval)
	defer ticker.Stop()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			if !pool.TryEnqueue(runRequest{trigger: "interval"}) {
				logger.Warn("run queue full, skipping tick")
			}
		case <-c:
			pool.Stop()
			return
		}
	}
}

func argContainsEnvPath() string {
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
	return ""
}
