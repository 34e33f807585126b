package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nimasrn/ledger-reconciler/internal/config"
	"github.com/nimasrn/ledger-reconciler/internal/handlers"
	"github.com/nimasrn/ledger-reconciler/internal/pairing"
	"github.com/nimasrn/ledger-reconciler/internal/repository"
	"github.com/nimasrn/ledger-reconciler/internal/services"
	xhttp "github.com/nimasrn/ledger-reconciler/pkg/http"
	"github.com/nimasrn/ledger-reconciler/pkg/logger"
	"github.com/nimasrn/ledger-reconciler/pkg/pg"
	"github.com/nimasrn/ledger-reconciler/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

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
	pgDebug := config.Get().AppEnv == "dev"
	db, err := pg.Open(pgConf, pgDebug)
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

	pairingHandler := handlers.NewPairingHandler(pairingService)
	healthHandler := handlers.NewHealthHandler()

	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Use(xhttp.RecoverMiddleware)
	s.Use(xhttp.RequestLoggerMiddleware)
	// A full pairing pass can outlive the default request budget.
	s.Use(xhttp.TimeoutMiddleware(time.Second * 30))

	g := s.Router.Group("/api/v1")
	handlers.RegisterPairingRoutes(g, pairingHandler)
	handlers.RegisterHealthRoutes(g, healthHandler)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.ListenAndServe(config.Get().HttpListenAddr); err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	logger.Info("api started", "version", version, "commit", commit, "built", date)

	<-c
	s.Shutdown()
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
