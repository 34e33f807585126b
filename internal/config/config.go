package config

import (
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/nimasrn/ledger-reconciler/pkg/logger"
	"github.com/pkg/errors"
)

var config *Config

// Config holds every env-backed setting the binaries use. Only this struct
// should be consulted for configuration; no direct env reads elsewhere.
type Config struct {
	AppEnv  string `env:"APP_ENV" default:"dev"`
	AppName string `env:"APP_NAME" default:"ledger_reconciler"`

	HttpListenAddr string `env:"HTTP_LISTEN_ADDR" default:":8080"`

	PostgresHost     string `env:"POSTGRES_HOST"`
	PostgresPort     string `env:"POSTGRES_PORT"`
	PostgresUser     string `env:"POSTGRES_USER"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	PostgresDatabase string `env:"POSTGRES_DBNAME"`

	RedisAddr      string `env:"REDIS_ADDR"`
	RedisUsername  string `env:"REDIS_USER"`
	RedisPassword  string `env:"REDIS_PASS"`
	RedisDatabase  int    `env:"REDIS_DATABASE"`
	RedisKeyPrefix string `env:"REDIS_KEY_PREFIX" default:"reconciler"`

	PromNamespace   string `env:"PROM_NAMESPACE" default:"reconciler"`
	MetricsAddr     string `env:"METRICS_ADDR" default:":9100"`
	MetricsEndpoint string `env:"METRICS_ENDPOINT" default:"/metrics"`

	// PairingRunInterval is how often the background runner triggers a
	// full pairing pass; PairingLockTTL bounds how long a crashed run can
	// hold the cross-instance lease.
	PairingRunInterval time.Duration `env:"PAIRING_RUN_INTERVAL" default:"15m"`
	PairingLockTTL     time.Duration `env:"PAIRING_LOCK_TTL" default:"5m"`
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	var err error
	if path != "" {
		logger.Info("trying to publish env from file", "path", path)
		err = godotenv.Load(path)
		if err != nil {
			return errors.Wrap(err, "failed to load configuration file "+path)
		}
	}

	_, err = env.UnmarshalFromEnviron(c)
	if err != nil {
		return errors.Wrap(err, "failed to map env variables to Configuration object")
	}

	config = c
	return nil
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}
