package main

import (
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const appID = "shop"

type config struct {
	ListenAddress   string        `envconfig:"listen_address" default:":8080"`
	ShutdownTimeout time.Duration `envconfig:"shutdown_timeout" default:"10s"`
	LogLevel        string        `envconfig:"log_level" default:"info"`
	LogFile         string        `envconfig:"log_file"`

	StoreDriver    string `envconfig:"store_driver" default:"memory"`
	MySQLDSN       string `envconfig:"mysql_dsn"`
	MigrateOnStart bool   `envconfig:"migrate_on_start" default:"true"`

	TransitionPolicy   string  `envconfig:"transition_policy" default:"strict"`
	PaymentSuccessRate float64 `envconfig:"payment_success_rate" default:"0.9"`
	PaymentSeed        int64   `envconfig:"payment_seed"`

	BreakerMaxRequests  uint32        `envconfig:"breaker_max_requests" default:"3"`
	BreakerInterval     time.Duration `envconfig:"breaker_interval" default:"15s"`
	BreakerTimeout      time.Duration `envconfig:"breaker_timeout" default:"30s"`
	BreakerMinRequests  uint32        `envconfig:"breaker_min_requests" default:"3"`
	BreakerFailureRatio float64       `envconfig:"breaker_failure_ratio" default:"0.6"`

	CatalogSeedFile string `envconfig:"catalog_seed_file"`
}

// parseEnv reads SHOP_* variables, loading an optional .env file first.
func parseEnv() (*config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(err, "failed to load .env")
	}

	c := new(config)
	if err := envconfig.Process(appID, c); err != nil {
		return nil, errors.Wrap(err, "failed to parse env")
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *config) validate() error {
	switch c.StoreDriver {
	case "memory":
	case "mysql":
		if c.MySQLDSN == "" {
			return errors.New("SHOP_MYSQL_DSN is required for the mysql store")
		}
	default:
		return errors.Errorf("unknown store driver %q", c.StoreDriver)
	}
	if c.PaymentSuccessRate < 0 || c.PaymentSuccessRate > 1 {
		return errors.Errorf("payment success rate must be within [0, 1], got %v", c.PaymentSuccessRate)
	}
	return nil
}
