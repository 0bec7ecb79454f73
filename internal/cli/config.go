package cli

import (
	"time"

	"github.com/dmitrymomot/paywall/pkg/httpserver"
	"github.com/dmitrymomot/paywall/pkg/mongo"
	"github.com/dmitrymomot/paywall/pkg/pg"
	"github.com/dmitrymomot/paywall/pkg/redis"
	"github.com/dmitrymomot/paywall/pkg/sqlite"
)

const (
	storageMemory   = "memory"
	storageSQLite   = "sqlite"
	storageRedis    = "redis"
	storagePostgres = "postgres"
	storageMongo    = "mongo"
)

// Config is read from the environment and .env. Flags override the matching fields.
type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	AppName  string `env:"APP_NAME" envDefault:"paywall"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"warn"`

	Storage   string `env:"PAYWALL_STORAGE" envDefault:"sqlite"`
	User      string `env:"PAYWALL_USER"`
	Catalog   string `env:"PAYWALL_CATALOG"`
	CacheSize int    `env:"PAYWALL_CACHE_SIZE" envDefault:"16"`

	Duration time.Duration `env:"SUBSCRIPTION_DURATION" envDefault:"10m"`
	PlanKey  string        `env:"SUBSCRIPTION_PLAN_KEY" envDefault:"subscriptionPlan"`
	StartKey string        `env:"SUBSCRIPTION_START_KEY" envDefault:"subscriptionStartTime"`

	SQLite   sqlite.Config
	Redis    redis.Config
	Postgres pg.Config
	Mongo    mongo.Config
	Ops      httpserver.Config
}
