package sqlite

import "time"

type Config struct {
	Path        string        `env:"SQLITE_PATH" envDefault:"paywall.db"`
	Table       string        `env:"SQLITE_TABLE" envDefault:"paywall_kv"`
	BusyTimeout time.Duration `env:"SQLITE_BUSY_TIMEOUT" envDefault:"5s"`
}
