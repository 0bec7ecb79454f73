package httpserver

import "time"

// Config is read from the environment. An empty Addr disables the server.
type Config struct {
	Addr            string        `env:"PAYWALL_OPS_ADDR"`
	ReadTimeout     time.Duration `env:"PAYWALL_OPS_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"PAYWALL_OPS_WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"PAYWALL_OPS_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}
