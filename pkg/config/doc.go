// Package config loads env-tagged structs with github.com/caarlos0/env.
//
// A .env file in the working directory is read once, on first use, via
// github.com/joho/godotenv; variables already present in the environment win.
// Each struct type is parsed once and cached, so packages can call Load for
// their own Config without coordinating:
//
//	type Config struct {
//		Storage  string        `env:"PAYWALL_STORAGE" envDefault:"sqlite"`
//		Duration time.Duration `env:"SUBSCRIPTION_DURATION" envDefault:"10m"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Use Parse to bypass the cache, e.g. when a test changes variables between
// calls.
package config
