// Package config loads env-tagged configuration structs with per-type caching.
//
// A .env file, when present, is read once on first use; after that every Load
// parses the process environment through caarlos0/env struct tags. Each
// concrete struct type is parsed a single time per process and the result is
// cached, so the many package Configs in this module (token, session, cookie,
// store connections) can each call Load without re-reading the environment.
//
//	type Config struct {
//		ConnectionString string `env:"PG_CONN_URL,required"`
//		RetryAttempts    int    `env:"PG_RETRY_ATTEMPTS" envDefault:"3"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		// errors.Is(err, config.ErrParseConfig)
//	}
//
// MustLoad panics instead of returning an error, which keeps wiring code at
// startup flat:
//
//	var cfg Config
//	config.MustLoad(&cfg)
//
// Caching is keyed by reflect type: loading the same struct type twice
// returns the cached copy, distinct types are cached independently.
package config
