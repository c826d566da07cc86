package config

import (
	"errors"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrParseConfig indicates the environment could not be parsed into the
// config struct (missing required variables, malformed values).
var ErrParseConfig = errors.New("config: failed to parse environment")

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> struct value
)

// Load parses environment variables into cfg. Each concrete type is loaded
// once per process; later calls for the same type receive the cached value,
// so every caller observes one consistent configuration. A .env file in the
// working directory is loaded on first use, never overriding variables that
// are already set.
func Load[T any](cfg *T) error {
	dotenvOnce.Do(func() {
		// Absent .env is the normal production case.
		_ = godotenv.Load()
	})

	key := reflect.TypeOf(*cfg)
	if v, ok := cache.Load(key); ok {
		*cfg = v.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return errors.Join(ErrParseConfig, err)
	}

	actual, _ := cache.LoadOrStore(key, *cfg)
	*cfg = actual.(T)
	return nil
}

// MustLoad is Load that panics on failure, for application startup paths.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
