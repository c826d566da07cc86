// Package redis provides Redis client initialization, health checking, and a
// Redis-backed session payload store.
//
// The package wraps the go-redis client with URL validation, retry logic, and
// a ping verification before the client is handed back, so a returned client
// is known to be reachable. It also implements sessionstore.Store over Redis,
// which slots in as the fast secondary tier of a failover store.
//
// # Connecting
//
// Configuration is environment-driven through the Config struct:
//
//	type Config struct {
//		ConnectionURL  string        `env:"REDIS_URL,required" envDefault:"redis://localhost:6379/0"`
//		RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
//		RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
//		ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
//	}
//
// Both redis:// and rediss:// (TLS) URL schemes are accepted; anything else is
// rejected with ErrFailedToParseRedisConnString before a dial is attempted.
// Connection establishment retries transient failures within ConnectTimeout
// and respects context cancellation.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
// Healthcheck returns a probe function suitable for readiness endpoints:
//
//	check := redis.Healthcheck(client)
//	if err := check(ctx); err != nil {
//		// redis unreachable
//	}
//
// # Session payload store
//
// NewStore builds a sessionstore.Store over the client. Payloads live under
// namespace-prefixed keys and carry a TTL that is reset on every write, so
// abandoned sessions expire without an explicit sweep:
//
//	store := redis.NewStore(client, redis.WithPayloadTTL(12*time.Hour))
//	failover := sessionstore.NewFailover(pgStore, store)
//
// Because Redis expires keys natively, the store's GC reports
// sessionstore.ErrNoResult rather than a deletion count; the failover wrapper
// treats that as a request to consult the other tier.
//
// # Error Handling
//
// The package defines stable error types checked with errors.Is():
//
//   - ErrFailedToParseRedisConnString: malformed or wrong-scheme connection URL
//   - ErrRedisNotReady: Redis did not become reachable within the timeout
//   - ErrEmptyConnectionURL: no connection URL provided
//   - ErrHealthcheckFailed: health check ping failed
package redis
