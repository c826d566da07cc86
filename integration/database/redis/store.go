package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/sessionkit/core/sessionstore"
)

const defaultPayloadTTL = 24 * time.Hour

// Store is a sessionstore.Store over Redis, intended as the fast secondary
// tier behind sessionstore.NewFailover. Payloads carry a TTL so an abandoned
// key ages out on its own.
type Store struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithPayloadTTL overrides how long a written payload lives without activity.
func WithPayloadTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewStore creates a payload store over the client.
func NewStore(client *redis.Client, opts ...StoreOption) *Store {
	s := &Store{
		client: client,
		ttl:    defaultPayloadTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open pins the namespace; the path argument is meaningless for Redis.
func (s *Store) Open(_ context.Context, _ string, name string) error {
	s.namespace = name
	return nil
}

// Close is a no-op; the client is owned by the caller.
func (s *Store) Close() error { return nil }

func (s *Store) key(id string) string {
	return "sessions:" + s.namespace + ":" + id
}

// Read returns the payload for id, or an empty string when absent.
func (s *Store) Read(ctx context.Context, id string) (string, error) {
	data, err := s.client.Get(ctx, s.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return data, nil
}

// Write stores the payload, resetting its TTL.
func (s *Store) Write(ctx context.Context, id, data string) error {
	return s.client.Set(ctx, s.key(id), data, s.ttl).Err()
}

// Destroy removes the payload, reporting whether a key was deleted.
func (s *Store) Destroy(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GC cannot report a deletion count: Redis expires payloads through key TTLs
// on its own schedule.
func (s *Store) GC(context.Context, time.Duration) (int64, error) {
	return 0, sessionstore.ErrNoResult
}

var _ sessionstore.Store = (*Store)(nil)
