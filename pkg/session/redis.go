package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient is the subset of go-redis commands the store uses.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// RedisStore keeps sessions as JSON values under prefix+profile.
type RedisStore struct {
	client RedisClient
	prefix string
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix sets the key namespace. Defaults to "tutordash:session:".
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// WithTTL expires saved sessions after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		if ttl >= 0 {
			s.ttl = ttl
		}
	}
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client RedisClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: "tutordash:session:"}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// DialRedis connects to addr and verifies the connection.
func DialRedis(ctx context.Context, addr, password string, db int, opts ...RedisOption) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("session: connect redis %s: %w", addr, err)
	}
	return NewRedisStore(client, opts...), nil
}

func (s *RedisStore) key(profile string) string {
	return s.prefix + profile
}

func (s *RedisStore) Load(ctx context.Context, profile string) (Session, error) {
	data, err := s.client.Get(ctx, s.key(profile)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("session: load %q: %w", profile, err)
	}
	var out Session
	if err := json.Unmarshal(data, &out); err != nil {
		return Session{}, fmt.Errorf("session: decode %q: %w", profile, err)
	}
	return out, nil
}

func (s *RedisStore) Save(ctx context.Context, profile string, session Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("session: encode %q: %w", profile, err)
	}
	if err := s.client.Set(ctx, s.key(profile), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: save %q: %w", profile, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, profile string) error {
	if err := s.client.Del(ctx, s.key(profile)).Err(); err != nil {
		return fmt.Errorf("session: delete %q: %w", profile, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
