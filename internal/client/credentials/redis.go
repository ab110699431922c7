package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisKey = "mcpanel:credential:token"

type redisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	now    func() time.Time
}

// NewRedis keeps the credential under a single redis key whose TTL is the
// credential lifetime, so every terminal pointed at the same redis shares
// one session.
func NewRedis(ctx context.Context, cfg RedisConfig, ttl time.Duration) (Store, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	key := cfg.Key
	if key == "" {
		key = defaultRedisKey
	}
	return &redisStore{client: client, key: key, ttl: ttl, now: time.Now}, nil
}

func (s *redisStore) Get(ctx context.Context) (*Credential, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credential: %w", err)
	}

	var c Credential
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode credential: %w", err)
	}
	if c.Expired(s.now()) {
		return nil, nil
	}
	return &c, nil
}

func (s *redisStore) Set(ctx context.Context, c Credential) error {
	now := s.now()
	c = prepare(c, now, s.ttl)

	life := c.ExpiresAt.Sub(now)
	if life <= 0 {
		return s.Clear(ctx)
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, life).Err(); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}
	return nil
}

func (s *redisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
