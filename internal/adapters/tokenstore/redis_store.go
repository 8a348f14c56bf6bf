package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kevin07696/vanco-gateway/internal/adapters/ports"
	"github.com/kevin07696/vanco-gateway/internal/domain"
)

// DefaultRedisKey holds the shared session token
const DefaultRedisKey = "vanco:session_token"

// RedisClient is the subset of *redis.Client the store uses
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// redisStore shares one token between every host pointed at the same Redis.
// The key expires with the TTL, but validity is still checked against obtained_at.
type redisStore struct {
	client RedisClient
	key    string
	policy policy
	logger *zap.Logger
}

// NewRedisStore creates a Redis-backed TokenStore
func NewRedisStore(client RedisClient, key string, logger *zap.Logger, opts ...Option) ports.TokenStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &redisStore{
		client: client,
		key:    key,
		policy: newPolicy("redis", opts),
		logger: logger,
	}
}

func (s *redisStore) Get(ctx context.Context) (*domain.SessionToken, bool) {
	payload, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		s.policy.miss(missNotFound)
		return nil, false
	}
	if err != nil {
		s.policy.miss(missError)
		s.logger.Warn("Failed to read session token from Redis, forcing login",
			zap.String("key", s.key),
			zap.Error(err),
		)
		return nil, false
	}

	token, err := decodeToken(payload)
	if err != nil {
		s.policy.miss(missError)
		s.logger.Warn("Session token in Redis is corrupt, forcing login",
			zap.String("key", s.key),
			zap.Error(err),
		)
		return nil, false
	}

	if !s.policy.accept(token) {
		return nil, false
	}
	return token, true
}

func (s *redisStore) Put(ctx context.Context, value string) (*domain.SessionToken, error) {
	token := s.policy.issue(value)

	payload, err := encodeToken(token)
	if err != nil {
		s.policy.wrote(err)
		return nil, fmt.Errorf("failed to encode session token: %w", err)
	}

	err = s.client.Set(ctx, s.key, payload, s.policy.ttl).Err()
	s.policy.wrote(err)
	if err != nil {
		return nil, fmt.Errorf("failed to store session token in Redis: %w", err)
	}

	s.logger.Debug("Stored session token in Redis",
		zap.String("key", s.key),
		zap.Time("obtained_at", token.ObtainedAt),
	)
	return token, nil
}
