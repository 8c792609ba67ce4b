package sequences

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKeyPrefix namespaces counter keys.
const DefaultRedisKeyPrefix = "roster:seq:"

// RedisStore keeps each counter in its own key and reserves with INCRBY,
// which Redis executes atomically.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

func NewRedisStore(client redis.Cmdable, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = DefaultRedisKeyPrefix
	}
	return &RedisStore{client: client, prefix: keyPrefix}
}

func (s *RedisStore) key(name string) string { return s.prefix + name }

func (s *RedisStore) Reserve(ctx context.Context, name string, incrementBy uint64) (uint64, error) {
	if err := checkIncrement(name, incrementBy); err != nil {
		return 0, err
	}

	last, err := s.client.IncrBy(ctx, s.key(name), int64(incrementBy)).Result()
	if err != nil {
		if strings.Contains(err.Error(), "overflow") {
			return 0, exhausted(name)
		}
		return 0, unavailable("reserve", name, err)
	}

	return uint64(last) - incrementBy + 1, nil
}

func (s *RedisStore) Current(ctx context.Context, name string) (uint64, error) {
	v, err := s.client.Get(ctx, s.key(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, unavailable("read", name, err)
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, unavailable("read", name, err)
	}
	return n, nil
}
