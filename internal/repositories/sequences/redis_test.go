package sequences

import (
	"context"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/lettucedream/roster/internal/common"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ""), mr
}

func TestRedisReserve(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	first, err := store.Reserve(ctx, "users", 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first)

	first, err = store.Reserve(ctx, "users", 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), first)

	v, err := mr.Get(DefaultRedisKeyPrefix + "users")
	require.NoError(t, err)
	assert.Equal(t, "11", v)

	cur, err := store.Current(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, uint64(11), cur)
}

func TestRedisReserve_CustomPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisStore(client, "test:")
	_, err := store.Reserve(context.Background(), "users", 1)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:users"))
}

func TestRedisReserve_Concurrent(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	const callers = 50
	seen := make([]uint64, callers)

	var g errgroup.Group
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			n, err := store.Reserve(ctx, "users", 3)
			seen[i] = n
			return err
		})
	}
	require.NoError(t, g.Wait())

	uniq := map[uint64]bool{}
	for _, n := range seen {
		assert.Equal(t, uint64(1), n%3, "blocks start on 1 mod 3")
		uniq[n] = true
	}
	assert.Len(t, uniq, callers)
}

func TestRedisReserve_Overflow(t *testing.T) {
	store, mr := newRedisStore(t)
	require.NoError(t, mr.Set(DefaultRedisKeyPrefix+"users", strconv.FormatInt(maxCounter-1, 10)))

	_, err := store.Reserve(context.Background(), "users", 5)
	require.ErrorIs(t, err, common.ErrInvalidSequence)

	v, _ := mr.Get(DefaultRedisKeyPrefix + "users")
	assert.Equal(t, strconv.FormatInt(maxCounter-1, 10), v)
}

func TestRedisReserve_Unavailable(t *testing.T) {
	store, mr := newRedisStore(t)
	mr.SetError("ERR backend down")

	_, err := store.Reserve(context.Background(), "users", 1)
	require.ErrorIs(t, err, common.ErrStoreUnavailable)

	_, err = store.Current(context.Background(), "users")
	require.ErrorIs(t, err, common.ErrStoreUnavailable)
}

func TestRedisCurrent(t *testing.T) {
	store, mr := newRedisStore(t)

	cur, err := store.Current(context.Background(), "users")
	require.NoError(t, err)
	assert.Zero(t, cur)

	require.NoError(t, mr.Set(DefaultRedisKeyPrefix+"users", "not-a-number"))
	_, err = store.Current(context.Background(), "users")
	require.ErrorIs(t, err, common.ErrStoreUnavailable)
}
