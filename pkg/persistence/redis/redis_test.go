package redis

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Layr-Labs/eigenx-ccr-go/pkg/persistence"
	"github.com/Layr-Labs/eigenx-ccr-go/pkg/persistence/persistenceTest"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// getTestRedisAddress returns REDIS_TEST_ADDRESS, or localhost:6379.
func getTestRedisAddress() string {
	if addr := os.Getenv("REDIS_TEST_ADDRESS"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

var prefixCounter atomic.Uint64

// testConfig returns a config with a key prefix unique to the test, skipping the
// test when no Redis server is reachable. Keys under the prefix are removed when
// the test ends.
func testConfig(t *testing.T) *RedisConfig {
	t.Helper()

	cfg := &RedisConfig{
		Address:   getTestRedisAddress(),
		DB:        15,
		KeyPrefix: fmt.Sprintf("test:%d:%d:", time.Now().UnixNano(), prefixCounter.Add(1)),
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.Address, DB: cfg.DB})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Redis not available at %s: %v", cfg.Address, err)
	}

	t.Cleanup(func() {
		defer func() { _ = client.Close() }()
		ctx := context.Background()
		iter := client.Scan(ctx, 0, cfg.KeyPrefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			client.Del(ctx, iter.Val())
		}
	})

	return cfg
}

func TestRedisPersistence(t *testing.T) {
	persistenceTest.RunSuite(t, func(t *testing.T) persistence.IEnvelopePersistence {
		rp, err := NewRedisPersistence(testConfig(t), zaptest.NewLogger(t))
		require.NoError(t, err)
		return rp
	})
}

func TestRedisPersistence_InvalidConfig(t *testing.T) {
	_, err := NewRedisPersistence(nil, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config cannot be nil")

	_, err = NewRedisPersistence(&RedisConfig{}, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address cannot be empty")
}

func TestRedisPersistence_KeyPrefixIsolation(t *testing.T) {
	cfgA := testConfig(t)
	cfgB := testConfig(t)
	require.NotEqual(t, cfgA.KeyPrefix, cfgB.KeyPrefix)

	a, err := NewRedisPersistence(cfgA, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	b, err := NewRedisPersistence(cfgB, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	se := persistenceTest.NewTestEnvelope(t, 1, 1000)
	require.NoError(t, a.SaveEnvelope(se))

	loaded, err := b.LoadEnvelope(se.Hash)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	listed, err := b.ListEnvelopes()
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestRedisPersistence_ListDropsStaleIndexEntries(t *testing.T) {
	cfg := testConfig(t)
	rp, err := NewRedisPersistence(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer func() { _ = rp.Close() }()

	se := persistenceTest.NewTestEnvelope(t, 1, 1000)
	require.NoError(t, rp.SaveEnvelope(se))

	ctx := context.Background()
	require.NoError(t, rp.client.Del(ctx, rp.envelopeKey(se.Hash.Hex())).Err())

	listed, err := rp.ListEnvelopes()
	require.NoError(t, err)
	assert.Empty(t, listed)

	isMember, err := rp.client.SIsMember(ctx, rp.prefixKey(keySetEnvelopes), se.Hash.Hex()).Result()
	require.NoError(t, err)
	assert.False(t, isMember)
}
