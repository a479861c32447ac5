package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Layr-Labs/eigenx-ccr-go/pkg/persistence"
	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Key prefixes for namespacing in Redis
const (
	keyPrefixEnvelope    = "ccr:envelope:"
	keySchemaVersion     = "ccr:metadata:schema_version"
	currentSchemaVersion = "v1"

	// Redis has no prefix iteration, so envelope hashes are also kept in a set
	keySetEnvelopes = "ccr:envelopes:index"
)

// RedisPersistence is an envelope journal shared through Redis.
type RedisPersistence struct {
	client    *redis.Client
	logger    *zap.Logger
	keyPrefix string
	mu        sync.RWMutex
	closed    bool
}

// RedisConfig holds the configuration for connecting to Redis
type RedisConfig struct {
	// Address is the Redis server address (host:port)
	Address string
	// Password is the optional Redis password
	Password string
	// DB is the Redis database number (0-15)
	DB int
	// KeyPrefix is prepended to every key, e.g. "tenant1:" gives
	// "tenant1:ccr:envelope:0x..". Empty means keys start at "ccr:".
	KeyPrefix string
}

// NewRedisPersistence connects to Redis and validates the schema version.
func NewRedisPersistence(cfg *RedisConfig, logger *zap.Logger) (*RedisPersistence, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}

	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	rp := &RedisPersistence{
		client:    client,
		logger:    logger,
		keyPrefix: cfg.KeyPrefix,
	}

	if err := rp.initSchema(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Sugar().Infow("Redis persistence initialized", "address", cfg.Address, "db", cfg.DB, "key_prefix", cfg.KeyPrefix)

	return rp, nil
}

// prefixKey adds the custom key prefix (if configured) to a key
func (r *RedisPersistence) prefixKey(key string) string {
	if r.keyPrefix == "" {
		return key
	}
	return r.keyPrefix + key
}

func (r *RedisPersistence) envelopeKey(hash string) string {
	return r.prefixKey(keyPrefixEnvelope + hash)
}

// initSchema initializes or validates the schema version
func (r *RedisPersistence) initSchema(ctx context.Context) error {
	schemaKey := r.prefixKey(keySchemaVersion)

	existingVersion, err := r.client.Get(ctx, schemaKey).Result()
	if err == redis.Nil {
		return r.client.Set(ctx, schemaKey, currentSchemaVersion, 0).Err()
	}
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if existingVersion != currentSchemaVersion {
		return fmt.Errorf("unsupported schema version: %s (expected: %s)", existingVersion, currentSchemaVersion)
	}

	return nil
}

// SaveEnvelope persists an envelope and adds it to the index set
func (r *RedisPersistence) SaveEnvelope(envelope *persistence.StoredEnvelope) error {
	if envelope == nil {
		return fmt.Errorf("cannot save nil StoredEnvelope")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return fmt.Errorf("persistence layer is closed")
	}

	data, err := persistence.MarshalStoredEnvelope(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal StoredEnvelope: %w", err)
	}

	ctx := context.Background()
	hash := envelope.Hash.Hex()

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.envelopeKey(hash), data, 0)
	pipe.SAdd(ctx, r.prefixKey(keySetEnvelopes), hash)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save StoredEnvelope: %w", err)
	}
	return nil
}

// LoadEnvelope retrieves an envelope, returning nil when it doesn't exist
func (r *RedisPersistence) LoadEnvelope(hash common.Hash) (*persistence.StoredEnvelope, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, fmt.Errorf("persistence layer is closed")
	}

	data, err := r.client.Get(context.Background(), r.envelopeKey(hash.Hex())).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load StoredEnvelope: %w", err)
	}

	envelope, err := persistence.UnmarshalStoredEnvelope(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal StoredEnvelope: %w", err)
	}
	return envelope, nil
}

// ListEnvelopes returns all envelopes sorted by creation time
func (r *RedisPersistence) ListEnvelopes() ([]*persistence.StoredEnvelope, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, fmt.Errorf("persistence layer is closed")
	}

	ctx := context.Background()
	indexKey := r.prefixKey(keySetEnvelopes)

	hashes, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list StoredEnvelope hashes: %w", err)
	}

	envelopes := []*persistence.StoredEnvelope{}
	if len(hashes) == 0 {
		return envelopes, nil
	}

	keys := make([]string, len(hashes))
	for i, hash := range hashes {
		keys[i] = r.envelopeKey(hash)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch StoredEnvelopes: %w", err)
	}

	for i, val := range values {
		if val == nil {
			// indexed but missing, drop it from the index
			if err := r.client.SRem(ctx, indexKey, hashes[i]).Err(); err != nil {
				r.logger.Sugar().Warnw("Failed to drop stale index entry", "hash", hashes[i], "error", err)
			}
			continue
		}

		data, ok := val.(string)
		if !ok {
			r.logger.Sugar().Warnw("Unexpected value type for StoredEnvelope", "key", keys[i])
			continue
		}

		envelope, err := persistence.UnmarshalStoredEnvelope([]byte(data))
		if err != nil {
			r.logger.Sugar().Warnw("Failed to unmarshal StoredEnvelope, skipping",
				"key", keys[i], "error", err)
			continue
		}

		envelopes = append(envelopes, envelope)
	}

	persistence.SortEnvelopes(envelopes)
	return envelopes, nil
}

// DeleteEnvelope removes an envelope; deleting a missing hash is not an error
func (r *RedisPersistence) DeleteEnvelope(hash common.Hash) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return fmt.Errorf("persistence layer is closed")
	}

	ctx := context.Background()

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.envelopeKey(hash.Hex()))
	pipe.SRem(ctx, r.prefixKey(keySetEnvelopes), hash.Hex())

	_, err := pipe.Exec(ctx)
	return err
}

// Close shuts down the persistence layer
func (r *RedisPersistence) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	if err := r.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis client: %w", err)
	}

	r.logger.Sugar().Info("Redis persistence closed")
	return nil
}

// HealthCheck pings Redis and checks the schema version is present
func (r *RedisPersistence) HealthCheck() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return fmt.Errorf("persistence layer is closed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}

	_, err := r.client.Get(ctx, r.prefixKey(keySchemaVersion)).Result()
	if err == redis.Nil {
		return fmt.Errorf("schema version not found - database may not be properly initialized")
	}
	if err != nil {
		return fmt.Errorf("failed to verify schema version: %w", err)
	}

	return nil
}
