package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"employee/internal/models"

	redis "github.com/redis/go-redis/v9"
)

const keyPrefix = "employee:schema:"

// RedisSchemaCache keeps each owner's ordered field list in Redis as JSON.
// Every owner has a generation counter; entries are stored under the
// generation they were loaded in, so bumping the counter orphans them.
type RedisSchemaCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSchemaCache creates a cache whose entries expire after ttl.
func NewRedisSchemaCache(rdb *redis.Client, ttl time.Duration) *RedisSchemaCache {
	return &RedisSchemaCache{
		rdb: rdb,
		ttl: ttl,
	}
}

func generationKey(ownerID string) string {
	return keyPrefix + ownerID + ":generation"
}

func schemaKey(ownerID string, generation int64) string {
	return keyPrefix + ownerID + ":" + strconv.FormatInt(generation, 10)
}

// Generation returns the owner's current generation, 0 before the first
// invalidation.
func (c *RedisSchemaCache) Generation(ctx context.Context, ownerID string) (int64, error) {
	generation, err := c.rdb.Get(ctx, generationKey(ownerID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema generation of %s: %w", ownerID, err)
	}
	return generation, nil
}

// Get reports a miss with ok == false and a nil error.
func (c *RedisSchemaCache) Get(ctx context.Context, ownerID string, generation int64) ([]models.FormField, bool, error) {
	data, err := c.rdb.Get(ctx, schemaKey(ownerID, generation)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read schema of %s: %w", ownerID, err)
	}

	var fields []models.FormField
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, false, fmt.Errorf("failed to decode schema of %s: %w", ownerID, err)
	}
	return fields, true, nil
}

// Set stores fields for ownerID under generation.
func (c *RedisSchemaCache) Set(ctx context.Context, ownerID string, generation int64, fields []models.FormField) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode schema of %s: %w", ownerID, err)
	}
	if err := c.rdb.Set(ctx, schemaKey(ownerID, generation), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write schema of %s: %w", ownerID, err)
	}
	return nil
}

// Invalidate moves ownerID to a new generation and drops the entry of the
// previous one. Entries written later under an old generation are never read.
func (c *RedisSchemaCache) Invalidate(ctx context.Context, ownerID string) error {
	generation, err := c.rdb.Incr(ctx, generationKey(ownerID)).Result()
	if err != nil {
		return fmt.Errorf("failed to invalidate schema of %s: %w", ownerID, err)
	}
	if err := c.rdb.Del(ctx, schemaKey(ownerID, generation-1)).Err(); err != nil {
		return fmt.Errorf("failed to drop schema of %s: %w", ownerID, err)
	}
	return nil
}
