package cache

import (
	"context"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "employee:schema:owner-a:generation", generationKey("owner-a"))
	assert.Equal(t, "employee:schema:owner-a:0", schemaKey("owner-a", 0))
	assert.Equal(t, "employee:schema:owner-a:12", schemaKey("owner-a", 12))
	assert.NotEqual(t, schemaKey("owner-a", 1), schemaKey("owner-a", 2))
}

func TestUnreachableRedisReturnsErrors(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()
	cache := NewRedisSchemaCache(rdb, time.Minute)
	ctx := context.Background()

	_, err := cache.Generation(ctx, "owner-a")
	assert.Error(t, err)

	fields, ok, err := cache.Get(ctx, "owner-a", 0)
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Nil(t, fields)

	assert.Error(t, cache.Set(ctx, "owner-a", 0, nil))
	assert.Error(t, cache.Invalidate(ctx, "owner-a"))
}
