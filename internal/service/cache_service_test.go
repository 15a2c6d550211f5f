package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/fieldlab-api/internal/models"
)

func TestCacheServiceRoundTripAndInvalidate(t *testing.T) {
	backend := newMemCache()
	cache := newTestCache(backend)
	ctx := context.Background()

	status := models.LabStatusPending
	key := sampleListKey(models.SampleFilter{LabStatus: &status, Limit: 20})
	assert.Equal(t, "samples:pending::20:0", key)

	var out sampleList
	assert.False(t, cache.Get(ctx, key, &out))
	cache.Set(ctx, key, sampleList{Total: 3}, time.Minute)
	cache.Set(ctx, accountStatusKey("u1"), models.AccountStatus{IsApproved: true}, 0)
	assert.True(t, cache.Get(ctx, key, &out))
	assert.Equal(t, 3, out.Total)

	cache.Invalidate(ctx, sampleListKeyPrefix+"*")
	assert.False(t, backend.has(key))
	assert.True(t, backend.has(accountStatusKey("u1")))
}

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	backend := newMemCache()
	ctx := context.Background()

	for _, cache := range []*CacheService{nil, NewCacheService(backend, nil, 0, nil, false), NewCacheService(nil, nil, 0, nil, true)} {
		cache.Set(ctx, "k", 1, time.Minute)
		var v int
		assert.False(t, cache.Get(ctx, "k", &v))
		cache.Delete(ctx, "k")
		cache.Invalidate(ctx, "*")
	}
	assert.Empty(t, backend.data)
}
