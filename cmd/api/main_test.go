package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"userhub/pkg/config"
)

func TestOpenProfileCache_Disabled(t *testing.T) {
	profileCache, closeCache := openProfileCache(context.Background(), &config.Config{})

	assert.Nil(t, profileCache)
	assert.NoError(t, closeCache())
}

func TestOpenProfileCache_UnreachableRedisRunsUncached(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	profileCache, closeCache := openProfileCache(ctx, &config.Config{
		RedisAddr:       "127.0.0.1:1",
		ProfileCacheTTL: time.Minute,
	})

	assert.Nil(t, profileCache)
	assert.NoError(t, closeCache())
}

func TestOpenStores_MemoryBackend(t *testing.T) {
	s, err := openStores(context.Background(), &config.Config{StorageBackend: config.BackendMemory})

	assert.NoError(t, err)
	assert.NoError(t, s.health.Ping(context.Background()))
	assert.NoError(t, s.close())
}
