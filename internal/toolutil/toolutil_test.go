package toolutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_playlist/internal/engine"
)

type payload struct {
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

func TestCacheRoundTrip(t *testing.T) {
	engine.InitCache("", time.Minute, 100, time.Minute)
	ctx := context.Background()

	key := engine.CacheKey("test", "roundtrip")
	_, ok := CacheLoadJSON[payload](ctx, key)
	assert.False(t, ok, "cold cache should miss")

	CacheStoreJSON(ctx, key, "go tutorial", payload{Title: "Go Full Course", Score: 8.4})

	got, ok := CacheLoadJSON[payload](ctx, key)
	require.True(t, ok, "expected cache hit after store")
	assert.Equal(t, "Go Full Course", got.Title)
	assert.InDelta(t, 8.4, got.Score, 1e-9)
}

func TestCacheLoadWrongShape(t *testing.T) {
	engine.InitCache("", time.Minute, 100, time.Minute)
	ctx := context.Background()

	key := engine.CacheKey("test", "wrongshape")
	engine.CacheSet(ctx, key, engine.CachedResult{Query: "q", Answer: "not json"})

	_, ok := CacheLoadJSON[payload](ctx, key)
	assert.False(t, ok, "undecodable payload must read as a miss")
}
