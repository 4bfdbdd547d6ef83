package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/documind-api/internal/config"
)

type testStruct struct {
	Name string
	Age  int
}

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cache, err := InitServer(context.Background(), config.Redis{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestSetAndGet(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	expected := testStruct{Name: "Alice", Age: 30}
	require.NoError(t, cache.Set(ctx, "user:1", expected, time.Minute))

	var actual testStruct
	found, err := cache.Get(ctx, "user:1", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected, actual)
}

func TestGetNotFound(t *testing.T) {
	cache, _ := setupTestCache(t)

	var out testStruct
	found, err := cache.Get(context.Background(), "no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSetExpires(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "stats", testStruct{Name: "x"}, time.Minute))
	mr.FastForward(2 * time.Minute)

	var out testStruct
	found, err := cache.Get(ctx, "stats", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", "value", time.Minute))
	require.NoError(t, cache.Invalidate(ctx, "key"))

	var out string
	found, err := cache.Get(ctx, "key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetInvalidJSON(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Db.Set(ctx, "bad", []byte("not-json"), time.Minute).Err())

	var out testStruct
	found, err := cache.Get(ctx, "bad", &out)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestAllow_FixedWindow(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ok, err := cache.Allow(ctx, "rl:contact:1.2.3.4", 5, 15*time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "request %d should pass", i+1)
	}

	ok, err := cache.Allow(ctx, "rl:contact:1.2.3.4", 5, 15*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = cache.Allow(ctx, "rl:contact:5.6.7.8", 5, 15*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "other keys are independent")

	mr.FastForward(16 * time.Minute)
	ok, err = cache.Allow(ctx, "rl:contact:1.2.3.4", 5, 15*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "window resets after expiry")
}

func TestAllow_RestoresMissingTTL(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	// счётчик остался без срока жизни
	require.NoError(t, mr.Set("rl:contact:1.2.3.4", "7"))
	require.Zero(t, mr.TTL("rl:contact:1.2.3.4"))

	ok, err := cache.Allow(ctx, "rl:contact:1.2.3.4", 5, 15*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 15*time.Minute, mr.TTL("rl:contact:1.2.3.4"))

	mr.FastForward(16 * time.Minute)
	ok, err = cache.Allow(ctx, "rl:contact:1.2.3.4", 5, 15*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAllow_KeepsExistingTTL(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	_, err := cache.Allow(ctx, "rl:api:1.2.3.4", 100, 15*time.Minute)
	require.NoError(t, err)
	mr.FastForward(10 * time.Minute)

	_, err = cache.Allow(ctx, "rl:api:1.2.3.4", 100, 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, mr.TTL("rl:api:1.2.3.4"))
}

func TestInitServer_Unreachable(t *testing.T) {
	_, err := InitServer(context.Background(), config.Redis{Address: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	var c Noop
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", 1, time.Minute))
	found, err := c.Get(ctx, "k", new(int))
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, c.Invalidate(ctx, "k"))
}
