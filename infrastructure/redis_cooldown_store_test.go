package infrastructure

import (
	"context"
	"testing"
	"time"

	"overbank/models"
	"overbank/service"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestRedisCooldownStore_GetSet(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisCooldownStore(client)
	now := time.UnixMilli(1_700_000_000_000)
	store.now = func() time.Time { return now }
	ctx := context.Background()
	key := models.ActionCooldown("work", 1, 2)

	entry, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, entry)

	require.NoError(t, store.Set(ctx, key, now.Add(5*time.Minute)))

	entry, err = store.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.True(t, now.Add(5*time.Minute).Equal(entry.ExpiresAt))
	assert.Equal(t, 5*time.Minute, mr.TTL("overbank:cooldown:1:2:action:work"))

	mr.FastForward(5 * time.Minute)
	entry, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestRedisCooldownStore_KeysAreIndependent(t *testing.T) {
	_, client := setupTestRedis(t)
	store := NewRedisCooldownStore(client)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, models.ActionCooldown("rob", 1, 2), time.Now().Add(time.Minute)))

	for _, key := range []models.CooldownKey{
		models.CommandCooldown("rob", 1, 2),
		models.ActionCooldown("rob", 1, 3),
		models.ActionCooldown("rob", 9, 2),
		models.ActionCooldown("work", 1, 2),
	} {
		entry, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, entry, key.String())
	}
}

func TestRedisCooldownStore_PastExpiryClears(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisCooldownStore(client)
	ctx := context.Background()
	key := models.ActionCooldown("search", 1, 2)

	require.NoError(t, store.Set(ctx, key, time.Now().Add(time.Minute)))
	require.NoError(t, store.Set(ctx, key, time.Now().Add(-time.Second)))

	assert.False(t, mr.Exists(redisCooldownKey(key)))
}

func TestRedisCooldownStore_BacksCooldownService(t *testing.T) {
	_, client := setupTestRedis(t)
	cooldowns := service.NewCooldownService(NewRedisCooldownStore(client))
	ctx := context.Background()
	key := models.CommandCooldown("balance", 1, 2)

	require.NoError(t, cooldowns.Acquire(ctx, key, 10*time.Second))

	err := cooldowns.Acquire(ctx, key, 10*time.Second)
	var cooldownErr *service.CooldownError
	require.ErrorAs(t, err, &cooldownErr)
	assert.Equal(t, "balance", cooldownErr.Action)
	assert.LessOrEqual(t, cooldownErr.Remaining, 10*time.Second)
}

func TestRedisCooldownStore_CorruptValue(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisCooldownStore(client)
	key := models.ActionCooldown("work", 1, 2)
	require.NoError(t, mr.Set(redisCooldownKey(key), "soon"))

	_, err := store.Get(context.Background(), key)
	assert.Error(t, err)
}
