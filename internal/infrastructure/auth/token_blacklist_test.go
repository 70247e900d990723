package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTokenStore_Blacklist(t *testing.T) {
	store := NewInMemoryTokenStore()
	ctx := context.Background()

	require.NoError(t, store.AddToBlacklist(ctx, "jti-1", time.Hour))

	revoked, err := store.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsBlacklisted(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenStore_BlacklistExpires(t *testing.T) {
	store := NewInMemoryTokenStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.AddToBlacklist(ctx, "jti", time.Minute))

	now = now.Add(2 * time.Minute)
	revoked, err := store.IsBlacklisted(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenStore_IgnoresExpiredTokens(t *testing.T) {
	store := NewInMemoryTokenStore()
	ctx := context.Background()

	require.NoError(t, store.AddToBlacklist(ctx, "jti", 0))

	revoked, err := store.IsBlacklisted(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenStore_Cooldown(t *testing.T) {
	store := NewInMemoryTokenStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	ok, err := store.Acquire(ctx, "otp:ada@example.com", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Acquire(ctx, "otp:ada@example.com", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire inside the window must fail")

	ok, err = store.Acquire(ctx, "otp:bob@example.com", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "keys are independent")

	now = now.Add(61 * time.Second)
	ok, err = store.Acquire(ctx, "otp:ada@example.com", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisTokenStore_Keys(t *testing.T) {
	store := NewRedisTokenStore(nil)
	assert.Equal(t, "stratos:auth:revoked:abc", store.jtiKey("abc"))
	assert.Equal(t, "stratos:auth:cooldown:otp:x", store.cooldownKey("otp:x"))
}
