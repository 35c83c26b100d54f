package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rajangupta9/taskflow/config"
)

func TestMemoryRevoker(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	r := NewMemoryRevoker()
	r.now = func() time.Time { return now }

	require.NoError(t, r.Revoke(ctx, "jti-1", now.Add(time.Hour)))
	require.NoError(t, r.Revoke(ctx, "jti-old", now.Add(-time.Minute)))

	revoked, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, _ = r.IsRevoked(ctx, "jti-old")
	assert.False(t, revoked, "already expired tokens are not recorded")

	revoked, _ = r.IsRevoked(ctx, "unknown")
	assert.False(t, revoked)

	now = now.Add(2 * time.Hour)
	revoked, _ = r.IsRevoked(ctx, "jti-1")
	assert.False(t, revoked)

	// the next write sweeps expired entries
	require.NoError(t, r.Revoke(ctx, "jti-2", now.Add(time.Hour)))
	assert.Len(t, r.revoked, 1)
}

func TestNew(t *testing.T) {
	r, err := New(config.SessionsConfig{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryRevoker{}, r)

	r, err = New(config.SessionsConfig{Backend: "redis", RedisAddr: "localhost:6379"})
	require.NoError(t, err)
	assert.IsType(t, &RedisRevoker{}, r)
	assert.NoError(t, r.Close())

	_, err = New(config.SessionsConfig{Backend: "memcached"})
	assert.Error(t, err)
}
