package repository

import (
	"context"
	"testing"
	"time"

	"campdir/internal/cache"
	"campdir/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTestCache(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })
}

func TestUserGetByIDCacheKeepsCredentials(t *testing.T) {
	db := setupTestDB(t)
	withTestCache(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	expire := time.Now().Add(10 * time.Minute).Truncate(time.Second)
	user := &models.User{
		Name:                "Cached",
		Email:               "cached@example.com",
		Password:            "$2a$10$fakehashfakehashfakehash",
		Role:                models.RoleUser,
		ResetPasswordToken:  "deadbeef",
		ResetPasswordExpire: &expire,
	}
	require.NoError(t, repo.Create(ctx, user))

	// First read populates the cache, second is served from it. The hidden
	// credential fields must survive the round trip.
	first, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Password, first.Password)

	second, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Password, second.Password)
	assert.Equal(t, "deadbeef", second.ResetPasswordToken)
	require.NotNil(t, second.ResetPasswordExpire)
	assert.WithinDuration(t, expire, *second.ResetPasswordExpire, time.Second)
	assert.Equal(t, models.RoleUser, second.Role)
	assert.Equal(t, "cached@example.com", second.Email)
}

func TestUserUpdateInvalidatesCache(t *testing.T) {
	db := setupTestDB(t)
	withTestCache(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{
		Name:     "Before",
		Email:    "invalidate@example.com",
		Password: "hash",
		Role:     models.RoleUser,
	}
	require.NoError(t, repo.Create(ctx, user))

	loaded, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	loaded.Name = "After"
	require.NoError(t, repo.Update(ctx, loaded))

	fresh, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", fresh.Name)
	assert.Equal(t, "hash", fresh.Password)
}
