package wishlist

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shubhavasar/storefront-backend/pkg/db/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.New(log.New(io.Discard, "", 0), gormlogger.Config{LogLevel: gormlogger.Silent}),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.WishlistItem{}))
	return conn
}

func TestAddIsIdempotent(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()
	productID := uuid.New()

	require.NoError(t, repo.Add(ctx, "user-1", productID))
	require.NoError(t, repo.Add(ctx, "user-1", productID))

	ids, err := repo.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, productID, ids[0])
}

func TestRemove(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()
	productID := uuid.New()

	require.NoError(t, repo.Add(ctx, "user-1", productID))
	require.NoError(t, repo.Remove(ctx, "user-1", productID))
	// Absent entries are fine too.
	require.NoError(t, repo.Remove(ctx, "user-1", productID))

	ids, err := repo.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestListIsScopedToUser(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	mine := uuid.New()
	theirs := uuid.New()
	require.NoError(t, repo.Add(ctx, "user-1", mine))
	require.NoError(t, repo.Add(ctx, "user-2", theirs))

	ids, err := repo.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, mine, ids[0])
}
