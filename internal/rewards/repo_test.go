package rewards

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/moh9765/dispatchly-backend/pkg/db/models"
	"github.com/moh9765/dispatchly-backend/pkg/enums"
)

func setupRewardsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	accounts := `
CREATE TABLE IF NOT EXISTS reward_accounts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  points INTEGER NOT NULL DEFAULT 0,
  level TEXT NOT NULL DEFAULT 'Bronze',
  total_spent NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	transactions := `
CREATE TABLE IF NOT EXISTS reward_transactions (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  points INTEGER NOT NULL,
  description TEXT NOT NULL,
  type TEXT NOT NULL,
  reference_id TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(accounts).Error)
	require.NoError(t, db.Exec(transactions).Error)
	return db
}

func TestAdjustPointsNegativeGuard(t *testing.T) {
	db := setupRewardsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	require.NoError(t, repo.EnsureAccount(ctx, userID))

	rows, err := repo.AdjustPoints(ctx, userID, 80)
	require.NoError(t, err)
	require.Equal(t, int64(1), rows)

	// would go to -20, so no row changes
	rows, err = repo.AdjustPoints(ctx, userID, -100)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	account, err := repo.FindByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 80, account.Points)

	// down to exactly zero is allowed
	rows, err = repo.AdjustPoints(ctx, userID, -80)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	account, err = repo.FindByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, account.Points)
}

func TestEnsureAccountKeepsExistingState(t *testing.T) {
	db := setupRewardsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	require.NoError(t, repo.EnsureAccount(ctx, userID))
	_, err := repo.AdjustPoints(ctx, userID, 250)
	require.NoError(t, err)
	require.NoError(t, repo.SetLevel(ctx, userID, enums.RewardLevelSilver))

	require.NoError(t, repo.EnsureAccount(ctx, userID))

	account, err := repo.FindByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 250, account.Points)
	assert.Equal(t, enums.RewardLevelSilver, account.Level)

	var count int64
	require.NoError(t, db.Model(&models.RewardAccount{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
