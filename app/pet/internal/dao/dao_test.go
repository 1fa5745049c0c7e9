package dao

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/lk2023060901/petlink/app/pet/internal/model"
	"github.com/lk2023060901/petlink/pkg/database/postgres"
	"github.com/lk2023060901/petlink/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaDeclaresTables(t *testing.T) {
	for _, table := range []string{"pets", "shop_items", "inventory_items", "missions", "streaks", "daily_claims", "transactions", "activities"} {
		assert.Contains(t, Schema(), "CREATE TABLE IF NOT EXISTS "+table+" ")
	}
}

func TestBuildQuery(t *testing.T) {
	query, args, err := buildQuery(squirrel.
		Select("id").
		From("missions").
		Where(squirrel.Eq{"user_id": "u1"}).
		PlaceholderFormat(squirrel.Dollar))
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM missions WHERE user_id = $1", query)
	assert.Equal(t, []any{"u1"}, args)

	// 没有 SET 子句的 UPDATE 无法生成
	_, _, err = buildQuery(squirrel.Update("pets").Where(squirrel.Eq{"user_id": "u1"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to build query")
}

func testDB(t *testing.T) *postgres.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	host := os.Getenv("PETLINK_TEST_PG_HOST")
	if host == "" {
		t.Skip("PETLINK_TEST_PG_HOST not set")
	}
	cfg := postgres.DefaultConfig()
	cfg.Host = host
	if user := os.Getenv("PETLINK_TEST_PG_USER"); user != "" {
		cfg.User = user
	}
	cfg.Password = os.Getenv("PETLINK_TEST_PG_PASSWORD")
	db, err := postgres.New(cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, Migrate(context.Background(), db))
	return db
}

func testPet(userID string, now time.Time) *model.Pet {
	pet := model.NewPet(userID, now)
	pet.XPToNext = 100
	pet.DailyCoinBonus = 1
	pet.Version = 1
	return pet
}

func TestPetDAOVersionedUpdate(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	d := NewPetDAO(logger.NewNoop(), nil)
	now := time.Now().UTC().Truncate(time.Microsecond)
	userID := "dao-" + uuid.NewString()

	_, err := d.Get(ctx, db, userID)
	assert.True(t, errors.Is(err, model.ErrNotFound))

	pet := testPet(userID, now)
	inserted, err := d.Insert(ctx, db, pet)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = d.Insert(ctx, db, testPet(userID, now))
	require.NoError(t, err)
	assert.False(t, inserted)

	pet.CoinBalance = 42
	pet.Version = 2
	n, err := d.Update(ctx, db, pet, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = d.Update(ctx, db, pet, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	got, err := d.Get(ctx, db, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.CoinBalance)
	assert.Equal(t, int64(2), got.Version)
	assert.Equal(t, model.StageBaby, got.Stage)
}

func TestInventoryDAOAdjust(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	d := NewInventoryDAO(logger.NewNoop(), nil)
	now := time.Now().UTC()
	userID := "dao-" + uuid.NewString()

	item, err := d.Adjust(ctx, db, userID, "kibble", 2, now)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)

	_, err = d.Adjust(ctx, db, userID, "kibble", -3, now)
	assert.True(t, errors.Is(err, model.ErrItemNotAvailable))

	item, err = d.Adjust(ctx, db, userID, "kibble", -2, now)
	require.NoError(t, err)
	assert.Nil(t, item)

	items, err := d.List(ctx, db, userID)
	require.NoError(t, err)
	assert.Empty(t, items)

	err = d.SetEquipped(ctx, db, userID, "kibble", true, now)
	assert.True(t, errors.Is(err, model.ErrItemNotAvailable))
}

func TestMissionDAOProgressAndClaim(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	d := NewMissionDAO(logger.NewNoop(), nil)
	now := time.Now().UTC()
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	userID := "dao-" + uuid.NewString()

	m := &model.Mission{
		ID: uuid.NewString(), UserID: userID, TemplateID: "feed_3", Type: model.ActionFeed,
		Title: "Feed", TargetCount: 3, RewardCoins: 10, RewardXP: 20, AssignedDate: day, CreatedAt: now,
	}
	require.NoError(t, d.InsertIgnore(ctx, db, []*model.Mission{m}))
	require.NoError(t, d.InsertIgnore(ctx, db, []*model.Mission{m}))

	_, err := d.Claim(ctx, db, userID, m.ID)
	assert.True(t, errors.Is(err, model.ErrNotCompleted))

	updated, err := d.IncrementProgress(ctx, db, userID, day, model.ActionFeed, 5)
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, 3, updated[0].Progress)
	assert.True(t, updated[0].Completed)

	claimed, err := d.Claim(ctx, db, userID, m.ID)
	require.NoError(t, err)
	assert.True(t, claimed.RewardClaimed)

	_, err = d.Claim(ctx, db, userID, m.ID)
	assert.True(t, errors.Is(err, model.ErrAlreadyClaimed))

	list, err := d.List(ctx, db, userID, day)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, day, list[0].AssignedDate)
}

func TestStreakDAOClaimOncePerDay(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	d := NewStreakDAO(logger.NewNoop(), nil)
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	userID := "dao-" + uuid.NewString()

	_, err := d.Get(ctx, db, userID)
	assert.True(t, errors.Is(err, model.ErrNotFound))

	s := &model.Streak{UserID: userID, CurrentStreak: 1, LongestStreak: 1, UpdatedAt: time.Now().UTC()}
	require.NoError(t, d.Claim(ctx, db, day, s))

	err = d.Claim(ctx, db, day, s)
	assert.True(t, errors.Is(err, model.ErrAlreadyClaimedToday))

	got, err := d.Get(ctx, db, userID)
	require.NoError(t, err)
	assert.Equal(t, day, got.LastClaimDate)
	assert.Equal(t, 1, got.CurrentStreak)
}
