package repository

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petlink/app/pet/internal/model"
	"github.com/lk2023060901/petlink/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	testDay = time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
)

func newTestGateway(t *testing.T) *MemoryGateway {
	t.Helper()
	return NewMemoryGateway(logger.NewNoop())
}

func seedPet(t *testing.T, g Gateway, userID string) *model.Pet {
	t.Helper()
	var saved *model.Pet
	err := g.WithinTx(context.Background(), func(ctx context.Context, s Store) (err error) {
		saved, err = s.UpsertPet(ctx, model.NewPet(userID, testNow))
		return err
	})
	require.NoError(t, err)
	return saved
}

func TestMemoryUpsertPetVersioning(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	err := g.WithinTx(ctx, func(ctx context.Context, s Store) error {
		_, err := s.GetPet(ctx, "u1")
		return err
	})
	assert.True(t, errors.Is(err, model.ErrNotFound))

	pet := seedPet(t, g, "u1")
	assert.Equal(t, int64(1), pet.Version)

	// 重复创建
	err = g.WithinTx(ctx, func(ctx context.Context, s Store) error {
		_, err := s.UpsertPet(ctx, model.NewPet("u1", testNow))
		return err
	})
	assert.True(t, errors.Is(err, model.ErrConflict))

	// 过期版本
	stale := pet.Clone()
	err = g.WithinTx(ctx, func(ctx context.Context, s Store) error {
		pet.CoinBalance = 10
		if _, err := s.UpsertPet(ctx, pet); err != nil {
			return err
		}
		_, err := s.UpsertPet(ctx, stale)
		return err
	})
	assert.True(t, errors.Is(err, model.ErrConflict))

	// 失败的事务不留下任何修改
	err = g.WithinTx(ctx, func(ctx context.Context, s Store) error {
		got, err := s.GetPet(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.Version)
		assert.Equal(t, int64(0), got.CoinBalance)
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryConcurrentCommitConflict(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()
	seedPet(t, g, "u1")

	firstLoaded := make(chan struct{})
	secondCommitted := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- g.WithinTx(ctx, func(ctx context.Context, s Store) error {
			pet, err := s.GetPet(ctx, "u1")
			if err != nil {
				return err
			}
			close(firstLoaded)
			<-secondCommitted
			pet.CoinBalance -= 5
			_, err = s.UpsertPet(ctx, pet)
			return err
		})
	}()

	<-firstLoaded
	err := g.WithinTx(ctx, func(ctx context.Context, s Store) error {
		pet, err := s.GetPet(ctx, "u1")
		if err != nil {
			return err
		}
		pet.CoinBalance += 100
		_, err = s.UpsertPet(ctx, pet)
		return err
	})
	require.NoError(t, err)
	close(secondCommitted)

	assert.True(t, errors.Is(<-done, model.ErrConflict))

	snap, err := g.Snapshot(ctx, "u1", testDay)
	require.NoError(t, err)
	assert.Equal(t, int64(100), snap.Pet.CoinBalance)
	assert.Equal(t, int64(2), snap.Pet.Version)
}

func TestMemoryInventory(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	err := g.WithinTx(ctx, func(ctx context.Context, s Store) error {
		item, err := s.AdjustInventory(ctx, "u1", "kibble", 2)
		require.NoError(t, err)
		assert.Equal(t, 2, item.Quantity)

		_, err = s.AdjustInventory(ctx, "u1", "kibble", -3)
		assert.True(t, errors.Is(err, model.ErrItemNotAvailable))

		require.NoError(t, s.SetEquipped(ctx, "u1", "kibble", true))
		assert.True(t, errors.Is(s.SetEquipped(ctx, "u1", "hat", true), model.ErrItemNotAvailable))

		item, err = s.AdjustInventory(ctx, "u1", "kibble", -2)
		require.NoError(t, err)
		assert.Nil(t, item)

		items, err := s.GetInventory(ctx, "u1")
		require.NoError(t, err)
		assert.Empty(t, items)
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryMissions(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()
	missions := []*model.Mission{
		{ID: "m-play", UserID: "u1", TemplateID: "play_3", Type: model.ActionPlay, TargetCount: 3, AssignedDate: testDay},
		{ID: "m-feed", UserID: "u1", TemplateID: "feed_3", Type: model.ActionFeed, TargetCount: 3, Progress: 2, AssignedDate: testDay},
	}

	err := g.WithinTx(ctx, func(ctx context.Context, s Store) error {
		got, err := s.GenerateDailyMissions(ctx, "u1", testDay, missions)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "feed_3", got[0].TemplateID)

		// 重复生成不会覆盖进度
		again := []*model.Mission{{ID: "other", UserID: "u1", TemplateID: "feed_3", Type: model.ActionFeed, TargetCount: 3, AssignedDate: testDay}}
		got, err = s.GenerateDailyMissions(ctx, "u1", testDay, again)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, 2, got[0].Progress)

		_, err = s.ClaimMissionReward(ctx, "u1", "m-feed")
		assert.True(t, errors.Is(err, model.ErrNotCompleted))

		updated, err := s.UpdateMissionProgress(ctx, "u1", testDay, model.ActionFeed, 4)
		require.NoError(t, err)
		require.Len(t, updated, 1)
		assert.Equal(t, 3, updated[0].Progress)
		assert.True(t, updated[0].Completed)

		updated, err = s.UpdateMissionProgress(ctx, "u1", testDay, model.ActionFeed, 1)
		require.NoError(t, err)
		assert.Empty(t, updated)

		claimed, err := s.ClaimMissionReward(ctx, "u1", "m-feed")
		require.NoError(t, err)
		assert.True(t, claimed.RewardClaimed)

		_, err = s.ClaimMissionReward(ctx, "u1", "m-feed")
		assert.True(t, errors.Is(err, model.ErrAlreadyClaimed))

		_, err = s.ClaimMissionReward(ctx, "u1", "missing")
		assert.True(t, errors.Is(err, model.ErrNotFound))

		other, err := s.ListMissions(ctx, "u1", testDay.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.Empty(t, other)

		// 按 id 读取不受日期限制
		m, err := s.GetMission(ctx, "u1", "m-feed")
		require.NoError(t, err)
		assert.True(t, m.RewardClaimed)
		_, err = s.GetMission(ctx, "u2", "m-feed")
		assert.True(t, errors.Is(err, model.ErrNotFound))
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryDailyClaim(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()
	streak := &model.Streak{CurrentStreak: 1, LongestStreak: 1, UpdatedAt: testNow}

	claim := func() error {
		return g.WithinTx(ctx, func(ctx context.Context, s Store) error {
			return s.ClaimDailyReward(ctx, "u1", testDay, streak)
		})
	}
	require.NoError(t, claim())
	assert.True(t, errors.Is(claim(), model.ErrAlreadyClaimedToday))

	err := g.WithinTx(ctx, func(ctx context.Context, s Store) error {
		got, err := s.GetStreak(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, testDay, got.LastClaimDate)
		assert.Equal(t, "u1", got.UserID)
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryLedgerAndLeaderboard(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	for i, user := range []string{"u1", "u2", "u3"} {
		err := g.WithinTx(ctx, func(ctx context.Context, s Store) error {
			pet := model.NewPet(user, testNow)
			pet.TotalXP = int64((i + 1) * 100)
			_, err := s.UpsertPet(ctx, pet)
			return err
		})
		require.NoError(t, err)
	}

	err := g.WithinTx(ctx, func(ctx context.Context, s Store) error {
		for i := 1; i <= 3; i++ {
			tx := model.NewTransaction("u1", model.TxEarn, int64(i), "gift", int64(i), testNow.Add(time.Duration(i)*time.Minute))
			require.NoError(t, s.RecordTransaction(ctx, tx))
		}
		return s.RecordActivity(ctx, model.NewActivity("u1", model.ActionFeed, "", testNow))
	})
	require.NoError(t, err)

	err = g.WithinTx(ctx, func(ctx context.Context, s Store) error {
		txs, err := s.ListTransactions(ctx, "u1", 2)
		require.NoError(t, err)
		require.Len(t, txs, 2)
		assert.Equal(t, int64(3), txs[0].Amount)
		assert.Equal(t, int64(2), txs[1].Amount)

		top, err := s.TopByTotalXP(ctx, 2)
		require.NoError(t, err)
		require.Len(t, top, 2)
		assert.Equal(t, "u3", top[0].UserID)
		assert.Equal(t, int64(1), top[0].Rank)
		assert.Equal(t, "u2", top[1].UserID)
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryShopCatalog(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()
	items := []*model.ShopItem{
		{ID: "b", Category: "food", Price: 5, Available: true},
		{ID: "a", Category: "food", Price: 5, Available: false},
		{ID: "c", Category: "toy", Price: 1, Available: true},
	}
	require.NoError(t, g.WithinTx(ctx, func(ctx context.Context, s Store) error {
		return s.UpsertShopItems(ctx, items)
	}))

	err := g.WithinTx(ctx, func(ctx context.Context, s Store) error {
		all, err := s.ListShopItems(ctx, model.ShopFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{"c", "a", "b"}, []string{all[0].ID, all[1].ID, all[2].ID})

		food, err := s.ListShopItems(ctx, model.ShopFilter{Category: "food", AvailableOnly: true})
		require.NoError(t, err)
		require.Len(t, food, 1)
		assert.Equal(t, "b", food[0].ID)
		return nil
	})
	require.NoError(t, err)
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))
	assert.True(t, errors.Is(classify(model.Validationf("bad")), model.ErrValidation))
	assert.True(t, errors.Is(classify(errors.New("connection reset")), model.ErrPersistence))
	assert.True(t, errors.Is(classify(context.Canceled), context.Canceled))
	assert.False(t, errors.Is(classify(context.Canceled), model.ErrPersistence))
}
