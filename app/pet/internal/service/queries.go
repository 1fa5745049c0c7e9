package service

import (
	"context"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petlink/app/pet/internal/engine"
	"github.com/lk2023060901/petlink/app/pet/internal/model"
	"github.com/lk2023060901/petlink/app/pet/internal/repository"
)

// MissionView 今日任务列表
type MissionView struct {
	Day      string           `json:"day"`
	Missions []*model.Mission `json:"missions"`
}

// snapshot 读取只读快照，首次访问时创建宠物并生成当日任务
func (s *PetService) snapshot(ctx context.Context, userID string) (*repository.Snapshot, error) {
	day := s.engine.Day(s.clock())
	snap, err := s.gateway.Snapshot(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	if snap.Pet != nil && len(snap.Missions) > 0 {
		return snap, nil
	}

	if err := s.ensure(ctx, userID); err != nil {
		return nil, err
	}
	return s.gateway.Snapshot(ctx, userID, day)
}

// ensure 幂等地初始化用户聚合，不修改已存在的宠物
func (s *PetService) ensure(ctx context.Context, userID string) error {
	var err error
	for attempt := 0; attempt <= s.engine.Config().MaxRetries; attempt++ {
		err = s.gateway.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
			agg, err := s.loadAggregate(ctx, st, userID, s.clock())
			if err != nil {
				return err
			}
			if agg.Pet.Version == 0 {
				_, err = st.UpsertPet(ctx, agg.Pet)
			}
			return err
		})
		if !errors.Is(err, model.ErrConflict) {
			return err
		}
		// 并发首次创建，重读即可看到对方写入的宠物
		s.metrics.RecordConflict("ensure")
	}
	return err
}

// GetPet 读取宠物，属性补算到当前时刻但不落库
func (s *PetService) GetPet(ctx context.Context, userID string) (*model.Pet, error) {
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	pet := snap.Pet.Clone()
	s.engine.CatchUp(pet, s.clock())
	return pet, nil
}

// GetInventory 读取背包
func (s *PetService) GetInventory(ctx context.Context, userID string) ([]*model.InventoryItem, error) {
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	if snap.Inventory == nil {
		return []*model.InventoryItem{}, nil
	}
	return snap.Inventory, nil
}

// ListShop 按条件列出商品
func (s *PetService) ListShop(ctx context.Context, filter model.ShopFilter) ([]*model.ShopItem, error) {
	var items []*model.ShopItem
	err := s.gateway.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		var err error
		items, err = st.ListShopItems(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		return items, nil
	}

	// 商品表为空时使用配置表
	items = []*model.ShopItem{}
	for _, item := range s.engine.Tables().ShopItems {
		if filter.Match(item) {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Price != items[j].Price {
			return items[i].Price < items[j].Price
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

// GetMissions 今日任务，不存在时生成
func (s *PetService) GetMissions(ctx context.Context, userID string) (*MissionView, error) {
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &MissionView{
		Day:      s.engine.Day(s.clock()).Format("2006-01-02"),
		Missions: snap.Missions,
	}, nil
}

// GetStreak 查询签到状态
func (s *PetService) GetStreak(ctx context.Context, userID string) (engine.StreakStatus, error) {
	now := s.clock()
	snap, err := s.gateway.Snapshot(ctx, userID, s.engine.Day(now))
	if err != nil {
		return engine.StreakStatus{}, err
	}
	streak := snap.Streak
	if streak == nil {
		streak = &model.Streak{UserID: userID}
	}
	return s.engine.CheckStreak(streak, s.engine.Day(now)), nil
}

// Leaderboard 排行榜，缓存不可用时回源数据库
func (s *PetService) Leaderboard(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	if s.leaderboard != nil {
		entries, err := s.leaderboard.Top(ctx, limit)
		if err == nil && len(entries) > 0 {
			return entries, nil
		}
		if err != nil {
			s.logger.WarnContext(ctx, "leaderboard cache unavailable, falling back to database", "error", err)
		}
	}
	return s.TopByTotalXP(ctx, limit)
}

// TopByTotalXP 从数据库读取排行
func (s *PetService) TopByTotalXP(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	var entries []*model.LeaderboardEntry
	err := s.gateway.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		var err error
		entries, err = st.TopByTotalXP(ctx, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*model.LeaderboardEntry{}
	}
	return entries, nil
}

// Transactions 最近的金币流水
func (s *PetService) Transactions(ctx context.Context, userID string, limit int) ([]*model.Transaction, error) {
	var txs []*model.Transaction
	err := s.gateway.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		var err error
		txs, err = st.ListTransactions(ctx, userID, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []*model.Transaction{}
	}
	return txs, nil
}

// SyncCatalog 将配置表中的商品同步到存储
func (s *PetService) SyncCatalog(ctx context.Context) error {
	items := s.engine.Tables().ShopItems
	err := s.gateway.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		return st.UpsertShopItems(ctx, items)
	})
	if err != nil {
		return errors.Wrap(err, "sync shop catalog")
	}
	s.logger.Info("shop catalog synced", "items", len(items))
	return nil
}
