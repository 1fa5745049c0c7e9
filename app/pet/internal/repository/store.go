package repository

import (
	"context"
	"time"

	"github.com/lk2023060901/petlink/app/pet/internal/model"
)

// Store 单个工作单元内的持久化操作，只能在 Gateway.WithinTx 中获得
type Store interface {
	// ===== 宠物 =====
	// GetPet 不存在返回 model.ErrNotFound
	GetPet(ctx context.Context, userID string) (*model.Pet, error)
	// UpsertPet 版本号为 0 时插入，否则按版本号条件更新，版本不符返回 model.ErrConflict
	UpsertPet(ctx context.Context, pet *model.Pet) (*model.Pet, error)

	// ===== 背包与商店 =====
	GetInventory(ctx context.Context, userID string) ([]*model.InventoryItem, error)
	// AdjustInventory 数量归零时删除并返回 nil，不足时返回 model.ErrItemNotAvailable
	AdjustInventory(ctx context.Context, userID, itemID string, delta int) (*model.InventoryItem, error)
	SetEquipped(ctx context.Context, userID, itemID string, equipped bool) error
	ListShopItems(ctx context.Context, filter model.ShopFilter) ([]*model.ShopItem, error)
	UpsertShopItems(ctx context.Context, items []*model.ShopItem) error

	// ===== 每日任务 =====
	// GenerateDailyMissions 幂等写入，返回当天全部任务
	GenerateDailyMissions(ctx context.Context, userID string, day time.Time, missions []*model.Mission) ([]*model.Mission, error)
	ListMissions(ctx context.Context, userID string, day time.Time) ([]*model.Mission, error)
	// UpdateMissionProgress 原子推进并封顶，返回本次被推进的任务
	UpdateMissionProgress(ctx context.Context, userID string, day time.Time, action model.ActionType, increment int) ([]*model.Mission, error)
	// GetMission 按 id 获取任务，不限日期，不存在返回 model.ErrNotFound
	GetMission(ctx context.Context, userID, missionID string) (*model.Mission, error)
	// ClaimMissionReward 条件翻转领取标记
	ClaimMissionReward(ctx context.Context, userID, missionID string) (*model.Mission, error)

	// ===== 签到 =====
	// ClaimDailyReward 每个 (用户, 日期) 只能成功一次，否则返回 model.ErrAlreadyClaimedToday
	ClaimDailyReward(ctx context.Context, userID string, day time.Time, streak *model.Streak) error
	// GetStreak 不存在返回 model.ErrNotFound
	GetStreak(ctx context.Context, userID string) (*model.Streak, error)

	// ===== 流水 =====
	RecordTransaction(ctx context.Context, tx *model.Transaction) error
	RecordActivity(ctx context.Context, entry *model.ActivityEntry) error
	ListTransactions(ctx context.Context, userID string, limit int) ([]*model.Transaction, error)

	// TopByTotalXP 排行榜数据源
	TopByTotalXP(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error)
}

// Snapshot 非事务的只读快照，缺失的宠物与签到记录为 nil
type Snapshot struct {
	Pet       *model.Pet
	Inventory []*model.InventoryItem
	Missions  []*model.Mission
	Streak    *model.Streak
	Shop      []*model.ShopItem
}

// Gateway 持久化网关
type Gateway interface {
	// WithinTx 在一个事务中执行 fn，fn 返回错误时全部回滚
	WithinTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
	// Snapshot 读取用户某天的只读快照
	Snapshot(ctx context.Context, userID string, day time.Time) (*Snapshot, error)
}
