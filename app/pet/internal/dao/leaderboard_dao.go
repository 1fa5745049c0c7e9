package dao

import (
	"context"
	"errors"
	"fmt"

	"github.com/lk2023060901/petlink/app/pet/internal/metrics"
	"github.com/lk2023060901/petlink/app/pet/internal/model"
	"github.com/lk2023060901/petlink/pkg/database/redis"
	"github.com/lk2023060901/petlink/pkg/logger"
)

const (
	// LeaderboardKey 累计经验排行榜，hash tag 保证重建临时键同 slot
	LeaderboardKey = "pet:leaderboard:{global}"
	// LeaderboardLockKey 重建任务锁
	LeaderboardLockKey = "lock:pet:leaderboard"
)

// LeaderboardDAO Redis 排行榜
type LeaderboardDAO struct {
	redis   *redis.Client
	logger  logger.Logger
	metrics *metrics.PetMetrics
}

// NewLeaderboardDAO 创建排行榜 DAO
func NewLeaderboardDAO(rdb *redis.Client, l logger.Logger, m *metrics.PetMetrics) *LeaderboardDAO {
	return &LeaderboardDAO{
		redis:   rdb,
		logger:  l.Named("dao.leaderboard"),
		metrics: m,
	}
}

// Update 写入用户累计经验
func (d *LeaderboardDAO) Update(ctx context.Context, userID string, totalXP int64) error {
	if _, err := d.redis.ZAdd(ctx, LeaderboardKey, redis.ZItem{Member: userID, Score: float64(totalXP)}); err != nil {
		return fmt.Errorf("failed to update leaderboard: %w", err)
	}
	return nil
}

// Top 获取前 limit 名，缓存为空时返回 nil
func (d *LeaderboardDAO) Top(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	items, err := d.redis.ZRevRangeWithScores(ctx, LeaderboardKey, 0, int64(limit)-1)
	if err != nil {
		d.logger.Error("failed to read leaderboard", "error", err)
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}
	if len(items) == 0 {
		d.metrics.RecordCacheMiss("redis")
		return nil, nil
	}
	d.metrics.RecordCacheHit("redis")

	entries := make([]*model.LeaderboardEntry, len(items))
	for i, it := range items {
		entries[i] = &model.LeaderboardEntry{
			Rank:    int64(i + 1),
			UserID:  it.Member,
			TotalXP: int64(it.Score),
		}
	}
	return entries, nil
}

// Rank 用户名次（从 1 开始），未上榜返回 model.ErrNotFound
func (d *LeaderboardDAO) Rank(ctx context.Context, userID string) (int64, error) {
	rank, err := d.redis.ZRevRank(ctx, LeaderboardKey, userID)
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return 0, fmt.Errorf("%w: %s not ranked", model.ErrNotFound, userID)
		}
		return 0, fmt.Errorf("failed to get rank: %w", err)
	}
	return rank + 1, nil
}

// Replace 用全量数据替换排行榜
func (d *LeaderboardDAO) Replace(ctx context.Context, entries []*model.LeaderboardEntry) error {
	items := make([]redis.ZItem, len(entries))
	for i, e := range entries {
		items[i] = redis.ZItem{Member: e.UserID, Score: float64(e.TotalXP)}
	}
	if err := d.redis.ZReplace(ctx, LeaderboardKey, items); err != nil {
		return fmt.Errorf("failed to replace leaderboard: %w", err)
	}
	return nil
}
