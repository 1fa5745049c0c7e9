package job

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petlink/app/pet/internal/dao"
	"github.com/lk2023060901/petlink/app/pet/internal/model"
	"github.com/lk2023060901/petlink/pkg/config"
	"github.com/lk2023060901/petlink/pkg/database/redis"
	"github.com/lk2023060901/petlink/pkg/logger"
	"github.com/robfig/cron/v3"
)

// LeaderboardConfig 排行榜重建任务配置
type LeaderboardConfig struct {
	// Spec cron 表达式，支持 @every
	Spec string `mapstructure:"spec"`
	// Size 缓存的榜单长度
	Size int `mapstructure:"size"`
	// LockTTL 分布式锁过期时间
	LockTTL time.Duration `mapstructure:"lock_ttl"`
	// SkipOnStart 启动时不立即重建
	SkipOnStart bool `mapstructure:"skip_on_start"`
}

// DefaultLeaderboardConfig 默认配置
func DefaultLeaderboardConfig() *LeaderboardConfig {
	return &LeaderboardConfig{
		Spec:    "@every 5m",
		Size:    100,
		LockTTL: 30 * time.Second,
	}
}

// Source 排行数据源
type Source interface {
	TopByTotalXP(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error)
}

// Board 排行榜缓存
type Board interface {
	Replace(ctx context.Context, entries []*model.LeaderboardEntry) error
}

// Locker 分布式锁
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func() error) error
}

// LeaderboardRebuilder 定时从数据库重建 Redis 排行榜，多实例间用锁互斥
type LeaderboardRebuilder struct {
	cfg    *LeaderboardConfig
	source Source
	board  Board
	locker Locker
	logger logger.Logger
}

func NewLeaderboardRebuilder(cfg *LeaderboardConfig, source Source, board Board, locker Locker, l logger.Logger) (*LeaderboardRebuilder, error) {
	merged, err := config.MergeConfig(DefaultLeaderboardConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if _, err := cron.ParseStandard(merged.Spec); err != nil {
		return nil, errors.Wrapf(err, "invalid leaderboard spec %q", merged.Spec)
	}
	return &LeaderboardRebuilder{
		cfg:    merged,
		source: source,
		board:  board,
		locker: locker,
		logger: l.Named("job.leaderboard"),
	}, nil
}

// Run 按计划执行直到 ctx 取消
func (j *LeaderboardRebuilder) Run(ctx context.Context) error {
	c := cron.New(cron.WithLogger(cronLogger{j.logger}), cron.WithChain(cron.SkipIfStillRunning(cronLogger{j.logger})))
	if _, err := c.AddFunc(j.cfg.Spec, func() { _ = j.Rebuild(ctx) }); err != nil {
		return err
	}
	if !j.cfg.SkipOnStart {
		_ = j.Rebuild(ctx)
	}

	c.Start()
	j.logger.Info("leaderboard rebuilder started", "spec", j.cfg.Spec)
	<-ctx.Done()
	<-c.Stop().Done()
	j.logger.Info("leaderboard rebuilder stopped")
	return nil
}

// Rebuild 执行一次重建，其他实例持有锁时直接跳过
func (j *LeaderboardRebuilder) Rebuild(ctx context.Context) error {
	start := time.Now()
	var size int
	err := j.locker.WithLock(ctx, dao.LeaderboardLockKey, j.cfg.LockTTL, func() error {
		entries, err := j.source.TopByTotalXP(ctx, j.cfg.Size)
		if err != nil {
			return err
		}
		size = len(entries)
		return j.board.Replace(ctx, entries)
	})
	switch {
	case errors.Is(err, redis.ErrLockFailed):
		j.logger.Debug("leaderboard rebuild skipped, lock held elsewhere")
		return nil
	case err != nil:
		j.logger.Error("leaderboard rebuild failed", "error", err)
		return err
	}
	j.logger.Info("leaderboard rebuilt", "entries", size, "duration", time.Since(start))
	return nil
}

// cronLogger 适配 cron.Logger
type cronLogger struct {
	l logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append(keysAndValues, "error", err)...)
}
