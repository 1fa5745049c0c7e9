package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lk2023060901/petlink/app/pet/internal/metrics"
	"github.com/lk2023060901/petlink/app/pet/internal/model"
	"github.com/lk2023060901/petlink/pkg/database/postgres"
	"github.com/lk2023060901/petlink/pkg/logger"
)

// StreakDAO 签到数据访问对象
type StreakDAO struct {
	logger  logger.Logger
	metrics *metrics.PetMetrics
}

func NewStreakDAO(l logger.Logger, m *metrics.PetMetrics) *StreakDAO {
	return &StreakDAO{
		logger:  l.Named("dao.streak"),
		metrics: m,
	}
}

// Get 获取签到记录，不存在返回 model.ErrNotFound
func (d *StreakDAO) Get(ctx context.Context, q postgres.Querier, userID string) (streak *model.Streak, err error) {
	start := time.Now()
	defer func() { record(d.metrics, "streak.select", start, err) }()

	query, args, err := buildQuery(squirrel.
		Select("user_id", "current_streak", "longest_streak", "last_claim_date", "updated_at").
		From("streaks").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar))
	if err != nil {
		return nil, err
	}

	var (
		s    model.Streak
		last *time.Time
	)
	err = q.QueryRow(ctx, query, args...).Scan(&s.UserID, &s.CurrentStreak, &s.LongestStreak, &last, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, postgres.ErrNoRows) {
			return nil, fmt.Errorf("%w: streak of user %s", model.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get streak: %w", err)
	}
	if last != nil {
		s.LastClaimDate = *last
	}
	return &s, nil
}

// Claim 写入当日签到记录并更新连续天数，同一天重复写入返回 model.ErrAlreadyClaimedToday
func (d *StreakDAO) Claim(ctx context.Context, q postgres.Querier, day time.Time, s *model.Streak) (err error) {
	start := time.Now()
	defer func() { record(d.metrics, "streak.claim", start, err) }()

	query, args, err := buildQuery(squirrel.
		Insert("daily_claims").
		Columns("user_id", "claim_date", "streak", "created_at").
		Values(s.UserID, day, s.CurrentStreak, s.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar))
	if err != nil {
		return err
	}
	if _, err := q.Exec(ctx, query, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s on %s", model.ErrAlreadyClaimedToday, s.UserID, day.Format(time.DateOnly))
		}
		return fmt.Errorf("failed to insert daily claim: %w", err)
	}

	query, args, err = buildQuery(squirrel.
		Insert("streaks").
		Columns("user_id", "current_streak", "longest_streak", "last_claim_date", "updated_at").
		Values(s.UserID, s.CurrentStreak, s.LongestStreak, day, s.UpdatedAt).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET current_streak = EXCLUDED.current_streak, " +
			"longest_streak = EXCLUDED.longest_streak, last_claim_date = EXCLUDED.last_claim_date, " +
			"updated_at = EXCLUDED.updated_at").
		PlaceholderFormat(squirrel.Dollar))
	if err != nil {
		return err
	}
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert streak: %w", err)
	}
	return nil
}
