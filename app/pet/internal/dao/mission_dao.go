package dao

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lk2023060901/petlink/app/pet/internal/metrics"
	"github.com/lk2023060901/petlink/app/pet/internal/model"
	"github.com/lk2023060901/petlink/pkg/database/postgres"
	"github.com/lk2023060901/petlink/pkg/logger"
)

var missionColumns = []string{
	"id", "user_id", "template_id", "type", "title", "target_count", "progress",
	"reward_coins", "reward_xp", "completed", "reward_claimed", "assigned_date", "created_at",
}

// MissionDAO 每日任务数据访问对象
type MissionDAO struct {
	logger  logger.Logger
	metrics *metrics.PetMetrics
}

func NewMissionDAO(l logger.Logger, m *metrics.PetMetrics) *MissionDAO {
	return &MissionDAO{
		logger:  l.Named("dao.mission"),
		metrics: m,
	}
}

func missionValues(m *model.Mission) []any {
	return []any{
		m.ID, m.UserID, m.TemplateID, string(m.Type), m.Title, m.TargetCount, m.Progress,
		m.RewardCoins, m.RewardXP, m.Completed, m.RewardClaimed, m.AssignedDate, m.CreatedAt,
	}
}

func returningMissions() string {
	return "RETURNING " + strings.Join(missionColumns, ", ")
}

// InsertIgnore 批量插入，(用户, 日期, 模板) 已存在的跳过
func (d *MissionDAO) InsertIgnore(ctx context.Context, q postgres.Querier, missions []*model.Mission) (err error) {
	if len(missions) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { record(d.metrics, "mission.insert", start, err) }()

	builder := squirrel.Insert("missions").Columns(missionColumns...)
	for _, m := range missions {
		builder = builder.Values(missionValues(m)...)
	}
	query, args, err := buildQuery(builder.
		Suffix("ON CONFLICT (user_id, assigned_date, template_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar))
	if err != nil {
		return err
	}

	if _, err := q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert missions: %w", err)
	}
	return nil
}

// List 获取用户某天的任务
func (d *MissionDAO) List(ctx context.Context, q postgres.Querier, userID string, day time.Time) (missions []*model.Mission, err error) {
	start := time.Now()
	defer func() { record(d.metrics, "mission.select", start, err) }()

	query, args, err := buildQuery(squirrel.
		Select(missionColumns...).
		From("missions").
		Where(squirrel.Eq{"user_id": userID, "assigned_date": day}).
		OrderBy("template_id").
		PlaceholderFormat(squirrel.Dollar))
	if err != nil {
		return nil, err
	}

	missions, err = postgres.QueryAll[model.Mission](ctx, q, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list missions: %w", err)
	}
	return missions, nil
}

// Get 获取单个任务
func (d *MissionDAO) Get(ctx context.Context, q postgres.Querier, userID, missionID string) (mission *model.Mission, err error) {
	start := time.Now()
	defer func() { record(d.metrics, "mission.select", start, err) }()

	query, args, err := buildQuery(squirrel.
		Select(missionColumns...).
		From("missions").
		Where(squirrel.Eq{"id": missionID, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar))
	if err != nil {
		return nil, err
	}

	mission, err = postgres.QueryOne[model.Mission](ctx, q, query, args...)
	if err != nil {
		if errors.Is(err, postgres.ErrNoRows) {
			return nil, fmt.Errorf("%w: mission %s", model.ErrNotFound, missionID)
		}
		return nil, fmt.Errorf("failed to get mission: %w", err)
	}
	return mission, nil
}

// IncrementProgress 原子推进匹配类型的未完成任务，进度封顶于目标值
func (d *MissionDAO) IncrementProgress(ctx context.Context, q postgres.Querier, userID string, day time.Time, action model.ActionType, increment int) (missions []*model.Mission, err error) {
	start := time.Now()
	defer func() { record(d.metrics, "mission.update", start, err) }()

	query, args, err := buildQuery(squirrel.
		Update("missions").
		Set("progress", squirrel.Expr("LEAST(progress + ?, target_count)", increment)).
		Set("completed", squirrel.Expr("progress + ? >= target_count", increment)).
		Where(squirrel.Eq{"user_id": userID, "assigned_date": day, "type": string(action), "completed": false}).
		Suffix(returningMissions()).
		PlaceholderFormat(squirrel.Dollar))
	if err != nil {
		return nil, err
	}

	missions, err = postgres.QueryAll[model.Mission](ctx, q, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to increment mission progress: %w", err)
	}
	return missions, nil
}

// Claim 条件翻转领取标记，只有已完成且未领取的任务能成功
func (d *MissionDAO) Claim(ctx context.Context, q postgres.Querier, userID, missionID string) (*model.Mission, error) {
	start := time.Now()
	query, args, err := buildQuery(squirrel.
		Update("missions").
		Set("reward_claimed", true).
		Where(squirrel.Eq{"id": missionID, "user_id": userID, "completed": true, "reward_claimed": false}).
		Suffix(returningMissions()).
		PlaceholderFormat(squirrel.Dollar))
	if err != nil {
		return nil, err
	}

	mission, err := postgres.QueryOne[model.Mission](ctx, q, query, args...)
	record(d.metrics, "mission.claim", start, err)
	if err == nil {
		return mission, nil
	}
	if !errors.Is(err, postgres.ErrNoRows) {
		return nil, fmt.Errorf("failed to claim mission: %w", err)
	}

	// 未更新到行时区分原因
	current, err := d.Get(ctx, q, userID, missionID)
	if err != nil {
		return nil, err
	}
	if current.RewardClaimed {
		return nil, fmt.Errorf("%w: mission %s", model.ErrAlreadyClaimed, missionID)
	}
	return nil, fmt.Errorf("%w: mission %s at %d/%d", model.ErrNotCompleted, missionID, current.Progress, current.TargetCount)
}
