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

var petColumns = []string{
	"id", "user_id", "name", "species", "mood",
	"level", "xp", "xp_to_next", "total_xp", "evolution_stage", "daily_coin_bonus", "unlocks",
	"hunger", "happiness", "energy", "cleanliness", "health",
	"coin_balance", "version", "stats_updated_at", "created_at", "updated_at",
}

// PetDAO 宠物数据访问对象
type PetDAO struct {
	logger  logger.Logger
	metrics *metrics.PetMetrics
}

func NewPetDAO(l logger.Logger, m *metrics.PetMetrics) *PetDAO {
	return &PetDAO{
		logger:  l.Named("dao.pet"),
		metrics: m,
	}
}

func petValues(p *model.Pet) []any {
	return []any{
		p.ID, p.UserID, p.Name, p.Species, string(p.Mood),
		p.Level, p.XP, p.XPToNext, p.TotalXP, string(p.Stage), p.DailyCoinBonus, p.Unlocks,
		p.Stats.Hunger, p.Stats.Happiness, p.Stats.Energy, p.Stats.Cleanliness, p.Stats.Health,
		p.CoinBalance, p.Version, p.StatsUpdatedAt, p.CreatedAt, p.UpdatedAt,
	}
}

func scanPet(row postgres.Row) (*model.Pet, error) {
	var (
		p     model.Pet
		mood  string
		stage string
	)
	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Species, &mood,
		&p.Level, &p.XP, &p.XPToNext, &p.TotalXP, &stage, &p.DailyCoinBonus, &p.Unlocks,
		&p.Stats.Hunger, &p.Stats.Happiness, &p.Stats.Energy, &p.Stats.Cleanliness, &p.Stats.Health,
		&p.CoinBalance, &p.Version, &p.StatsUpdatedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Mood = model.Mood(mood)
	p.Stage = model.Stage(stage)
	if p.Unlocks == nil {
		p.Unlocks = []string{}
	}
	return &p, nil
}

// Get 按用户获取宠物，不存在返回 model.ErrNotFound
func (d *PetDAO) Get(ctx context.Context, q postgres.Querier, userID string) (pet *model.Pet, err error) {
	start := time.Now()
	defer func() { record(d.metrics, "pet.select", start, err) }()

	query, args, err := buildQuery(squirrel.
		Select(petColumns...).
		From("pets").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar))
	if err != nil {
		return nil, err
	}

	pet, err = scanPet(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, postgres.ErrNoRows) {
			return nil, fmt.Errorf("%w: pet of user %s", model.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get pet: %w", err)
	}
	return pet, nil
}

// Insert 插入新宠物，用户已有宠物时返回 false
func (d *PetDAO) Insert(ctx context.Context, q postgres.Querier, pet *model.Pet) (inserted bool, err error) {
	start := time.Now()
	defer func() { record(d.metrics, "pet.insert", start, err) }()

	query, args, err := buildQuery(squirrel.
		Insert("pets").
		Columns(petColumns...).
		Values(petValues(pet)...).
		Suffix("ON CONFLICT (user_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar))
	if err != nil {
		return false, err
	}

	n, err := q.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to insert pet: %w", err)
	}
	return n == 1, nil
}

// Update 按版本号条件更新，返回受影响行数，0 表示版本已变化
func (d *PetDAO) Update(ctx context.Context, q postgres.Querier, pet *model.Pet, expectedVersion int64) (n int64, err error) {
	start := time.Now()
	defer func() { record(d.metrics, "pet.update", start, err) }()

	builder := squirrel.Update("pets")
	values := petValues(pet)
	for i, col := range petColumns {
		if col == "id" || col == "user_id" || col == "created_at" {
			continue
		}
		builder = builder.Set(col, values[i])
	}
	query, args, err := buildQuery(builder.
		Where(squirrel.Eq{"user_id": pet.UserID, "version": expectedVersion}).
		PlaceholderFormat(squirrel.Dollar))
	if err != nil {
		return 0, err
	}

	n, err = q.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update pet: %w", err)
	}
	return n, nil
}

// TopByTotalXP 按累计经验降序取前 limit 名
func (d *PetDAO) TopByTotalXP(ctx context.Context, q postgres.Querier, limit int) (entries []*model.LeaderboardEntry, err error) {
	start := time.Now()
	defer func() { record(d.metrics, "pet.top", start, err) }()

	query, args, err := buildQuery(squirrel.
		Select("user_id", "name", "total_xp").
		From("pets").
		OrderBy("total_xp DESC", "user_id").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar))
	if err != nil {
		return nil, err
	}

	entries, err = postgres.QueryAll[model.LeaderboardEntry](ctx, q, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list top pets: %w", err)
	}
	for i, e := range entries {
		e.Rank = int64(i + 1)
	}
	return entries, nil
}
