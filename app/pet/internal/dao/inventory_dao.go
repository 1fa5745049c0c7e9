package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lk2023060901/petlink/app/pet/internal/metrics"
	"github.com/lk2023060901/petlink/app/pet/internal/model"
	"github.com/lk2023060901/petlink/pkg/database/postgres"
	"github.com/lk2023060901/petlink/pkg/logger"
)

const inventoryReturning = "RETURNING user_id, item_id, quantity, equipped, updated_at"

// InventoryDAO 背包数据访问对象
type InventoryDAO struct {
	logger  logger.Logger
	metrics *metrics.PetMetrics
}

func NewInventoryDAO(l logger.Logger, m *metrics.PetMetrics) *InventoryDAO {
	return &InventoryDAO{
		logger:  l.Named("dao.inventory"),
		metrics: m,
	}
}

// List 获取用户背包
func (d *InventoryDAO) List(ctx context.Context, q postgres.Querier, userID string) (items []*model.InventoryItem, err error) {
	start := time.Now()
	defer func() { record(d.metrics, "inventory.select", start, err) }()

	query, args, err := buildQuery(squirrel.
		Select("user_id", "item_id", "quantity", "equipped", "updated_at").
		From("inventory_items").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("item_id").
		PlaceholderFormat(squirrel.Dollar))
	if err != nil {
		return nil, err
	}

	items, err = postgres.QueryAll[model.InventoryItem](ctx, q, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return items, nil
}

// Adjust 增减道具数量，数量为 0 时删除行并返回 nil
// 结果为负时违反 CHECK 约束，返回 model.ErrItemNotAvailable
func (d *InventoryDAO) Adjust(ctx context.Context, q postgres.Querier, userID, itemID string, delta int, now time.Time) (item *model.InventoryItem, err error) {
	start := time.Now()
	defer func() { record(d.metrics, "inventory.upsert", start, err) }()

	query, args, err := buildQuery(squirrel.
		Insert("inventory_items").
		Columns("user_id", "item_id", "quantity", "equipped", "updated_at").
		Values(userID, itemID, delta, false, now).
		Suffix("ON CONFLICT (user_id, item_id) DO UPDATE SET quantity = inventory_items.quantity + EXCLUDED.quantity, updated_at = EXCLUDED.updated_at " + inventoryReturning).
		PlaceholderFormat(squirrel.Dollar))
	if err != nil {
		return nil, err
	}

	item, err = postgres.QueryOne[model.InventoryItem](ctx, q, query, args...)
	if err != nil {
		if postgres.IsCheckViolation(err) {
			return nil, fmt.Errorf("%w: %s holds fewer than %d of %s", model.ErrItemNotAvailable, userID, -delta, itemID)
		}
		return nil, fmt.Errorf("failed to adjust inventory: %w", err)
	}
	if item.Quantity > 0 {
		return item, nil
	}

	query, args, err = buildQuery(squirrel.
		Delete("inventory_items").
		Where(squirrel.Eq{"user_id": userID, "item_id": itemID}).
		PlaceholderFormat(squirrel.Dollar))
	if err != nil {
		return nil, err
	}
	if _, err = q.Exec(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to delete empty inventory row: %w", err)
	}
	return nil, nil
}

// SetEquipped 设置装备状态，未持有时返回 model.ErrItemNotAvailable
func (d *InventoryDAO) SetEquipped(ctx context.Context, q postgres.Querier, userID, itemID string, equipped bool, now time.Time) (err error) {
	start := time.Now()
	defer func() { record(d.metrics, "inventory.update", start, err) }()

	query, args, err := buildQuery(squirrel.
		Update("inventory_items").
		Set("equipped", equipped).
		Set("updated_at", now).
		Where(squirrel.Eq{"user_id": userID, "item_id": itemID}).
		Where(squirrel.Gt{"quantity": 0}).
		PlaceholderFormat(squirrel.Dollar))
	if err != nil {
		return err
	}

	n, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to set equipped: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s does not hold %s", model.ErrItemNotAvailable, userID, itemID)
	}
	return nil
}

