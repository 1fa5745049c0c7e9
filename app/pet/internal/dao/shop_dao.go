package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lk2023060901/petlink/app/pet/internal/metrics"
	"github.com/lk2023060901/petlink/app/pet/internal/model"
	"github.com/lk2023060901/petlink/pkg/database/postgres"
	"github.com/lk2023060901/petlink/pkg/logger"
)

// ShopDAO 商店目录数据访问对象
type ShopDAO struct {
	logger  logger.Logger
	metrics *metrics.PetMetrics
}

func NewShopDAO(l logger.Logger, m *metrics.PetMetrics) *ShopDAO {
	return &ShopDAO{
		logger:  l.Named("dao.shop"),
		metrics: m,
	}
}

// List 按条件查询商店目录
func (d *ShopDAO) List(ctx context.Context, q postgres.Querier, filter model.ShopFilter) (items []*model.ShopItem, err error) {
	start := time.Now()
	defer func() { record(d.metrics, "shop.select", start, err) }()

	builder := squirrel.
		Select("id", "name", "category", "price", "rarity", "effect", "available", "action").
		From("shop_items").
		OrderBy("price", "id")
	if filter.Category != "" {
		builder = builder.Where(squirrel.Eq{"category": filter.Category})
	}
	if filter.AvailableOnly {
		builder = builder.Where(squirrel.Eq{"available": true})
	}
	if len(filter.IDs) > 0 {
		builder = builder.Where(squirrel.Eq{"id": filter.IDs})
	}
	query, args, err := buildQuery(builder.PlaceholderFormat(squirrel.Dollar))
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list shop items: %w", err)
	}
	defer rows.Close()

	items = make([]*model.ShopItem, 0)
	for rows.Next() {
		var (
			item   model.ShopItem
			rarity string
			action string
			effect []byte
		)
		if err := rows.Scan(&item.ID, &item.Name, &item.Category, &item.Price, &rarity, &effect, &item.Available, &action); err != nil {
			return nil, fmt.Errorf("failed to scan shop item: %w", err)
		}
		if err := json.Unmarshal(effect, &item.Effect); err != nil {
			return nil, fmt.Errorf("failed to unmarshal item effect: %w", err)
		}
		item.Rarity = model.Rarity(rarity)
		item.Action = model.ActionType(action)
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shop items: %w", err)
	}
	return items, nil
}

// Upsert 写入目录条目（配置表同步）
func (d *ShopDAO) Upsert(ctx context.Context, q postgres.Querier, items []*model.ShopItem) (err error) {
	if len(items) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { record(d.metrics, "shop.upsert", start, err) }()

	builder := squirrel.
		Insert("shop_items").
		Columns("id", "name", "category", "price", "rarity", "effect", "available", "action")
	for _, item := range items {
		effect, err := json.Marshal(item.Effect)
		if err != nil {
			return fmt.Errorf("failed to marshal item effect: %w", err)
		}
		builder = builder.Values(item.ID, item.Name, item.Category, item.Price, string(item.Rarity), effect, item.Available, string(item.Action))
	}
	query, args, err := buildQuery(builder.
		Suffix("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, category = EXCLUDED.category, " +
			"price = EXCLUDED.price, rarity = EXCLUDED.rarity, effect = EXCLUDED.effect, " +
			"available = EXCLUDED.available, action = EXCLUDED.action").
		PlaceholderFormat(squirrel.Dollar))
	if err != nil {
		return err
	}

	if _, err := q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert shop items: %w", err)
	}
	d.logger.Info("shop catalog synced", "items", len(items))
	return nil
}
