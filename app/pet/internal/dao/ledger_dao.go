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

// LedgerDAO 金币流水与行为日志，只追加
type LedgerDAO struct {
	logger  logger.Logger
	metrics *metrics.PetMetrics
}

func NewLedgerDAO(l logger.Logger, m *metrics.PetMetrics) *LedgerDAO {
	return &LedgerDAO{
		logger:  l.Named("dao.ledger"),
		metrics: m,
	}
}

// InsertTransaction 追加流水
func (d *LedgerDAO) InsertTransaction(ctx context.Context, q postgres.Querier, tx *model.Transaction) (err error) {
	start := time.Now()
	defer func() { record(d.metrics, "transaction.insert", start, err) }()

	query, args, err := buildQuery(squirrel.
		Insert("transactions").
		Columns("id", "user_id", "kind", "amount", "currency", "reason", "balance_after", "created_at").
		Values(tx.ID, tx.UserID, string(tx.Kind), tx.Amount, tx.Currency, tx.Reason, tx.BalanceAfter, tx.CreatedAt).
		PlaceholderFormat(squirrel.Dollar))
	if err != nil {
		return err
	}

	if _, err := q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// InsertActivity 追加行为日志
func (d *LedgerDAO) InsertActivity(ctx context.Context, q postgres.Querier, a *model.ActivityEntry) (err error) {
	start := time.Now()
	defer func() { record(d.metrics, "activity.insert", start, err) }()

	query, args, err := buildQuery(squirrel.
		Insert("activities").
		Columns("id", "user_id", "action", "item_id", "created_at").
		Values(a.ID, a.UserID, string(a.Action), nullString(a.ItemID), a.CreatedAt).
		PlaceholderFormat(squirrel.Dollar))
	if err != nil {
		return err
	}

	if _, err := q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

// ListTransactions 按时间倒序获取最近 limit 条流水
func (d *LedgerDAO) ListTransactions(ctx context.Context, q postgres.Querier, userID string, limit int) (txs []*model.Transaction, err error) {
	start := time.Now()
	defer func() { record(d.metrics, "transaction.select", start, err) }()

	query, args, err := buildQuery(squirrel.
		Select("id", "user_id", "kind", "amount", "currency", "reason", "balance_after", "created_at").
		From("transactions").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar))
	if err != nil {
		return nil, err
	}

	txs, err = postgres.QueryAll[model.Transaction](ctx, q, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}
