package dao

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lk2023060901/petlink/app/pet/internal/metrics"
	"github.com/lk2023060901/petlink/pkg/database/postgres"
)

//go:embed schema.sql
var schema string

// Schema 建表语句
func Schema() string {
	return schema
}

// Migrate 创建缺失的表与索引，可重复执行
func Migrate(ctx context.Context, q postgres.Querier) error {
	if _, err := q.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// record 记录查询耗时，未命中不计为失败
func record(m *metrics.PetMetrics, op string, start time.Time, err error) {
	m.RecordDBQuery(op, err == nil || errors.Is(err, postgres.ErrNoRows), time.Since(start).Seconds())
}

// buildQuery 生成 SQL 与参数
func buildQuery(b squirrel.Sqlizer) (string, []any, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build query: %w", err)
	}
	return query, args, nil
}

// nullString 空串写入 NULL
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
