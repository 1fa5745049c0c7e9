package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lk2023060901/petlink/pkg/config"
)

// QueryBuilder SQL 构建器（$n 占位符）
var QueryBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Querier 连接池与事务共同实现的查询接口，DAO 只依赖此接口
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// Row 单行结果，未命中时 Scan 返回 ErrNoRows
type Row interface {
	Scan(dest ...any) error
}

type row struct {
	r pgx.Row
}

func (r row) Scan(dest ...any) error {
	return translateErr(r.r.Scan(dest...))
}

// pgxQuerier 是 pgxpool.Pool 与 pgx.Tx 的公共方法集
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Client PostgreSQL 客户端
type Client struct {
	pool *pgxpool.Pool
	cfg  *Config
}

var _ Querier = (*Client)(nil)

// New 创建客户端并验证连通性
func New(cfg *Config) (*Client, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	poolConfig, err := pgxpool.ParseConfig(merged.ConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}
	poolConfig.MaxConns = merged.Pool.MaxConns
	poolConfig.MinConns = merged.Pool.MinConns
	poolConfig.MaxConnLifetime = merged.Pool.MaxConnLifetime
	poolConfig.MaxConnIdleTime = merged.Pool.MaxConnIdleTime
	poolConfig.HealthCheckPeriod = merged.Pool.HealthCheckPeriod

	ctx, cancel := context.WithTimeout(context.Background(), merged.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{pool: pool, cfg: merged}, nil
}

// Close 关闭连接池
func (c *Client) Close() {
	c.pool.Close()
}

// Ping 检查数据库连接
func (c *Client) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.QueryTimeout > 0 {
		return context.WithTimeout(ctx, c.cfg.QueryTimeout)
	}
	return ctx, func() {}
}

func (c *Client) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return execOn(ctx, c.pool, sql, args...)
}

// Query 返回的 rows 由调用方关闭；超时由调用方 ctx 控制
func (c *Client) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	rows, err := c.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return rows, nil
}

func (c *Client) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return row{r: c.pool.QueryRow(ctx, sql, args...)}
}

func execOn(ctx context.Context, q pgxQuerier, sql string, args ...any) (int64, error) {
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("exec failed: %w", err)
	}
	return tag.RowsAffected(), nil
}
