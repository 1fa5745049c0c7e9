package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "default", mutate: func(c *Config) {}},
		{name: "empty host", mutate: func(c *Config) { c.Host = "" }, wantErr: true},
		{name: "bad port", mutate: func(c *Config) { c.Port = 70000 }, wantErr: true},
		{name: "empty db", mutate: func(c *Config) { c.DBName = "" }, wantErr: true},
		{name: "min over max", mutate: func(c *Config) { c.Pool.MinConns = 30 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			assert.NoError(t, err)
		})
	}

	var nilCfg *Config
	assert.ErrorIs(t, nilCfg.Validate(), ErrNilConfig)
}

func TestErrorClassification(t *testing.T) {
	unique := fmt.Errorf("exec failed: %w", &pgconn.PgError{Code: "23505"})
	serial := fmt.Errorf("exec failed: %w", &pgconn.PgError{Code: "40001"})

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsUniqueViolation(serial))
	assert.True(t, IsSerializationFailure(serial))
	assert.False(t, IsSerializationFailure(errors.New("plain")))
	assert.ErrorIs(t, translateErr(pgx.ErrNoRows), ErrNoRows)
}

func TestStructFields(t *testing.T) {
	type petRow struct {
		UserID    string `db:"user_id"`
		CoinCount int64
		Ignored   string `db:"-"`
		hidden    int
	}

	fields := structFields(reflect.TypeOf(petRow{}))
	require.Len(t, fields, 2)
	assert.Equal(t, "user_id", fields[0].column)
	assert.Equal(t, "coin_count", fields[1].column)
}

func testClient(t *testing.T) *Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	dsnHost := os.Getenv("PETLINK_TEST_PG_HOST")
	if dsnHost == "" {
		t.Skip("PETLINK_TEST_PG_HOST not set")
	}
	cfg := DefaultConfig()
	cfg.Host = dsnHost
	cfg.User = os.Getenv("PETLINK_TEST_PG_USER")
	cfg.Password = os.Getenv("PETLINK_TEST_PG_PASSWORD")
	client, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func TestWithTxRollback(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	_, err := client.Exec(ctx, `CREATE TABLE IF NOT EXISTS tx_check (id int PRIMARY KEY)`)
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = client.Exec(context.Background(), `DROP TABLE IF EXISTS tx_check`) })

	sentinel := errors.New("abort")
	err = client.WithTx(ctx, func(tx Tx) error {
		if _, err := tx.Exec(ctx, `INSERT INTO tx_check (id) VALUES (1)`); err != nil {
			return err
		}
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	var n int
	require.NoError(t, client.QueryRow(ctx, `SELECT count(*) FROM tx_check`).Scan(&n))
	assert.Equal(t, 0, n)
}
