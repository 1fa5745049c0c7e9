package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
		want error
	}{
		{name: "nil", cfg: nil, want: ErrNilConfig},
		{name: "none", cfg: &Config{}, want: ErrInvalidConfig},
		{name: "both", cfg: &Config{Standalone: &NodeConfig{}, Cluster: &ClusterConfig{Addrs: []string{"a:1"}}}, want: ErrInvalidConfig},
		{name: "empty cluster", cfg: &Config{Cluster: &ClusterConfig{}}, want: ErrInvalidConfig},
		{name: "standalone", cfg: &Config{Standalone: &NodeConfig{Host: "localhost", Port: 6379}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func testClient(t *testing.T) *Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	host := os.Getenv("PETLINK_TEST_REDIS_HOST")
	if host == "" {
		t.Skip("PETLINK_TEST_REDIS_HOST not set")
	}
	client, err := NewClient(&Config{Standalone: &NodeConfig{Host: host, Port: 6379}})
	require.NoError(t, err)
	require.NoError(t, client.Ping(context.Background()))
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestSortedSet(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()
	key := fmt.Sprintf("test:zset:%d", time.Now().UnixNano())
	t.Cleanup(func() { _, _ = client.Del(context.Background(), key) })

	_, err := client.ZAdd(ctx, key, ZItem{Member: "a", Score: 10}, ZItem{Member: "b", Score: 30})
	require.NoError(t, err)

	items, err := client.ZRevRangeWithScores(ctx, key, 0, -1)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].Member)

	require.NoError(t, client.ZReplace(ctx, key, []ZItem{{Member: "c", Score: 1}}))
	n, err := client.ZCard(ctx, key)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = client.ZRevRank(ctx, key, "a")
	assert.ErrorIs(t, err, ErrNil)
}

func TestWithLock(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()
	key := fmt.Sprintf("test:lock:%d", time.Now().UnixNano())

	err := client.WithLock(ctx, key, 5*time.Second, func() error {
		inner := client.WithLock(ctx, key, 5*time.Second, func() error { return nil })
		assert.ErrorIs(t, inner, ErrLockFailed)
		return nil
	})
	require.NoError(t, err)

	_, err = client.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNil)
}
