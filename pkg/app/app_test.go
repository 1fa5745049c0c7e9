package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	Web struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"web"`
}

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\nweb:\n  port: 8080\n"), 0o644))
	return path
}

func TestLoadConfigPrecedence(t *testing.T) {
	path := writeConfig(t)

	var cfg testConfig
	got, err := LoadConfig([]string{"-c", path}, &cfg)
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 8080, cfg.Web.Port)

	t.Setenv("PETLINK_LOG_LEVEL", "warn")
	cfg = testConfig{}
	_, err = LoadConfig([]string{"--config", path, "--web.port", "9090"}, &cfg)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Web.Port)

	cfg = testConfig{}
	_, err = LoadConfig([]string{"--config", path, "--log.level", "debug"}, &cfg)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg testConfig
	_, err := LoadConfig([]string{"-c", filepath.Join(t.TempDir(), "nope.yaml")}, &cfg)
	assert.Error(t, err)
}

type recordCloser struct {
	name  string
	order *[]string
}

func (c recordCloser) Close() error {
	*c.order = append(*c.order, c.name)
	return nil
}

func TestAppRunStopsOnContextCancel(t *testing.T) {
	a := New(WithName("test"), WithStopTimeout(time.Second))

	var order []string
	a.AppendCloser(recordCloser{"db", &order}, recordCloser{"redis", &order})
	a.AppendRunner(RunnerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	require.NoError(t, a.Run(ctx))
	assert.Equal(t, []string{"redis", "db"}, order)

	assert.ErrorIs(t, a.Run(context.Background()), ErrAppAlreadyRunning)
}

func TestAppRunnerError(t *testing.T) {
	a := New()
	boom := errors.New("listen failed")
	a.AppendRunner(
		RunnerFunc(func(ctx context.Context) error { return boom }),
		RunnerFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		}),
	)
	assert.ErrorIs(t, a.Run(context.Background()), boom)
}
