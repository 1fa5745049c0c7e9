package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engineSection struct {
	MaxRetries int    `mapstructure:"max_retries" validate:"min=1,max=10"`
	Timezone   string `mapstructure:"timezone" validate:"required"`
}

type testConfig struct {
	Name     string          `mapstructure:"name"`
	Engine   engineSection   `mapstructure:"engine"`
	Features map[string]bool `mapstructure:"features"`
	Tags     []string        `mapstructure:"tags"`
	Extra    *engineSection  `mapstructure:"extra"`
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMergeConfig(t *testing.T) {
	tests := []struct {
		name  string
		dst   *testConfig
		src   *testConfig
		check func(t *testing.T, got *testConfig)
	}{
		{
			name: "zero values keep defaults",
			dst:  &testConfig{Name: "pet", Engine: engineSection{MaxRetries: 3, Timezone: "UTC"}},
			src:  &testConfig{Engine: engineSection{MaxRetries: 5}},
			check: func(t *testing.T, got *testConfig) {
				assert.Equal(t, "pet", got.Name)
				assert.Equal(t, 5, got.Engine.MaxRetries)
				assert.Equal(t, "UTC", got.Engine.Timezone)
			},
		},
		{
			name: "maps merge by key",
			dst:  &testConfig{Features: map[string]bool{"leaderboard": true}},
			src:  &testConfig{Features: map[string]bool{"kafka": true}},
			check: func(t *testing.T, got *testConfig) {
				assert.Equal(t, map[string]bool{"leaderboard": true, "kafka": true}, got.Features)
			},
		},
		{
			name: "slices are replaced",
			dst:  &testConfig{Tags: []string{"a", "b"}},
			src:  &testConfig{Tags: []string{"c"}},
			check: func(t *testing.T, got *testConfig) {
				assert.Equal(t, []string{"c"}, got.Tags)
			},
		},
		{
			name: "nil pointer is allocated",
			dst:  &testConfig{},
			src:  &testConfig{Extra: &engineSection{Timezone: "Asia/Shanghai"}},
			check: func(t *testing.T, got *testConfig) {
				require.NotNil(t, got.Extra)
				assert.Equal(t, "Asia/Shanghai", got.Extra.Timezone)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MergeConfig(tt.dst, tt.src)
			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestMergeConfigNil(t *testing.T) {
	_, err := MergeConfig[testConfig](nil, nil)
	assert.Error(t, err)

	src := &testConfig{Name: "only-src"}
	got, err := MergeConfig(nil, src)
	require.NoError(t, err)
	assert.Same(t, src, got)
}

func TestValidator(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(&engineSection{MaxRetries: 3, Timezone: "UTC"}))

	err := v.Validate(&engineSection{MaxRetries: 0})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Contains(t, err.Error(), "max_retries")
	assert.Contains(t, err.Error(), "timezone")

	assert.ErrorIs(t, v.Validate(nil), ErrNilConfig)
}

func TestManagerLoadFile(t *testing.T) {
	path := writeConfigFile(t, `
name: petlink
engine:
  max_retries: 4
  timezone: Asia/Tokyo
`)

	mgr := NewManager(WithDefaults(map[string]any{"engine.max_retries": 3}))
	require.NoError(t, mgr.LoadFile(path))

	var cfg testConfig
	require.NoError(t, mgr.Unmarshal(&cfg))
	assert.Equal(t, "petlink", cfg.Name)
	assert.Equal(t, 4, cfg.Engine.MaxRetries)

	var engine engineSection
	require.NoError(t, mgr.UnmarshalKey("engine", &engine))
	assert.Equal(t, "Asia/Tokyo", engine.Timezone)
	assert.True(t, mgr.IsSet("engine.timezone"))
}

func TestManagerEnvOverride(t *testing.T) {
	path := writeConfigFile(t, "engine:\n  timezone: UTC\n")
	t.Setenv("PETTEST_ENGINE_TIMEZONE", "Europe/Berlin")

	mgr := NewManager()
	mgr.BindEnv("PETTEST")
	require.NoError(t, mgr.LoadFile(path))

	var cfg testConfig
	require.NoError(t, mgr.Unmarshal(&cfg))
	assert.Equal(t, "Europe/Berlin", cfg.Engine.Timezone)
}

func TestManagerDecodeHooks(t *testing.T) {
	path := writeConfigFile(t, "ttl: 90s\ntags: a,b,c\n")

	mgr := NewManager()
	require.NoError(t, mgr.LoadFile(path))

	var cfg struct {
		TTL  time.Duration `mapstructure:"ttl"`
		Tags []string      `mapstructure:"tags"`
	}
	require.NoError(t, mgr.Unmarshal(&cfg))
	assert.Equal(t, 90*time.Second, cfg.TTL)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Tags)
}

func TestManagerLoadMissingFile(t *testing.T) {
	mgr := NewManager()
	assert.Error(t, mgr.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.ErrorIs(t, mgr.Watch(func() {}), ErrNotLoaded)
}
