package engine

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petlink/app/pet/internal/gameconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(nil, gameconfig.NewStaticStore(gameconfig.Defaults()))
	require.NoError(t, err)
	return e
}

// newTestAggregate 创建新宠物聚合，统计锚点为 testNow，避免衰减干扰
func newTestAggregate(e *Engine) *Aggregate {
	pet := e.NewPet("user-1", testNow)
	agg := NewAggregate(pet, e.Day(testNow))
	agg.Catalog = e.Tables().Catalog()
	return agg
}

func TestNewValidatesConfig(t *testing.T) {
	tables := gameconfig.NewStaticStore(gameconfig.Defaults())
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"unknown timezone", &Config{Timezone: "Mars/Olympus"}},
		{"negative retries", &Config{MaxRetries: -1}},
		{"negative decay unit", &Config{DecayUnit: -time.Minute}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, tables)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}
