package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

type ctxKey struct{}

func newBufferLogger(t *testing.T, cfg *Config, opts ...Option) (*BaseLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	opts = append(opts, WithWriter(&buf))
	l, err := New(cfg, opts...)
	require.NoError(t, err)
	return l, &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := map[string]interface{}{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr error
	}{
		{name: "nil config uses default", cfg: nil},
		{name: "json console", cfg: &Config{Format: JSONFormat, EnableConsole: true}},
		{name: "file without path", cfg: &Config{EnableFile: true}, wantErr: ErrInvalidOutputPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestLevelsAndFields(t *testing.T) {
	l, buf := newBufferLogger(t, &Config{Level: WarnLevel, Format: JSONFormat})

	l.Info("hidden")
	l.Warn("stale snapshot", "user_id", "u1", "attempt", 2)
	l.Error("commit failed", "error", errors.New("boom"))

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "stale snapshot", lines[0]["msg"])
	assert.Equal(t, "u1", lines[0]["user_id"])
	assert.EqualValues(t, 2, lines[0]["attempt"])
	assert.Equal(t, "boom", lines[1]["error"])
}

func TestNamedAndWithFields(t *testing.T) {
	l, buf := newBufferLogger(t, &Config{Format: JSONFormat})

	l.Named("service.pet").WithFields("request_id", "r-1").Info("care action applied")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "service.pet", lines[0]["logger"])
	assert.Equal(t, "r-1", lines[0]["request_id"])
}

func TestContextExtractor(t *testing.T) {
	extractor := func(ctx context.Context) []interface{} {
		if v, ok := ctx.Value(ctxKey{}).(string); ok {
			return []interface{}{"user_id", v}
		}
		return nil
	}
	l, buf := newBufferLogger(t, &Config{Format: JSONFormat}, WithContextExtractor(extractor))

	ctx := context.WithValue(context.Background(), ctxKey{}, "u42")
	l.InfoContext(ctx, "claimed", "streak", 3)

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "u42", lines[0]["user_id"])
	assert.EqualValues(t, 3, lines[0]["streak"])
}

func TestLevelHook(t *testing.T) {
	var captured []string
	hook := LevelHook(zapcore.ErrorLevel, func(entry zapcore.Entry, _ []zapcore.Field) {
		captured = append(captured, entry.Message)
	})
	l, _ := newBufferLogger(t, &Config{Format: JSONFormat}, WithHooks(hook))

	l.Info("ignored")
	l.Error("persistence unavailable")

	assert.Equal(t, []string{"persistence unavailable"}, captured)
}

func TestHookCanDrop(t *testing.T) {
	drop := HookFunc(func(entry zapcore.Entry, _ []zapcore.Field) bool {
		return entry.Message != "noisy"
	})
	l, buf := newBufferLogger(t, &Config{Format: JSONFormat}, WithHooks(drop))

	l.Info("noisy")
	l.Info("kept")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "kept", lines[0]["msg"])
}

func TestNoopLogger(t *testing.T) {
	var l Logger = NewNoop()
	l.Named("x").WithFields("a", 1).Error("nothing")
	assert.NoError(t, l.Sync())
}
