package sentry

import (
	"errors"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/lk2023060901/petlink/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (r *recorder) beforeSend(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func TestDisabledClient(t *testing.T) {
	c, err := New(nil)
	require.NoError(t, err)
	assert.False(t, c.Enabled())

	c.CaptureException(errors.New("ignored"))
	assert.Zero(t, c.Captured())
	assert.NoError(t, c.Close())
}

func TestConfigValidate(t *testing.T) {
	assert.ErrorIs(t, (&Config{Enabled: true}).Validate(), ErrInvalidDSN)
	assert.ErrorIs(t, (&Config{Enabled: true, DSN: "https://k@example.com/1", SampleRate: 3}).Validate(), ErrSampleRate)
	assert.NoError(t, (&Config{}).Validate())
}

func TestLoggerHookCapturesErrors(t *testing.T) {
	rec := &recorder{}
	c, err := New(&Config{Enabled: true, DSN: "https://public@example.com/1"}, WithBeforeSend(rec.beforeSend))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	l, err := logger.New(&logger.Config{Format: logger.JSONFormat}, logger.WithHooks(LoggerHook(c)))
	require.NoError(t, err)

	l.Named("service.pet").Info("not reported")
	l.Named("service.pet").Error("commit failed", "user_id", "u1")

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.events, 1)
	assert.Equal(t, "commit failed", rec.events[0].Message)
	assert.Equal(t, sentry.LevelError, rec.events[0].Level)
	assert.Equal(t, "u1", rec.events[0].Contexts["fields"]["user_id"])
}
