package prometheus

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCounterDuplicate(t *testing.T) {
	c := New(&Config{Namespace: "test"})

	counter, err := c.NewCounter("actions_total", "actions", []string{"action"})
	require.NoError(t, err)
	counter.WithLabelValues("feed").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.WithLabelValues("feed")))

	_, err = c.NewCounter("actions_total", "actions", []string{"action"})
	assert.ErrorIs(t, err, ErrMetricExists)
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := New(&Config{Namespace: "test"})
	c.MustNewGauge("streak_current", "streak", nil).WithLabelValues().Set(3)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_streak_current 3")
}
