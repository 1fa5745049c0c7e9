package metrics

import (
	"testing"

	"github.com/lk2023060901/petlink/pkg/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorders(t *testing.T) {
	m := New(prometheus.New(&prometheus.Config{Namespace: "pet_test"}))

	m.RecordAction("feed", "success")
	m.RecordAction("feed", "success")
	m.RecordConflict("care")
	m.RecordDBQuery("select", true, 0.002)
	m.RecordDBQuery("select", false, 0.002)
	m.RecordCacheMiss("redis")
	m.RecordPublish("redis", true, 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ActionsTotal.WithLabelValues("feed", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConflictsTotal.WithLabelValues("care")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DBQueryTotal.WithLabelValues("select", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMissTotal.WithLabelValues("redis")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("redis", "success")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *PetMetrics
	assert.NotPanics(t, func() {
		m.RecordAction("feed", "success")
		m.RecordCommand("care", 0.1)
		m.RecordConflict("care")
		m.RecordRetry("care")
		m.RecordClaim("daily", "success")
		m.RecordPurchase("kibble", "failed")
		m.RecordDBQuery("select", true, 0.1)
		m.RecordCacheHit("redis")
		m.RecordCacheMiss("redis")
		m.RecordPublish("kafka", false, 1)
	})
}
