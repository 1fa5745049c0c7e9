package metrics

import (
	"github.com/lk2023060901/petlink/pkg/prometheus"
	prom "github.com/prometheus/client_golang/prometheus"
)

const (
	resultSuccess = "success"
	resultFailed  = "failed"
)

// PetMetrics 宠物服务指标，nil 接收者上的方法均为空操作，便于测试
type PetMetrics struct {
	// 行为指标
	ActionsTotal   *prom.CounterVec   // 照料动作（按动作、结果）
	ActionDuration *prom.HistogramVec // 命令处理延迟（按命令）

	// 并发指标
	ConflictsTotal *prom.CounterVec // 提交冲突（按命令）
	RetriesTotal   *prom.CounterVec // 冲突重试（按命令）

	// 经济指标
	ClaimsTotal    *prom.CounterVec // 奖励领取（按类型、结果）
	PurchasesTotal *prom.CounterVec // 购买（按道具、结果）

	// 数据库指标
	DBQueryTotal    *prom.CounterVec
	DBQueryDuration *prom.HistogramVec

	// 排行榜缓存指标
	CacheHitTotal  *prom.CounterVec
	CacheMissTotal *prom.CounterVec

	// 事件指标
	EventsPublished *prom.CounterVec // 事件发布（按通道、结果）
}

// New 在客户端的 Registry 上注册全部指标
func New(c *prometheus.Client) *PetMetrics {
	return &PetMetrics{
		ActionsTotal: c.MustNewCounter("pet_actions_total", "照料动作总数",
			[]string{"action", "result"}),
		ActionDuration: c.MustNewHistogram("pet_command_duration_seconds", "命令处理延迟（秒）",
			[]string{"command"}, []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}),

		ConflictsTotal: c.MustNewCounter("pet_conflicts_total", "乐观锁冲突总数",
			[]string{"command"}),
		RetriesTotal: c.MustNewCounter("pet_retries_total", "冲突重试总数",
			[]string{"command"}),

		ClaimsTotal: c.MustNewCounter("pet_claims_total", "奖励领取总数",
			[]string{"kind", "result"}), // kind: mission/daily
		PurchasesTotal: c.MustNewCounter("pet_purchases_total", "商店购买总数",
			[]string{"item", "result"}),

		DBQueryTotal: c.MustNewCounter("db_queries_total", "数据库查询总数",
			[]string{"operation", "result"}),
		DBQueryDuration: c.MustNewHistogram("db_query_duration_seconds", "数据库查询延迟（秒）",
			[]string{"operation"}, []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}),

		CacheHitTotal: c.MustNewCounter("cache_hits_total", "缓存命中总数",
			[]string{"cache_type"}),
		CacheMissTotal: c.MustNewCounter("cache_misses_total", "缓存未命中总数",
			[]string{"cache_type"}),

		EventsPublished: c.MustNewCounter("events_published_total", "领域事件发布总数",
			[]string{"sink", "result"}),
	}
}

func result(success bool) string {
	if success {
		return resultSuccess
	}
	return resultFailed
}

// RecordAction 记录照料动作
func (m *PetMetrics) RecordAction(action string, res string) {
	if m == nil {
		return
	}
	m.ActionsTotal.WithLabelValues(action, res).Inc()
}

// RecordCommand 记录命令耗时
func (m *PetMetrics) RecordCommand(command string, duration float64) {
	if m == nil {
		return
	}
	m.ActionDuration.WithLabelValues(command).Observe(duration)
}

// RecordConflict 记录一次提交冲突
func (m *PetMetrics) RecordConflict(command string) {
	if m == nil {
		return
	}
	m.ConflictsTotal.WithLabelValues(command).Inc()
}

// RecordRetry 记录一次重试
func (m *PetMetrics) RecordRetry(command string) {
	if m == nil {
		return
	}
	m.RetriesTotal.WithLabelValues(command).Inc()
}

// RecordClaim 记录奖励领取
func (m *PetMetrics) RecordClaim(kind string, res string) {
	if m == nil {
		return
	}
	m.ClaimsTotal.WithLabelValues(kind, res).Inc()
}

// RecordPurchase 记录购买
func (m *PetMetrics) RecordPurchase(itemID string, res string) {
	if m == nil {
		return
	}
	m.PurchasesTotal.WithLabelValues(itemID, res).Inc()
}

// RecordDBQuery 记录数据库查询
func (m *PetMetrics) RecordDBQuery(operation string, success bool, duration float64) {
	if m == nil {
		return
	}
	m.DBQueryTotal.WithLabelValues(operation, result(success)).Inc()
	m.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// RecordCacheHit 记录缓存命中
func (m *PetMetrics) RecordCacheHit(cacheType string) {
	if m == nil {
		return
	}
	m.CacheHitTotal.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss 记录缓存未命中
func (m *PetMetrics) RecordCacheMiss(cacheType string) {
	if m == nil {
		return
	}
	m.CacheMissTotal.WithLabelValues(cacheType).Inc()
}

// RecordPublish 记录事件发布
func (m *PetMetrics) RecordPublish(sink string, success bool, count int) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(sink, result(success)).Add(float64(count))
}
