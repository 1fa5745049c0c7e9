package prometheus

import (
	"errors"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ErrMetricExists 同名指标已注册
var ErrMetricExists = errors.New("prometheus: metric already exists")

// Config Prometheus 配置
type Config struct {
	Namespace              string `mapstructure:"namespace"`
	Subsystem              string `mapstructure:"subsystem"`
	Path                   string `mapstructure:"path"` // 挂载到 Web 服务的路径
	EnableGoCollector      bool   `mapstructure:"enable_go_collector"`
	EnableProcessCollector bool   `mapstructure:"enable_process_collector"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Namespace:              "petlink",
		Path:                   "/metrics",
		EnableGoCollector:      true,
		EnableProcessCollector: true,
	}
}

// Client 持有独立 Registry，按名称去重创建指标
type Client struct {
	config   *Config
	registry *prometheus.Registry

	mu      sync.Mutex
	metrics map[string]prometheus.Collector
}

// New 创建 Prometheus 客户端
func New(cfg *Config) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := &Client{
		config:   cfg,
		registry: prometheus.NewRegistry(),
		metrics:  make(map[string]prometheus.Collector),
	}
	if cfg.EnableGoCollector {
		c.registry.MustRegister(collectors.NewGoCollector())
	}
	if cfg.EnableProcessCollector {
		c.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	return c
}

// Registry 底层 Registry
func (c *Client) Registry() *prometheus.Registry {
	return c.registry
}

// Config 获取配置
func (c *Client) Config() *Config {
	return c.config
}

// Handler 指标暴露 Handler
func (c *Client) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (c *Client) register(name string, collector prometheus.Collector) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.metrics[name]; ok {
		return ErrMetricExists
	}
	if err := c.registry.Register(collector); err != nil {
		return err
	}
	c.metrics[name] = collector
	return nil
}

// NewCounter 创建并注册 CounterVec
func (c *Client) NewCounter(name, help string, labels []string) (*prometheus.CounterVec, error) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.config.Namespace,
		Subsystem: c.config.Subsystem,
		Name:      name,
		Help:      help,
	}, labels)
	if err := c.register(name, counter); err != nil {
		return nil, err
	}
	return counter, nil
}

// NewGauge 创建并注册 GaugeVec
func (c *Client) NewGauge(name, help string, labels []string) (*prometheus.GaugeVec, error) {
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: c.config.Namespace,
		Subsystem: c.config.Subsystem,
		Name:      name,
		Help:      help,
	}, labels)
	if err := c.register(name, gauge); err != nil {
		return nil, err
	}
	return gauge, nil
}

// NewHistogram 创建并注册 HistogramVec，buckets 为 nil 时使用默认分桶
func (c *Client) NewHistogram(name, help string, labels []string, buckets []float64) (*prometheus.HistogramVec, error) {
	if buckets == nil {
		buckets = prometheus.DefBuckets
	}
	histogram := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: c.config.Namespace,
		Subsystem: c.config.Subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
	if err := c.register(name, histogram); err != nil {
		return nil, err
	}
	return histogram, nil
}

// MustNewCounter 创建 Counter，失败则 panic
func (c *Client) MustNewCounter(name, help string, labels []string) *prometheus.CounterVec {
	v, err := c.NewCounter(name, help, labels)
	if err != nil {
		panic(err)
	}
	return v
}

// MustNewGauge 创建 Gauge，失败则 panic
func (c *Client) MustNewGauge(name, help string, labels []string) *prometheus.GaugeVec {
	v, err := c.NewGauge(name, help, labels)
	if err != nil {
		panic(err)
	}
	return v
}

// MustNewHistogram 创建 Histogram，失败则 panic
func (c *Client) MustNewHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	v, err := c.NewHistogram(name, help, labels, buckets)
	if err != nil {
		panic(err)
	}
	return v
}
