package kafka

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/lk2023060901/petlink/pkg/config"
	"github.com/lk2023060901/petlink/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// Client Kafka 客户端，按 topic 缓存生产者
type Client struct {
	config *Config
	logger logger.Logger

	transport *kafka.Transport

	producers  map[string]*Producer
	producerMu sync.Mutex

	middlewares []ProducerMiddleware
	newWriter   func(topic string) messageWriter

	closed atomic.Bool
}

// ClientOption 客户端选项
type ClientOption func(*Client)

// WithLogger 设置日志
func WithLogger(l logger.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithProducerMiddleware 添加生产者中间件，按添加顺序由外向内执行
func WithProducerMiddleware(mw ...ProducerMiddleware) ClientOption {
	return func(c *Client) {
		c.middlewares = append(c.middlewares, mw...)
	}
}

// New 创建 Kafka 客户端，不会立即建立连接
func New(cfg *Config, opts ...ClientOption) (*Client, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	transport, err := newTransport(merged)
	if err != nil {
		return nil, err
	}

	c := &Client{
		config:    merged,
		logger:    logger.NewNoop(),
		transport: transport,
		producers: make(map[string]*Producer),
	}
	c.newWriter = c.kafkaWriter
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) kafkaWriter(topic string) messageWriter {
	cfg := c.config.Producer
	w := &kafka.Writer{
		Addr:                   kafka.TCP(c.config.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		MaxAttempts:            cfg.MaxRetries + 1,
		WriteTimeout:           cfg.WriteTimeout,
		ReadTimeout:            cfg.ReadTimeout,
		RequiredAcks:           kafka.RequiredAcks(cfg.RequiredAcks),
		Async:                  cfg.Async,
		Compression:            parseCompression(cfg.Compression),
		AllowAutoTopicCreation: true,
	}
	if c.transport != nil {
		w.Transport = c.transport
	}
	if cfg.Async {
		log := c.logger.Named("kafka.writer")
		w.Completion = func(messages []kafka.Message, err error) {
			if err != nil {
				log.Warn("async kafka write failed", "topic", topic, "count", len(messages), "error", err)
			}
		}
	}
	return w
}

// Producer 获取 topic 对应的生产者
func (c *Client) Producer(topic string) (*Producer, error) {
	if topic == "" {
		return nil, ErrEmptyTopic
	}
	if c.closed.Load() {
		return nil, ErrClientClosed
	}

	c.producerMu.Lock()
	defer c.producerMu.Unlock()
	if p, ok := c.producers[topic]; ok {
		return p, nil
	}
	p := newProducer(topic, c.newWriter(topic), c.middlewares)
	c.producers[topic] = p
	c.logger.Debug("producer created", "topic", topic)
	return p, nil
}

// Config 获取配置
func (c *Client) Config() *Config {
	return c.config
}

// Close 关闭所有生产者
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.producerMu.Lock()
	defer c.producerMu.Unlock()

	var errs []error
	for topic, p := range c.producers {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close producer %s: %w", topic, err))
		}
	}
	c.producers = make(map[string]*Producer)
	return errors.Join(errs...)
}
