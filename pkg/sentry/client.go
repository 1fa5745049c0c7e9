package sentry

import (
	"fmt"
	"sync/atomic"

	"github.com/getsentry/sentry-go"
	"github.com/lk2023060901/petlink/pkg/config"
	"github.com/lk2023060901/petlink/pkg/logger"
	"go.uber.org/zap/zapcore"
)

// Client Sentry 客户端，未启用时所有方法为空操作
type Client struct {
	hub      *sentry.Hub
	config   *Config
	closed   atomic.Bool
	captured atomic.Uint64
}

// Option 客户端选项
type Option func(*sentry.ClientOptions)

// WithBeforeSend 上报前回调，返回 nil 则丢弃事件
func WithBeforeSend(fn func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event) Option {
	return func(o *sentry.ClientOptions) {
		o.BeforeSend = fn
	}
}

// New 创建 Sentry 客户端，使用独立 Hub
func New(cfg *Config, opts ...Option) (*Client, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	if !merged.Enabled {
		return &Client{config: merged}, nil
	}

	clientOpts := sentry.ClientOptions{
		Dsn:              merged.DSN,
		Environment:      merged.Environment,
		Release:          merged.Release,
		ServerName:       merged.ServerName,
		SampleRate:       merged.SampleRate,
		AttachStacktrace: merged.AttachStacktrace,
		Debug:            merged.Debug,
	}
	for _, opt := range opts {
		opt(&clientOpts)
	}

	client, err := sentry.NewClient(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create sentry client: %w", err)
	}

	hub := sentry.NewHub(client, sentry.NewScope())
	hub.ConfigureScope(func(scope *sentry.Scope) {
		for k, v := range merged.Tags {
			scope.SetTag(k, v)
		}
	})

	return &Client{hub: hub, config: merged}, nil
}

// Enabled 是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.hub != nil && !c.closed.Load()
}

// CaptureException 上报错误
func (c *Client) CaptureException(err error) {
	if !c.Enabled() {
		return
	}
	c.captured.Add(1)
	c.hub.CaptureException(err)
}

// CaptureMessage 上报消息，extra 为附加字段
func (c *Client) CaptureMessage(message string, level sentry.Level, extra map[string]interface{}) {
	if !c.Enabled() {
		return
	}
	c.captured.Add(1)
	c.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(level)
		if len(extra) > 0 {
			scope.SetContext("fields", extra)
		}
		c.hub.CaptureMessage(message)
	})
}

// Captured 已提交的事件数
func (c *Client) Captured() uint64 {
	return c.captured.Load()
}

// Close 刷新并关闭
func (c *Client) Close() error {
	if c.hub == nil || c.closed.Swap(true) {
		return nil
	}
	c.hub.Flush(c.config.ShutdownTimeout)
	return nil
}

// LoggerHook 将 error 及以上等级的日志转为 Sentry 事件
func LoggerHook(c *Client) logger.Hook {
	return logger.LevelHook(zapcore.ErrorLevel, func(entry zapcore.Entry, fields []zapcore.Field) {
		if !c.Enabled() {
			return
		}
		enc := zapcore.NewMapObjectEncoder()
		for _, f := range fields {
			f.AddTo(enc)
		}
		if entry.LoggerName != "" {
			enc.Fields["logger"] = entry.LoggerName
		}
		c.CaptureMessage(entry.Message, sentry.LevelError, enc.Fields)
	})
}
