package kafka

import (
	"context"
	"time"
)

// Message 消息结构
type Message struct {
	// Topic 由 Producer 填充
	Topic string

	// Key 同一 Key 的消息路由到同一分区
	Key   []byte
	Value []byte

	// Headers 元数据，如 trace 上下文、event_type
	Headers map[string]string

	Timestamp time.Time
}

// PublishFunc 发布函数
type PublishFunc func(ctx context.Context, msg *Message) error

// ProducerMiddleware 生产者中间件
type ProducerMiddleware func(ctx context.Context, msg *Message, next PublishFunc) error

// ProducerStats 生产者统计
type ProducerStats struct {
	MessagesProduced  int64
	MessagesSucceeded int64
	MessagesFailed    int64
}
