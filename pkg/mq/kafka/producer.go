package kafka

import (
	"context"
	"sync/atomic"

	"github.com/segmentio/kafka-go"
)

// messageWriter kafka.Writer 的最小接口
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer 单 topic 生产者
type Producer struct {
	topic   string
	writer  messageWriter
	publish PublishFunc

	produced  atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64

	closed atomic.Bool
}

func newProducer(topic string, w messageWriter, mws []ProducerMiddleware) *Producer {
	p := &Producer{topic: topic, writer: w}

	publish := p.write
	for i := len(mws) - 1; i >= 0; i-- {
		mw, next := mws[i], publish
		publish = func(ctx context.Context, msg *Message) error {
			return mw(ctx, msg, next)
		}
	}
	p.publish = publish
	return p
}

// Publish 发布单条消息
func (p *Producer) Publish(ctx context.Context, msg *Message) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	msg.Topic = p.topic
	p.produced.Add(1)
	if err := p.publish(ctx, msg); err != nil {
		p.failed.Add(1)
		return err
	}
	p.succeeded.Add(1)
	return nil
}

// PublishJSON 发布已编码的 JSON 消息
func (p *Producer) PublishJSON(ctx context.Context, key string, value []byte, headers map[string]string) error {
	if headers == nil {
		headers = make(map[string]string, 1)
	}
	headers["content-type"] = "application/json"
	return p.Publish(ctx, &Message{Key: []byte(key), Value: value, Headers: headers})
}

func (p *Producer) write(ctx context.Context, msg *Message) error {
	km := kafka.Message{
		Key:   msg.Key,
		Value: msg.Value,
		Time:  msg.Timestamp,
	}
	if len(msg.Headers) > 0 {
		km.Headers = make([]kafka.Header, 0, len(msg.Headers))
		for k, v := range msg.Headers {
			km.Headers = append(km.Headers, kafka.Header{Key: k, Value: []byte(v)})
		}
	}
	return p.writer.WriteMessages(ctx, km)
}

// Topic 返回 topic 名称
func (p *Producer) Topic() string {
	return p.topic
}

// Stats 返回统计信息
func (p *Producer) Stats() ProducerStats {
	return ProducerStats{
		MessagesProduced:  p.produced.Load(),
		MessagesSucceeded: p.succeeded.Load(),
		MessagesFailed:    p.failed.Load(),
	}
}

// Close 关闭生产者
func (p *Producer) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.writer.Close()
}
