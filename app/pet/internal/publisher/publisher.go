package publisher

import (
	"context"
	"encoding/json"

	"github.com/lk2023060901/petlink/app/pet/internal/metrics"
	"github.com/lk2023060901/petlink/app/pet/internal/model"
	"github.com/lk2023060901/petlink/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Publisher 领域事件发布器，提交成功后调用
type Publisher interface {
	Publish(ctx context.Context, events []model.Event) error
}

// Sink 带名称的发布通道
type Sink interface {
	Publisher
	Name() string
}

// Multi 并发扇出到多个通道，单个通道失败不影响其他通道
type Multi struct {
	sinks   []Sink
	logger  logger.Logger
	metrics *metrics.PetMetrics
}

// NewMulti 创建扇出发布器
func NewMulti(l logger.Logger, m *metrics.PetMetrics, sinks ...Sink) *Multi {
	return &Multi{
		sinks:   sinks,
		logger:  l.Named("publisher"),
		metrics: m,
	}
}

// Publish 实现 Publisher，返回第一个失败通道的错误
func (p *Multi) Publish(ctx context.Context, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	var eg errgroup.Group
	for _, sink := range p.sinks {
		eg.Go(func() error {
			err := sink.Publish(ctx, events)
			p.metrics.RecordPublish(sink.Name(), err == nil, len(events))
			if err != nil {
				p.logger.WarnContext(ctx, "failed to publish events",
					"sink", sink.Name(),
					"events", len(events),
					"error", err,
				)
			}
			return err
		})
	}
	return eg.Wait()
}

// Sinks 已配置的通道
func (p *Multi) Sinks() []Sink {
	return p.sinks
}

// LogSink 把事件写入结构化日志
type LogSink struct {
	logger logger.Logger
}

// NewLogSink 创建日志通道
func NewLogSink(l logger.Logger) *LogSink {
	return &LogSink{logger: l.Named("events")}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Publish(ctx context.Context, events []model.Event) error {
	for _, ev := range events {
		s.logger.InfoContext(ctx, "domain event",
			"type", string(ev.Type),
			"user_id", ev.UserID,
			"payload", ev.Payload,
		)
	}
	return nil
}

func encode(ev model.Event) ([]byte, error) {
	return json.Marshal(ev)
}
