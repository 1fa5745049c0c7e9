package kafka

import (
	"context"
	"time"

	"github.com/lk2023060901/petlink/pkg/logger"
	"github.com/lk2023060901/petlink/pkg/otel"
)

// ProducerLoggingMiddleware 生产者日志中间件
func ProducerLoggingMiddleware(log logger.Logger) ProducerMiddleware {
	return func(ctx context.Context, msg *Message, next PublishFunc) error {
		start := time.Now()
		err := next(ctx, msg)
		if err != nil {
			log.WarnContext(ctx, "message publish failed",
				"topic", msg.Topic,
				"key", string(msg.Key),
				"duration", time.Since(start),
				"error", err,
			)
			return err
		}
		log.DebugContext(ctx, "message published", "topic", msg.Topic, "key", string(msg.Key))
		return nil
	}
}

// ProducerTracingMiddleware 创建生产者 span 并将追踪上下文注入消息头
func ProducerTracingMiddleware(tp *otel.TracerProvider) ProducerMiddleware {
	tracer := tp.Tracer("kafka")
	return func(ctx context.Context, msg *Message, next PublishFunc) error {
		ctx, span := tracer.Start(ctx, "kafka.publish",
			otel.WithSpanKind(otel.SpanKindProducer),
			otel.WithAttributes(
				otel.String("messaging.system", "kafka"),
				otel.String("messaging.destination", msg.Topic),
				otel.String("messaging.kafka.message_key", string(msg.Key)),
			),
		)
		defer span.End()

		if msg.Headers == nil {
			msg.Headers = make(map[string]string)
		}
		otel.GetTextMapPropagator().Inject(ctx, otel.MapCarrier(msg.Headers))

		err := next(ctx, msg)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otel.CodeError, err.Error())
		}
		return err
	}
}
