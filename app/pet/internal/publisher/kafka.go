package publisher

import (
	"context"
	"fmt"

	"github.com/lk2023060901/petlink/app/pet/internal/model"
)

// jsonProducer pkg/mq/kafka.Producer 的 JSON 发布能力
type jsonProducer interface {
	PublishJSON(ctx context.Context, key string, value []byte, headers map[string]string) error
}

// KafkaSink 发布到 Kafka topic，以用户 id 为 key 保证同一用户有序
type KafkaSink struct {
	producer jsonProducer
}

// NewKafkaSink 创建 Kafka 通道
func NewKafkaSink(producer jsonProducer) *KafkaSink {
	return &KafkaSink{producer: producer}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Publish(ctx context.Context, events []model.Event) error {
	for _, ev := range events {
		data, err := encode(ev)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}
		headers := map[string]string{"event-type": string(ev.Type)}
		if err := s.producer.PublishJSON(ctx, ev.UserID, data, headers); err != nil {
			return err
		}
	}
	return nil
}
