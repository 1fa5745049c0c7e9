package publisher

import (
	"context"
	"fmt"

	"github.com/lk2023060901/petlink/app/pet/internal/model"
)

// ChannelPrefix 用户事件频道前缀
const ChannelPrefix = "pet:events:"

// redisPublisher pkg/database/redis.Client 的发布能力
type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

// RedisSink 发布到 Redis pub/sub，频道为 pet:events:{userId}
type RedisSink struct {
	client redisPublisher
}

// NewRedisSink 创建 Redis 通道
func NewRedisSink(client redisPublisher) *RedisSink {
	return &RedisSink{client: client}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Publish(ctx context.Context, events []model.Event) error {
	for _, ev := range events {
		data, err := encode(ev)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}
		if err := s.client.Publish(ctx, ChannelPrefix+ev.UserID, data); err != nil {
			return err
		}
	}
	return nil
}
