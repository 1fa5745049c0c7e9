package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ZItem 有序集合元素
type ZItem struct {
	Member string
	Score  float64
}

func (c *Client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", ErrNil
		}
		return "", fmt.Errorf("get failed: %w", err)
	}
	return val, nil
}

func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if err := c.rdb.Set(ctx, key, value, expiration).Err(); err != nil {
		return fmt.Errorf("set failed: %w", err)
	}
	return nil
}

func (c *Client) Del(ctx context.Context, keys ...string) (int64, error) {
	n, err := c.rdb.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("del failed: %w", err)
	}
	return n, nil
}

// ZAdd 添加或更新有序集合成员
func (c *Client) ZAdd(ctx context.Context, key string, members ...ZItem) (int64, error) {
	n, err := c.rdb.ZAdd(ctx, key, toZ(members)...).Result()
	if err != nil {
		return 0, fmt.Errorf("zadd failed: %w", err)
	}
	return n, nil
}

// ZRevRangeWithScores 按分数从大到小获取成员
func (c *Client) ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]ZItem, error) {
	zs, err := c.rdb.ZRevRangeWithScores(ctx, key, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrange with scores failed: %w", err)
	}
	items := make([]ZItem, len(zs))
	for i, z := range zs {
		member, _ := z.Member.(string)
		items[i] = ZItem{Member: member, Score: z.Score}
	}
	return items, nil
}

// ZRevRank 获取成员排名（0 为第一名），不存在返回 ErrNil
func (c *Client) ZRevRank(ctx context.Context, key, member string) (int64, error) {
	rank, err := c.rdb.ZRevRank(ctx, key, member).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, ErrNil
		}
		return 0, fmt.Errorf("zrevrank failed: %w", err)
	}
	return rank, nil
}

// ZCard 获取有序集合成员数量
func (c *Client) ZCard(ctx context.Context, key string) (int64, error) {
	n, err := c.rdb.ZCard(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("zcard failed: %w", err)
	}
	return n, nil
}

// ZReplace 用 members 原子替换整个有序集合（写入临时键后 RENAME）
// 集群模式下 key 需带 hash tag，保证临时键与 key 位于同一 slot
func (c *Client) ZReplace(ctx context.Context, key string, members []ZItem) error {
	if len(members) == 0 {
		_, err := c.Del(ctx, key)
		return err
	}

	tmp := key + ":rebuild"
	_, err := c.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, tmp)
		pipe.ZAdd(ctx, tmp, toZ(members)...)
		pipe.Rename(ctx, tmp, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("zreplace failed: %w", err)
	}
	return nil
}

// Publish 发布消息到频道
func (c *Client) Publish(ctx context.Context, channel string, message interface{}) error {
	if err := c.rdb.Publish(ctx, channel, message).Err(); err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}
	return nil
}

func toZ(members []ZItem) []goredis.Z {
	zs := make([]goredis.Z, len(members))
	for i, m := range members {
		zs[i] = goredis.Z{Score: m.Score, Member: m.Member}
	}
	return zs
}
