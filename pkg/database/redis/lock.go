package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const defaultLockTTL = 10 * time.Second

const unlockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`

// Lock 单节点分布式锁
type Lock struct {
	client *Client
	key    string
	value  string // 持有者标识
	ttl    time.Duration
}

// NewLock 创建分布式锁
func NewLock(client *Client, key string, ttl time.Duration) *Lock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &Lock{
		client: client,
		key:    key,
		value:  uuid.NewString(),
		ttl:    ttl,
	}
}

// TryLock 尝试获取锁，立即返回
func (l *Lock) TryLock(ctx context.Context) (bool, error) {
	ok, err := l.client.rdb.SetNX(ctx, l.key, l.value, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to try lock: %w", err)
	}
	return ok, nil
}

// Unlock 释放锁，只有持有者才能释放
func (l *Lock) Unlock(ctx context.Context) error {
	n, err := l.client.rdb.Eval(ctx, unlockScript, []string{l.key}, l.value).Int64()
	if err != nil {
		return fmt.Errorf("failed to unlock: %w", err)
	}
	if n == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// WithLock 在锁保护下执行 fn，锁被占用时返回 ErrLockFailed
func (c *Client) WithLock(ctx context.Context, key string, ttl time.Duration, fn func() error) (err error) {
	lock := NewLock(c, key, ttl)
	ok, err := lock.TryLock(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrLockFailed
	}

	defer func() {
		if unlockErr := lock.Unlock(context.Background()); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}()
	return fn()
}
