package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru"
	"github.com/lk2023060901/petlink/pkg/logger"
	weberrors "github.com/lk2023060901/petlink/pkg/web/errors"
	"golang.org/x/time/rate"
)

// RateLimitConfig 限流配置，RequestsPerSecond 为 0 时关闭
type RateLimitConfig struct {
	RequestsPerSecond float64  `mapstructure:"requests_per_second"`
	Burst             int      `mapstructure:"burst"`
	MaxKeys           int      `mapstructure:"max_keys"`
	SkipPaths         []string `mapstructure:"skip_paths"`
}

// KeyFunc 限流键生成函数
type KeyFunc func(*gin.Context) string

// RateLimiter 按键限流，限流器保存在固定容量的 LRU 中
type RateLimiter struct {
	cfg      RateLimitConfig
	limiters *lru.Cache
	logger   logger.Logger
}

// NewRateLimiter 创建限流器
func NewRateLimiter(l logger.Logger, cfg RateLimitConfig) (*RateLimiter, error) {
	size := cfg.MaxKeys
	if size <= 0 {
		size = 10000
	}
	cache, err := lru.NewWithEvict(size, func(key, _ interface{}) {
		l.Debug("rate limiter evicted", "key", key)
	})
	if err != nil {
		return nil, err
	}
	return &RateLimiter{cfg: cfg, limiters: cache, logger: l}, nil
}

// Allow 检查是否允许请求
func (rl *RateLimiter) Allow(key string) bool {
	if rl.cfg.RequestsPerSecond <= 0 {
		return true
	}
	return rl.getLimiter(key).Allow()
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	if v, ok := rl.limiters.Get(key); ok {
		return v.(*rate.Limiter)
	}
	limiter := rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.Burst)
	if found, _ := rl.limiters.ContainsOrAdd(key, limiter); found {
		if v, ok := rl.limiters.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return limiter
}

// ByUserOrIP 优先按用户限流，未识别用户时按 IP
func ByUserOrIP(c *gin.Context) string {
	if uid := GetUserID(c); uid != "" {
		return "user:" + uid
	}
	return "ip:" + c.ClientIP()
}

// RateLimit 限流中间件
func RateLimit(rl *RateLimiter, keyFn KeyFunc) gin.HandlerFunc {
	skipPaths := make(map[string]struct{}, len(rl.cfg.SkipPaths))
	for _, path := range rl.cfg.SkipPaths {
		skipPaths[path] = struct{}{}
	}
	if keyFn == nil {
		keyFn = ByUserOrIP
	}

	return func(c *gin.Context) {
		if _, skip := skipPaths[c.Request.URL.Path]; skip {
			c.Next()
			return
		}
		key := keyFn(c)
		if !rl.Allow(key) {
			rl.logger.Warn("rate limit exceeded", "key", key, "path", c.Request.URL.Path)
			c.Header("Retry-After", strconv.Itoa(1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    weberrors.CodeRateLimited,
				"message": "too many requests",
				"data":    nil,
			})
			return
		}
		c.Next()
	}
}
