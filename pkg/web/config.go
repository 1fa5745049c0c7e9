package web

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/petlink/pkg/web/middleware"
)

var ErrInvalidConfig = errors.New("web: invalid config")

// Config Web 服务配置
type Config struct {
	Port            int                        `mapstructure:"port"`
	Mode            string                     `mapstructure:"mode"` // debug, release, test
	ReadTimeout     time.Duration              `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration              `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration              `mapstructure:"shutdown_timeout"`
	EnableTLS       bool                       `mapstructure:"enable_tls"`
	CertFile        string                     `mapstructure:"cert_file"`
	KeyFile         string                     `mapstructure:"key_file"`
	DisableCORS     bool                       `mapstructure:"disable_cors"`
	RateLimit       middleware.RateLimitConfig `mapstructure:"rate_limit"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Port:            8080,
		Mode:            gin.ReleaseMode,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		RateLimit: middleware.RateLimitConfig{
			RequestsPerSecond: 20,
			Burst:             40,
			MaxKeys:           10000,
		},
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return ErrInvalidConfig
	}
	if c.EnableTLS && (c.CertFile == "" || c.KeyFile == "") {
		return ErrInvalidConfig
	}
	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		return ErrInvalidConfig
	}
	return nil
}
