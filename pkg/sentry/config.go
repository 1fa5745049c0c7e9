package sentry

import (
	"errors"
	"time"
)

var (
	ErrNilConfig  = errors.New("sentry: config is nil")
	ErrInvalidDSN = errors.New("sentry: dsn is required")
	ErrSampleRate = errors.New("sentry: sample rate must be between 0 and 1")
)

// Config Sentry 配置
type Config struct {
	Enabled          bool              `mapstructure:"enabled"`
	DSN              string            `mapstructure:"dsn"`
	Environment      string            `mapstructure:"environment"`
	Release          string            `mapstructure:"release"`
	ServerName       string            `mapstructure:"server_name"`
	SampleRate       float64           `mapstructure:"sample_rate"`
	AttachStacktrace bool              `mapstructure:"attach_stacktrace"`
	ShutdownTimeout  time.Duration     `mapstructure:"shutdown_timeout"`
	Debug            bool              `mapstructure:"debug"`
	Tags             map[string]string `mapstructure:"tags"`
}

// DefaultConfig 默认配置（未启用）
func DefaultConfig() *Config {
	return &Config{
		Environment:      "production",
		SampleRate:       1.0,
		AttachStacktrace: true,
		ShutdownTimeout:  2 * time.Second,
		Tags:             make(map[string]string),
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if !c.Enabled {
		return nil
	}
	if c.DSN == "" {
		return ErrInvalidDSN
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return ErrSampleRate
	}
	return nil
}
