package otel

import "time"

// ExporterType 导出器类型
type ExporterType string

const (
	ExporterTypeOTLPHTTP ExporterType = "otlp-http"
	ExporterTypeStdout   ExporterType = "stdout"
	ExporterTypeNoop     ExporterType = "noop"
)

// Config TracerProvider 配置
type Config struct {
	Enabled      bool         `mapstructure:"enabled"`
	ServiceName  string       `mapstructure:"service_name"`
	Endpoint     string       `mapstructure:"endpoint"` // OTLP HTTP: localhost:4318
	ExporterType ExporterType `mapstructure:"exporter_type"`
	Insecure     bool         `mapstructure:"insecure"`

	// SampleRatio 采样比率，父 span 未采样时不采样
	SampleRatio float64 `mapstructure:"sample_ratio"`

	BatchTimeout    time.Duration     `mapstructure:"batch_timeout"`
	ShutdownTimeout time.Duration     `mapstructure:"shutdown_timeout"`
	Attributes      map[string]string `mapstructure:"attributes"`
}

// DefaultConfig 默认配置（未启用）
func DefaultConfig() *Config {
	return &Config{
		ServiceName:     "petlink",
		Endpoint:        "localhost:4318",
		ExporterType:    ExporterTypeOTLPHTTP,
		Insecure:        true,
		SampleRatio:     1.0,
		BatchTimeout:    5 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		Attributes:      make(map[string]string),
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.ServiceName == "" {
		return ErrInvalidServiceName
	}
	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		return ErrInvalidSamplerRatio
	}
	return nil
}
