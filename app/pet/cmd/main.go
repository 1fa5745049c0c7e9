package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lk2023060901/petlink/app/pet/internal/engine"
	"github.com/lk2023060901/petlink/app/pet/internal/gameconfig"
	"github.com/lk2023060901/petlink/app/pet/internal/job"
	"github.com/lk2023060901/petlink/pkg/app"
	"github.com/lk2023060901/petlink/pkg/database/postgres"
	"github.com/lk2023060901/petlink/pkg/database/redis"
	"github.com/lk2023060901/petlink/pkg/logger"
	"github.com/lk2023060901/petlink/pkg/mq/kafka"
	"github.com/lk2023060901/petlink/pkg/otel"
	"github.com/lk2023060901/petlink/pkg/prometheus"
	"github.com/lk2023060901/petlink/pkg/sentry"
	"github.com/lk2023060901/petlink/pkg/web"
)

// Config 宠物服务完整配置
type Config struct {
	Log    logger.Config `mapstructure:"log"`
	Sentry sentry.Config `mapstructure:"sentry"`

	// Web HTTP 服务
	Web web.Config `mapstructure:"web"`

	// Storage 存储驱动选择
	Storage  StorageConfig   `mapstructure:"storage"`
	Postgres postgres.Config `mapstructure:"postgres"`

	// Redis 未配置节点时关闭排行榜缓存与 Redis 事件
	Redis redis.Config `mapstructure:"redis"`

	// Kafka 未配置 broker 时关闭
	Kafka KafkaConfig `mapstructure:"kafka"`

	Otel       otel.Config       `mapstructure:"otel"`
	Prometheus prometheus.Config `mapstructure:"prometheus"`

	Engine      engine.Config         `mapstructure:"engine"`
	GameConfig  gameconfig.Config     `mapstructure:"game_config"`
	Events      EventsConfig          `mapstructure:"events"`
	Leaderboard job.LeaderboardConfig `mapstructure:"leaderboard"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	// Driver postgres 或 memory
	Driver string `mapstructure:"driver"`
	// AutoMigrate 启动时建表
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// KafkaConfig 事件流配置
type KafkaConfig struct {
	kafka.Config `mapstructure:",squash"`
	Topic        string `mapstructure:"topic"`
}

// EventsConfig 事件投递配置
type EventsConfig struct {
	// Sinks 可选 log, redis, kafka
	Sinks []string `mapstructure:"sinks"`
}

func main() {
	var cfg Config

	// 1. 加载配置
	path, err := app.LoadConfig(os.Args[1:], &cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	// 2. 错误上报
	sc, err := sentry.New(&cfg.Sentry)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to init sentry:", err)
		os.Exit(1)
	}
	defer sc.Close()

	// 3. 初始化主日志，error 级别同步到 Sentry
	l, err := logger.New(&cfg.Log, logger.WithHooks(sentry.LoggerHook(sc)))
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	l.Info("config loaded", "path", path, "storage", cfg.Storage.Driver)

	// 4. 通过 Wire 初始化应用
	application, cleanup, err := InitApp(&cfg, l)
	if err != nil {
		l.Error("failed to initialize application", "error", err)
		_ = l.Sync()
		os.Exit(1)
	}
	defer cleanup()

	// 5. 运行服务
	if err := application.Run(context.Background()); err != nil {
		l.Error("application exited with error", "error", err)
	}
}
