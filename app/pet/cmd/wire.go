//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/lk2023060901/petlink/app/pet/internal/handler"
	"github.com/lk2023060901/petlink/app/pet/internal/metrics"
	"github.com/lk2023060901/petlink/pkg/app"
	"github.com/lk2023060901/petlink/pkg/logger"
)

func InitApp(cfg *Config, l logger.Logger) (*app.App, func(), error) {
	panic(wire.Build(
		// 1. 基础设施
		provideTracer,
		providePrometheus,
		providePostgres,
		provideRedis,
		provideKafkaProducer,

		// 2. 指标
		metrics.New,

		// 3. 配置表与规则引擎
		provideGameConfig,
		provideEngine,

		// 4. 持久化
		provideGateway,
		provideLeaderboard,

		// 5. 事件投递
		providePublisher,

		// 6. 业务层与接口层
		provideService,
		handler.NewPetHandler,

		// 7. 运行组件
		provideWebServer,
		provideRebuilder,
		provideApp,
	))
}
