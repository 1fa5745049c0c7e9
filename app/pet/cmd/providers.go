package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/petlink/app/pet/internal/dao"
	"github.com/lk2023060901/petlink/app/pet/internal/engine"
	"github.com/lk2023060901/petlink/app/pet/internal/gameconfig"
	"github.com/lk2023060901/petlink/app/pet/internal/handler"
	"github.com/lk2023060901/petlink/app/pet/internal/job"
	"github.com/lk2023060901/petlink/app/pet/internal/metrics"
	"github.com/lk2023060901/petlink/app/pet/internal/publisher"
	"github.com/lk2023060901/petlink/app/pet/internal/repository"
	"github.com/lk2023060901/petlink/app/pet/internal/service"
	"github.com/lk2023060901/petlink/pkg/app"
	"github.com/lk2023060901/petlink/pkg/database/postgres"
	"github.com/lk2023060901/petlink/pkg/database/redis"
	"github.com/lk2023060901/petlink/pkg/logger"
	"github.com/lk2023060901/petlink/pkg/mq/kafka"
	"github.com/lk2023060901/petlink/pkg/otel"
	"github.com/lk2023060901/petlink/pkg/prometheus"
	"github.com/lk2023060901/petlink/pkg/web"
	"github.com/lk2023060901/petlink/pkg/web/middleware"
)

const (
	driverPostgres = "postgres"
	driverMemory   = "memory"

	startupTimeout = 30 * time.Second
)

// provideTracer 提供链路追踪
func provideTracer(cfg *Config) (*otel.TracerProvider, func(), error) {
	tp, err := otel.New(&cfg.Otel)
	if err != nil {
		return nil, nil, err
	}
	return tp, func() { _ = tp.Close() }, nil
}

// providePrometheus 提供指标注册表
func providePrometheus(cfg *Config) *prometheus.Client {
	return prometheus.New(&cfg.Prometheus)
}

// providePostgres 仅在 postgres 驱动下建立连接池
func providePostgres(cfg *Config) (*postgres.Client, func(), error) {
	if cfg.Storage.Driver != driverPostgres {
		return nil, func() {}, nil
	}
	db, err := postgres.New(&cfg.Postgres)
	if err != nil {
		return nil, nil, err
	}
	return db, db.Close, nil
}

// provideRedis 未配置节点时返回 nil
func provideRedis(cfg *Config) (*redis.Client, func(), error) {
	if cfg.Redis.Standalone == nil && cfg.Redis.Cluster == nil {
		return nil, func() {}, nil
	}
	rdb, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	return rdb, func() { _ = rdb.Close() }, nil
}

// provideKafkaProducer 未配置 broker 时返回 nil
func provideKafkaProducer(cfg *Config, tp *otel.TracerProvider, l logger.Logger) (*kafka.Producer, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, func() {}, nil
	}
	client, err := kafka.New(&cfg.Kafka.Config,
		kafka.WithLogger(l),
		kafka.WithProducerMiddleware(
			kafka.ProducerTracingMiddleware(tp),
			kafka.ProducerLoggingMiddleware(l.Named("kafka.producer")),
		),
	)
	if err != nil {
		return nil, nil, err
	}
	topic := cfg.Kafka.Topic
	if topic == "" {
		topic = "pet-events"
	}
	producer, err := client.Producer(topic)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return producer, func() {
		_ = producer.Close()
		_ = client.Close()
	}, nil
}

// provideGameConfig 提供配置表
func provideGameConfig(cfg *Config, l logger.Logger) (*gameconfig.Store, error) {
	return gameconfig.NewStore(&cfg.GameConfig, l)
}

// provideEngine 提供规则引擎
func provideEngine(cfg *Config, tables *gameconfig.Store) (*engine.Engine, error) {
	return engine.New(&cfg.Engine, tables)
}

// provideGateway 按驱动选择持久化实现
func provideGateway(cfg *Config, db *postgres.Client, m *metrics.PetMetrics, l logger.Logger) (repository.Gateway, error) {
	switch cfg.Storage.Driver {
	case driverMemory:
		l.Warn("using in-memory storage, data is lost on restart")
		return repository.NewMemoryGateway(l), nil
	case driverPostgres, "":
		if db == nil {
			return nil, fmt.Errorf("storage driver %q requires postgres config", driverPostgres)
		}
		gw := repository.NewPostgresGateway(db,
			dao.NewPetDAO(l, m),
			dao.NewInventoryDAO(l, m),
			dao.NewShopDAO(l, m),
			dao.NewMissionDAO(l, m),
			dao.NewStreakDAO(l, m),
			dao.NewLedgerDAO(l, m),
			l,
		)
		if cfg.Storage.AutoMigrate {
			ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
			defer cancel()
			if err := gw.Migrate(ctx); err != nil {
				return nil, err
			}
		}
		return gw, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// provideLeaderboard 没有 Redis 时排行榜直接读数据库
func provideLeaderboard(rdb *redis.Client, m *metrics.PetMetrics, l logger.Logger) service.Leaderboard {
	if rdb == nil {
		return nil
	}
	return dao.NewLeaderboardDAO(rdb, l, m)
}

// providePublisher 按配置组装事件投递目标
func providePublisher(cfg *Config, rdb *redis.Client, producer *kafka.Producer, m *metrics.PetMetrics, l logger.Logger) publisher.Publisher {
	var sinks []publisher.Sink
	for _, name := range cfg.Events.Sinks {
		switch name {
		case "log":
			sinks = append(sinks, publisher.NewLogSink(l))
		case "redis":
			if rdb == nil {
				l.Warn("redis event sink configured without redis, skipped")
				continue
			}
			sinks = append(sinks, publisher.NewRedisSink(rdb))
		case "kafka":
			if producer == nil {
				l.Warn("kafka event sink configured without brokers, skipped")
				continue
			}
			sinks = append(sinks, publisher.NewKafkaSink(producer))
		default:
			l.Warn("unknown event sink, skipped", "sink", name)
		}
	}
	return publisher.NewMulti(l, m, sinks...)
}

// provideService 创建服务并同步商品表，配置表热加载后再次同步
func provideService(
	gw repository.Gateway,
	eng *engine.Engine,
	pub publisher.Publisher,
	lb service.Leaderboard,
	tables *gameconfig.Store,
	tp *otel.TracerProvider,
	m *metrics.PetMetrics,
	l logger.Logger,
) (*service.PetService, error) {
	svc := service.NewPetService(gw, eng, pub, tp, m, l, service.WithLeaderboard(lb))

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	if err := svc.SyncCatalog(ctx); err != nil {
		return nil, err
	}
	tables.OnLoad(func(*gameconfig.Tables) {
		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		defer cancel()
		if err := svc.SyncCatalog(ctx); err != nil {
			l.Error("failed to sync shop catalog after reload", "error", err)
		}
	})
	return svc, nil
}

// provideWebServer 创建 HTTP 服务并注册路由
func provideWebServer(cfg *Config, h *handler.PetHandler, tp *otel.TracerProvider, prom *prometheus.Client, l logger.Logger) (*web.Server, error) {
	rl, err := middleware.NewRateLimiter(l.Named("web.ratelimit"), cfg.Web.RateLimit)
	if err != nil {
		return nil, err
	}
	srv, err := web.NewServer(&cfg.Web, l,
		web.WithMiddleware(
			middleware.Tracing(tp, app.AppName),
			middleware.Metrics(middleware.NewHTTPMetrics(prom)),
		),
	)
	if err != nil {
		return nil, err
	}

	r := srv.Router()
	r.GET(prom.Config().Path, gin.WrapH(prom.Handler()))
	r.GET("/healthz", func(c *gin.Context) { web.Success(c, gin.H{"status": "ok"}) })
	h.Register(r, middleware.RateLimit(rl, middleware.ByUserOrIP))
	return srv, nil
}

// provideRebuilder 没有 Redis 时不启动排行榜重建任务
func provideRebuilder(cfg *Config, svc *service.PetService, lb service.Leaderboard, rdb *redis.Client, l logger.Logger) (*job.LeaderboardRebuilder, error) {
	if rdb == nil || lb == nil {
		return nil, nil
	}
	return job.NewLeaderboardRebuilder(&cfg.Leaderboard, svc, lb, rdb, l)
}

// provideApp 组装应用
func provideApp(l logger.Logger, srv *web.Server, rebuilder *job.LeaderboardRebuilder) *app.App {
	a := app.New(app.WithName(app.AppName), app.WithLogger(l))
	a.AppendRunner(srv)
	if rebuilder != nil {
		a.AppendRunner(rebuilder)
	}
	return a
}
