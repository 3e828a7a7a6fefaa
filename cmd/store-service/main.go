// cmd/store-service/main.go
package main

import (
	"context"

	"go.opentelemetry.io/otel"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"obsidianwear/internal/pkg/bootstrap"
	"obsidianwear/internal/pkg/httpclient"
	"obsidianwear/internal/pkg/logger"
	"obsidianwear/internal/pkg/mq"
	pkgredis "obsidianwear/internal/pkg/redis"
	"obsidianwear/internal/service/store/application"
	"obsidianwear/internal/service/store/domain/port"
	"obsidianwear/internal/service/store/infrastructure"
	"obsidianwear/internal/service/store/infrastructure/adapter"
	"obsidianwear/internal/service/store/infrastructure/cache"
	"obsidianwear/internal/service/store/interfaces"
)

const serviceName = "store-service"

// main 函数是应用的"组装根" (Composition Root)
// 它的核心职责是：创建并组装所有依赖项，然后启动应用。
func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	// 1. MySQL：库存台账和订单的权威存储
	db, err := gorm.Open(mysql.Open(cfg.Infra.Mysql.DSN), &gorm.Config{})
	if err != nil {
		logger.Logger().Fatal().Err(err).Msg("failed to connect to mysql")
	}
	if err := db.AutoMigrate(infrastructure.Models()...); err != nil {
		logger.Logger().Fatal().Err(err).Msg("failed to run migrations")
	}

	productRepo := infrastructure.NewGormProductRepository(db)
	orderRepo := infrastructure.NewGormOrderRepository(db)
	ledger := infrastructure.NewGormStockLedger(db)

	// 2. 读侧缓存：配置了 Redis 则用共享后端，否则退回进程内缓存
	janitorCtx, cancelJanitor := context.WithCancel(context.Background())
	var productCache port.ProductCache
	var redisClient *pkgredis.Client
	if cfg.Infra.Redis.Addr != "" {
		redisClient, err = pkgredis.NewClient(janitorCtx, cfg.Infra.Redis.Addr, cfg.Infra.Redis.Password, cfg.Infra.Redis.DB)
		if err != nil {
			logger.Logger().Warn().Err(err).Msg("redis unavailable, falling back to in-process cache")
		} else if redisCache, err := cache.NewRedis(redisClient); err != nil {
			logger.Logger().Warn().Err(err).Msg("redis cache init failed, falling back to in-process cache")
		} else {
			productCache = redisCache
		}
	}
	if productCache == nil {
		mem := cache.NewMemory(nil)
		mem.StartJanitor(janitorCtx, cfg.App.Cache.RefreshInterval.Std())
		productCache = mem
	}

	// 3. 通知通道：Kafka 优先，其次直连邮件 API，都没有则静默
	tracer := otel.Tracer(serviceName)
	var notifier port.NotificationProducer = adapter.NoopNotifier{}
	switch {
	case len(cfg.Infra.Kafka.Brokers) > 0 && cfg.Infra.Kafka.NotificationTopic != "":
		writer := mq.NewWriter(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.NotificationTopic)
		notifier = adapter.NewNotificationKafkaAdapter(writer)
	case cfg.Infra.Mailer.Endpoint != "":
		notifier = adapter.NewMailerHTTPAdapter(httpclient.NewClient(tracer), cfg.Infra.Mailer.Endpoint)
	}

	service := application.NewStoreService(
		productRepo, orderRepo, ledger, productCache, notifier,
		tracer, cfg.App.Cache.TTL.Std(), nil,
	)
	handler := interfaces.NewStoreHandler(service)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        cfg.Server.Port,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: func(ctx context.Context) {
			cancelJanitor()
			if err := notifier.Close(); err != nil {
				logger.Logger().Error().Err(err).Msg("failed to close notifier")
			}
			if redisClient != nil {
				if err := redisClient.Close(); err != nil {
					logger.Logger().Error().Err(err).Msg("failed to close redis client")
				}
			}
		},
	})
}
