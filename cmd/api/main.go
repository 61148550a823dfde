package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra/db"
	infraKafka "storefront/internal/infra/kafka"
	"storefront/internal/infra/redisx"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/logging"
	"storefront/internal/ratelimit"
	repo "storefront/internal/repository"
	"storefront/internal/server"
	"storefront/internal/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	//.envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logging.New(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	//Repository（GORM実装）生成
	store := infraRepo.NewProductGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)

	clock := &realClock{}

	catalogUC := usecase.NewCatalogUsecase(store, txm, clock, log.Named("catalog"))
	var catalog usecase.CatalogReader = catalogUC

	//Redisがあればレート制限とキャッシュに使う。無ければプロセス内の制限だけ。
	var limiter repo.RateLimiter = ratelimit.NewMemoryLimiter()
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()

		if err := redisx.Ping(ctx, rdb); err != nil {
			return err
		}
		limiter = redisx.NewRateLimiter(rdb)

		cache := redisx.NewTaggedCache(rdb)
		catalog = usecase.NewCachedCatalog(catalogUC, cache, cfg.CacheTTL, log.Named("cache"))

		//商品の変更イベントでキャッシュを消す
		if len(cfg.KafkaBrokers) > 0 {
			inv := usecase.NewCatalogInvalidator(cache, log.Named("invalidator"))
			consumer := infraKafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, infraKafka.TopicProductChanged, log.Named("kafka"))
			go func() {
				if err := consumer.Start(ctx, infraKafka.ProductChangedHandler(inv, log.Named("kafka"))); err != nil {
					log.Error("kafka consumer stopped", zap.Error(err))
				}
			}()
		}
	} else if len(cfg.KafkaBrokers) > 0 {
		log.Warn("KAFKA_BROKERS is set but REDIS_ADDR is not; cache invalidation is disabled")
	}

	searchUC := usecase.NewSearchUsecase(store, limiter, clock, log.Named("search"), cfg.SearchRateWindow, cfg.SearchRateMax)
	adminUC := usecase.NewAdminCatalogUsecase(catalogUC, auditRepo, clock, log.Named("admin"))

	//Handler生成
	e := server.New(cfg, log, server.Handlers{
		Product: handler.NewProductHandler(catalog),
		Search:  handler.NewSearchHandler(searchUC),
		Admin:   handler.NewAdminProductHandler(adminUC),
		Health:  handler.NewHealthHandler(db.NewHealthCheck(gormDB)),
	})

	//Server起動
	return server.Run(ctx, e, listenAddr(cfg.Port), log)
}

func listenAddr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] != ':' {
		return ":" + port
	}
	return port
}
