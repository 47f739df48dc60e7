package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace/internal/config"
	"marketplace/internal/handler"
	"marketplace/internal/infra/broker"
	"marketplace/internal/infra/cache"
	"marketplace/internal/infra/db"
	"marketplace/internal/infra/gemini"
	infraRepo "marketplace/internal/infra/repository"
	"marketplace/internal/infra/storage"
	"marketplace/internal/logger"
	"marketplace/internal/metrics"
	"marketplace/internal/pricing"
	"marketplace/internal/retry"
	"marketplace/internal/server"
	"marketplace/internal/session"
	"marketplace/internal/usecase"
	"marketplace/internal/validator"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

const serviceName = "marketplace-api"

func main() {
	//.envがあれば読む（無ければ環境変数のみ）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLog := newBootLogger()
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(serviceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// 設定を読む前に使うロガー
func newBootLogger() zerolog.Logger {
	return logger.New(serviceName, "info")
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	//DB接続
	gormDB, err := db.Connect(cfg.Postgres.DSN())
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		defer sqlDB.Close()
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	profileRepo := infraRepo.NewProfileGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//外部サービス（未設定なら無効化して続行）
	objects := newStorage(ctx, cfg, log)
	events, closeEvents := newPublisher(cfg, log)
	defer closeEvents()
	descCache, closeCache := newDescriptionCache(ctx, cfg, log)
	defer closeCache()
	generator := newGenerator(ctx, cfg, log)

	//usecaseに渡す部品
	clock := usecase.SystemClock{}
	ids := usecase.UUIDGenerator{}
	formatter := pricing.NewFormatter(cfg.BCVRate)
	sessions := session.NewManager()
	bootstrapper := session.NewBootstrapper(
		profileRepo,
		retry.Fixed(cfg.ProfileRetry.Attempts, cfg.ProfileRetry.Delay),
		log.With().Str("component", "bootstrap").Logger(),
	)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(cfg, userRepo, profileRepo, bootstrapper, sessions, objects,
		validator.NewAuthValidator(userRepo), clock, ids, log)
	cartUC := usecase.NewCartUsecase(productRepo, formatter)
	checkoutUC := usecase.NewCheckoutUsecase(txm, orderRepo, objects, events, cfg.DeliveryFeeUSD, clock, ids, log)
	describer := usecase.NewDescriber(generator, descCache, log)
	productUC := usecase.NewProductUsecase(productRepo, orderRepo, txm, objects, describer, formatter, clock, ids, log)

	//Handler生成
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	e := server.New(cfg.FEURL, log, metrics.NewHTTP(reg, serviceName))
	server.RegisterRoutes(e, server.Handlers{
		Auth:    handler.NewAuthHandler(authUC),
		Cart:    handler.NewCartHandler(cartUC),
		Product: handler.NewProductHandler(productUC),
		Order:   handler.NewOrderHandler(checkoutUC),
		Seller:  handler.NewSellerHandler(productUC),
	}, cfg.JWTSecret, userRepo, authUC)

	//Server起動
	return server.Run(ctx, e, cfg.Addr(), log)
}

func newStorage(ctx context.Context, cfg config.Config, log zerolog.Logger) usecase.ObjectStorage {
	if cfg.Storage.Endpoint == "" {
		log.Warn().Msg("STORAGE_ENDPOINT not set; uploads disabled")
		return storage.Disabled{}
	}
	s, err := storage.NewMinIO(storage.Options{
		Endpoint:      cfg.Storage.Endpoint,
		AccessKey:     cfg.Storage.AccessKey,
		SecretKey:     cfg.Storage.SecretKey,
		Region:        cfg.Storage.Region,
		Bucket:        cfg.Storage.Bucket,
		UseSSL:        cfg.Storage.UseSSL,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
	})
	if err != nil {
		log.Warn().Err(err).Msg("object storage unavailable; uploads disabled")
		return storage.Disabled{}
	}

	bctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.EnsureBucket(bctx); err != nil {
		log.Warn().Err(err).Msg("ensure bucket")
	}
	return s
}

func newPublisher(cfg config.Config, log zerolog.Logger) (usecase.EventPublisher, func()) {
	if cfg.Rabbit.URL == "" {
		return broker.Nop{}, func() {}
	}
	r, err := broker.DialRabbit(cfg.Rabbit.URL, cfg.Rabbit.Exchange)
	if err != nil {
		log.Warn().Err(err).Msg("rabbitmq unavailable; events disabled")
		return broker.Nop{}, func() {}
	}
	return r, func() { _ = r.Close() }
}

func newDescriptionCache(ctx context.Context, cfg config.Config, log zerolog.Logger) (usecase.DescriptionCache, func()) {
	if cfg.Redis.Addr == "" {
		return cache.None{}, func() {}
	}
	r := cache.NewRedis(cfg.Redis.Addr, cfg.Redis.DescriptionTTL)

	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.Ping(pctx); err != nil {
		log.Warn().Err(err).Msg("redis unavailable; description cache disabled")
		_ = r.Close()
		return cache.None{}, func() {}
	}
	return r, func() { _ = r.Close() }
}

// APIキーが無ければ nil（固定文言を返す）
func newGenerator(ctx context.Context, cfg config.Config, log zerolog.Logger) usecase.TextGenerator {
	g, err := gemini.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		log.Warn().Err(err).Msg("gemini unavailable")
		return nil
	}
	return g
}
