package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"jewelrystore/internal/config"
	"jewelrystore/internal/handler"
	"jewelrystore/internal/infra/db"
	"jewelrystore/internal/infra/events"
	infraRepo "jewelrystore/internal/infra/repository"
	"jewelrystore/internal/infra/session"
	"jewelrystore/internal/logger"
	"jewelrystore/internal/server"
	"jewelrystore/internal/usecase"
	"jewelrystore/internal/validator"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	//.envは無くてもよい（本番は環境変数）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.GoEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	//カートのセッションストア
	rdb := session.NewRedisClient(cfg)
	defer func() { _ = rdb.Close() }()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return err
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	groupRepo := infraRepo.NewGroupGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	outboxRepo := infraRepo.NewOutboxGormRepository(gormDB)
	counterRepo := infraRepo.NewCounterGormRepository(gormDB)
	customerRepo := infraRepo.NewCustomerGormRepository(gormDB)
	debtRepo := infraRepo.NewDebtGormRepository(gormDB)
	settingRepo := infraRepo.NewSettingGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)
	cartStore := session.NewRedisCartStore(rdb, cfg.CartTTL)

	clock := usecase.NewRealClock()
	authValidator := validator.NewAuthValidator(userRepo)

	//ユーザー保存後のフック（順番どおりに実行）
	userHooks := []usecase.UserHook{
		usecase.NewRoleGroupHook(groupRepo),
		usecase.NewTokenVersionHook(userRepo),
	}

	//Usecase生成
	authUC := usecase.NewAuthUsecase(cfg, userRepo, authValidator, clock, userHooks...)
	userUC := usecase.NewUserUsecase(userRepo, auditRepo, authValidator, clock, zl, userHooks...)
	productUC := usecase.NewProductUsecase(productRepo, inventoryRepo, auditRepo, clock)
	cartUC := usecase.NewCartUsecase(cartStore, productRepo, clock)
	orderUC := usecase.NewOrderUsecase(txm, cartStore, counterRepo, customerRepo, settingRepo, clock, zl)
	transitionUC := usecase.NewOrderTransitionUsecase(txm, clock, zl)
	customerUC := usecase.NewCustomerUsecase(customerRepo)
	counterUC := usecase.NewCounterUsecase(counterRepo, userRepo)
	debtUC := usecase.NewDebtUsecase(debtRepo)
	settingUC := usecase.NewSettingUsecase(settingRepo, auditRepo, authValidator, clock)
	reportUC := usecase.NewReportUsecase(orderRepo, productRepo, clock)
	auditUC := usecase.NewAuditLogUsecase(auditRepo)

	//Handler生成
	e := server.New(zl)
	server.RegisterRoutes(e, server.Handlers{
		Auth:            handler.NewAuthHandler(authUC),
		Product:         handler.NewProductHandler(productUC),
		AdminProduct:    handler.NewAdminProductHandler(productUC),
		AdminUser:       handler.NewAdminUserHandler(userUC, authUC),
		Cart:            handler.NewCartHandler(cartUC),
		Order:           handler.NewOrderHandler(orderUC),
		OrderTransition: handler.NewOrderTransitionHandler(orderUC, transitionUC),
		Customer:        handler.NewCustomerHandler(customerUC),
		Counter:         handler.NewCounterHandler(counterUC),
		Debt:            handler.NewDebtHandler(debtUC),
		Setting:         handler.NewSettingHandler(settingUC),
		Report:          handler.NewReportHandler(reportUC),
		AuditLog:        handler.NewAuditLogHandler(auditUC),
	}, cfg, userRepo)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Start(gctx, e, ":"+cfg.Port, zl)
	})

	//ブローカー未設定ならoutboxは溜めるだけ
	if len(cfg.KafkaBrokers) > 0 {
		writer := events.NewKafkaWriter(cfg)
		poller := events.NewOutboxPoller(outboxRepo, writer, zl.Named("outbox"), cfg.OutboxInterval)
		g.Go(func() error {
			defer func() { _ = writer.Close() }()
			return poller.Run(gctx)
		})
	} else {
		zl.Warn("KAFKA_BROKERS is empty; outbox events will not be published")
	}

	return g.Wait()
}
