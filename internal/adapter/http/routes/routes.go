package routes

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	_ "checkout_service/docs"
	"checkout_service/internal/adapter/http/handlers"
	"checkout_service/internal/adapter/http/middleware"
	"checkout_service/internal/adapter/persistence/repository"
	"checkout_service/internal/config"
	"checkout_service/internal/infrastructure/database"
	"checkout_service/internal/infrastructure/images"
	"checkout_service/internal/infrastructure/messaging"
	"checkout_service/internal/infrastructure/observability"
	"checkout_service/internal/infrastructure/payments"
	"checkout_service/internal/infrastructure/retry"
	"checkout_service/internal/usecase"
	"checkout_service/internal/usecase/interfaces"
)

const shutdownTimeout = 5 * time.Second

// Handlers groups everything the router exposes.
type Handlers struct {
	Checkout *handlers.CheckoutHandler
	Orders   *handlers.OrderHandler
}

// Run will start the server
func Run() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Log.Development)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(cfg.Tracing.ServiceName, cfg.Tracing.JaegerEndpoint, logger)
	if err != nil {
		logger.Fatal("[app][startup] failed to initialize tracing", zap.Error(err))
	}

	h, cleanup, err := buildHandlers(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("[app][startup] failed to wire dependencies", zap.Error(err))
	}
	defer cleanup()

	router := NewRouter(h, cfg.Tracing.ServiceName, logger)
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Info("[app][startup] listening", zap.String("addr", cfg.Server.Addr), zap.String("payment_provider", cfg.Payments.Provider))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("[app][startup] failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("[app][shutdown] shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("[app][shutdown] server forced to shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("[app][shutdown] tracer shutdown failed", zap.Error(err))
	}
}

// NewRouter mounts middlewares, docs, metrics and the /v1 API.
func NewRouter(h Handlers, serviceName string, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(otelgin.Middleware(serviceName))
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(middleware.MetricsMiddleware())

	router.GET("/metrics", middleware.PrometheusHandler())
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/v1")
	addPingRoutes(v1)
	addCheckoutRoutes(v1, h.Checkout)
	addOrderRoutes(v1, h.Orders)

	return router
}

func buildHandlers(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Handlers, func(), error) {
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn("[app][shutdown] close failed", zap.Error(err))
			}
		}
	}

	ddb, err := database.ConnectDynamoDB(ctx, database.Settings{
		Region:          cfg.DynamoDB.Region,
		Endpoint:        cfg.DynamoDB.Endpoint,
		AccessKeyID:     cfg.DynamoDB.AccessKeyID,
		SecretAccessKey: cfg.DynamoDB.SecretAccessKey,
	}, logger)
	if err != nil {
		return Handlers{}, cleanup, err
	}

	tables := cfg.DynamoDB.Tables
	orderRepo := repository.NewOrderDynamoRepository(ddb, tables.Orders, tables.AffiliateSales)
	catalogRepo := repository.NewCatalogDynamoRepository(ddb, repository.CatalogTables{
		Companies:  tables.Companies,
		Products:   tables.Products,
		Coupons:    tables.Coupons,
		Affiliates: tables.Affiliates,
	})

	var cache images.Cache = images.NewMemoryCache()
	if cfg.Images.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Images.RedisAddr})
		closers = append(closers, rdb.Close)
		cache = images.NewRedisCache(rdb, "checkout:image:")
		logger.Info("[app][startup] image cache backed by redis", zap.String("addr", cfg.Images.RedisAddr))
	}
	imageService := images.NewChain(images.Options{
		StoreDefaultURL:  cfg.Images.StoreDefaultURL,
		PublicDefaultURL: cfg.Images.PublicDefaultURL,
		StoreTimeout:     cfg.Images.StoreTimeout,
		PublicTimeout:    cfg.Images.PublicTimeout,
		FailureThreshold: cfg.Images.FailureThreshold,
		Cooldown:         cfg.Images.Cooldown,
		CacheTTL:         cfg.Images.CacheTTL,
	}, &http.Client{}, cache, logger)

	gateway, err := newPaymentGateway(cfg, logger)
	if err != nil {
		return Handlers{}, cleanup, err
	}

	var events interfaces.IEventPublisher = messaging.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := messaging.InitProducer(cfg.Kafka.Brokers, logger)
		if err != nil {
			return Handlers{}, cleanup, err
		}
		publisher := messaging.NewKafkaOrderEventPublisher(producer, cfg.Kafka.Topic, logger)
		closers = append(closers, publisher.Close)
		events = publisher
	}

	validator := usecase.NewCatalogCheckoutValidator(catalogRepo, logger)
	checkoutUseCase := usecase.NewCheckoutUseCase(checkoutConfig(cfg), validator, orderRepo, imageService, gateway, events, logger)
	orderUseCase := usecase.NewOrderUseCase(orderRepo, events, logger)

	return Handlers{
		Checkout: handlers.NewCheckoutHandler(checkoutUseCase, logger),
		Orders:   handlers.NewOrderHandler(orderUseCase, logger),
	}, cleanup, nil
}

func newPaymentGateway(cfg *config.Config, logger *zap.Logger) (interfaces.IPaymentGateway, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Payments.Provider {
	case config.ProviderN8N:
		return payments.NewN8NWebhookGateway(cfg.Checkout.WebhookURL, &http.Client{}, logger)
	case config.ProviderMercadoPago:
		return payments.NewMercadoPagoGateway(cfg.Payments.MercadoPagoAccessToken, logger)
	case config.ProviderMock:
		logger.Warn("[app][startup] using mock payment gateway")
		return payments.NewMockGateway("", logger), nil
	}
	return nil, fmt.Errorf("unknown payment provider %q", cfg.Payments.Provider)
}

func checkoutConfig(cfg *config.Config) usecase.CheckoutConfig {
	co := cfg.Checkout

	opts := retry.DefaultOptions()
	opts.MaxRetries = co.WebhookRetry.MaxRetries
	opts.InitialDelay = co.WebhookRetry.InitialDelay
	opts.MaxDelay = co.WebhookRetry.MaxDelay
	opts.Timeout = co.WebhookRetry.Timeout

	return usecase.CheckoutConfig{
		SigningSecret:         co.SigningSecret,
		RequireSignature:      co.RequireSignature,
		PlatformFeePercent:    co.PlatformFeePercent,
		DefaultCommissionRate: co.DefaultCommissionRate,
		MinutesToExpire:       co.MinutesToExpire,
		MaxInstallments:       co.MaxInstallments,
		SuccessURL:            co.SuccessURL,
		CancelURL:             co.CancelURL,
		ExpiredURL:            co.ExpiredURL,
		Retry:                 opts,
	}
}
