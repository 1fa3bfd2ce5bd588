package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-gear-rental/internal/api"
	"github.com/sanosuguru/go-gear-rental/internal/api/handler"
	"github.com/sanosuguru/go-gear-rental/internal/api/middleware"
	"github.com/sanosuguru/go-gear-rental/internal/application"
	"github.com/sanosuguru/go-gear-rental/internal/config"
	"github.com/sanosuguru/go-gear-rental/internal/domain/cart"
	"github.com/sanosuguru/go-gear-rental/internal/infrastructure/notify"
	"github.com/sanosuguru/go-gear-rental/internal/infrastructure/payment"
	"github.com/sanosuguru/go-gear-rental/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-gear-rental/internal/infrastructure/redis"
	"github.com/sanosuguru/go-gear-rental/internal/pkg/logger"
	"github.com/sanosuguru/go-gear-rental/internal/pkg/metrics"
	"github.com/sanosuguru/go-gear-rental/internal/worker"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to a YAML config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Log.Env, cfg.Log.Level)
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Error("server exited with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load(), nil
	}
	return config.LoadFile(path)
}

func run(cfg *config.Config) error {
	m := metrics.Init()

	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db.DB, cfg.Database.MigrationsPath); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database ready", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))

	var (
		redisClient *goredis.Client
		lockManager redisinfra.LockManagerInterface
		cache       redisinfra.AvailabilityCacheInterface
		cartStore   cart.Store
	)
	if cfg.Redis.Enabled {
		redisClient, err = redisinfra.NewClient(&redisinfra.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()
		lockManager = redisinfra.NewLockManager(redisClient)
		cache = redisinfra.NewAvailabilityCache(redisClient)
		cartStore = redisinfra.NewCartStore(redisClient)
		logger.Info("redis ready", zap.String("host", cfg.Redis.Host))
	} else {
		logger.Warn("redis disabled: carts unavailable, checkout runs without distributed locks")
	}

	notifier, err := notify.FromConfig(&cfg.Notification, logger.Get(), m)
	if err != nil {
		return fmt.Errorf("build notifier: %w", err)
	}
	defer notifier.Close()

	var gateway application.PaymentGateway = payment.NoopGateway{}
	if cfg.Payment.Provider != "" && cfg.Payment.Provider != "noop" {
		gateway = payment.NewHTTPGateway(cfg.Payment.BaseURL, cfg.Payment.ServerKey, cfg.Payment.Timeout)
	}

	productRepo := postgres.NewProductRepository(db)
	reservationRepo := postgres.NewReservationRepository(db)
	discountRepo := postgres.NewDiscountRepository(db)
	reportRepo := postgres.NewReportRepository(db)
	txManager := postgres.NewTxManager(db)

	calendarService := application.NewCalendarService(cfg.Store.Location())
	productService := application.NewProductService(
		productRepo, reservationRepo, calendarService, cache, cfg.Store.AvailabilityCacheTTL,
	).WithMetrics(m)
	discountService := application.NewDiscountService(discountRepo)
	reservationService := application.NewReservationService(
		txManager, reservationRepo, productRepo, discountRepo, lockManager, cache, calendarService,
		application.ReservationOptions{
			OrderPrefix:   cfg.Store.OrderPrefix,
			LockTTL:       cfg.Store.LockTTL,
			NotifyTimeout: cfg.Notification.Timeout,
			WebhookKey:    cfg.Payment.WebhookSecret,
		},
	).WithNotifier(notifier).WithPaymentGateway(gateway).WithMetrics(m)
	cartService := application.NewCartService(cartStore, productRepo, reservationService, calendarService, cfg.Store.CartTTL)
	reportService := application.NewReportService(reportRepo)

	checks := []handler.HealthCheck{{Name: "database", Check: db.PingContext}}
	if redisClient != nil {
		checks = append(checks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisinfra.Ping(ctx, redisClient) },
		})
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	middleware.SetupMiddleware(e)
	e.Use(middleware.PrometheusMiddleware(m))

	metricsCfg := middleware.LoadMetricsConfig()
	if metricsCfg.IsEnabled() {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth(metricsCfg))
	} else {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	handler.RegisterRoutes(e, handler.Handlers{
		Health:      handler.NewHealthHandler(checks...),
		Calendar:    handler.NewCalendarHandler(calendarService),
		Product:     handler.NewProductHandler(productService),
		Discount:    handler.NewDiscountHandler(discountService),
		Cart:        handler.NewCartHandler(cartService),
		Reservation: handler.NewReservationHandler(reservationService),
		Report:      handler.NewReportHandler(reportService),
	}, middleware.AdminAuth(cfg.Admin.User, cfg.Admin.Password))

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	cleaner := worker.NewExpiredReservationCleaner(reservationService, cfg.Worker.CleanupInterval, cfg.Worker.PendingExpiry)
	go cleaner.Start(workerCtx)

	scheduler, err := worker.NewScheduler(reservationService, cfg.Worker.LifecycleSchedule, cfg.Store.Location())
	if err != nil {
		return fmt.Errorf("build scheduler: %w", err)
	}
	scheduler.Start()

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := e.Start(fmt.Sprintf(":%s", cfg.Server.Port)); err != nil && err != http.ErrServerClosed {
			logger.Error("server start error", zap.Error(err))
			stopWorkers()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-workerCtx.Done():
	}

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	scheduler.Stop()
	cleaner.Stop()

	logger.Info("server stopped")
	return nil
}
