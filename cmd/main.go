package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"orderdesk/internal/app/store/config"
	"orderdesk/internal/app/store/entity"
	"orderdesk/internal/app/store/handler"
	"orderdesk/internal/app/store/processor"
	"orderdesk/internal/app/store/repository"
	"orderdesk/internal/app/store/service"
	"orderdesk/internal/app/store/util"
	"orderdesk/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logger.Init("orderdesk", logLevel)

	db, err := connectDB(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	logger.Info().
		Str("host", cfg.Database.Host).
		Str("database", cfg.Database.DBName).
		Msg("Connected to PostgreSQL")

	if err := db.AutoMigrate(
		&entity.Product{},
		&entity.Order{},
		&entity.OrderItem{},
		&entity.User{},
	); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	redisClient, err := util.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	logger.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")

	kafkaProducer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()
	logger.Info().
		Str("topic", cfg.Kafka.Topic).
		Msg("Initialized Kafka producer")

	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	userRepo := repository.NewUserRepository(db)

	jwtManager := util.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Duration)
	loginLimiter := util.NewLoginLimiter(redisClient, cfg.Throttle.MaxAttempts, cfg.Throttle.Window)

	authService := service.NewAuthService(userRepo, loginLimiter, jwtManager)
	productService := service.NewProductService(productRepo, kafkaProducer)
	orderService := service.NewOrderService(orderRepo, productRepo, kafkaProducer)

	if err := authService.EnsureBootstrapAdmin(
		context.Background(),
		cfg.Bootstrap.AdminUsername,
		cfg.Bootstrap.AdminPassword,
	); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ensure bootstrap admin")
	}

	scheduler := processor.NewSnapshotScheduler(productService, orderService, orderRepo, cfg.Export.Dir)
	if err := scheduler.Start(context.Background(), cfg.Export.CronSchedule); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start snapshot scheduler")
	}
	defer scheduler.Stop()

	authMiddleware := handler.NewAuthMiddleware(jwtManager)
	authHandler := handler.NewAuthHandler(authService)
	productHandler := handler.NewProductHandler(productService)
	orderHandler := handler.NewOrderHandler(orderService)
	router := handler.SetupRoutes(authHandler, productHandler, orderHandler, authMiddleware, cfg)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("Starting Orderdesk")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Orderdesk...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Orderdesk stopped gracefully")
}

func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	}

	var db *gorm.DB
	var err error

	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if err == nil {
			sqlDB, sqlErr := db.DB()
			if sqlErr != nil {
				err = sqlErr
			} else {
				pingErr := sqlDB.Ping()
				if pingErr != nil {
					err = pingErr
				} else {
					sqlDB.SetMaxOpenConns(25)
					sqlDB.SetMaxIdleConns(5)
					sqlDB.SetConnMaxLifetime(5 * time.Minute)
					sqlDB.SetConnMaxIdleTime(1 * time.Minute)
					return db, nil
				}
			}
		}
		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to database, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}
