package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-adoption/internal/application"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/config"
	adoptionEvents "github.com/Kilat-Pet-Delivery/service-adoption/internal/events"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/handler"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/auth"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/database"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/kafka"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/logger"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/metrics"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/middleware"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/repository"
)

const serviceName = "service-adoption"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-adoption",
		zap.String("port", cfg.Port),
		zap.String("storage", cfg.Storage.Driver),
	)

	// Open storage
	stores, ping, closeStores, err := openStores(cfg, log)
	if err != nil {
		log.Fatal("failed to open storage", zap.Error(err))
	}
	defer closeStores()

	// Load the collections once
	m := metrics.New("adoption")
	session, err := application.OpenSession(context.Background(), stores, time.Now, m, log)
	if err != nil {
		log.Fatal("failed to load adoption data", zap.Error(err))
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, cfg.TokenTTL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize event publisher
	var publisher application.EventPublisher = application.NewLogPublisher(log)
	if cfg.KafkaConfig.Enabled {
		kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
		defer func() { _ = kafkaProducer.Close() }()
		publisher = application.NewKafkaPublisher(kafkaProducer)
	}

	// Initialize application services
	petService := application.NewPetService(session, publisher, log)
	customerService := application.NewCustomerService(session, jwtManager, application.AdminCredentials{
		Username: cfg.Admin.Username,
		Password: cfg.Admin.Password,
	}, publisher, log)
	adoptionService := application.NewAdoptionService(session, publisher, log)

	// Start shelter intake consumer in a goroutine
	if cfg.KafkaConfig.Enabled {
		groupID := cfg.KafkaConfig.GroupPrefix + "adoption-service"
		shelterConsumer := adoptionEvents.NewShelterIntakeConsumer(
			cfg.KafkaConfig.Brokers,
			groupID,
			petService,
			log,
		)
		defer func() { _ = shelterConsumer.Close() }()

		go func() {
			log.Info("starting shelter intake consumer")
			if err := shelterConsumer.Start(ctx); err != nil && err != context.Canceled {
				log.Error("shelter intake consumer error", zap.Error(err))
			}
		}()
	}

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware(m))

	// Register health and metrics routes
	handler.NewHealthHandler(serviceName, cfg.Storage.Driver, ping).RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	// Register routes
	handler.NewPetHandler(petService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewCustomerHandler(customerService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewAdoptionHandler(adoptionService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewAdminAdoptionHandler(adoptionService).RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-adoption...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-adoption stopped")
}

// openStores builds the persistence adapters for the configured driver.
func openStores(cfg *config.ServiceConfig, log *zap.Logger) (application.Stores, handler.Pinger, func(), error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := database.Connect(cfg.DBConfig, log)
		if err != nil {
			return application.Stores{}, nil, nil, err
		}

		// Run database migrations
		if cfg.AppEnv == "development" {
			if err := db.AutoMigrate(&repository.PetModel{}, &repository.CustomerModel{}, &repository.AdoptionRequestModel{}); err != nil {
				return application.Stores{}, nil, nil, fmt.Errorf("failed to run auto-migration: %w", err)
			}
			log.Info("database migration completed (dev auto-migrate)")
		} else {
			if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), "migrations", log); err != nil {
				return application.Stores{}, nil, nil, err
			}
		}

		sqlDB, err := db.DB()
		if err != nil {
			return application.Stores{}, nil, nil, err
		}
		stores := application.Stores{
			Pets:      repository.NewGormPetRepository(db),
			Customers: repository.NewGormCustomerRepository(db),
			Requests:  repository.NewGormAdoptionRepository(db),
		}
		return stores, sqlDB.PingContext, func() { _ = sqlDB.Close() }, nil

	case config.StorageMemory:
		store := repository.NewMemoryStore()
		return application.Stores{Pets: store, Customers: store, Requests: store}, nil, func() {}, nil

	default:
		store, err := repository.NewSnapshotStore(cfg.Storage.SQLitePath)
		if err != nil {
			return application.Stores{}, nil, nil, err
		}
		log.Info("using sqlite snapshot store", zap.String("path", store.Path()))
		return application.Stores{Pets: store, Customers: store, Requests: store}, store.Ping, func() { _ = store.Close() }, nil
	}
}
