package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ms-lab/commerce-go/internal/cache"
	"github.com/ms-lab/commerce-go/internal/config"
	"github.com/ms-lab/commerce-go/internal/consumer"
	"github.com/ms-lab/commerce-go/internal/db"
	"github.com/ms-lab/commerce-go/internal/discovery"
	"github.com/ms-lab/commerce-go/internal/handlers"
	"github.com/ms-lab/commerce-go/internal/logging"
	"github.com/ms-lab/commerce-go/internal/messaging"
	"github.com/ms-lab/commerce-go/internal/publisher"
)

const (
	serviceName = "product-service"
	serviceID   = "product-service-1"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env, serviceName)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	database, err := db.NewPostgresDB(cfg.DB.DSN())
	if err != nil {
		logger.Fatalw("failed to connect to database", "error", err)
	}
	defer database.Close()

	redisCache, err := cache.NewRedisCache(cfg.Redis.Addr(), cfg.Redis.TTL)
	if err != nil {
		logger.Fatalw("failed to connect to Redis", "error", err)
	}
	defer redisCache.Close()

	rabbitMQ, err := messaging.NewRabbitMQ(cfg.Rabbit.URL())
	if err != nil {
		logger.Fatalw("failed to connect to RabbitMQ", "error", err)
	}
	defer rabbitMQ.Close()

	consul, err := discovery.NewConsulClient(cfg.Consul.Addr())
	if err != nil {
		logger.Fatalw("failed to connect to Consul", "error", err)
	}

	err = consul.Register(discovery.ServiceConfig{
		Name: serviceName,
		ID:   serviceID,
		Port: cfg.ProductServicePort,
		Tags: []string{"api", "products"},
	})
	if err != nil {
		logger.Fatalw("failed to register service", "error", err)
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Info("shutting down")
		consul.Deregister(serviceID)
		os.Exit(0)
	}()

	productRepo := db.NewProductRepository(database)
	cachedRepo := db.NewCachedProductRepository(productRepo, redisCache, logger)
	productHandler := handlers.NewProductHandler(cachedRepo, logger)

	go startCacheInvalidator(rabbitMQ, cachedRepo, logger)

	router := gin.Default()

	router.GET("/health", productHandler.HealthCheck)

	products := router.Group("/api/product")
	products.GET("", productHandler.ListProducts)
	products.GET("/:id", productHandler.GetProduct)
	products.POST("", productHandler.CreateProduct)
	products.PUT("/:id", productHandler.UpdateProduct)
	products.DELETE("/:id", productHandler.DeleteProduct)
	products.POST("/:id/update-stock", productHandler.UpdateStock)

	logger.Infow("product service starting", "port", cfg.ProductServicePort)
	if err := router.Run(fmt.Sprintf(":%d", cfg.ProductServicePort)); err != nil {
		logger.Fatalw("server stopped", "error", err)
	}
}

func startCacheInvalidator(mq *messaging.RabbitMQ, repo *db.CachedProductRepository, logger *zap.SugaredLogger) {
	if err := mq.DeclareQueue(publisher.OrderCreatedQueue); err != nil {
		logger.Fatalw("failed to declare queue", "error", err)
	}

	messages, err := mq.Consume(publisher.OrderCreatedQueue)
	if err != nil {
		logger.Fatalw("failed to consume messages", "error", err)
	}

	logger.Infow("listening for order.created events")
	invalidator := consumer.NewCacheInvalidator(repo, logger)
	invalidator.ProcessOrderCreated(messages)
}
