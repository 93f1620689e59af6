package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/ms-lab/commerce-go/internal/auth"
	"github.com/ms-lab/commerce-go/internal/client"
	"github.com/ms-lab/commerce-go/internal/config"
	"github.com/ms-lab/commerce-go/internal/db"
	"github.com/ms-lab/commerce-go/internal/discovery"
	"github.com/ms-lab/commerce-go/internal/handlers"
	"github.com/ms-lab/commerce-go/internal/logging"
	"github.com/ms-lab/commerce-go/internal/messaging"
	"github.com/ms-lab/commerce-go/internal/orchestrator"
	"github.com/ms-lab/commerce-go/internal/publisher"
)

const (
	serviceName = "order-service"
	serviceID   = "order-service-1"
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

	rabbitMQ, err := messaging.NewRabbitMQ(cfg.Rabbit.URL())
	if err != nil {
		logger.Fatalw("failed to connect to RabbitMQ", "error", err)
	}
	defer rabbitMQ.Close()

	orderPublisher, err := publisher.NewOrderPublisher(rabbitMQ)
	if err != nil {
		logger.Fatalw("failed to create publisher", "error", err)
	}

	consul, err := discovery.NewConsulClient(cfg.Consul.Addr())
	if err != nil {
		logger.Fatalw("failed to connect to Consul", "error", err)
	}

	err = consul.Register(discovery.ServiceConfig{
		Name: serviceName,
		ID:   serviceID,
		Port: cfg.OrderServicePort,
		Tags: []string{"api", "orders"},
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

	// Downstream calls are anonymous: the bearer token guarding the order
	// API is not forwarded to the customer or product service.
	customerClient := client.NewCustomerClient(cfg.Clients.CustomerServiceURL, cfg.Clients.Timeout)
	productClient := client.NewProductClient(cfg.Clients.ProductServiceURL, cfg.Clients.Timeout)

	orderRepo := db.NewOrderRepository(database)
	orderService := orchestrator.NewService(customerClient, productClient, orderRepo, logger)
	orderHandler := handlers.NewOrderHandler(orderService, orderPublisher, logger)

	router := gin.Default()

	router.GET("/health", orderHandler.HealthCheck)

	orders := router.Group("/api/order")
	orders.Use(auth.Middleware(cfg.JWT.Secret))
	orders.GET("", orderHandler.ListOrders)
	orders.GET("/:id", orderHandler.GetOrder)
	orders.GET("/:id/:customerId", orderHandler.ListOrdersByCustomer)
	orders.POST("", orderHandler.CreateOrder)
	orders.DELETE("/:id", orderHandler.DeleteOrder)

	logger.Infow("order service starting", "port", cfg.OrderServicePort)
	if err := router.Run(fmt.Sprintf(":%d", cfg.OrderServicePort)); err != nil {
		logger.Fatalw("server stopped", "error", err)
	}
}
