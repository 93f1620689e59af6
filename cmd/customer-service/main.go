package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/ms-lab/commerce-go/internal/config"
	"github.com/ms-lab/commerce-go/internal/db"
	"github.com/ms-lab/commerce-go/internal/discovery"
	"github.com/ms-lab/commerce-go/internal/handlers"
	"github.com/ms-lab/commerce-go/internal/logging"
)

const (
	serviceName = "customer-service"
	serviceID   = "customer-service-1"
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

	consul, err := discovery.NewConsulClient(cfg.Consul.Addr())
	if err != nil {
		logger.Fatalw("failed to connect to Consul", "error", err)
	}

	err = consul.Register(discovery.ServiceConfig{
		Name: serviceName,
		ID:   serviceID,
		Port: cfg.CustomerServicePort,
		Tags: []string{"api", "customers"},
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

	customerRepo := db.NewCustomerRepository(database)
	customerHandler := handlers.NewCustomerHandler(customerRepo, logger)
	authHandler := handlers.NewAuthHandler(customerRepo, cfg.JWT, logger)

	router := gin.Default()

	router.GET("/health", customerHandler.HealthCheck)

	api := router.Group("/api")
	api.POST("/auth/login", authHandler.Login)

	customers := api.Group("/customer")
	customers.GET("", customerHandler.ListCustomers)
	customers.GET("/:id", customerHandler.GetCustomer)
	customers.GET("/:id/:email", customerHandler.GetCustomerByEmail)
	customers.POST("", customerHandler.CreateCustomer)
	customers.PUT("/:id", customerHandler.UpdateCustomer)
	customers.DELETE("/:id", customerHandler.DeleteCustomer)

	logger.Infow("customer service starting", "port", cfg.CustomerServicePort)
	if err := router.Run(fmt.Sprintf(":%d", cfg.CustomerServicePort)); err != nil {
		logger.Fatalw("server stopped", "error", err)
	}
}
