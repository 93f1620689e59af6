package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env     string
	DB      PostgresConfig
	Redis   RedisConfig
	Rabbit  RabbitConfig
	Consul  ConsulConfig
	Clients ClientConfig
	JWT     JWTConfig

	CustomerServicePort int
	ProductServicePort  int
	OrderServicePort    int
	GatewayPort         int
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host string
	Port int
	TTL  time.Duration
}

type RabbitConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

type ConsulConfig struct {
	Host string
	Port int
}

// ClientConfig configures the outbound HTTP adapters used by the order
// service. Timeout bounds every remote call; on expiry the call counts as
// failed and is not retried.
type ClientConfig struct {
	CustomerServiceURL string
	ProductServiceURL  string
	Timeout            time.Duration
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// Load reads configuration from the environment, falling back to local
// development defaults. A .env file is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env: getEnv("APP_ENV", "local"),
		DB: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "commerce"),
			Password: getEnv("POSTGRES_PASSWORD", "commerce123"),
			DBName:   getEnv("POSTGRES_DB", "commerce"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host: getEnv("REDIS_HOST", "localhost"),
			Port: getEnvAsInt("REDIS_PORT", 6379),
			TTL:  time.Duration(getEnvAsInt("REDIS_TTL_SECONDS", 300)) * time.Second,
		},
		Rabbit: RabbitConfig{
			Host:     getEnv("RABBITMQ_HOST", "localhost"),
			Port:     getEnvAsInt("RABBITMQ_PORT", 5672),
			User:     getEnv("RABBITMQ_USER", "guest"),
			Password: getEnv("RABBITMQ_PASSWORD", "guest"),
		},
		Consul: ConsulConfig{
			Host: getEnv("CONSUL_HOST", "localhost"),
			Port: getEnvAsInt("CONSUL_PORT", 8500),
		},
		Clients: ClientConfig{
			CustomerServiceURL: getEnv("CUSTOMER_SERVICE_URL", "http://localhost:8080"),
			ProductServiceURL:  getEnv("PRODUCT_SERVICE_URL", "http://localhost:8081"),
			Timeout:            time.Duration(getEnvAsInt("CLIENT_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "local-dev-secret-change-me-0123456789ab"),
			TTL:    time.Duration(getEnvAsInt("JWT_TTL_MINUTES", 120)) * time.Minute,
		},
		CustomerServicePort: getEnvAsInt("CUSTOMER_SERVICE_PORT", 8080),
		ProductServicePort:  getEnvAsInt("PRODUCT_SERVICE_PORT", 8081),
		OrderServicePort:    getEnvAsInt("ORDER_SERVICE_PORT", 8082),
		GatewayPort:         getEnvAsInt("GATEWAY_PORT", 8000),
	}

	if len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}

	return cfg, nil
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c RabbitConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", c.User, c.Password, c.Host, c.Port)
}

func (c ConsulConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
