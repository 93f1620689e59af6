package main

import (
	"fmt"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ms-lab/commerce-go/internal/config"
	"github.com/ms-lab/commerce-go/internal/discovery"
	"github.com/ms-lab/commerce-go/internal/logging"
)

// routes maps API path prefixes to the Consul service that owns them.
var routes = map[string]string{
	"/api/auth":     "customer-service",
	"/api/customer": "customer-service",
	"/api/product":  "product-service",
	"/api/order":    "order-service",
}

type Gateway struct {
	consul  *discovery.ConsulClient
	log     *zap.SugaredLogger
	mutex   sync.RWMutex
	proxies map[string]*httputil.ReverseProxy
}

func NewGateway(consul *discovery.ConsulClient, log *zap.SugaredLogger) *Gateway {
	g := &Gateway{
		consul:  consul,
		log:     log,
		proxies: make(map[string]*httputil.ReverseProxy),
	}

	g.refreshServices()
	go g.watchServices()

	return g
}

func (g *Gateway) refreshServices() {
	for _, svc := range []string{"customer-service", "product-service", "order-service"} {
		target, err := g.consul.ServiceURL(svc)
		if err != nil {
			g.log.Warnw("service not found in Consul", "service", svc, "error", err)
			continue
		}
		g.updateProxy(svc, target)
	}
}

func (g *Gateway) watchServices() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		g.refreshServices()
	}
}

func (g *Gateway) updateProxy(service, target string) {
	targetURL, err := url.Parse(target)
	if err != nil {
		g.log.Warnw("invalid service URL", "service", service, "url", target, "error", err)
		return
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.proxies[service] = httputil.NewSingleHostReverseProxy(targetURL)
}

func (g *Gateway) proxyFor(service string) *httputil.ReverseProxy {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.proxies[service]
}

// Handle forwards the request to the service owning its path prefix.
func (g *Gateway) Handle(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		proxy := g.proxyFor(service)
		if proxy == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": fmt.Sprintf("%s is unavailable", service)})
			return
		}
		proxy.ServeHTTP(c.Writer, c.Request)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env, "api-gateway")
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	consul, err := discovery.NewConsulClient(cfg.Consul.Addr())
	if err != nil {
		logger.Fatalw("failed to connect to Consul", "error", err)
	}

	gateway := NewGateway(consul, logger)

	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "api-gateway"})
	})

	for prefix, service := range routes {
		handler := gateway.Handle(service)
		router.Any(prefix, handler)
		router.Any(prefix+"/*path", handler)
	}

	logger.Infow("api gateway starting", "port", cfg.GatewayPort)
	if err := router.Run(fmt.Sprintf(":%d", cfg.GatewayPort)); err != nil {
		logger.Fatalw("server stopped", "error", err)
	}
}
