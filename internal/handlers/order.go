package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ms-lab/commerce-go/internal/models"
	"github.com/ms-lab/commerce-go/internal/orchestrator"
)

// OrderService is the slice of the orchestrator the HTTP layer needs.
type OrderService interface {
	CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, []orchestrator.StockWarning, error)
	Orders(ctx context.Context) ([]models.Order, error)
	OrderByID(ctx context.Context, id int) (*models.Order, error)
	OrdersByCustomer(ctx context.Context, customerID int) ([]models.Order, error)
	DeleteOrder(ctx context.Context, id int) error
}

// OrderPublisher announces committed orders. Publish failures never fail
// the request; the order is already durable.
type OrderPublisher interface {
	PublishOrderCreated(order *models.Order) error
}

type OrderHandler struct {
	service   OrderService
	publisher OrderPublisher
	log       *zap.SugaredLogger
}

func NewOrderHandler(service OrderService, publisher OrderPublisher, log *zap.SugaredLogger) *OrderHandler {
	return &OrderHandler{service: service, publisher: publisher, log: log}
}

func (h *OrderHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "order-service"})
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.service.Orders(c.Request.Context())
	if err != nil {
		h.log.Errorw("failed to list orders", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return
	}

	order, err := h.service.OrderByID(c.Request.Context(), id)
	if err != nil {
		h.log.Errorw("failed to get order", "order_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// ListOrdersByCustomer serves GET /api/order/customer/:id. The route is
// registered as /:id/:customerId because gin cannot mix a static segment
// with the :id wildcard at the same position, so the first segment is
// checked here.
func (h *OrderHandler) ListOrdersByCustomer(c *gin.Context) {
	if c.Param("id") != "customer" {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	customerID, err := strconv.Atoi(c.Param("customerId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer ID"})
		return
	}

	orders, err := h.service.OrdersByCustomer(c.Request.Context(), customerID)
	if err != nil {
		h.log.Errorw("failed to list orders by customer", "customer_id", customerID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, orders)
}

// CreateOrder runs the orchestration. Every orchestration failure maps to
// a 400 with the error message; post-commit stock warnings are logged but
// do not change the response.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, warnings, err := h.service.CreateOrder(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for _, w := range warnings {
		h.log.Warnw("inventory update warning", "order_id", order.ID, "warning", w.String())
	}

	if h.publisher != nil {
		if err := h.publisher.PublishOrderCreated(order); err != nil {
			h.log.Warnw("failed to publish order.created", "order_id", order.ID, "error", err)
		}
	}

	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return
	}

	if err := h.service.DeleteOrder(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
