package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ms-lab/commerce-go/internal/models"
	"github.com/ms-lab/commerce-go/internal/orchestrator"
)

type stubOrderService struct {
	order    *models.Order
	warnings []orchestrator.StockWarning
	err      error

	deleted   []int
	deleteErr error
}

func (s *stubOrderService) CreateOrder(_ context.Context, _ models.CreateOrderRequest) (*models.Order, []orchestrator.StockWarning, error) {
	return s.order, s.warnings, s.err
}

func (s *stubOrderService) Orders(_ context.Context) ([]models.Order, error) {
	if s.order == nil {
		return nil, nil
	}
	return []models.Order{*s.order}, nil
}

func (s *stubOrderService) OrderByID(_ context.Context, id int) (*models.Order, error) {
	if s.order != nil && s.order.ID == id {
		return s.order, nil
	}
	return nil, nil
}

func (s *stubOrderService) OrdersByCustomer(_ context.Context, customerID int) ([]models.Order, error) {
	if s.order != nil && s.order.CustomerID == customerID {
		return []models.Order{*s.order}, nil
	}
	return nil, nil
}

func (s *stubOrderService) DeleteOrder(_ context.Context, id int) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

type stubPublisher struct {
	published []*models.Order
	err       error
}

func (p *stubPublisher) PublishOrderCreated(order *models.Order) error {
	p.published = append(p.published, order)
	return p.err
}

func newOrderRouter(svc OrderService, pub OrderPublisher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewOrderHandler(svc, pub, zap.NewNop().Sugar())

	api := router.Group("/api/order")
	api.GET("", h.ListOrders)
	api.GET("/:id", h.GetOrder)
	api.GET("/:id/:customerId", h.ListOrdersByCustomer)
	api.POST("", h.CreateOrder)
	api.DELETE("/:id", h.DeleteOrder)

	return router
}

func sampleOrder() *models.Order {
	return &models.Order{
		ID:           42,
		OrderDate:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		CustomerID:   1,
		CustomerName: "Ada Lovelace",
		TotalAmount:  75.00,
		OrderItems: []models.OrderItem{
			{ID: 1, OrderID: 42, ProductID: 10, ProductName: "Widget", UnitPrice: 25.00, Quantity: 3, Subtotal: 75.00},
		},
	}
}

func TestCreateOrder_Created(t *testing.T) {
	svc := &stubOrderService{order: sampleOrder()}
	pub := &stubPublisher{}
	router := newOrderRouter(svc, pub)

	body, _ := json.Marshal(models.CreateOrderRequest{
		CustomerID: 1,
		OrderItems: []models.CreateOrderItemRequest{{ProductID: 10, Quantity: 3}},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/order", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var got models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 42, got.ID)
	assert.Equal(t, 75.00, got.TotalAmount)
	require.Len(t, got.OrderItems, 1)
	assert.Equal(t, 3, got.OrderItems[0].Quantity)

	require.Len(t, pub.published, 1)
}

func TestCreateOrder_OrchestrationFailuresAre400(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"validation", &orchestrator.ValidationError{Reason: "order must have at least one item"}},
		{"customer not found", &orchestrator.CustomerNotFoundError{CustomerID: 999}},
		{"product not found", &orchestrator.ProductNotFoundError{ProductID: 10}},
		{"insufficient stock", &orchestrator.InsufficientStockError{ProductID: 10, Available: 0}},
		{"persistence", &orchestrator.PersistenceError{Err: errors.New("connection reset")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubOrderService{err: tt.err}
			pub := &stubPublisher{}
			router := newOrderRouter(svc, pub)

			body, _ := json.Marshal(models.CreateOrderRequest{
				CustomerID: 1,
				OrderItems: []models.CreateOrderItemRequest{{ProductID: 10, Quantity: 3}},
			})
			req := httptest.NewRequest(http.MethodPost, "/api/order", bytes.NewReader(body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.err.Error(), resp["error"])
			assert.Empty(t, pub.published, "failed orders are not announced")
		})
	}
}

func TestCreateOrder_WarningsDoNotChangeResponse(t *testing.T) {
	svc := &stubOrderService{
		order: sampleOrder(),
		warnings: []orchestrator.StockWarning{
			{ProductID: 10, Quantity: 3, Err: errors.New("service unavailable")},
		},
	}
	router := newOrderRouter(svc, &stubPublisher{})

	body, _ := json.Marshal(models.CreateOrderRequest{
		CustomerID: 1,
		OrderItems: []models.CreateOrderItemRequest{{ProductID: 10, Quantity: 3}},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/order", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateOrder_PublishFailureStill201(t *testing.T) {
	svc := &stubOrderService{order: sampleOrder()}
	pub := &stubPublisher{err: errors.New("broker down")}
	router := newOrderRouter(svc, pub)

	body, _ := json.Marshal(models.CreateOrderRequest{
		CustomerID: 1,
		OrderItems: []models.CreateOrderItemRequest{{ProductID: 10, Quantity: 3}},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/order", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestGetOrder(t *testing.T) {
	svc := &stubOrderService{order: sampleOrder()}
	router := newOrderRouter(svc, &stubPublisher{})

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/order/42", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/order/7", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/order/abc", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListOrdersByCustomer(t *testing.T) {
	svc := &stubOrderService{order: sampleOrder()}
	router := newOrderRouter(svc, &stubPublisher{})

	req := httptest.NewRequest(http.MethodGet, "/api/order/customer/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var orders []models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	assert.Len(t, orders, 1)
}

func TestListOrdersByCustomer_UnknownSubresource(t *testing.T) {
	svc := &stubOrderService{order: sampleOrder()}
	router := newOrderRouter(svc, &stubPublisher{})

	req := httptest.NewRequest(http.MethodGet, "/api/order/vendor/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteOrder(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		svc := &stubOrderService{order: sampleOrder()}
		router := newOrderRouter(svc, &stubPublisher{})

		req := httptest.NewRequest(http.MethodDelete, "/api/order/42", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, []int{42}, svc.deleted)
	})

	t.Run("missing", func(t *testing.T) {
		svc := &stubOrderService{deleteErr: errors.New("order not found")}
		router := newOrderRouter(svc, &stubPublisher{})

		req := httptest.NewRequest(http.MethodDelete, "/api/order/42", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
