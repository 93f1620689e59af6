package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ms-lab/commerce-go/internal/db"
	"github.com/ms-lab/commerce-go/internal/models"
)

type CustomerHandler struct {
	repo *db.CustomerRepository
	log  *zap.SugaredLogger
}

func NewCustomerHandler(repo *db.CustomerRepository, log *zap.SugaredLogger) *CustomerHandler {
	return &CustomerHandler{repo: repo, log: log}
}

func (h *CustomerHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "customer-service"})
}

func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	customers, err := h.repo.GetAll(c.Request.Context())
	if err != nil {
		h.log.Errorw("failed to list customers", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, customers)
}

func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer ID"})
		return
	}

	customer, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.log.Errorw("failed to get customer", "customer_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if customer == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
		return
	}

	c.JSON(http.StatusOK, customer)
}

// GetCustomerByEmail serves GET /api/customer/by-email/:email. The route
// is registered as /:id/:email because gin cannot mix a static segment
// with the :id wildcard at the same position, so the first segment is
// checked here.
func (h *CustomerHandler) GetCustomerByEmail(c *gin.Context) {
	if c.Param("id") != "by-email" {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	email := c.Param("email")

	customer, err := h.repo.GetByEmail(c.Request.Context(), email)
	if err != nil {
		h.log.Errorw("failed to get customer by email", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if customer == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
		return
	}

	c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req models.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.repo.Create(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, db.ErrDuplicateEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Errorw("failed to create customer", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, customer)
}

func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer ID"})
		return
	}

	var req models.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.repo.Update(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, db.ErrCustomerNotFound) || errors.Is(err, db.ErrDuplicateEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Errorw("failed to update customer", "customer_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer ID"})
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, db.ErrCustomerNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Errorw("failed to delete customer", "customer_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
