package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ms-lab/commerce-go/internal/auth"
	"github.com/ms-lab/commerce-go/internal/config"
	"github.com/ms-lab/commerce-go/internal/db"
	"github.com/ms-lab/commerce-go/internal/models"
)

// AuthHandler issues bearer tokens by customer email. There is no password
// step; this mirrors the existing login contract used by the frontend.
type AuthHandler struct {
	repo *db.CustomerRepository
	jwt  config.JWTConfig
	log  *zap.SugaredLogger
}

func NewAuthHandler(repo *db.CustomerRepository, jwt config.JWTConfig, log *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{repo: repo, jwt: jwt, log: log}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a valid email is required"})
		return
	}

	customer, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.log.Errorw("login lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if customer == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no customer found with that email"})
		return
	}

	token, expiresAt, err := auth.GenerateToken(customer.ID, customer.Email, "Customer", h.jwt.Secret, h.jwt.TTL)
	if err != nil {
		h.log.Errorw("failed to issue token", "customer_id", customer.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	h.log.Infow("login successful", "customer_id", customer.ID)

	c.JSON(http.StatusOK, models.LoginResponse{
		Token:      token,
		CustomerID: customer.ID,
		Email:      customer.Email,
		Name:       customer.Name,
		ExpiresAt:  expiresAt,
	})
}
