package models

import "time"

type Customer struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateCustomerRequest struct {
	Name    string `json:"name" binding:"required,min=2,max=200"`
	Email   string `json:"email" binding:"required,email,max=250"`
	Address string `json:"address" binding:"max=500"`
}

type UpdateCustomerRequest struct {
	Name    string `json:"name" binding:"required,min=2,max=200"`
	Email   string `json:"email" binding:"required,email,max=250"`
	Address string `json:"address" binding:"max=500"`
}

type LoginRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type LoginResponse struct {
	Token      string    `json:"token"`
	CustomerID int       `json:"customerId"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	ExpiresAt  time.Time `json:"expiresAt"`
}
