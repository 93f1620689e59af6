package models

import "time"

// Order is created exactly once and never edited afterwards; deletion
// removes the order together with its items.
type Order struct {
	ID           int         `json:"id"`
	OrderDate    time.Time   `json:"orderDate"`
	CustomerID   int         `json:"customerId"`
	CustomerName string      `json:"customerName"`
	TotalAmount  float64     `json:"totalAmount"`
	OrderItems   []OrderItem `json:"orderItems"`
}

// OrderItem carries snapshots of the product name and unit price taken at
// order time. They are never refreshed when the catalog changes.
type OrderItem struct {
	ID          int     `json:"id"`
	OrderID     int     `json:"orderId"`
	ProductID   int     `json:"productId"`
	ProductName string  `json:"productName"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    int     `json:"quantity"`
	Subtotal    float64 `json:"subtotal"`
}

type CreateOrderRequest struct {
	CustomerID int                      `json:"customerId"`
	OrderItems []CreateOrderItemRequest `json:"orderItems"`
}

type CreateOrderItemRequest struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}
