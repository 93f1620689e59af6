package models

import "time"

type Product struct {
	ID            int        `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Price         float64    `json:"price"`
	StockQuantity int        `json:"stockQuantity"`
	CreatedDate   time.Time  `json:"createdDate"`
	ModifiedDate  *time.Time `json:"modifiedDate,omitempty"`
}

type CreateProductRequest struct {
	Name          string  `json:"name" binding:"required,min=2,max=200"`
	Description   string  `json:"description" binding:"max=500"`
	Price         float64 `json:"price" binding:"required,gt=0,lte=999999999"`
	StockQuantity int     `json:"stockQuantity" binding:"gte=0,lte=99999"`
}

type UpdateProductRequest struct {
	Name          string  `json:"name" binding:"required,min=2,max=200"`
	Description   string  `json:"description" binding:"max=500"`
	Price         float64 `json:"price" binding:"required,gt=0,lte=999999999"`
	StockQuantity int     `json:"stockQuantity" binding:"gte=0,lte=99999"`
}

// UpdateStockRequest decrements stock by Quantity. The catalog rejects
// decrements that would leave stock negative.
type UpdateStockRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}
