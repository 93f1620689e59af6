package models

// OrderCreatedEvent is published after an order commit so that interested
// services can react (the product service uses it to drop stale cache
// entries). Inventory decrements are not driven by this event; they happen
// synchronously in the order service.
type OrderCreatedEvent struct {
	OrderID     int              `json:"orderId"`
	CustomerID  int              `json:"customerId"`
	TotalAmount float64          `json:"totalAmount"`
	Items       []OrderItemEvent `json:"items"`
}

type OrderItemEvent struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}
