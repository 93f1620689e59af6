package orchestrator

import "fmt"

// ValidationError reports a malformed or out-of-range request. No remote
// call has been made when this is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// CustomerNotFoundError covers both a genuinely absent customer and an
// unreachable customer service; the two are deliberately indistinguishable
// at this level.
type CustomerNotFoundError struct {
	CustomerID int
}

func (e *CustomerNotFoundError) Error() string {
	return fmt.Sprintf("customer %d not found", e.CustomerID)
}

// ProductNotFoundError covers both a genuinely absent product and an
// unreachable product service.
type ProductNotFoundError struct {
	ProductID int
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

type InsufficientStockError struct {
	ProductID int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d, available: %d", e.ProductID, e.Available)
}

// PersistenceError means the order store commit failed. No inventory has
// been touched when this is returned.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist order: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// StockWarning reports a failed post-commit inventory decrement. The order
// it belongs to stays persisted regardless.
type StockWarning struct {
	ProductID int
	Quantity  int
	Err       error
}

func (w StockWarning) String() string {
	return fmt.Sprintf("stock decrement failed for product %d (quantity %d): %v", w.ProductID, w.Quantity, w.Err)
}
