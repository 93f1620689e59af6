package orchestrator

import (
	"context"

	"go.uber.org/zap"

	"github.com/ms-lab/commerce-go/internal/models"
)

// Request ceilings. A request above either limit is rejected before any
// remote call is made.
const (
	MaxOrderLines   = 100
	MaxLineQuantity = 1000
)

// CustomerDirectory resolves customers. Implementations must return an
// error for both "absent" and "unreachable"; the orchestrator does not
// distinguish them.
type CustomerDirectory interface {
	CustomerByID(ctx context.Context, customerID int) (*models.Customer, error)
}

// ProductCatalog resolves products and mutates their stock.
type ProductCatalog interface {
	ProductByID(ctx context.Context, productID int) (*models.Product, error)
	DecrementStock(ctx context.Context, productID, quantity int) error
}

// OrderStore persists order aggregates. Create must write the header and
// all items atomically and fill in the generated ids and order date.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	All(ctx context.Context) ([]models.Order, error)
	ByID(ctx context.Context, id int) (*models.Order, error)
	ByCustomer(ctx context.Context, customerID int) ([]models.Order, error)
	Delete(ctx context.Context, id int) error
}

// Service turns an order request into a persisted, priced order,
// coordinating the customer directory, the product catalog, and the order
// store. It is the only component that touches more than one owned
// dataset per operation.
type Service struct {
	customers CustomerDirectory
	catalog   ProductCatalog
	store     OrderStore
	log       *zap.SugaredLogger
}

func NewService(customers CustomerDirectory, catalog ProductCatalog, store OrderStore, log *zap.SugaredLogger) *Service {
	return &Service{
		customers: customers,
		catalog:   catalog,
		store:     store,
		log:       log,
	}
}

// CreateOrder validates the request against the remote services, builds
// the priced aggregate, commits it, and then decrements inventory line by
// line. Decrement failures after the commit do not undo the order; they
// come back as StockWarnings alongside the persisted order.
//
// The stock check is advisory, not a reservation: two concurrent orders
// for the same product can both pass it before either decrements. The
// catalog's conditional decrement keeps stock non-negative, but one of the
// two orders may then fail its decrement and surface a warning.
func (s *Service) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, []StockWarning, error) {
	if err := validateRequest(req); err != nil {
		return nil, nil, err
	}

	customer, err := s.customers.CustomerByID(ctx, req.CustomerID)
	if err != nil {
		s.log.Warnw("customer lookup failed", "customer_id", req.CustomerID, "error", err)
		return nil, nil, &CustomerNotFoundError{CustomerID: req.CustomerID}
	}

	order := &models.Order{
		CustomerID: req.CustomerID,
		// Snapshot of the customer's name at order time; never updated.
		CustomerName: customer.Name,
	}

	var totalAmount float64

	for _, item := range req.OrderItems {
		product, err := s.catalog.ProductByID(ctx, item.ProductID)
		if err != nil {
			s.log.Warnw("product lookup failed", "product_id", item.ProductID, "error", err)
			return nil, nil, &ProductNotFoundError{ProductID: item.ProductID}
		}

		if product.StockQuantity < item.Quantity {
			return nil, nil, &InsufficientStockError{
				ProductID: item.ProductID,
				Available: product.StockQuantity,
			}
		}

		// Clamp to the observed stock. With the check above this only
		// matters if the two ever diverge, but the clamp is part of the
		// established contract and callers are not told when it fires,
		// so at minimum it gets logged.
		quantity := min(item.Quantity, product.StockQuantity)
		if quantity < item.Quantity {
			s.log.Warnw("quantity clamped to available stock",
				"product_id", item.ProductID,
				"requested", item.Quantity,
				"assigned", quantity)
		}

		subtotal := product.Price * float64(quantity)
		order.OrderItems = append(order.OrderItems, models.OrderItem{
			ProductID:   item.ProductID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    quantity,
			Subtotal:    subtotal,
		})
		totalAmount += subtotal
	}

	order.TotalAmount = totalAmount

	if err := s.store.Create(ctx, order); err != nil {
		return nil, nil, &PersistenceError{Err: err}
	}

	// The order is durable from here on. Decrements run to completion
	// line by line; a failure is reported but rolls nothing back.
	var warnings []StockWarning
	for _, item := range order.OrderItems {
		if err := s.catalog.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.log.Warnw("stock decrement failed after commit",
				"order_id", order.ID,
				"product_id", item.ProductID,
				"quantity", item.Quantity,
				"error", err)
			warnings = append(warnings, StockWarning{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Err:       err,
			})
		}
	}

	s.log.Infow("order created",
		"order_id", order.ID,
		"customer_id", order.CustomerID,
		"total_amount", order.TotalAmount,
		"lines", len(order.OrderItems))

	return order, warnings, nil
}

func validateRequest(req models.CreateOrderRequest) error {
	if req.CustomerID <= 0 {
		return &ValidationError{Reason: "customer id must be greater than 0"}
	}
	if len(req.OrderItems) == 0 {
		return &ValidationError{Reason: "order must have at least one item"}
	}
	if len(req.OrderItems) > MaxOrderLines {
		return &ValidationError{Reason: "order cannot have more than 100 items"}
	}
	for _, item := range req.OrderItems {
		if item.ProductID <= 0 {
			return &ValidationError{Reason: "product id must be greater than 0"}
		}
		if item.Quantity <= 0 {
			return &ValidationError{Reason: "quantity must be greater than 0"}
		}
		if item.Quantity > MaxLineQuantity {
			return &ValidationError{Reason: "quantity cannot exceed 1000 units"}
		}
	}
	return nil
}

// Orders returns all orders, newest first.
func (s *Service) Orders(ctx context.Context) ([]models.Order, error) {
	return s.store.All(ctx)
}

// OrderByID returns (nil, nil) when the order does not exist.
func (s *Service) OrderByID(ctx context.Context, id int) (*models.Order, error) {
	return s.store.ByID(ctx, id)
}

// OrdersByCustomer returns the customer's orders, newest first.
func (s *Service) OrdersByCustomer(ctx context.Context, customerID int) ([]models.Order, error) {
	return s.store.ByCustomer(ctx, customerID)
}

// DeleteOrder removes the order and its items.
func (s *Service) DeleteOrder(ctx context.Context, id int) error {
	return s.store.Delete(ctx, id)
}
