package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ms-lab/commerce-go/internal/models"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrEmptyOrder guards the aggregate invariant at the persistence
	// boundary: an order with zero items is never written.
	ErrEmptyOrder = errors.New("order must have at least one item")
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(database *PostgresDB) *OrderRepository {
	return &OrderRepository{db: database.Conn}
}

// Create persists the order header and all its items in one transaction.
// The store assigns the id and the UTC order date; both are written back
// into the aggregate along with the generated item ids.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	if len(order.OrderItems) == 0 {
		return ErrEmptyOrder
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	orderQuery := `
		INSERT INTO orders (customer_id, customer_name, total_amount, order_date)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, order_date
	`
	err = tx.QueryRowContext(ctx, orderQuery, order.CustomerID, order.CustomerName, order.TotalAmount).
		Scan(&order.ID, &order.OrderDate)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	for i := range order.OrderItems {
		order.OrderItems[i].OrderID = order.ID
		err = tx.QueryRowContext(ctx, itemQuery,
			order.ID,
			order.OrderItems[i].ProductID,
			order.OrderItems[i].ProductName,
			order.OrderItems[i].UnitPrice,
			order.OrderItems[i].Quantity,
			order.OrderItems[i].Subtotal,
		).Scan(&order.OrderItems[i].ID)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// All returns every order with its items, newest first.
func (r *OrderRepository) All(ctx context.Context) ([]models.Order, error) {
	return r.queryOrders(ctx,
		`SELECT id, customer_id, customer_name, total_amount, order_date FROM orders ORDER BY order_date DESC`)
}

// ByCustomer returns the customer's orders with items, newest first.
func (r *OrderRepository) ByCustomer(ctx context.Context, customerID int) ([]models.Order, error) {
	return r.queryOrders(ctx,
		`SELECT id, customer_id, customer_name, total_amount, order_date FROM orders WHERE customer_id = $1 ORDER BY order_date DESC`,
		customerID)
}

// ByID returns (nil, nil) when no order has the given id.
func (r *OrderRepository) ByID(ctx context.Context, id int) (*models.Order, error) {
	query := `SELECT id, customer_id, customer_name, total_amount, order_date FROM orders WHERE id = $1`

	var o models.Order
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&o.ID, &o.CustomerID, &o.CustomerName, &o.TotalAmount, &o.OrderDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := r.itemsFor(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.OrderItems = items

	return &o, nil
}

// Delete removes the order; its items go with it via the cascading
// foreign key.
func (r *OrderRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (r *OrderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.CustomerName, &o.TotalAmount, &o.OrderDate); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := r.itemsFor(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].OrderItems = items
	}

	return orders, nil
}

func (r *OrderRepository) itemsFor(ctx context.Context, orderID int) ([]models.OrderItem, error) {
	query := `SELECT id, order_id, product_id, product_name, unit_price, quantity, subtotal FROM order_items WHERE order_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.UnitPrice, &item.Quantity, &item.Subtotal); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}
