package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ms-lab/commerce-go/internal/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
	// ErrInsufficientStock is returned by DecrementStock when the decrement
	// would leave the stock negative.
	ErrInsufficientStock = errors.New("insufficient stock")
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(database *PostgresDB) *ProductRepository {
	return &ProductRepository{db: database.Conn}
}

func (r *ProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	query := `SELECT id, name, description, price, stock_quantity, created_date, modified_date FROM products ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity, &p.CreatedDate, &p.ModifiedDate); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

// GetByID returns (nil, nil) when no product has the given id.
func (r *ProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	query := `SELECT id, name, description, price, stock_quantity, created_date, modified_date FROM products WHERE id = $1`

	var p models.Product
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity, &p.CreatedDate, &p.ModifiedDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	query := `
		INSERT INTO products (name, description, price, stock_quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, description, price, stock_quantity, created_date, modified_date
	`

	var p models.Product
	err := r.db.QueryRowContext(ctx, query, req.Name, req.Description, req.Price, req.StockQuantity).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity, &p.CreatedDate, &p.ModifiedDate)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return &p, nil
}

func (r *ProductRepository) Update(ctx context.Context, id int, req models.UpdateProductRequest) (*models.Product, error) {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, stock_quantity = $4, modified_date = NOW()
		WHERE id = $5
		RETURNING id, name, description, price, stock_quantity, created_date, modified_date
	`

	var p models.Product
	err := r.db.QueryRowContext(ctx, query, req.Name, req.Description, req.Price, req.StockQuantity, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity, &p.CreatedDate, &p.ModifiedDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return &p, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// DecrementStock subtracts quantity from the product's stock in a single
// conditional update, so concurrent decrements can never drive the stock
// below zero.
func (r *ProductRepository) DecrementStock(ctx context.Context, id, quantity int) error {
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity - $1, modified_date = NOW()
		WHERE id = $2 AND stock_quantity >= $1
	`

	result, err := r.db.ExecContext(ctx, query, quantity, id)
	if err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		// Distinguish a missing product from a conditional-update miss.
		exists, err := r.exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrProductNotFound
		}
		return ErrInsufficientStock
	}

	return nil
}

func (r *ProductRepository) exists(ctx context.Context, id int) (bool, error) {
	var found bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("failed to check product existence: %w", err)
	}
	return found, nil
}
