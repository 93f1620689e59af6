package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/ms-lab/commerce-go/internal/models"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrDuplicateEmail   = errors.New("a customer with that email already exists")
)

type CustomerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(database *PostgresDB) *CustomerRepository {
	return &CustomerRepository{db: database.Conn}
}

func (r *CustomerRepository) GetAll(ctx context.Context) ([]models.Customer, error) {
	query := `SELECT id, name, email, address, created_at FROM customers ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Address, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}

	return customers, rows.Err()
}

// GetByID returns (nil, nil) when no customer has the given id.
func (r *CustomerRepository) GetByID(ctx context.Context, id int) (*models.Customer, error) {
	query := `SELECT id, name, email, address, created_at FROM customers WHERE id = $1`

	var c models.Customer
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.Address, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return &c, nil
}

// GetByEmail returns (nil, nil) when no customer has the given email.
func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	query := `SELECT id, name, email, address, created_at FROM customers WHERE email = $1`

	var c models.Customer
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&c.ID, &c.Name, &c.Email, &c.Address, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get customer by email: %w", err)
	}

	return &c, nil
}

func (r *CustomerRepository) Create(ctx context.Context, req models.CreateCustomerRequest) (*models.Customer, error) {
	query := `
		INSERT INTO customers (name, email, address)
		VALUES ($1, $2, $3)
		RETURNING id, name, email, address, created_at
	`

	var c models.Customer
	err := r.db.QueryRowContext(ctx, query, req.Name, req.Email, req.Address).
		Scan(&c.ID, &c.Name, &c.Email, &c.Address, &c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	return &c, nil
}

func (r *CustomerRepository) Update(ctx context.Context, id int, req models.UpdateCustomerRequest) (*models.Customer, error) {
	query := `
		UPDATE customers SET name = $1, email = $2, address = $3
		WHERE id = $4
		RETURNING id, name, email, address, created_at
	`

	var c models.Customer
	err := r.db.QueryRowContext(ctx, query, req.Name, req.Email, req.Address, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.Address, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	return &c, nil
}

func (r *CustomerRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrCustomerNotFound
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
