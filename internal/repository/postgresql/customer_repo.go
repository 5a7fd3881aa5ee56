package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"parking_dashboard/internal/domain"
	"parking_dashboard/internal/repository"

	"github.com/lib/pq"
)

type pgCustomerRepository struct {
	db *sql.DB
}

func NewPgCustomerRepository(db *sql.DB) repository.CustomerRepository {
	return &pgCustomerRepository{db: db}
}

func (r *pgCustomerRepository) Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	query := `INSERT INTO customers (name, email, phone, license_plate, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		customer.Name,
		sql.NullString{String: customer.Email, Valid: customer.Email != ""},
		customer.Phone,
		sql.NullString{String: customer.LicensePlate, Valid: customer.LicensePlate != ""},
	).Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "unique_violation" && pqErr.Constraint == "customers_phone_key" {
				return nil, fmt.Errorf("%w: số điện thoại '%s' đã được đăng ký", repository.ErrDuplicateEntry, customer.Phone)
			}
		}
		return nil, fmt.Errorf("CustomerRepository.Create: %w", err)
	}
	customer.CreatedAt = customer.CreatedAt.In(time.UTC)
	customer.UpdatedAt = customer.UpdatedAt.In(time.UTC)
	return customer, nil
}

func (r *pgCustomerRepository) FindByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	customer := &domain.Customer{}
	query := `SELECT id, name, email, phone, license_plate, created_at, updated_at FROM customers WHERE phone = $1`
	var email, licensePlate sql.NullString
	err := r.db.QueryRowContext(ctx, query, phone).Scan(
		&customer.ID, &customer.Name, &email, &customer.Phone, &licensePlate,
		&customer.CreatedAt, &customer.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("CustomerRepository.FindByPhone: %w", err)
	}
	if email.Valid {
		customer.Email = email.String
	}
	if licensePlate.Valid {
		customer.LicensePlate = licensePlate.String
	}
	customer.CreatedAt = customer.CreatedAt.In(time.UTC)
	customer.UpdatedAt = customer.UpdatedAt.In(time.UTC)
	return customer, nil
}
