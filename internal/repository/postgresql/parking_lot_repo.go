package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"parking_dashboard/internal/domain"
	"parking_dashboard/internal/repository"

	"github.com/lib/pq" // Import driver PostgreSQL
)

type pgParkingLotRepository struct {
	db *sql.DB
}

func NewPgParkingLotRepository(db *sql.DB) repository.ParkingLotRepository {
	return &pgParkingLotRepository{db: db}
}

func (r *pgParkingLotRepository) Create(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error) {
	query := `INSERT INTO parking_lots
	           (name, location, total_spaces, hourly_rate, daily_rate, operating_hours, is_covered, has_ev_charging, has_handicap_spaces)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	           RETURNING id, created_at, updated_at`
	var dailyRateVal sql.NullFloat64
	if lot.DailyRate.Valid {
		dailyRateVal = sql.NullFloat64{Float64: lot.DailyRate.Float64, Valid: true}
	}
	err := r.db.QueryRowContext(ctx, query,
		lot.Name, lot.Location, lot.TotalSpaces, lot.HourlyRate, dailyRateVal,
		lot.OperatingHours, lot.IsCovered, lot.HasEvCharging, lot.HasHandicapSpaces,
	).Scan(&lot.ID, &lot.CreatedAt, &lot.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "unique_violation" {
				return nil, fmt.Errorf("%w: tên bãi đỗ xe '%s' đã tồn tại", repository.ErrDuplicateEntry, lot.Name)
			}
		}
		return nil, fmt.Errorf("ParkingLotRepository.Create: %w", err)
	}
	lot.CreatedAt = lot.CreatedAt.In(time.UTC)
	lot.UpdatedAt = lot.UpdatedAt.In(time.UTC)
	return lot, nil
}

func (r *pgParkingLotRepository) FindByID(ctx context.Context, id int) (*domain.ParkingLot, error) {
	lot := &domain.ParkingLot{}
	query := `SELECT id, name, location, total_spaces, hourly_rate, daily_rate, operating_hours,
	                 is_covered, has_ev_charging, has_handicap_spaces, created_at, updated_at
	           FROM parking_lots WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&lot.ID, &lot.Name, &lot.Location, &lot.TotalSpaces, &lot.HourlyRate, &lot.DailyRate,
		&lot.OperatingHours, &lot.IsCovered, &lot.HasEvCharging, &lot.HasHandicapSpaces,
		&lot.CreatedAt, &lot.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingLotRepository.FindByID: %w", err)
	}
	lot.CreatedAt = lot.CreatedAt.In(time.UTC)
	lot.UpdatedAt = lot.UpdatedAt.In(time.UTC)
	return lot, nil
}

func (r *pgParkingLotRepository) FindAll(ctx context.Context) ([]domain.ParkingLot, error) {
	query := `SELECT id, name, location, total_spaces, hourly_rate, daily_rate, operating_hours,
	                 is_covered, has_ev_charging, has_handicap_spaces, created_at, updated_at
	           FROM parking_lots ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ParkingLotRepository.FindAll: %w", err)
	}
	defer rows.Close()

	var lots []domain.ParkingLot
	for rows.Next() {
		var lot domain.ParkingLot
		if err := rows.Scan(
			&lot.ID, &lot.Name, &lot.Location, &lot.TotalSpaces, &lot.HourlyRate, &lot.DailyRate,
			&lot.OperatingHours, &lot.IsCovered, &lot.HasEvCharging, &lot.HasHandicapSpaces,
			&lot.CreatedAt, &lot.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ParkingLotRepository.FindAll (scanning row): %w", err)
		}
		lot.CreatedAt = lot.CreatedAt.In(time.UTC)
		lot.UpdatedAt = lot.UpdatedAt.In(time.UTC)
		lots = append(lots, lot)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ParkingLotRepository.FindAll (rows error): %w", err)
	}
	return lots, nil
}

func (r *pgParkingLotRepository) Update(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error) {
	query := `UPDATE parking_lots
	           SET name = $1, location = $2, total_spaces = $3, hourly_rate = $4, daily_rate = $5,
	               operating_hours = $6, is_covered = $7, has_ev_charging = $8, has_handicap_spaces = $9,
	               updated_at = CURRENT_TIMESTAMP
	           WHERE id = $10
	           RETURNING updated_at`
	var dailyRateVal sql.NullFloat64
	if lot.DailyRate.Valid {
		dailyRateVal = sql.NullFloat64{Float64: lot.DailyRate.Float64, Valid: true}
	}
	err := r.db.QueryRowContext(ctx, query,
		lot.Name, lot.Location, lot.TotalSpaces, lot.HourlyRate, dailyRateVal,
		lot.OperatingHours, lot.IsCovered, lot.HasEvCharging, lot.HasHandicapSpaces,
		lot.ID,
	).Scan(&lot.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "unique_violation" {
				return nil, fmt.Errorf("%w: tên bãi đỗ xe '%s' đã tồn tại", repository.ErrDuplicateEntry, lot.Name)
			}
		}
		return nil, fmt.Errorf("ParkingLotRepository.Update: %w", err)
	}
	lot.UpdatedAt = lot.UpdatedAt.In(time.UTC)
	return lot, nil
}

func (r *pgParkingLotRepository) Delete(ctx context.Context, id int) error {
	// Spaces và sessions liên quan bị xóa theo nhờ ON DELETE CASCADE trong schema.
	query := `DELETE FROM parking_lots WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("ParkingLotRepository.Delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ParkingLotRepository.Delete (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
