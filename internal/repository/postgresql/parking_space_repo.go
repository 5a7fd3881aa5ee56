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

type pgParkingSpaceRepository struct {
	db *sql.DB
}

func NewPgParkingSpaceRepository(db *sql.DB) repository.ParkingSpaceRepository {
	return &pgParkingSpaceRepository{db: db}
}

func (r *pgParkingSpaceRepository) CreateBatch(ctx context.Context, spaces []domain.ParkingSpace) error {
	if len(spaces) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ParkingSpaceRepository.CreateBatch (begin tx): %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO parking_spaces (lot_id, space_number, space_type, status, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("ParkingSpaceRepository.CreateBatch (prepare): %w", err)
	}
	defer stmt.Close()

	for _, space := range spaces {
		if _, err := stmt.ExecContext(ctx, space.LotID, space.SpaceNumber, space.SpaceType, space.Status); err != nil {
			if pqErr, ok := err.(*pq.Error); ok {
				if pqErr.Code.Name() == "unique_violation" && pqErr.Constraint == "parking_spaces_lot_id_space_number_key" {
					return fmt.Errorf("%w: chỗ đỗ '%s' đã tồn tại trong bãi %d", repository.ErrDuplicateEntry, space.SpaceNumber, space.LotID)
				}
			}
			return fmt.Errorf("ParkingSpaceRepository.CreateBatch (inserting %s): %w", space.SpaceNumber, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ParkingSpaceRepository.CreateBatch (commit): %w", err)
	}
	return nil
}

func (r *pgParkingSpaceRepository) FindByID(ctx context.Context, id int) (*domain.ParkingSpace, error) {
	space := &domain.ParkingSpace{}
	query := `SELECT id, lot_id, space_number, space_type, status, last_updated, created_at, updated_at
	           FROM parking_spaces WHERE id = $1`
	var lastUpdated sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&space.ID, &space.LotID, &space.SpaceNumber, &space.SpaceType, &space.Status,
		&lastUpdated, &space.CreatedAt, &space.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingSpaceRepository.FindByID: %w", err)
	}
	if lastUpdated.Valid {
		t := lastUpdated.Time.In(time.UTC)
		space.LastUpdated = &t
	}
	space.CreatedAt = space.CreatedAt.In(time.UTC)
	space.UpdatedAt = space.UpdatedAt.In(time.UTC)
	return space, nil
}

func (r *pgParkingSpaceRepository) FindByLotID(ctx context.Context, lotID int) ([]domain.ParkingSpace, error) {
	// Sắp theo section rồi theo số trong section để "A2" đứng trước "A10".
	query := `SELECT id, lot_id, space_number, space_type, status, last_updated, created_at, updated_at
	           FROM parking_spaces
	           WHERE lot_id = $1
	           ORDER BY substring(space_number from 1 for 1), length(space_number), space_number`
	rows, err := r.db.QueryContext(ctx, query, lotID)
	if err != nil {
		return nil, fmt.Errorf("ParkingSpaceRepository.FindByLotID: %w", err)
	}
	defer rows.Close()

	var spaces []domain.ParkingSpace
	for rows.Next() {
		var space domain.ParkingSpace
		var lastUpdated sql.NullTime
		if err := rows.Scan(
			&space.ID, &space.LotID, &space.SpaceNumber, &space.SpaceType, &space.Status,
			&lastUpdated, &space.CreatedAt, &space.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ParkingSpaceRepository.FindByLotID (scanning row): %w", err)
		}
		if lastUpdated.Valid {
			t := lastUpdated.Time.In(time.UTC)
			space.LastUpdated = &t
		}
		space.CreatedAt = space.CreatedAt.In(time.UTC)
		space.UpdatedAt = space.UpdatedAt.In(time.UTC)
		spaces = append(spaces, space)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ParkingSpaceRepository.FindByLotID (rows error): %w", err)
	}
	return spaces, nil
}

func (r *pgParkingSpaceRepository) CountByLotID(ctx context.Context, lotID int) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM parking_spaces WHERE lot_id = $1`
	if err := r.db.QueryRowContext(ctx, query, lotID).Scan(&count); err != nil {
		return 0, fmt.Errorf("ParkingSpaceRepository.CountByLotID: %w", err)
	}
	return count, nil
}

func (r *pgParkingSpaceRepository) UpdateStatus(ctx context.Context, id int, status domain.SpaceStatus) (*domain.ParkingSpace, error) {
	space := &domain.ParkingSpace{}
	query := `UPDATE parking_spaces
	           SET status = $1, last_updated = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $2
	           RETURNING id, lot_id, space_number, space_type, status, last_updated, created_at, updated_at`
	var lastUpdated sql.NullTime
	err := r.db.QueryRowContext(ctx, query, status, id).Scan(
		&space.ID, &space.LotID, &space.SpaceNumber, &space.SpaceType, &space.Status,
		&lastUpdated, &space.CreatedAt, &space.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingSpaceRepository.UpdateStatus: %w", err)
	}
	if lastUpdated.Valid {
		t := lastUpdated.Time.In(time.UTC)
		space.LastUpdated = &t
	}
	space.CreatedAt = space.CreatedAt.In(time.UTC)
	space.UpdatedAt = space.UpdatedAt.In(time.UTC)
	return space, nil
}

func (r *pgParkingSpaceRepository) UpdateStatusIf(ctx context.Context, id int, from, to domain.SpaceStatus) error {
	// Câu UPDATE có điều kiện: hai check-in đồng thời trên cùng một chỗ thì
	// chỉ một bên thắng, bên kia nhận ErrStatusConflict.
	query := `UPDATE parking_spaces
	           SET status = $1, last_updated = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $2 AND status = $3`
	result, err := r.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("ParkingSpaceRepository.UpdateStatusIf: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ParkingSpaceRepository.UpdateStatusIf (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrStatusConflict
	}
	return nil
}
