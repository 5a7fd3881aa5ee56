package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"parking_dashboard/internal/domain"
	"parking_dashboard/internal/repository"

	"github.com/lib/pq"
)

type pgParkingSessionRepository struct {
	db *sql.DB
}

func NewPgParkingSessionRepository(db *sql.DB) repository.ParkingSessionRepository {
	return &pgParkingSessionRepository{db: db}
}

const sessionColumns = `id, space_id, customer_id, ticket_code, start_time, end_time,
	                 total_cost, payment_status, vehicle_license_plate, vehicle_type, notes,
	                 created_at, updated_at`

func (r *pgParkingSessionRepository) scanSession(row *sql.Row) (*domain.ParkingSession, error) {
	session := &domain.ParkingSession{}
	var vehicleType sql.NullString
	err := row.Scan(
		&session.ID, &session.SpaceID, &session.CustomerID, &session.TicketCode,
		&session.StartTime, &session.EndTime, &session.TotalCost, &session.PaymentStatus,
		&session.VehicleLicensePlate, &vehicleType, &session.Notes,
		&session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if vehicleType.Valid {
		session.VehicleType = vehicleType.String
	}
	normalizeSessionTimes(session)
	return session, nil
}

func normalizeSessionTimes(session *domain.ParkingSession) {
	session.StartTime = session.StartTime.In(time.UTC)
	if session.EndTime.Valid {
		session.EndTime.Time = session.EndTime.Time.In(time.UTC)
	}
	session.CreatedAt = session.CreatedAt.In(time.UTC)
	session.UpdatedAt = session.UpdatedAt.In(time.UTC)
}

func (r *pgParkingSessionRepository) Create(ctx context.Context, session *domain.ParkingSession) (*domain.ParkingSession, error) {
	query := `INSERT INTO parking_sessions
	           (space_id, customer_id, ticket_code, start_time, payment_status, vehicle_license_plate, vehicle_type, notes, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING id, created_at, updated_at`

	var customerIDVal sql.NullInt64
	if session.CustomerID.Valid {
		customerIDVal = sql.NullInt64{Int64: session.CustomerID.Int64, Valid: true}
	}
	var vehicleTypeVal sql.NullString
	if session.VehicleType != "" {
		vehicleTypeVal = sql.NullString{String: session.VehicleType, Valid: true}
	}
	var notesVal sql.NullString
	if session.Notes.Valid {
		notesVal = sql.NullString{String: session.Notes.String, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		session.SpaceID, customerIDVal, session.TicketCode, session.StartTime,
		session.PaymentStatus, session.VehicleLicensePlate, vehicleTypeVal, notesVal,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "unique_violation" {
				// Index duy nhất một-phiên-active-một-chỗ (parking_sessions_active_space_idx)
				if pqErr.Constraint == "parking_sessions_active_space_idx" {
					return nil, fmt.Errorf("%w: chỗ đỗ %d đã có phiên đang hoạt động", repository.ErrDuplicateEntry, session.SpaceID)
				}
				return nil, fmt.Errorf("%w: mã vé '%s' đã tồn tại", repository.ErrDuplicateEntry, session.TicketCode)
			}
		}
		return nil, fmt.Errorf("ParkingSessionRepository.Create: %w", err)
	}
	normalizeSessionTimes(session)
	return session, nil
}

func (r *pgParkingSessionRepository) FindByID(ctx context.Context, id int) (*domain.ParkingSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM parking_sessions WHERE id = $1`
	session, err := r.scanSession(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingSessionRepository.FindByID: %w", err)
	}
	return session, nil
}

func (r *pgParkingSessionRepository) FindActiveBySpaceID(ctx context.Context, spaceID int) (*domain.ParkingSession, error) {
	query := `SELECT ` + sessionColumns + `
	           FROM parking_sessions
	           WHERE space_id = $1 AND end_time IS NULL
	           ORDER BY start_time DESC LIMIT 1`
	session, err := r.scanSession(r.db.QueryRowContext(ctx, query, spaceID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNoActiveSession
		}
		return nil, fmt.Errorf("ParkingSessionRepository.FindActiveBySpaceID: %w", err)
	}
	return session, nil
}

func (r *pgParkingSessionRepository) Finalize(ctx context.Context, id int, endTime time.Time, totalCost float64, paymentStatus string) (*domain.ParkingSession, error) {
	// Điều kiện end_time IS NULL đảm bảo phiên chỉ được chốt đúng một lần.
	query := `UPDATE parking_sessions
	           SET end_time = $1, total_cost = $2, payment_status = $3, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $4 AND end_time IS NULL
	           RETURNING ` + sessionColumns
	session, err := r.scanSession(r.db.QueryRowContext(ctx, query, endTime, totalCost, paymentStatus, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNoActiveSession
		}
		return nil, fmt.Errorf("ParkingSessionRepository.Finalize: %w", err)
	}
	return session, nil
}

func (r *pgParkingSessionRepository) AttachCustomer(ctx context.Context, sessionID int, customerID int) error {
	query := `UPDATE parking_sessions SET customer_id = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, customerID, sessionID)
	if err != nil {
		return fmt.Errorf("ParkingSessionRepository.AttachCustomer: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ParkingSessionRepository.AttachCustomer (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *pgParkingSessionRepository) FindByLotAndTimeRange(ctx context.Context, lotID int, from, to time.Time) ([]domain.ParkingSession, error) {
	// Join qua parking_spaces vì session chỉ giữ space_id, không giữ lot_id trực tiếp.
	query := `SELECT s.id, s.space_id, s.customer_id, s.ticket_code, s.start_time, s.end_time,
	                 s.total_cost, s.payment_status, s.vehicle_license_plate, s.vehicle_type, s.notes,
	                 s.created_at, s.updated_at
	           FROM parking_sessions s
	           JOIN parking_spaces sp ON sp.id = s.space_id
	           WHERE sp.lot_id = $1 AND s.start_time >= $2 AND s.start_time <= $3
	           ORDER BY s.start_time`
	rows, err := r.db.QueryContext(ctx, query, lotID, from, to)
	if err != nil {
		return nil, fmt.Errorf("ParkingSessionRepository.FindByLotAndTimeRange: %w", err)
	}
	defer rows.Close()
	return r.collectSessions(rows, "FindByLotAndTimeRange")
}

func (r *pgParkingSessionRepository) Find(ctx context.Context, filter domain.ParkingSessionFilterDTO) ([]domain.ParkingSession, error) {
	baseQuery := `SELECT s.id, s.space_id, s.customer_id, s.ticket_code, s.start_time, s.end_time,
	                     s.total_cost, s.payment_status, s.vehicle_license_plate, s.vehicle_type, s.notes,
	                     s.created_at, s.updated_at
	               FROM parking_sessions s
	               JOIN parking_spaces sp ON sp.id = s.space_id`

	var conditions []string
	var args []interface{}
	argID := 1

	if filter.LotID != nil {
		conditions = append(conditions, fmt.Sprintf("sp.lot_id = $%d", argID))
		args = append(args, *filter.LotID)
		argID++
	}
	if filter.Active != nil {
		if *filter.Active {
			conditions = append(conditions, "s.end_time IS NULL")
		} else {
			conditions = append(conditions, "s.end_time IS NOT NULL")
		}
	}
	if filter.Plate != nil {
		conditions = append(conditions, fmt.Sprintf("s.vehicle_license_plate = $%d", argID))
		args = append(args, *filter.Plate)
		argID++
	}

	query := baseQuery
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY s.start_time DESC" // Sắp theo thời gian vào gần nhất

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ParkingSessionRepository.Find: %w", err)
	}
	defer rows.Close()
	return r.collectSessions(rows, "Find")
}

func (r *pgParkingSessionRepository) collectSessions(rows *sql.Rows, op string) ([]domain.ParkingSession, error) {
	var sessions []domain.ParkingSession
	for rows.Next() {
		var session domain.ParkingSession
		var vehicleType sql.NullString
		if err := rows.Scan(
			&session.ID, &session.SpaceID, &session.CustomerID, &session.TicketCode,
			&session.StartTime, &session.EndTime, &session.TotalCost, &session.PaymentStatus,
			&session.VehicleLicensePlate, &vehicleType, &session.Notes,
			&session.CreatedAt, &session.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ParkingSessionRepository.%s (scanning row): %w", op, err)
		}
		if vehicleType.Valid {
			session.VehicleType = vehicleType.String
		}
		normalizeSessionTimes(&session)
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ParkingSessionRepository.%s (rows error): %w", op, err)
	}
	return sessions, nil
}
