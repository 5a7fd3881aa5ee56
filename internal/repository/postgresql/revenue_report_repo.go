package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"parking_dashboard/internal/domain"
	"parking_dashboard/internal/repository"
)

type pgRevenueReportRepository struct {
	db *sql.DB
}

func NewPgRevenueReportRepository(db *sql.DB) repository.RevenueReportRepository {
	return &pgRevenueReportRepository{db: db}
}

func (r *pgRevenueReportRepository) Upsert(ctx context.Context, report *domain.RevenueReport) (*domain.RevenueReport, error) {
	// ON CONFLICT theo khóa duy nhất (lot_id, report_date): chạy lại cho cùng
	// ngày thì ghi đè, không bao giờ tạo hàng trùng.
	query := `INSERT INTO revenue_reports
	           (lot_id, report_date, daily_revenue, occupied_spaces_percentage, peak_hour, total_sessions, avg_session_duration, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           ON CONFLICT (lot_id, report_date) DO UPDATE SET
	               daily_revenue = EXCLUDED.daily_revenue,
	               occupied_spaces_percentage = EXCLUDED.occupied_spaces_percentage,
	               peak_hour = EXCLUDED.peak_hour,
	               total_sessions = EXCLUDED.total_sessions,
	               avg_session_duration = EXCLUDED.avg_session_duration,
	               updated_at = CURRENT_TIMESTAMP
	           RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		report.LotID, report.ReportDate, report.DailyRevenue, report.OccupiedSpacesPercentage,
		report.PeakHour, report.TotalSessions, report.AvgSessionDuration,
	).Scan(&report.ID, &report.CreatedAt, &report.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("RevenueReportRepository.Upsert: %w", err)
	}
	report.CreatedAt = report.CreatedAt.In(time.UTC)
	report.UpdatedAt = report.UpdatedAt.In(time.UTC)
	return report, nil
}

func (r *pgRevenueReportRepository) FindByLotAndDateRange(ctx context.Context, lotID int, from, to string) ([]domain.RevenueReport, error) {
	query := `SELECT id, lot_id, report_date, daily_revenue, occupied_spaces_percentage, peak_hour,
	                 total_sessions, avg_session_duration, created_at, updated_at
	           FROM revenue_reports
	           WHERE lot_id = $1 AND report_date >= $2 AND report_date <= $3
	           ORDER BY report_date`
	rows, err := r.db.QueryContext(ctx, query, lotID, from, to)
	if err != nil {
		return nil, fmt.Errorf("RevenueReportRepository.FindByLotAndDateRange: %w", err)
	}
	defer rows.Close()

	var reports []domain.RevenueReport
	for rows.Next() {
		var report domain.RevenueReport
		var reportDate time.Time
		if err := rows.Scan(
			&report.ID, &report.LotID, &reportDate, &report.DailyRevenue,
			&report.OccupiedSpacesPercentage, &report.PeakHour, &report.TotalSessions,
			&report.AvgSessionDuration, &report.CreatedAt, &report.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("RevenueReportRepository.FindByLotAndDateRange (scanning row): %w", err)
		}
		report.ReportDate = reportDate.Format("2006-01-02")
		report.CreatedAt = report.CreatedAt.In(time.UTC)
		report.UpdatedAt = report.UpdatedAt.In(time.UTC)
		reports = append(reports, report)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("RevenueReportRepository.FindByLotAndDateRange (rows error): %w", err)
	}
	return reports, nil
}
