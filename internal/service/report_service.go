package service

import (
	"context"
	"fmt"
	"time"

	"parking_dashboard/internal/domain"
	"parking_dashboard/internal/metrics"
	"parking_dashboard/internal/repository"
)

const reportDateLayout = "2006-01-02"

type ReportService struct {
	reportRepo  repository.RevenueReportRepository
	sessionRepo repository.ParkingSessionRepository
	spaceRepo   repository.ParkingSpaceRepository
	lotRepo     repository.ParkingLotRepository
}

func NewReportService(
	reportRepo repository.RevenueReportRepository,
	sessionRepo repository.ParkingSessionRepository,
	spaceRepo repository.ParkingSpaceRepository,
	lotRepo repository.ParkingLotRepository,
) *ReportService {
	return &ReportService{
		reportRepo:  reportRepo,
		sessionRepo: sessionRepo,
		spaceRepo:   spaceRepo,
		lotRepo:     lotRepo,
	}
}

// dayBounds trả về [00:00:00, 23:59:59.999999999] UTC của ngày chứa t.
func dayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Nanosecond)
	return start, end
}

// GenerateReport tổng hợp báo cáo doanh thu cho một bãi trong một ngày và
// upsert theo khóa (lot_id, report_date): chạy lại cùng ngày sẽ ghi đè,
// không tạo hàng trùng. trigger dùng để gắn nhãn metrics ("manual",
// "check_out", "scheduled").
func (s *ReportService) GenerateReport(ctx context.Context, lotID int, reportDate string, trigger string) (*domain.RevenueReport, error) {
	parsedDate, err := time.ParseInLocation(reportDateLayout, reportDate, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: ngày báo cáo phải có dạng YYYY-MM-DD: %s", ErrValidation, reportDate)
	}
	if _, err := s.lotRepo.FindByID(ctx, lotID); err != nil {
		return nil, err
	}

	totalSpaces, err := s.spaceRepo.CountByLotID(ctx, lotID)
	if err != nil {
		return nil, fmt.Errorf("lỗi đếm chỗ đỗ của bãi %d: %w", lotID, err)
	}

	dayStart, dayEnd := dayBounds(parsedDate)
	sessions, err := s.sessionRepo.FindByLotAndTimeRange(ctx, lotID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("lỗi truy vấn phiên đỗ xe cho báo cáo: %w", err)
	}

	report := buildRevenueReport(lotID, reportDate, totalSpaces, sessions)

	saved, err := s.reportRepo.Upsert(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("lỗi lưu báo cáo doanh thu: %w", err)
	}
	metrics.IncReportGenerated(trigger)
	return saved, nil
}

// GetReports trả về các báo cáo của một bãi trong khoảng ngày [from, to].
func (s *ReportService) GetReports(ctx context.Context, lotID int, from, to string) ([]domain.RevenueReport, error) {
	if _, err := time.ParseInLocation(reportDateLayout, from, time.UTC); err != nil {
		return nil, fmt.Errorf("%w: ngày bắt đầu không hợp lệ: %s", ErrValidation, from)
	}
	if _, err := time.ParseInLocation(reportDateLayout, to, time.UTC); err != nil {
		return nil, fmt.Errorf("%w: ngày kết thúc không hợp lệ: %s", ErrValidation, to)
	}
	return s.reportRepo.FindByLotAndDateRange(ctx, lotID, from, to)
}

// buildRevenueReport tổng hợp thuần từ danh sách phiên bắt đầu trong ngày.
// Các phiên chưa chốt (total_cost NULL) tính doanh thu bằng 0 nhưng vẫn
// được đếm vào số phiên, giờ cao điểm và tỉ lệ lấp đầy.
func buildRevenueReport(lotID int, reportDate string, totalSpaces int, sessions []domain.ParkingSession) *domain.RevenueReport {
	report := &domain.RevenueReport{
		LotID:      lotID,
		ReportDate: reportDate,
		PeakHour:   "N/A",
	}

	var revenue float64
	var totalDuration time.Duration
	occupiedSpaces := make(map[int]struct{})
	var hourCounts [24]int

	for _, session := range sessions {
		if session.TotalCost.Valid {
			revenue += session.TotalCost.Float64
		}
		occupiedSpaces[session.SpaceID] = struct{}{}
		hourCounts[session.StartTime.UTC().Hour()]++

		if session.EndTime.Valid {
			d := session.EndTime.Time.Sub(session.StartTime)
			if d < 0 {
				d = 0
			}
			totalDuration += d
		}
	}

	report.DailyRevenue = roundCents(revenue)
	report.TotalSessions = len(sessions)

	if totalSpaces > 0 {
		report.OccupiedSpacesPercentage = roundCents(float64(len(occupiedSpaces)) / float64(totalSpaces) * 100)
	}

	// Giờ cao điểm: quét tăng dần 0..23, chỉ thay khi đếm LỚN HƠN hẳn,
	// nên khi hòa thì giờ sớm hơn thắng.
	peakHour, peakCount := -1, 0
	for hour := 0; hour < 24; hour++ {
		if hourCounts[hour] > peakCount {
			peakHour, peakCount = hour, hourCounts[hour]
		}
	}
	if peakHour >= 0 {
		report.PeakHour = fmt.Sprintf("%d:00 - %d:59", peakHour, peakHour)
	}

	report.AvgSessionDuration = formatDurationHM(totalDuration, countFinished(sessions))
	return report
}

func countFinished(sessions []domain.ParkingSession) int {
	n := 0
	for _, s := range sessions {
		if s.EndTime.Valid {
			n++
		}
	}
	return n
}

// formatDurationHM định dạng thời gian đỗ trung bình thành "H:MM".
func formatDurationHM(total time.Duration, count int) string {
	if count == 0 {
		return "0:00"
	}
	avgMinutes := int(total.Minutes()) / count
	return fmt.Sprintf("%d:%02d", avgMinutes/60, avgMinutes%60)
}
