package domain

import "time"

// RevenueReport là bảng tổng hợp theo (lot_id, report_date), có thể tính lại
// bất cứ lúc nào từ parking_sessions — không phải nguồn dữ liệu gốc.
type RevenueReport struct {
	ID                       int       `json:"id"`
	LotID                    int       `json:"lot_id"`
	ReportDate               string    `json:"report_date"` // Định dạng YYYY-MM-DD
	DailyRevenue             float64   `json:"daily_revenue"`
	OccupiedSpacesPercentage float64   `json:"occupied_spaces_percentage"`
	PeakHour                 string    `json:"peak_hour"` // Ví dụ: "9:00 - 9:59", "N/A"
	TotalSessions            int       `json:"total_sessions"`
	AvgSessionDuration       string    `json:"avg_session_duration"` // Định dạng H:MM
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

type GenerateReportDTO struct {
	LotID      int    `json:"lot_id" binding:"required"`
	ReportDate string `json:"report_date" binding:"required"` // YYYY-MM-DD
}
