package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

type ParkingLot struct {
	ID                int        `json:"id"`
	Name              string     `json:"name" binding:"required"`
	Location          string     `json:"location,omitempty"`
	TotalSpaces       int        `json:"total_spaces"`
	HourlyRate        float64    `json:"hourly_rate"`
	DailyRate         null.Float `json:"daily_rate"`
	OperatingHours    string     `json:"operating_hours"`
	IsCovered         bool       `json:"is_covered"`
	HasEvCharging     bool       `json:"has_ev_charging"`
	HasHandicapSpaces bool       `json:"has_handicap_spaces"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type ParkingLotDTO struct {
	Name              string   `json:"name" binding:"required"`
	Location          string   `json:"location"`
	TotalSpaces       int      `json:"total_spaces" binding:"required,gt=0"`
	HourlyRate        float64  `json:"hourly_rate" binding:"required,gt=0"`
	DailyRate         *float64 `json:"daily_rate"`
	OperatingHours    string   `json:"operating_hours"`
	IsCovered         bool     `json:"is_covered"`
	HasEvCharging     bool     `json:"has_ev_charging"`
	HasHandicapSpaces bool     `json:"has_handicap_spaces"`
}

// Thống kê nhanh cho trang dashboard của một bãi đỗ.
type ParkingLotStats struct {
	LotID             int     `json:"lot_id"`
	TotalSpaces       int     `json:"total_spaces"`
	AvailableSpaces   int     `json:"available_spaces"`
	OccupiedSpaces    int     `json:"occupied_spaces"`
	ReservedSpaces    int     `json:"reserved_spaces"`
	MaintenanceSpaces int     `json:"maintenance_spaces"`
	OccupancyRate     int     `json:"occupancy_rate"` // Phần trăm, đã làm tròn
	DailyRevenue      float64 `json:"daily_revenue"`
}
