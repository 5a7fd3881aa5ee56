package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
)

type ParkingSession struct {
	ID                  int         `json:"id"`
	SpaceID             int         `json:"space_id"`
	CustomerID          null.Int    `json:"customer_id"`
	TicketCode          string      `json:"ticket_code"` // Mã vé công khai, dùng uuid
	StartTime           time.Time   `json:"start_time"`
	EndTime             null.Time   `json:"end_time"`
	TotalCost           null.Float  `json:"total_cost"`
	PaymentStatus       string      `json:"payment_status"` // "pending", "completed"
	VehicleLicensePlate string      `json:"vehicle_license_plate"`
	VehicleType         string      `json:"vehicle_type,omitempty"`
	Notes               null.String `json:"notes,omitempty"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`

	ParkingSpace *ParkingSpace `json:"parking_space,omitempty"` // Không map vào DB, dùng để trả về API
}

// DTO cho API Check-in (frontend gửi lên)
type VehicleCheckInDTO struct {
	SpaceID       int    `json:"space_id" binding:"required"`
	LicensePlate  string `json:"license_plate" binding:"required"`
	VehicleType   string `json:"vehicle_type"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	Notes         string `json:"notes"`
}

// Kết quả trả về cho API Check-out.
type CheckOutResultDTO struct {
	SessionID     int       `json:"session_id"`
	LotID         int       `json:"lot_id"`
	SpaceNumber   string    `json:"space_number"`
	TotalCost     float64   `json:"total_cost"`
	PaymentStatus string    `json:"payment_status"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
}

type ParkingSessionFilterDTO struct {
	LotID  *int    `form:"lotId"`
	Active *bool   `form:"active"`
	Plate  *string `form:"plate"`
}
