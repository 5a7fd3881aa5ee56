package domain

import "time"

type SpaceStatus string

const (
	StatusAvailable   SpaceStatus = "available"
	StatusOccupied    SpaceStatus = "occupied"
	StatusReserved    SpaceStatus = "reserved"
	StatusMaintenance SpaceStatus = "maintenance"
)

type SpaceType string

const (
	TypeStandard SpaceType = "standard"
	TypeHandicap SpaceType = "handicap"
	TypeEv       SpaceType = "ev"
)

type ParkingSpace struct {
	ID          int         `json:"id"`
	LotID       int         `json:"lot_id"`
	SpaceNumber string      `json:"space_number"` // Ví dụ: "A1", "B12"
	SpaceType   SpaceType   `json:"space_type"`
	Status      SpaceStatus `json:"status"`
	LastUpdated *time.Time  `json:"last_updated,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type SpaceStatusDTO struct {
	Status string `json:"status" binding:"required"`
}

// ValidSpaceStatus kiểm tra một chuỗi có phải trạng thái chỗ đỗ hợp lệ không.
func ValidSpaceStatus(s string) bool {
	switch SpaceStatus(s) {
	case StatusAvailable, StatusOccupied, StatusReserved, StatusMaintenance:
		return true
	}
	return false
}
