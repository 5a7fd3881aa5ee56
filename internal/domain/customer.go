package domain

import "time"

// Customer là khách vãng lai, định danh bằng số điện thoại.
// Được tạo lười (lazy) trong lúc check-in khi có đủ tên và số điện thoại.
type Customer struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone"`
	LicensePlate string    `json:"license_plate,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
