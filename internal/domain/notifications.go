package domain

import "time"

// SpaceStatusNotification được đẩy qua WebSocket cho các dashboard đang mở
// mỗi khi trạng thái một chỗ đỗ thay đổi. Chỉ phục vụ UX; dữ liệu gốc vẫn
// nằm trong database.
type SpaceStatusNotification struct {
	Type        string      `json:"type"` // Luôn là "space_status"
	LotID       int         `json:"lot_id"`
	SpaceID     int         `json:"space_id"`
	SpaceNumber string      `json:"space_number"`
	Status      SpaceStatus `json:"status"`
	Source      string      `json:"source"` // "check_in", "check_out", "admin_update"
	Timestamp   time.Time   `json:"timestamp"`
}
