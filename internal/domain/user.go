package domain

import "time"

// User là tài khoản vận hành dashboard (không phải khách gửi xe — xem Customer).
// Vai trò "admin" được quản lý bãi và chỗ đỗ; "operator" chỉ thao tác
// check-in/check-out và xem báo cáo.
type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"` // Trường này giữ bcrypt hash, giấu khỏi JSON
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RegisterUserDTO nhận đăng ký tài khoản vận hành. Role gửi lên chỉ được
// tôn trọng khi là "admin"; mọi giá trị khác rơi về "operator".
type RegisterUserDTO struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6,max=100"`
	Role     string `json:"role,omitempty"`
}

type LoginUserDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponseDTO trả về sau khi đăng nhập thành công, kèm JWT cho các
// request /api/v1 tiếp theo.
type AuthResponseDTO struct {
	Token    string `json:"token"`
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
