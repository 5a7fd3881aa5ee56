package repository

import (
	"context"
	"errors"
	"time"

	"parking_dashboard/internal/domain"
)

var ErrNotFound = errors.New("không tìm thấy bản ghi")
var ErrDuplicateEntry = errors.New("bản ghi đã tồn tại")
var ErrNoActiveSession = errors.New("không tìm thấy phiên đỗ xe đang hoạt động cho thông tin cung cấp")
var ErrStatusConflict = errors.New("chỗ đỗ không ở trạng thái mong đợi cho thao tác này")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	FindByPhone(ctx context.Context, phone string) (*domain.Customer, error)
}

type ParkingLotRepository interface {
	Create(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error)
	FindByID(ctx context.Context, id int) (*domain.ParkingLot, error)
	FindAll(ctx context.Context) ([]domain.ParkingLot, error)
	Update(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error)
	Delete(ctx context.Context, id int) error
}

type ParkingSpaceRepository interface {
	// CreateBatch chèn cả lô chỗ đỗ sinh ra khi tạo/mở rộng bãi trong một transaction.
	CreateBatch(ctx context.Context, spaces []domain.ParkingSpace) error
	FindByID(ctx context.Context, id int) (*domain.ParkingSpace, error)
	FindByLotID(ctx context.Context, lotID int) ([]domain.ParkingSpace, error)
	CountByLotID(ctx context.Context, lotID int) (int, error)
	UpdateStatus(ctx context.Context, id int, status domain.SpaceStatus) (*domain.ParkingSpace, error)
	// UpdateStatusIf chỉ chuyển trạng thái khi trạng thái hiện tại vẫn là `from`.
	// Trả về ErrStatusConflict nếu không có hàng nào được cập nhật.
	UpdateStatusIf(ctx context.Context, id int, from, to domain.SpaceStatus) error
}

type ParkingSessionRepository interface {
	Create(ctx context.Context, session *domain.ParkingSession) (*domain.ParkingSession, error)
	FindByID(ctx context.Context, id int) (*domain.ParkingSession, error)
	FindActiveBySpaceID(ctx context.Context, spaceID int) (*domain.ParkingSession, error)
	// Finalize chốt phiên đúng một lần: chỉ cập nhật khi end_time còn NULL,
	// trả về ErrNoActiveSession nếu phiên đã được chốt trước đó.
	Finalize(ctx context.Context, id int, endTime time.Time, totalCost float64, paymentStatus string) (*domain.ParkingSession, error)
	AttachCustomer(ctx context.Context, sessionID int, customerID int) error
	// FindByLotAndTimeRange trả về mọi phiên của bãi có start_time trong [from, to].
	FindByLotAndTimeRange(ctx context.Context, lotID int, from, to time.Time) ([]domain.ParkingSession, error)
	Find(ctx context.Context, filter domain.ParkingSessionFilterDTO) ([]domain.ParkingSession, error)
}

type RevenueReportRepository interface {
	// Upsert ghi đè theo khóa duy nhất (lot_id, report_date).
	Upsert(ctx context.Context, report *domain.RevenueReport) (*domain.RevenueReport, error)
	FindByLotAndDateRange(ctx context.Context, lotID int, from, to string) ([]domain.RevenueReport, error)
}
