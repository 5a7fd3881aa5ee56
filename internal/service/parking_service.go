package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"parking_dashboard/internal/domain"
	"parking_dashboard/internal/metrics"
	"parking_dashboard/internal/repository"

	"github.com/google/uuid"
	"gopkg.in/guregu/null.v4"
)

var ErrValidation = errors.New("dữ liệu đầu vào không hợp lệ")
var ErrSpaceNotAvailable = errors.New("chỗ đỗ không ở trạng thái trống để check-in")
var ErrSessionFinalized = errors.New("phiên đỗ xe đã được chốt trước đó")

// ErrSpaceReleaseFailed: phiên đã chốt xong nhưng không trả được chỗ đỗ về
// trạng thái trống. Dữ liệu cần đối soát thủ công; không tự động sửa.
var ErrSpaceReleaseFailed = errors.New("phiên đã chốt nhưng chưa giải phóng được chỗ đỗ")

// StatusNotifier đẩy thay đổi trạng thái chỗ đỗ tới các dashboard đang mở.
// Interface khai báo ở đây để tránh circular dependency với tầng handler.
type StatusNotifier interface {
	BroadcastSpaceStatus(n domain.SpaceStatusNotification)
}

type ParkingService struct {
	lotRepo      repository.ParkingLotRepository
	spaceRepo    repository.ParkingSpaceRepository
	sessionRepo  repository.ParkingSessionRepository
	customerRepo repository.CustomerRepository
	reportSvc    *ReportService
	notifier     StatusNotifier // Có thể nil trong test
}

func NewParkingService(
	lotRepo repository.ParkingLotRepository,
	spaceRepo repository.ParkingSpaceRepository,
	sessionRepo repository.ParkingSessionRepository,
	customerRepo repository.CustomerRepository,
	reportSvc *ReportService,
	notifier StatusNotifier,
) *ParkingService {
	return &ParkingService{
		lotRepo:      lotRepo,
		spaceRepo:    spaceRepo,
		sessionRepo:  sessionRepo,
		customerRepo: customerRepo,
		reportSvc:    reportSvc,
		notifier:     notifier,
	}
}

// --- ParkingLot ---

func (s *ParkingService) CreateParkingLot(ctx context.Context, dto domain.ParkingLotDTO) (*domain.ParkingLot, error) {
	lot := &domain.ParkingLot{
		Name:              dto.Name,
		Location:          dto.Location,
		TotalSpaces:       dto.TotalSpaces,
		HourlyRate:        dto.HourlyRate,
		DailyRate:         null.FloatFromPtr(dto.DailyRate),
		OperatingHours:    dto.OperatingHours,
		IsCovered:         dto.IsCovered,
		HasEvCharging:     dto.HasEvCharging,
		HasHandicapSpaces: dto.HasHandicapSpaces,
	}
	if lot.OperatingHours == "" {
		lot.OperatingHours = "24/7" // Mặc định
	}

	createdLot, err := s.lotRepo.Create(ctx, lot)
	if err != nil {
		return nil, err
	}

	// Sinh kho chỗ đỗ 1..N sau khi hàng parking_lots đã commit. Lỗi ở bước
	// này chỉ được log, không trả về cho caller, vì bãi đã tạo thành công.
	spaces := buildSpaces(createdLot.ID, 1, createdLot.TotalSpaces)
	if err := s.spaceRepo.CreateBatch(ctx, spaces); err != nil {
		log.Printf("Lỗi khi sinh %d chỗ đỗ cho bãi %d: %v", len(spaces), createdLot.ID, err)
	} else {
		log.Printf("Đã sinh %d chỗ đỗ cho bãi '%s' (ID: %d)", len(spaces), createdLot.Name, createdLot.ID)
	}
	return createdLot, nil
}

func (s *ParkingService) GetParkingLotByID(ctx context.Context, id int) (*domain.ParkingLot, error) {
	return s.lotRepo.FindByID(ctx, id)
}

func (s *ParkingService) GetAllParkingLots(ctx context.Context) ([]domain.ParkingLot, error) {
	return s.lotRepo.FindAll(ctx)
}

func (s *ParkingService) UpdateParkingLot(ctx context.Context, id int, dto domain.ParkingLotDTO) (*domain.ParkingLot, error) {
	lot, err := s.lotRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// total_spaces chỉ được tăng, không được giảm: giảm sẽ làm total_spaces
	// lệch khỏi số hàng parking_spaces thực tế.
	if dto.TotalSpaces < lot.TotalSpaces {
		return nil, fmt.Errorf("%w: không thể giảm tổng số chỗ đỗ từ %d xuống %d", ErrValidation, lot.TotalSpaces, dto.TotalSpaces)
	}

	previousTotal := lot.TotalSpaces

	lot.Name = dto.Name
	lot.Location = dto.Location
	lot.TotalSpaces = dto.TotalSpaces
	lot.HourlyRate = dto.HourlyRate
	lot.DailyRate = null.FloatFromPtr(dto.DailyRate)
	lot.OperatingHours = dto.OperatingHours
	if lot.OperatingHours == "" {
		lot.OperatingHours = "24/7"
	}
	lot.IsCovered = dto.IsCovered
	lot.HasEvCharging = dto.HasEvCharging
	lot.HasHandicapSpaces = dto.HasHandicapSpaces

	updatedLot, err := s.lotRepo.Update(ctx, lot)
	if err != nil {
		return nil, err
	}

	// Nếu tổng số chỗ tăng, sinh tiếp các chỗ P+1..N. Loại chỗ được đánh giá
	// theo tổng MỚI; các chỗ đã có không bị đánh số lại hay đổi loại.
	if updatedLot.TotalSpaces > previousTotal {
		spaces := buildSpaces(updatedLot.ID, previousTotal+1, updatedLot.TotalSpaces)
		if err := s.spaceRepo.CreateBatch(ctx, spaces); err != nil {
			log.Printf("Lỗi khi sinh thêm %d chỗ đỗ cho bãi %d: %v", len(spaces), updatedLot.ID, err)
		} else {
			log.Printf("Đã mở rộng bãi %d từ %d lên %d chỗ đỗ", updatedLot.ID, previousTotal, updatedLot.TotalSpaces)
		}
	}
	return updatedLot, nil
}

func (s *ParkingService) DeleteParkingLot(ctx context.Context, id int) error {
	return s.lotRepo.Delete(ctx, id)
}

// GetParkingLotStats trả về thống kê nhanh cho trang chi tiết bãi đỗ:
// số chỗ theo trạng thái, tỉ lệ lấp đầy và doanh thu hôm nay.
func (s *ParkingService) GetParkingLotStats(ctx context.Context, lotID int) (*domain.ParkingLotStats, error) {
	if _, err := s.lotRepo.FindByID(ctx, lotID); err != nil {
		return nil, err
	}
	spaces, err := s.spaceRepo.FindByLotID(ctx, lotID)
	if err != nil {
		return nil, err
	}

	stats := &domain.ParkingLotStats{LotID: lotID, TotalSpaces: len(spaces)}
	for _, space := range spaces {
		switch space.Status {
		case domain.StatusAvailable:
			stats.AvailableSpaces++
		case domain.StatusOccupied:
			stats.OccupiedSpaces++
		case domain.StatusReserved:
			stats.ReservedSpaces++
		case domain.StatusMaintenance:
			stats.MaintenanceSpaces++
		}
	}
	if stats.TotalSpaces > 0 {
		stats.OccupancyRate = int(float64(stats.OccupiedSpaces)/float64(stats.TotalSpaces)*100 + 0.5)
	}

	dayStart, dayEnd := dayBounds(time.Now())
	sessions, err := s.sessionRepo.FindByLotAndTimeRange(ctx, lotID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	for _, session := range sessions {
		if session.TotalCost.Valid {
			stats.DailyRevenue += session.TotalCost.Float64
		}
	}
	return stats, nil
}

// --- ParkingSpace ---

func (s *ParkingService) GetParkingSpaceByID(ctx context.Context, spaceID int) (*domain.ParkingSpace, error) {
	return s.spaceRepo.FindByID(ctx, spaceID)
}

func (s *ParkingService) GetSpacesByLotID(ctx context.Context, lotID int) ([]domain.ParkingSpace, error) {
	return s.spaceRepo.FindByLotID(ctx, lotID)
}

// SetSpaceStatus là thao tác quản trị ghi đè trực tiếp trạng thái chỗ đỗ
// (reserved/maintenance/...), không động tới phiên đỗ xe nào.
func (s *ParkingService) SetSpaceStatus(ctx context.Context, spaceID int, status string) (*domain.ParkingSpace, error) {
	if !domain.ValidSpaceStatus(status) {
		return nil, fmt.Errorf("%w: trạng thái chỗ đỗ không hợp lệ: %s", ErrValidation, status)
	}
	space, err := s.spaceRepo.UpdateStatus(ctx, spaceID, domain.SpaceStatus(status))
	if err != nil {
		return nil, err
	}
	s.broadcastStatus(space, "admin_update")
	return space, nil
}

// --- Check-in / Check-out ---

// CheckIn chuyển chỗ đỗ available -> occupied và mở một phiên đỗ xe mới.
// Hai bước ghi nằm trên hai hàng độc lập nên không gói được trong một
// transaction duy nhất; thay vào đó bước (b) thất bại sẽ có hành động bù:
// trả trạng thái chỗ về available.
func (s *ParkingService) CheckIn(ctx context.Context, dto domain.VehicleCheckInDTO) (*domain.ParkingSession, error) {
	space, err := s.spaceRepo.FindByID(ctx, dto.SpaceID)
	if err != nil {
		return nil, err
	}

	// Kiểm tra phòng thủ: trường status lẽ ra đã phản ánh điều này
	if _, err := s.sessionRepo.FindActiveBySpaceID(ctx, dto.SpaceID); err == nil {
		return nil, fmt.Errorf("%w: chỗ đỗ %s đã có phiên đang hoạt động", ErrSpaceNotAvailable, space.SpaceNumber)
	} else if !errors.Is(err, repository.ErrNoActiveSession) {
		return nil, fmt.Errorf("lỗi kiểm tra phiên đang hoạt động: %w", err)
	}

	// (a) Chuyển trạng thái có điều kiện: chỉ thắng khi status vẫn là available.
	// Hai check-in đồng thời trên cùng một chỗ thì bên thua nhận conflict.
	if err := s.spaceRepo.UpdateStatusIf(ctx, dto.SpaceID, domain.StatusAvailable, domain.StatusOccupied); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, fmt.Errorf("%w: chỗ đỗ %s đang ở trạng thái '%s'", ErrSpaceNotAvailable, space.SpaceNumber, space.Status)
		}
		return nil, err
	}

	// (b) Tạo phiên đỗ xe
	session := &domain.ParkingSession{
		SpaceID:             dto.SpaceID,
		TicketCode:          uuid.NewString(),
		StartTime:           time.Now().UTC(),
		PaymentStatus:       domain.PaymentPending,
		VehicleLicensePlate: dto.LicensePlate,
		VehicleType:         dto.VehicleType,
	}
	if dto.Notes != "" {
		session.Notes = null.StringFrom(dto.Notes)
	}

	createdSession, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		// Hành động bù: trả chỗ đỗ về available. Nếu chính hành động bù cũng
		// lỗi thì chỉ log lại, không retry tự động.
		if _, revertErr := s.spaceRepo.UpdateStatus(ctx, dto.SpaceID, domain.StatusAvailable); revertErr != nil {
			log.Printf("Lỗi khi hoàn tác trạng thái chỗ đỗ %d sau khi tạo phiên thất bại: %v", dto.SpaceID, revertErr)
		}
		return nil, fmt.Errorf("lỗi tạo phiên đỗ xe: %w", err)
	}

	// (c) Bước phụ: tạo/tìm khách theo số điện thoại và gắn vào phiên.
	// Mọi lỗi ở đây chỉ được log; check-in vẫn thành công.
	if dto.CustomerName != "" && dto.CustomerPhone != "" {
		s.attachCustomer(ctx, createdSession, dto)
	}

	metrics.IncCheckIn()
	space.Status = domain.StatusOccupied
	s.broadcastStatus(space, "check_in")
	log.Printf("Đã check-in xe '%s' vào chỗ %s (bãi %d), phiên ID: %d", dto.LicensePlate, space.SpaceNumber, space.LotID, createdSession.ID)
	return createdSession, nil
}

// attachCustomer tìm hoặc tạo khách theo số điện thoại rồi gắn vào phiên.
// Không bao giờ trả lỗi cho caller.
func (s *ParkingService) attachCustomer(ctx context.Context, session *domain.ParkingSession, dto domain.VehicleCheckInDTO) {
	customer, err := s.customerRepo.FindByPhone(ctx, dto.CustomerPhone)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("Lỗi tra cứu khách theo số điện thoại '%s': %v", dto.CustomerPhone, err)
			return
		}
		customer, err = s.customerRepo.Create(ctx, &domain.Customer{
			Name:         dto.CustomerName,
			Email:        fmt.Sprintf("%s@example.com", dto.CustomerPhone), // Email placeholder
			Phone:        dto.CustomerPhone,
			LicensePlate: dto.LicensePlate,
		})
		if err != nil {
			log.Printf("Lỗi tạo khách mới cho số điện thoại '%s': %v", dto.CustomerPhone, err)
			return
		}
		log.Printf("Đã tạo khách mới ID %d cho số điện thoại '%s'", customer.ID, dto.CustomerPhone)
	}

	if err := s.sessionRepo.AttachCustomer(ctx, session.ID, customer.ID); err != nil {
		log.Printf("Lỗi gắn khách %d vào phiên %d: %v", customer.ID, session.ID, err)
		return
	}
	session.CustomerID = null.IntFrom(int64(customer.ID))
}

// CheckOut chốt phiên theo thứ tự: tính phí -> chốt phiên -> giải phóng chỗ.
// Lỗi trước bước chốt phiên thì thao tác retry được nguyên vẹn; lỗi sau khi
// đã chốt trả về ErrSpaceReleaseFailed để caller đưa đi đối soát thủ công.
func (s *ParkingService) CheckOut(ctx context.Context, sessionID int) (*domain.ParkingSession, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.EndTime.Valid {
		return nil, fmt.Errorf("%w: phiên %d đã kết thúc lúc %v", ErrSessionFinalized, sessionID, session.EndTime.Time)
	}

	space, err := s.spaceRepo.FindByID(ctx, session.SpaceID)
	if err != nil {
		return nil, fmt.Errorf("lỗi tìm chỗ đỗ của phiên %d: %w", sessionID, err)
	}
	lot, err := s.lotRepo.FindByID(ctx, space.LotID)
	if err != nil {
		return nil, fmt.Errorf("lỗi tìm bãi đỗ để tính phí: %w", err)
	}

	endTime := time.Now().UTC()
	// Đảm bảo endTime không sớm hơn startTime (lệch đồng hồ)
	if endTime.Before(session.StartTime) {
		log.Printf("Thời gian ra (%v) sớm hơn thời gian vào (%v) của phiên %d. Sử dụng thời gian vào làm thời gian ra.", endTime, session.StartTime, sessionID)
		endTime = session.StartTime
	}

	totalCost := ComputeFee(session.StartTime, endTime, lot.HourlyRate, lot.DailyRate)

	finalizedSession, err := s.sessionRepo.Finalize(ctx, sessionID, endTime, totalCost, domain.PaymentCompleted)
	if err != nil {
		if errors.Is(err, repository.ErrNoActiveSession) {
			return nil, fmt.Errorf("%w: phiên %d", ErrSessionFinalized, sessionID)
		}
		return nil, fmt.Errorf("lỗi chốt phiên đỗ xe: %w", err)
	}

	if _, err := s.spaceRepo.UpdateStatus(ctx, space.ID, domain.StatusAvailable); err != nil {
		// Phiên đã chốt nhưng chỗ vẫn ghi là occupied: không tự sửa, báo lên
		log.Printf("Lỗi giải phóng chỗ đỗ %d sau khi chốt phiên %d: %v", space.ID, sessionID, err)
		return nil, fmt.Errorf("%w: chỗ đỗ %s (phiên %d)", ErrSpaceReleaseFailed, space.SpaceNumber, sessionID)
	}

	metrics.IncCheckOut(totalCost)
	space.Status = domain.StatusAvailable
	s.broadcastStatus(space, "check_out")
	log.Printf("Đã check-out phiên %d tại chỗ %s. Phí: %.2f", sessionID, space.SpaceNumber, totalCost)

	// Bước phụ: cập nhật lại báo cáo doanh thu của ngày hôm nay cho bãi này.
	// Chạy best-effort, lỗi chỉ log, không ảnh hưởng kết quả check-out.
	if s.reportSvc != nil {
		go func(lotID int, date string) {
			bgCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if _, err := s.reportSvc.GenerateReport(bgCtx, lotID, date, "check_out"); err != nil {
				log.Printf("Lỗi cập nhật báo cáo doanh thu sau check-out (bãi %d, ngày %s): %v", lotID, date, err)
			}
		}(space.LotID, endTime.Format("2006-01-02"))
	}

	finalizedSession.ParkingSpace = space
	return finalizedSession, nil
}

// --- ParkingSession ---

func (s *ParkingService) GetParkingSessionByID(ctx context.Context, sessionID int) (*domain.ParkingSession, error) {
	return s.sessionRepo.FindByID(ctx, sessionID)
}

func (s *ParkingService) GetActiveSessionBySpace(ctx context.Context, spaceID int) (*domain.ParkingSession, error) {
	return s.sessionRepo.FindActiveBySpaceID(ctx, spaceID)
}

func (s *ParkingService) FindParkingSessions(ctx context.Context, filter domain.ParkingSessionFilterDTO) ([]domain.ParkingSession, error) {
	return s.sessionRepo.Find(ctx, filter)
}

func (s *ParkingService) broadcastStatus(space *domain.ParkingSpace, source string) {
	if s.notifier == nil {
		return
	}
	s.notifier.BroadcastSpaceStatus(domain.SpaceStatusNotification{
		Type:        "space_status",
		LotID:       space.LotID,
		SpaceID:     space.ID,
		SpaceNumber: space.SpaceNumber,
		Status:      space.Status,
		Source:      source,
		Timestamp:   time.Now().UTC(),
	})
}
