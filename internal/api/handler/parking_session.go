package handler

import (
	"errors"
	"net/http"
	"strconv"

	"parking_dashboard/internal/domain"
	"parking_dashboard/internal/repository"
	"parking_dashboard/internal/service"

	"github.com/gin-gonic/gin"
)

type ParkingSessionHandler struct {
	parkingService *service.ParkingService
}

func NewParkingSessionHandler(ps *service.ParkingService) *ParkingSessionHandler {
	return &ParkingSessionHandler{parkingService: ps}
}

// POST /parking-sessions/check-in
func (h *ParkingSessionHandler) CheckIn(c *gin.Context) {
	var dto domain.VehicleCheckInDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.parkingService.CheckIn(c.Request.Context(), dto)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy chỗ đỗ"})
			return
		}
		if errors.Is(err, service.ErrSpaceNotAvailable) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể check-in", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, session)
}

// POST /parking-sessions/:id/check-out
func (h *ParkingSessionHandler) CheckOut(c *gin.Context) {
	sessionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID phiên không hợp lệ"})
		return
	}

	session, err := h.parkingService.CheckOut(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy phiên đỗ xe"})
			return
		}
		if errors.Is(err, service.ErrSessionFinalized) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		// Phiên đã chốt nhưng chỗ chưa được giải phóng: cần đối soát thủ công
		if errors.Is(err, service.ErrSpaceReleaseFailed) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể check-out", "details": err.Error()})
		return
	}

	result := domain.CheckOutResultDTO{
		SessionID:     session.ID,
		TotalCost:     session.TotalCost.Float64,
		PaymentStatus: session.PaymentStatus,
		StartTime:     session.StartTime,
		EndTime:       session.EndTime.Time,
	}
	if session.ParkingSpace != nil {
		result.LotID = session.ParkingSpace.LotID
		result.SpaceNumber = session.ParkingSpace.SpaceNumber
	}
	c.JSON(http.StatusOK, result)
}

// GET /parking-sessions/:id
func (h *ParkingSessionHandler) GetParkingSessionByID(c *gin.Context) {
	sessionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID phiên không hợp lệ"})
		return
	}

	session, err := h.parkingService.GetParkingSessionByID(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy phiên đỗ xe"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy thông tin phiên đỗ xe"})
		return
	}
	c.JSON(http.StatusOK, session)
}

// GET /parking-sessions?lotId=&active=&plate=
func (h *ParkingSessionHandler) FindParkingSessions(c *gin.Context) {
	var filter domain.ParkingSessionFilterDTO
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessions, err := h.parkingService.FindParkingSessions(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi truy vấn phiên đỗ xe"})
		return
	}
	c.JSON(http.StatusOK, sessions)
}
