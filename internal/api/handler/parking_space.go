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

type ParkingSpaceHandler struct {
	parkingService *service.ParkingService
}

func NewParkingSpaceHandler(ps *service.ParkingService) *ParkingSpaceHandler {
	return &ParkingSpaceHandler{parkingService: ps}
}

// GET /parking-spaces/:space_id
func (h *ParkingSpaceHandler) GetParkingSpaceByID(c *gin.Context) {
	spaceID, err := strconv.Atoi(c.Param("space_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID chỗ đỗ không hợp lệ"})
		return
	}

	space, err := h.parkingService.GetParkingSpaceByID(c.Request.Context(), spaceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy chỗ đỗ"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy thông tin chỗ đỗ"})
		return
	}
	c.JSON(http.StatusOK, space)
}

// PUT /parking-spaces/:space_id/status
// Thao tác quản trị: ghi đè trạng thái (reserved, maintenance, ...)
func (h *ParkingSpaceHandler) UpdateSpaceStatus(c *gin.Context) {
	spaceID, err := strconv.Atoi(c.Param("space_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID chỗ đỗ không hợp lệ"})
		return
	}

	var dto domain.SpaceStatusDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	space, err := h.parkingService.SetSpaceStatus(c.Request.Context(), spaceID, dto.Status)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy chỗ đỗ"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật trạng thái chỗ đỗ", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, space)
}

// GET /parking-spaces/:space_id/active-session
func (h *ParkingSpaceHandler) GetActiveSession(c *gin.Context) {
	spaceID, err := strconv.Atoi(c.Param("space_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID chỗ đỗ không hợp lệ"})
		return
	}

	session, err := h.parkingService.GetActiveSessionBySpace(c.Request.Context(), spaceID)
	if err != nil {
		if errors.Is(err, repository.ErrNoActiveSession) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Chỗ đỗ không có phiên đang hoạt động"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi tìm phiên đang hoạt động"})
		return
	}
	c.JSON(http.StatusOK, session)
}
