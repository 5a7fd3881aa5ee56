package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"parking_dashboard/internal/domain"
	"parking_dashboard/internal/repository"
	"parking_dashboard/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService *service.ReportService
}

func NewReportHandler(rs *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

// POST /reports/generate
func (h *ReportHandler) GenerateReport(c *gin.Context) {
	var dto domain.GenerateReportDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.reportService.GenerateReport(c.Request.Context(), dto.LotID, dto.ReportDate, "manual")
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy bãi đỗ xe"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo báo cáo", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// GET /parking-lots/:id/reports?from=YYYY-MM-DD&to=YYYY-MM-DD
// Mặc định trả về 30 ngày gần nhất nếu không truyền khoảng ngày.
func (h *ReportHandler) GetReportsByLot(c *gin.Context) {
	lotID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID bãi đỗ không hợp lệ"})
		return
	}

	now := time.Now().UTC()
	from := c.DefaultQuery("from", now.AddDate(0, 0, -30).Format("2006-01-02"))
	to := c.DefaultQuery("to", now.Format("2006-01-02"))

	reports, err := h.reportService.GetReports(c.Request.Context(), lotID, from, to)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy báo cáo doanh thu"})
		return
	}
	c.JSON(http.StatusOK, reports)
}
