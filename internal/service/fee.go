package service

import (
	"math"
	"time"

	"gopkg.in/guregu/null.v4"
)

// ComputeFee tính phí cho một phiên đỗ từ thời gian vào/ra và biểu phí của bãi.
// Hàm thuần, không chạm database.
//
// Quy tắc: đỗ từ 24 giờ trở lên và bãi có daily_rate thì tính theo ngày,
// ngày lẻ làm tròn LÊN thành nguyên ngày; còn lại tính theo giờ với độ chính
// xác dưới giây. Kết quả làm tròn về 2 chữ số thập phân.
// Thời lượng âm (lệch đồng hồ) được kẹp về 0, không báo lỗi.
func ComputeFee(startTime, endTime time.Time, hourlyRate float64, dailyRate null.Float) float64 {
	durationHours := endTime.Sub(startTime).Hours()
	if durationHours < 0 {
		durationHours = 0
	}

	var cost float64
	if dailyRate.Valid && durationHours >= 24 {
		days := math.Ceil(durationHours / 24)
		cost = days * dailyRate.Float64
	} else {
		cost = durationHours * hourlyRate
	}

	return roundCents(cost)
}

// roundCents làm tròn half-up về 2 chữ số thập phân.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
