package service

import (
	"fmt"
	"math"

	"parking_dashboard/internal/domain"
)

const spacesPerSection = 50

// spaceNumberForIndex sinh nhãn chỗ đỗ từ chỉ số 1-based: 1..50 -> A1..A50,
// 51..100 -> B1..B50, ... Luôn tính lại từ chỉ số, không giữ bộ đếm chạy,
// để sống sót qua lỗi ghi dở chừng.
func spaceNumberForIndex(i int) string {
	section := rune('A' + (i-1)/spacesPerSection)
	number := (i-1)%spacesPerSection + 1
	return fmt.Sprintf("%c%d", section, number)
}

// spaceTypeForIndex phân loại theo chỉ số toàn cục và tổng số chỗ CUỐI CÙNG
// của bãi (không phải kích thước phần tăng thêm): 10% đầu là handicap,
// 10% tiếp theo là ev, còn lại standard.
func spaceTypeForIndex(i, total int) domain.SpaceType {
	handicapLimit := int(math.Ceil(float64(total) * 0.1))
	evLimit := int(math.Ceil(float64(total) * 0.2))
	switch {
	case i <= handicapLimit:
		return domain.TypeHandicap
	case i <= evLimit:
		return domain.TypeEv
	default:
		return domain.TypeStandard
	}
}

// buildSpaces sinh các chỗ đỗ cho chỉ số fromIndex..total, tất cả ở trạng thái available.
// Tạo bãi mới: fromIndex = 1. Mở rộng bãi từ P lên N: fromIndex = P+1, total = N.
func buildSpaces(lotID, fromIndex, total int) []domain.ParkingSpace {
	if fromIndex < 1 {
		fromIndex = 1
	}
	var spaces []domain.ParkingSpace
	for i := fromIndex; i <= total; i++ {
		spaces = append(spaces, domain.ParkingSpace{
			LotID:       lotID,
			SpaceNumber: spaceNumberForIndex(i),
			SpaceType:   spaceTypeForIndex(i, total),
			Status:      domain.StatusAvailable,
		})
	}
	return spaces
}
