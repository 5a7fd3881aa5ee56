package service

import (
	"testing"

	"parking_dashboard/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpaceNumberForIndex(t *testing.T) {
	assert.Equal(t, "A1", spaceNumberForIndex(1))
	assert.Equal(t, "A50", spaceNumberForIndex(50))
	assert.Equal(t, "B1", spaceNumberForIndex(51))
	assert.Equal(t, "B50", spaceNumberForIndex(100))
	assert.Equal(t, "C1", spaceNumberForIndex(101))
}

func TestSpaceTypeForIndex(t *testing.T) {
	// Bãi 100 chỗ: 1-10 handicap, 11-20 ev, 21-100 standard
	assert.Equal(t, domain.TypeHandicap, spaceTypeForIndex(1, 100))
	assert.Equal(t, domain.TypeHandicap, spaceTypeForIndex(10, 100))
	assert.Equal(t, domain.TypeEv, spaceTypeForIndex(11, 100))
	assert.Equal(t, domain.TypeEv, spaceTypeForIndex(20, 100))
	assert.Equal(t, domain.TypeStandard, spaceTypeForIndex(21, 100))
	assert.Equal(t, domain.TypeStandard, spaceTypeForIndex(100, 100))
}

func TestSpaceTypeForIndex_CeilOnSmallLots(t *testing.T) {
	// Bãi 5 chỗ: ceil(0.5)=1 handicap, ceil(1.0)=1 ev, còn lại standard
	assert.Equal(t, domain.TypeHandicap, spaceTypeForIndex(1, 5))
	assert.Equal(t, domain.TypeEv, spaceTypeForIndex(2, 5))
	assert.Equal(t, domain.TypeStandard, spaceTypeForIndex(3, 5))

	// Bãi 1 chỗ: chỗ duy nhất là handicap
	assert.Equal(t, domain.TypeHandicap, spaceTypeForIndex(1, 1))
}

func TestBuildSpaces_NewLot(t *testing.T) {
	spaces := buildSpaces(7, 1, 120)
	require.Len(t, spaces, 120)

	assert.Equal(t, "A1", spaces[0].SpaceNumber)
	assert.Equal(t, "B1", spaces[50].SpaceNumber)
	assert.Equal(t, "C20", spaces[119].SpaceNumber)

	var handicap, ev, standard int
	for _, s := range spaces {
		assert.Equal(t, 7, s.LotID)
		assert.Equal(t, domain.StatusAvailable, s.Status)
		switch s.SpaceType {
		case domain.TypeHandicap:
			handicap++
		case domain.TypeEv:
			ev++
		case domain.TypeStandard:
			standard++
		}
	}
	assert.Equal(t, 12, handicap) // ceil(120 * 0.1)
	assert.Equal(t, 12, ev)       // ceil(120 * 0.2) - ceil(120 * 0.1)
	assert.Equal(t, 96, standard)
}

func TestBuildSpaces_ExpandLot(t *testing.T) {
	// Mở rộng từ 60 lên 75: chỉ sinh 61..75, loại tính theo tổng mới 75
	spaces := buildSpaces(3, 61, 75)
	require.Len(t, spaces, 15)

	assert.Equal(t, "B11", spaces[0].SpaceNumber)
	assert.Equal(t, "B25", spaces[14].SpaceNumber)

	// Mọi chỗ thêm mới nằm sau ceil(75*0.2)=15 nên đều là standard
	for _, s := range spaces {
		assert.Equal(t, domain.TypeStandard, s.SpaceType)
	}
}

func TestBuildSpaces_EmptyRange(t *testing.T) {
	assert.Empty(t, buildSpaces(1, 11, 10))
}
