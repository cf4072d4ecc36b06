package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	assert.Equal(t, []int{2, 4, 6}, Map([]int{1, 2, 3}, func(v int) int { return v * 2 }))
	assert.Empty(t, Map(nil, func(v int) string { return "" }))
}

func TestFilter(t *testing.T) {
	even := func(v int) bool { return v%2 == 0 }
	assert.Equal(t, []int{2, 4}, Filter([]int{1, 2, 3, 4}, even))
	assert.Nil(t, Filter([]int{1, 3}, even))
}

func TestUniqueKeepsFirstOccurrence(t *testing.T) {
	assert.Equal(t, []uint{7, 3, 9}, Unique([]uint{7, 3, 7, 9, 3}))
}
