package browse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 6))
	assert.Equal(t, 1, TotalPages(6, 6))
	assert.Equal(t, 2, TotalPages(7, 6))
	assert.Equal(t, 5, TotalPages(25, 6))
	assert.Equal(t, 1, TotalPages(3, 0), "invalid size falls back to the default")
}

func TestClampPage(t *testing.T) {
	assert.Equal(t, 1, ClampPage(0, 25, 6))
	assert.Equal(t, 1, ClampPage(-3, 25, 6))
	assert.Equal(t, 3, ClampPage(3, 25, 6))
	assert.Equal(t, 5, ClampPage(7, 25, 6), "past the last page clamps to the last page")
	assert.Equal(t, 1, ClampPage(4, 0, 6), "empty set still has page 1")
}

func TestPageSlicing(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i
	}

	first := Page(items, 1, 6)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, first)

	last := Page(items, 5, 6)
	assert.Equal(t, []int{24}, last)

	clamped := Page(items, 9, 6)
	assert.Equal(t, last, clamped, "out-of-range page clamps instead of failing")

	assert.Empty(t, Page([]int{}, 1, 6))
}
