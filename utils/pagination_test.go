package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	pq := Paginate(3, 20)
	assert.Equal(t, 3, pq.Page)
	assert.Equal(t, 20, pq.Limit)
	assert.Equal(t, 40, pq.Skip)

	// Defaults kick in for invalid input
	pq = Paginate(0, -5)
	assert.Equal(t, 1, pq.Page)
	assert.Equal(t, 10, pq.Limit)
	assert.Equal(t, 0, pq.Skip)
}

func TestBuildPaginationMeta(t *testing.T) {
	meta := BuildPaginationMeta(2, 10, 35)
	assert.Equal(t, 2, meta.CurrentPage)
	assert.Equal(t, 4, meta.TotalPages)
	assert.EqualValues(t, 35, meta.TotalItems)
	assert.Equal(t, 10, meta.ItemsPerPage)
	assert.True(t, meta.HasNextPage)
	assert.True(t, meta.HasPrevPage)

	meta = BuildPaginationMeta(1, 10, 0)
	assert.Equal(t, 0, meta.TotalPages)
	assert.False(t, meta.HasNextPage)
	assert.False(t, meta.HasPrevPage)
}
