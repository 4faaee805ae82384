package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_WithDefaults(t *testing.T) {
	assert.Equal(t, Filter{Page: 1, PageSize: DefaultPageSize}, Filter{}.WithDefaults())
	assert.Equal(t, Filter{Page: 3, PageSize: 5, OrderBy: "title"}, Filter{Page: 3, PageSize: 5, OrderBy: "title"}.WithDefaults())
	assert.Equal(t, Filter{Page: 1, PageSize: DefaultPageSize}, Filter{Page: -2, PageSize: -1}.WithDefaults())
}

func TestFilter_Offset(t *testing.T) {
	assert.Equal(t, 0, Filter{Page: 0, PageSize: 20}.Offset())
	assert.Equal(t, 0, Filter{Page: 1, PageSize: 20}.Offset())
	assert.Equal(t, 40, Filter{Page: 3, PageSize: 20}.Offset())
}

func TestNewPaginated_TotalPages(t *testing.T) {
	tests := []struct {
		total    int64
		pageSize int
		want     int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{5, 0, 0},
	}
	for _, tt := range tests {
		p := NewPaginated([]int{}, tt.total, Filter{Page: 1, PageSize: tt.pageSize})
		assert.Equal(t, tt.want, p.TotalPages, "total=%d size=%d", tt.total, tt.pageSize)
	}
}
