package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, Pagination{Page: 1, PageSize: DefaultPageSize}, Pagination{}.Normalize())
	assert.Equal(t, Pagination{Page: 3, PageSize: MaxPageSize}, Pagination{Page: 3, PageSize: 1000}.Normalize())
}

func TestOffsetAndPageInfo(t *testing.T) {
	p := Pagination{Page: 2, PageSize: 10}
	assert.Equal(t, 10, p.Offset())
	assert.Equal(t, 10, p.Limit())

	info := BuildPageInfo(p, 25)
	assert.True(t, info.HasMore)
	assert.Equal(t, int64(25), info.TotalCount)

	info = BuildPageInfo(Pagination{Page: 3, PageSize: 10}, 25)
	assert.False(t, info.HasMore)
}
