package pagination

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination is a page-number request bound from ?page=&page_size=.
type Pagination struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// Normalize clamps the request to page >= 1 and 1 <= page_size <= MaxPageSize.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p Pagination) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

func (p Pagination) Limit() int {
	return p.Normalize().PageSize
}

type PageInfo struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalCount int64 `json:"count"`
	HasMore    bool  `json:"has_more"`
}

func BuildPageInfo(p Pagination, total int64) PageInfo {
	n := p.Normalize()
	return PageInfo{
		Page:       n.Page,
		PageSize:   n.PageSize,
		TotalCount: total,
		HasMore:    int64(n.Page*n.PageSize) < total,
	}
}
