package utils

// PageQuery is normalized paging input
type PageQuery struct {
	Page  int
	Limit int
	Skip  int
}

// Paginate normalizes page/limit query input, defaulting to page 1 and 10
// items per page
func Paginate(page, limit int) PageQuery {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return PageQuery{Page: page, Limit: limit, Skip: (page - 1) * limit}
}

// PaginationMeta describes one page of a result set for the response envelope
type PaginationMeta struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
}

// BuildPaginationMeta computes pagination metadata for a total match count
func BuildPaginationMeta(page, limit int, total int64) PaginationMeta {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return PaginationMeta{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: limit,
		HasNextPage:  page < totalPages,
		HasPrevPage:  page > 1,
	}
}
