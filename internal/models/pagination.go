package models

// Pagination contains pagination metadata returned in list responses. Field
// names mirror the frontend contract.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination derives totalPages as ceil(total/limit).
func NewPagination(page, limit, total int) *Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	return &Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

// PageQuery carries normalized pagination values for upstream queries.
type PageQuery struct {
	Page  int
	Limit int
}

// Offset converts page/limit into the upstream skip value.
func (p PageQuery) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}
