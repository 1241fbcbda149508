package repositories

import "strings"

const (
	DefaultPage  = 1
	DefaultLimit = 20
)

// ListOptions is the shared pagination contract: 1-based page, default
// limit 20, created_at DESC unless overridden. SortBy is matched against a
// per-repository whitelist so identifiers never reach the SQL text raw.
type ListOptions struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

func (o ListOptions) normalized() ListOptions {
	if o.Page < 1 {
		o.Page = DefaultPage
	}
	if o.Limit < 1 {
		o.Limit = DefaultLimit
	}
	return o
}

func (o ListOptions) offset() int {
	return (o.Page - 1) * o.Limit
}

// orderClause resolves SortBy against the column whitelist, falling back to
// created_at, and normalizes SortOrder to ASC/DESC (default DESC).
func (o ListOptions) orderClause(columns map[string]string) string {
	column, ok := columns[o.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(o.SortOrder, "asc") {
		direction = "ASC"
	}
	return column + " " + direction
}

// Pagination is the result envelope every paginated query carries.
type Pagination struct {
	Page            int   `json:"page"`
	Limit           int   `json:"limit"`
	Total           int64 `json:"total"`
	TotalPages      int   `json:"totalPages"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

func newPagination(opts ListOptions, total int64) Pagination {
	totalPages := int((total + int64(opts.Limit) - 1) / int64(opts.Limit))
	return Pagination{
		Page:            opts.Page,
		Limit:           opts.Limit,
		Total:           total,
		TotalPages:      totalPages,
		HasNextPage:     opts.Page < totalPages,
		HasPreviousPage: opts.Page > 1,
	}
}
