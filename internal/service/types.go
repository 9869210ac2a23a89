package service

import (
	"github.com/young626-jang/ltv-flask/internal/domain"
)

// AnalyzeInput is one uploaded register document.
type AnalyzeInput struct {
	SourceName string
	Content    []byte
}

// PaginationMeta captures pagination metadata returned to API clients.
type PaginationMeta struct {
	Page       int
	PageSize   int
	TotalItems int64
	TotalPages int
}

// PropertiesPage represents paginated properties with metadata.
type PropertiesPage struct {
	Items      []domain.PropertySummary
	Pagination PaginationMeta
}

// ListPropertiesParams defines filters for listing properties.
type ListPropertiesParams struct {
	Page       int
	PageSize   int
	Search     string
	Category   string
	StaleOnly  bool
	MinCeiling int64
	SortField  string
	SortOrder  string
}
