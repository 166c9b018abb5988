package tracking

import (
	"fmt"
)

// Default search configuration values
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SearchFilters configures how documents are filtered and paginated.
// Zero values mean "no filter"; Page is 1-indexed.
type SearchFilters struct {
	// Status optionally restricts results to one lifecycle status.
	Status Status

	// Department and Category filter by classification code.
	Department string
	Category   string

	// Query matches case-insensitively against title/description
	// substrings.
	Query string

	// Pagination (offset-based)
	Page     int
	PageSize int
}

// ApplyDefaults fills in default values for unset fields
func (f *SearchFilters) ApplyDefaults() {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
}

// Validate checks that filter values are usable
func (f *SearchFilters) Validate() error {
	if f.Status != "" && !f.Status.IsValid() {
		return fmt.Errorf("unknown status: %q", f.Status)
	}
	if f.Page < 1 {
		return fmt.Errorf("page must be >= 1 (requested: %d)", f.Page)
	}
	if f.PageSize < 1 {
		return fmt.Errorf("page size must be >= 1 (requested: %d)", f.PageSize)
	}
	if f.PageSize > MaxPageSize {
		return fmt.Errorf("page size cannot exceed %d (requested: %d)", MaxPageSize, f.PageSize)
	}
	return nil
}

// Offset converts 1-indexed Page into a row offset.
func (f *SearchFilters) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// SearchResults contains one page of documents plus pagination metadata.
type SearchResults struct {
	Items      []Document `json:"items"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	Total      int        `json:"total"`
	TotalPages int        `json:"total_pages"`
}

// NewSearchResults builds a SearchResults with computed TotalPages.
func NewSearchResults(items []Document, total int, f *SearchFilters) *SearchResults {
	totalPages := (total + f.PageSize - 1) / f.PageSize

	return &SearchResults{
		Items:      items,
		Page:       f.Page,
		PageSize:   f.PageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
