package shared

// DefaultPageSize applies when a listing does not ask for a page size
const DefaultPageSize = 20

// Filter selects one page of a listing and its ordering.
// OrderBy and OrderDir are checked against a whitelist by the repository.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
}

// WithDefaults returns f with page 1 and DefaultPageSize filled in where unset
func (f Filter) WithDefaults() Filter {
	f.Page = max(f.Page, 1)
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	return f
}

// Offset is the number of rows before the page
func (f Filter) Offset() int {
	return max(f.Page-1, 0) * f.PageSize
}

// Paginated is one page of a listing with the size of the whole listing
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated wraps the items of page f out of total
func NewPaginated[T any](items []T, total int64, f Filter) Paginated[T] {
	p := Paginated[T]{Items: items, Total: total, Page: f.Page, PageSize: f.PageSize}
	if f.PageSize > 0 {
		p.TotalPages = int((total + int64(f.PageSize) - 1) / int64(f.PageSize))
	}
	return p
}
