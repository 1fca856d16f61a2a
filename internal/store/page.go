package store

// DefaultPageSize applies when a caller passes no page size.
const DefaultPageSize = 20

// Page selects a slice of a list. Number is 1-based.
type Page struct {
	Number int
	Size   int
}

// All is a page large enough for unpaginated listings.
var All = Page{Number: 1, Size: -1}

func (p Page) normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size == 0 {
		p.Size = DefaultPageSize
	}
	return p
}

// clamp normalizes p and pulls Number back to the last page of total rows.
func (p Page) clamp(total int) Page {
	p = p.normalize()
	if p.Size < 0 {
		p.Number = 1
		return p
	}
	if last := max(1, (total+p.Size-1)/p.Size); p.Number > last {
		p.Number = last
	}
	return p
}

// limitOffset returns LIMIT/OFFSET values for a listing of total rows; a
// negative size means no limit.
func (p Page) limitOffset(total int) (int, int) {
	p = p.clamp(total)
	if p.Size < 0 {
		return -1, 0
	}
	return p.Size, (p.Number - 1) * p.Size
}

// Paged is one page of a listing plus enough to render pagination.
type Paged[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func newPaged[T any](items []T, p Page, total int) *Paged[T] {
	p = p.clamp(total)
	if items == nil {
		items = []T{}
	}
	size := p.Size
	if size < 0 {
		size = total
	}
	pages := 1
	if size > 0 && total > 0 {
		pages = (total + size - 1) / size
	}
	return &Paged[T]{
		Items:      items,
		Page:       p.Number,
		PageSize:   size,
		Total:      total,
		TotalPages: pages,
	}
}

// HasNext reports whether a later page exists.
func (p *Paged[T]) HasNext() bool {
	return p.Page < p.TotalPages
}

func (db *DB) count(q querier, query string, args ...any) (int, error) {
	var n int
	if err := q.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
