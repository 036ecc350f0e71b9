package games

// PagedResult carries one page of listing results plus the numbers the
// pager needs. Page is zero-based here; the HTTP layer presents it
// one-based.
type PagedResult[T any] struct {
	Results      []T
	TotalResults int
	PerPage      int
	Page         int
}

// TotalPages is the number of pages the full result set spans.
func (p *PagedResult[T]) TotalPages() int {
	if p.PerPage <= 0 {
		return 0
	}
	return (p.TotalResults + p.PerPage - 1) / p.PerPage
}

// OutOfRange reports whether the requested page lies past the end of
// the result set. Page zero is always in range so an empty set still
// renders a first page.
func (p *PagedResult[T]) OutOfRange() bool {
	return p.Page != 0 && p.Page >= p.TotalPages()
}
