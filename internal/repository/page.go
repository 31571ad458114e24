package repository

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PageRequest describes one page of a filtered scan. Pages are numbered
// from zero; results are always ordered by id ascending so pages stay
// deterministic under concurrent inserts.
type PageRequest struct {
	Page int
	Size int
}

// Limit returns the normalized page size.
func (p PageRequest) Limit() int {
	if p.Size <= 0 {
		return defaultPageSize
	}
	if p.Size > maxPageSize {
		return maxPageSize
	}
	return p.Size
}

// Offset returns the row offset for the page.
func (p PageRequest) Offset() int {
	if p.Page <= 0 {
		return 0
	}
	return p.Page * p.Limit()
}
