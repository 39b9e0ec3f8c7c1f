package storage

// Page is a 1-indexed pagination window.
type Page struct {
	Number int
	Size   int
}

func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = 10
	}
	if p.Size > 100 {
		p.Size = 100
	}
	return p
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// PageInfo is derived from the requested window and the total count,
// never from the length of the returned slice.
type PageInfo struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	Total       int  `json:"total"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

func NewPageInfo(p Page, total int) PageInfo {
	p = p.Normalize()
	pages := total / p.Size
	if total%p.Size != 0 {
		pages++
	}
	return PageInfo{
		CurrentPage: p.Number,
		TotalPages:  pages,
		Total:       total,
		HasNextPage: p.Number*p.Size < total,
		HasPrevPage: p.Number > 1,
	}
}
