package catalog

// DefaultPageSize is used when a caller passes a non-positive page size.
const DefaultPageSize = 12

// PageResult is one page of a filtered sequence plus the metadata needed
// to render pagination controls and "showing X–Y of Z".
type PageResult struct {
	Products   []Product `json:"products"`
	Page       int       `json:"page"`
	TotalPages int       `json:"total_pages"`
	TotalCount int       `json:"total_count"`
	// StartIndex and EndIndex are 1-based inclusive display bounds; both are 0 for an empty result.
	StartIndex int `json:"start_index"`
	EndIndex   int `json:"end_index"`
}

// TotalPages returns max(1, ceil(totalCount/pageSize)).
func TotalPages(totalCount, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pages := (totalCount + pageSize - 1) / pageSize
	return max(1, pages)
}

// ClampPage restricts page to [1, totalPages].
func ClampPage(page, totalPages int) int {
	return min(max(page, 1), max(totalPages, 1))
}

// Paginate returns the requested page of seq. Out-of-range pages are clamped, never rejected.
func Paginate(seq []Product, page, pageSize int) PageResult {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(seq)
	totalPages := TotalPages(total, pageSize)
	page = ClampPage(page, totalPages)

	start := (page - 1) * pageSize
	end := min(page*pageSize, total)

	items := make([]Product, end-start)
	copy(items, seq[start:end])

	result := PageResult{
		Products:   items,
		Page:       page,
		TotalPages: totalPages,
		TotalCount: total,
	}
	if total > 0 {
		result.StartIndex = start + 1
		result.EndIndex = end
	}
	return result
}
