package history

// DefaultPageSize is the number of entries shown per history page.
const DefaultPageSize = 5

// Page is one window over the history list.
type Page struct {
	Entries    []Entry `json:"entries"`
	Number     int     `json:"page"`
	TotalPages int     `json:"total_pages"`
	Total      int     `json:"total"`
	HasPrev    bool    `json:"has_prev"`
	HasNext    bool    `json:"has_next"`
}

// TotalPages is ceil(n/size), never less than 1.
func TotalPages(n, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	pages := (n + size - 1) / size
	if pages < 1 {
		return 1
	}
	return pages
}

// Paginate returns the 1-based page of entries. Out-of-range page numbers are
// clamped.
func Paginate(entries []Entry, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}

	total := TotalPages(len(entries), size)
	page = min(max(page, 1), total)

	start := min((page-1)*size, len(entries))
	end := min(start+size, len(entries))

	window := make([]Entry, end-start)
	copy(window, entries[start:end])

	return Page{
		Entries:    window,
		Number:     page,
		TotalPages: total,
		Total:      len(entries),
		HasPrev:    page > 1,
		HasNext:    page < total,
	}
}
