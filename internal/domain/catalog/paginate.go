package catalog

// Page is one window of a paginated collection. Index is 1-based.
type Page[T any] struct {
	Items      []T `json:"items"`
	Index      int `json:"page"`
	Size       int `json:"pageSize"`
	Total      int `json:"total"`
	PagesCount int `json:"pagesCount"`
}

// Paginate slices items into the requested page window. A page index below 1
// is treated as 1; a window past the end yields an empty page.
func Paginate[T any](items []T, index, size int) Page[T] {
	if index < 1 {
		index = 1
	}
	if size < 1 {
		size = 1
	}
	total := len(items)
	pagesCount := (total + size - 1) / size

	start := (index - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	return Page[T]{
		Items:      items[start:end],
		Index:      index,
		Size:       size,
		Total:      total,
		PagesCount: pagesCount,
	}
}

// PagesCount returns ceil(total / size).
func PagesCount(total, size int) int {
	return (total + size - 1) / size
}
