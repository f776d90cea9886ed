// Package browse implements the view-state layer behind the course catalog
// screens: filter state, the fetch controller, client-side pagination, the
// auth gate and the favorite toggle on course lists.
package browse

// DefaultPageSize matches the dashboard card grid.
const DefaultPageSize = 6

// TotalPages returns the number of pages for total items at the given page
// size. An empty result set still has one (empty) page.
func TotalPages(total, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total <= 0 {
		return 1
	}
	pages := total / size
	if total%size != 0 {
		pages++
	}
	return pages
}

// ClampPage forces page into [1, TotalPages(total, size)].
func ClampPage(page, total, size int) int {
	last := TotalPages(total, size)
	if page < 1 {
		return 1
	}
	if page > last {
		return last
	}
	return page
}

// Page slices one page out of items, clamping out-of-range page numbers
// rather than failing.
func Page[T any](items []T, page, size int) []T {
	if size <= 0 {
		size = DefaultPageSize
	}
	page = ClampPage(page, len(items), size)
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
