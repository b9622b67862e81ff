package listing

import (
	"fmt"
	"slices"
)

// PageSizes is the fixed set of selectable page sizes.
var PageSizes = []int{10, 20, 30, 40, 50}

const (
	DefaultPageSize = 10
	// WindowWidth is how many page numbers the renderer shows at once.
	WindowWidth = 5
)

func ValidPageSize(size int) bool {
	return slices.Contains(PageSizes, size)
}

// CheckPageSize returns ErrInvalidPageSize wrapped with the offending value.
func CheckPageSize(size int) error {
	if !ValidPageSize(size) {
		return fmt.Errorf("%w: %d (allowed %v)", ErrInvalidPageSize, size, PageSizes)
	}
	return nil
}

// TotalPages is ceil(count/size), never less than 1.
func TotalPages(count, size int) int {
	if size <= 0 || count <= 0 {
		return 1
	}
	return (count + size - 1) / size
}

// ClampPage bounds page to [1, totalPages].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// PageBounds returns the half-open [start, end) range of page within count items.
func PageBounds(page, size, count int) (int, int) {
	if size <= 0 || count <= 0 {
		return 0, 0
	}
	start := (page - 1) * size
	if start < 0 {
		start = 0
	}
	if start > count {
		start = count
	}
	end := start + size
	if end > count {
		end = count
	}
	return start, end
}

// PageWindow returns up to width consecutive page numbers centered on page
// where possible, shifted to stay inside [1, totalPages].
func PageWindow(page, totalPages, width int) []int {
	if totalPages < 1 {
		totalPages = 1
	}
	if width < 1 {
		width = 1
	}
	page = ClampPage(page, totalPages)
	if width > totalPages {
		width = totalPages
	}
	start := page - width/2
	if start < 1 {
		start = 1
	}
	if start+width-1 > totalPages {
		start = totalPages - width + 1
	}
	out := make([]int, width)
	for i := range out {
		out[i] = start + i
	}
	return out
}
