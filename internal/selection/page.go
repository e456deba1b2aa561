package selection

// PageSize is the fixed number of rows per page
const PageSize = 10

// Page is a read-only window over a list
type Page[T any] struct {
	Items  []T
	Number int // 1-based
	Pages  int
	Total  int
}

// HasNext reports whether a following page exists
func (p Page[T]) HasNext() bool {
	return p.Number < p.Pages
}

// HasPrev reports whether a preceding page exists
func (p Page[T]) HasPrev() bool {
	return p.Number > 1
}

// Paginate returns page number (1-based, clamped) of items. It never
// modifies items.
func Paginate[T any](items []T, number, size int) Page[T] {
	if size <= 0 {
		size = PageSize
	}
	total := len(items)
	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if number < 1 {
		number = 1
	}
	if number > pages {
		number = pages
	}

	start := (number - 1) * size
	end := min(start+size, total)
	if start > total {
		start = total
	}

	return Page[T]{
		Items:  items[start:end:end],
		Number: number,
		Pages:  pages,
		Total:  total,
	}
}
