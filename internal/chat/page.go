package chat

// Order selects the direction a sequence is paged in.
type Order int

const (
	// Chronological pages from the oldest entry.
	Chronological Order = iota
	// NewestFirst pages from the newest entry.
	NewestFirst
)

// Page is one window of a larger sequence.
type Page[T any] struct {
	Total int `json:"total"`
	Data  []T `json:"data"`
}

// Normalize clamps pagination parameters to the smallest valid values.
func Normalize(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 1
	}
	return page, pageSize
}

// Paginate copies the window start=(page-1)*pageSize of items, walked in the
// given order, into a new slice.
func Paginate[T any](items []T, page, pageSize int, order Order) Page[T] {
	page, pageSize = Normalize(page, pageSize)
	total := len(items)

	// Compare in page units so huge page numbers cannot wrap the offset.
	if total == 0 || page-1 > (total-1)/pageSize {
		return Page[T]{Total: total, Data: []T{}}
	}
	start := (page - 1) * pageSize
	end := total
	if pageSize < total-start {
		end = start + pageSize
	}

	data := make([]T, 0, end-start)
	for i := start; i < end; i++ {
		if order == NewestFirst {
			data = append(data, items[total-1-i])
		} else {
			data = append(data, items[i])
		}
	}
	return Page[T]{Total: total, Data: data}
}

// MapPage converts the data of a page, keeping its total.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, len(p.Data))
	for i, v := range p.Data {
		out[i] = fn(v)
	}
	return Page[U]{Total: p.Total, Data: out}
}
