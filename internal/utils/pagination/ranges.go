package pagination

import "context"

// PageSize is the largest page the store hands out for a single read.
const PageSize = 1000

// PageFunc reads the rows in [offset, offset+limit).
type PageFunc[T any] func(ctx context.Context, offset, limit int) ([]T, error)

// FetchAll reads consecutive pages of size until a short page ends the data.
// Pages are requested one after another so the store's ordering is preserved
// across page boundaries. On error it stops and returns what it has so far
// together with the error.
func FetchAll[T any](ctx context.Context, size int, fetch PageFunc[T]) ([]T, error) {
	if size <= 0 {
		size = PageSize
	}

	var all []T
	for offset := 0; ; offset += size {
		page, err := fetch(ctx, offset, size)
		if err != nil {
			return all, err
		}
		all = append(all, page...)
		if len(page) < size {
			return all, nil
		}
	}
}
