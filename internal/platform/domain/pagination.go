package domain

import "fmt"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest is an offset window over an ordered result set.
type PageRequest struct {
	From int
	Size int
}

// NewPageRequest validates an offset/size pair.
func NewPageRequest(from, size int) (PageRequest, error) {
	if from < 0 {
		return PageRequest{}, NewValidationError(fmt.Sprintf("from must be non-negative, got %d", from))
	}
	if size < 1 {
		return PageRequest{}, NewValidationError(fmt.Sprintf("size must be positive, got %d", size))
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return PageRequest{From: from, Size: size}, nil
}

// DefaultPage returns the first page with the default size.
func DefaultPage() PageRequest {
	return PageRequest{From: 0, Size: DefaultPageSize}
}

// Paginate returns the window of items selected by p. The input is not modified.
func Paginate[T any](items []T, p PageRequest) []T {
	if p.From >= len(items) {
		return []T{}
	}
	end := p.From + p.Size
	if end > len(items) || p.Size <= 0 {
		end = len(items)
	}
	out := make([]T, end-p.From)
	copy(out, items[p.From:end])
	return out
}
