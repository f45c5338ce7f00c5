package models

// Pagination is the paging block the ACH backend attaches to list responses.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Envelope is the uniform wrapper returned by every backend call.
type Envelope[T any] struct {
	Success    bool        `json:"success"`
	Data       T           `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Message    string      `json:"message,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Page is a list payload together with its pagination, as cached by the query layer.
type Page[T any] struct {
	Items      []T         `json:"items"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// OK wraps data in a successful envelope.
func OK[T any](data T) Envelope[T] {
	return Envelope[T]{Success: true, Data: data}
}

// OKPage wraps a page in a successful envelope, lifting the pagination block.
func OKPage[T any](p Page[T]) Envelope[[]T] {
	return Envelope[[]T]{Success: true, Data: p.Items, Pagination: p.Pagination}
}

// Fail builds an error envelope.
func Fail(msg string) Envelope[any] {
	return Envelope[any]{Success: false, Error: msg}
}
