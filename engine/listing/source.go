package listing

import (
	"context"
)

// Params are the recognized listing query options.
type Params struct {
	SearchKeyword string `json:"searchKeyword,omitempty"`
	Status        *int   `json:"status,omitempty"`
	Page          int    `json:"page"`
	PageSize      int    `json:"pageSize"`
	IsDescending  bool   `json:"isDescending"`
}

// Result is a normalized listing response. Paged is false when the endpoint
// returned a plain array and paging metadata was synthesized locally.
type Result[T any] struct {
	Items       []T
	CurrentPage int
	TotalPages  int
	TotalCount  int
	Paged       bool
}

// Source fetches one listing endpoint.
type Source[T any] interface {
	FetchList(ctx context.Context, params Params) (Result[T], error)
}

// SourceFunc adapts a function to Source.
type SourceFunc[T any] func(ctx context.Context, params Params) (Result[T], error)

func (f SourceFunc[T]) FetchList(ctx context.Context, params Params) (Result[T], error) {
	return f(ctx, params)
}

// Strategy says where filtering and paging happen for an endpoint.
type Strategy int

const (
	// ClientSide loads the full collection once and filters and pages locally.
	ClientSide Strategy = iota
	// ServerSide sends query, status and paging to the backend on every change.
	ServerSide
)

func (s Strategy) String() string {
	if s == ServerSide {
		return "server"
	}
	return "client"
}

// Request is one tagged fetch issued by a view-model.
type Request struct {
	Seq    uint64
	Params Params
}

// Response carries a fetch outcome back to the view-model that issued it.
type Response[T any] struct {
	Seq    uint64
	Result Result[T]
	Err    error
}

// Fetch runs req against src and tags the outcome with the request sequence.
func Fetch[T any](ctx context.Context, src Source[T], req Request) Response[T] {
	res, err := src.FetchList(ctx, req.Params)
	return Response[T]{Seq: req.Seq, Result: res, Err: err}
}
