package router

import "github.com/salesdesk/salesdesk/engine/listing"

// PagedEnvelope is the PascalCase envelope used by the membership endpoint.
type PagedEnvelope[T any] struct {
	Items       []T `json:"Items"`
	CurrentPage int `json:"CurrentPage"`
	TotalPages  int `json:"TotalPages"`
	TotalCount  int `json:"TotalCount"`
}

// PageInfoDTO is the camelCase pagination block nested under "pagination".
type PageInfoDTO struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	TotalCount  int `json:"totalCount"`
	PageSize    int `json:"pageSize"`
}

type ListResponse[T any] struct {
	Items      []T         `json:"items"`
	Pagination PageInfoDTO `json:"pagination"`
}

// NewPageInfo describes the requested page of total matches. The page is
// echoed as asked; clients clamp it against TotalPages.
func NewPageInfo(q ListQuery, total int) PageInfoDTO {
	return PageInfoDTO{
		CurrentPage: q.Page,
		TotalPages:  listing.TotalPages(total, q.PageSize),
		TotalCount:  total,
		PageSize:    q.PageSize,
	}
}

func NewPagedEnvelope[T any](items []T, q ListQuery, total int) PagedEnvelope[T] {
	info := NewPageInfo(q, total)
	return PagedEnvelope[T]{
		Items:       items,
		CurrentPage: info.CurrentPage,
		TotalPages:  info.TotalPages,
		TotalCount:  info.TotalCount,
	}
}
