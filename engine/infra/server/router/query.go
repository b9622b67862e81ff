package router

import (
	"github.com/gin-gonic/gin"
	"github.com/salesdesk/salesdesk/engine/listing"
)

// ListQuery carries the listing parameters shared by every collection endpoint.
type ListQuery struct {
	SearchKeyword string `form:"searchKeyword"`
	Status        *int   `form:"status"`
	Page          int    `form:"page"         binding:"omitempty,min=1"`
	PageSize      int    `form:"pageSize"     binding:"omitempty,oneof=10 20 30 40 50"`
	IsDescending  bool   `form:"isDescending"`
	CustomerID    string `form:"customerID"`
}

// BindListQuery parses the query string and fills page defaults. On failure it
// has already answered 400.
func BindListQuery(c *gin.Context) (ListQuery, bool) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		RespondBadRequest(c, "query", err.Error())
		return q, false
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = listing.DefaultPageSize
	}
	return q, true
}
