package crmrouter

import (
	"github.com/gin-gonic/gin"
	"github.com/salesdesk/salesdesk/engine/crm"
	"github.com/salesdesk/salesdesk/engine/infra/server/events"
	"github.com/salesdesk/salesdesk/engine/infra/server/router"
	"github.com/salesdesk/salesdesk/engine/infra/sqlite"
)

// listEstimates handles GET /estimates.
//
// Search, status, customer, direction and paging run on the server. The body
// is {items, pagination{currentPage, totalPages, totalCount, pageSize}}.
func listEstimates(c *gin.Context) {
	state, ok := router.GetAppState(c)
	if !ok {
		return
	}
	q, ok := router.BindListQuery(c)
	if !ok {
		return
	}
	list, total, err := state.Estimates.List(c.Request.Context(), sqlite.EstimateFilter{
		Search:     q.SearchKeyword,
		Status:     q.Status,
		CustomerID: q.CustomerID,
		Descending: q.IsDescending,
		Page:       sqlite.Page{Number: q.Page, Size: q.PageSize},
	})
	if err != nil {
		router.RespondError(c, err)
		return
	}
	router.RespondOK(c, router.ListResponse[crm.Estimate]{
		Items:      list,
		Pagination: router.NewPageInfo(q, total),
	})
}

// getEstimate handles GET /estimates/{estimate_no}; the key is the temporary number.
func getEstimate(c *gin.Context) {
	state, ok := router.GetAppState(c)
	if !ok {
		return
	}
	e, err := state.Estimates.Get(c.Request.Context(), c.Param("estimate_no"))
	if err != nil {
		router.RespondError(c, err)
		return
	}
	router.RespondOK(c, e)
}

// requestEstimate handles POST /estimates.
func requestEstimate(c *gin.Context) {
	state, ok := router.GetAppState(c)
	if !ok {
		return
	}
	var in crm.EstimateRequestInput
	if !router.BindJSON(c, &in) {
		return
	}
	e, err := state.Estimates.Create(c.Request.Context(), in)
	if err != nil {
		router.RespondError(c, err)
		return
	}
	state.Publish(events.ResourceEstimates, "created", e.TempEstimateNo)
	router.RespondCreated(c, e)
}

func quoteEstimate(c *gin.Context) {
	state, ok := router.GetAppState(c)
	if !ok {
		return
	}
	var in crm.QuoteInput
	if !router.BindJSON(c, &in) {
		return
	}
	e, err := state.Estimates.Quote(c.Request.Context(), c.Param("estimate_no"), in)
	if err != nil {
		router.RespondError(c, err)
		return
	}
	state.Publish(events.ResourceEstimates, "quoted", e.TempEstimateNo)
	router.RespondOK(c, e)
}

func acceptEstimate(c *gin.Context) {
	decideEstimate(c, true)
}

func rejectEstimate(c *gin.Context) {
	decideEstimate(c, false)
}

func decideEstimate(c *gin.Context, accept bool) {
	state, ok := router.GetAppState(c)
	if !ok {
		return
	}
	e, err := state.Estimates.Decide(c.Request.Context(), c.Param("estimate_no"), accept)
	if err != nil {
		router.RespondError(c, err)
		return
	}
	state.Publish(events.ResourceEstimates, e.Status.String(), e.TempEstimateNo)
	router.RespondOK(c, e)
}

func deleteEstimate(c *gin.Context) {
	state, ok := router.GetAppState(c)
	if !ok {
		return
	}
	tempNo := c.Param("estimate_no")
	if err := state.Estimates.Delete(c.Request.Context(), tempNo); err != nil {
		router.RespondError(c, err)
		return
	}
	state.Publish(events.ResourceEstimates, "deleted", tempNo)
	router.RespondNoContent(c)
}
