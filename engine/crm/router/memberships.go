package crmrouter

import (
	"github.com/gin-gonic/gin"
	"github.com/salesdesk/salesdesk/engine/crm"
	"github.com/salesdesk/salesdesk/engine/infra/server/events"
	"github.com/salesdesk/salesdesk/engine/infra/server/router"
	"github.com/salesdesk/salesdesk/engine/infra/sqlite"
)

// listMemberships handles GET /membership-requests.
//
// Search, status and paging run on the server. The body uses the
// PascalCase envelope {Items, CurrentPage, TotalPages, TotalCount}.
func listMemberships(c *gin.Context) {
	state, ok := router.GetAppState(c)
	if !ok {
		return
	}
	q, ok := router.BindListQuery(c)
	if !ok {
		return
	}
	list, total, err := state.Users.ListMemberships(c.Request.Context(), sqlite.MembershipFilter{
		Search: q.SearchKeyword,
		Status: q.Status,
		Page:   sqlite.Page{Number: q.Page, Size: q.PageSize},
	})
	if err != nil {
		router.RespondError(c, err)
		return
	}
	router.RespondOK(c, router.NewPagedEnvelope(list, q, total))
}

func getMembership(c *gin.Context) {
	state, ok := router.GetAppState(c)
	if !ok {
		return
	}
	m, err := state.Users.GetMembership(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		router.RespondError(c, err)
		return
	}
	router.RespondOK(c, m)
}

// createMembership handles the public sign-up form.
func createMembership(c *gin.Context) {
	state, ok := router.GetAppState(c)
	if !ok {
		return
	}
	var in crm.MembershipInput
	if !router.BindJSON(c, &in) {
		return
	}
	m, err := state.Users.CreateMembership(c.Request.Context(), in)
	if err != nil {
		router.RespondError(c, err)
		return
	}
	state.Publish(events.ResourceMemberships, "created", m.UserID)
	router.RespondCreated(c, m)
}

func approveMembership(c *gin.Context) {
	reviewMembership(c, crm.MembershipApproved)
}

func rejectMembership(c *gin.Context) {
	reviewMembership(c, crm.MembershipRejected)
}

func reviewMembership(c *gin.Context, to crm.MembershipStatus) {
	state, ok := router.GetAppState(c)
	if !ok {
		return
	}
	m, err := state.Users.ReviewMembership(c.Request.Context(), c.Param("user_id"), to)
	if err != nil {
		router.RespondError(c, err)
		return
	}
	state.Publish(events.ResourceMemberships, to.String(), m.UserID)
	if to == crm.MembershipApproved {
		state.Publish(events.ResourceCustomers, "created", m.UserID)
	}
	router.RespondOK(c, m)
}
