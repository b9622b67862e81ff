package crmrouter

import (
	"github.com/gin-gonic/gin"
	"github.com/salesdesk/salesdesk/engine/crm"
	"github.com/salesdesk/salesdesk/engine/infra/server/events"
	"github.com/salesdesk/salesdesk/engine/infra/server/router"
)

// listStaff handles GET /staff. Like customers, the body is a bare array.
func listStaff(c *gin.Context) {
	state, ok := router.GetAppState(c)
	if !ok {
		return
	}
	list, err := state.Users.ListStaff(c.Request.Context())
	if err != nil {
		router.RespondError(c, err)
		return
	}
	router.RespondOK(c, list)
}

func getStaff(c *gin.Context) {
	state, ok := router.GetAppState(c)
	if !ok {
		return
	}
	member, err := state.Users.GetStaff(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		router.RespondError(c, err)
		return
	}
	router.RespondOK(c, member)
}

func createStaff(c *gin.Context) {
	state, ok := router.GetAppState(c)
	if !ok {
		return
	}
	var in crm.StaffInput
	if !router.BindJSON(c, &in) {
		return
	}
	member, err := state.Users.CreateStaff(c.Request.Context(), in)
	if err != nil {
		router.RespondError(c, err)
		return
	}
	state.Publish(events.ResourceStaff, "created", member.UserID)
	router.RespondCreated(c, member)
}

func updateStaff(c *gin.Context) {
	state, ok := router.GetAppState(c)
	if !ok {
		return
	}
	var in crm.StaffInput
	if !router.BindJSON(c, &in) {
		return
	}
	member, err := state.Users.UpdateStaff(c.Request.Context(), c.Param("user_id"), in)
	if err != nil {
		router.RespondError(c, err)
		return
	}
	state.Publish(events.ResourceStaff, "updated", member.UserID)
	router.RespondOK(c, member)
}

func deleteStaff(c *gin.Context) {
	state, ok := router.GetAppState(c)
	if !ok {
		return
	}
	userID := c.Param("user_id")
	if err := state.Users.DeleteStaff(c.Request.Context(), userID); err != nil {
		router.RespondError(c, err)
		return
	}
	state.Publish(events.ResourceStaff, "deleted", userID)
	router.RespondNoContent(c)
}
