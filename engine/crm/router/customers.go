package crmrouter

import (
	"github.com/gin-gonic/gin"
	"github.com/salesdesk/salesdesk/engine/crm"
	"github.com/salesdesk/salesdesk/engine/infra/server/events"
	"github.com/salesdesk/salesdesk/engine/infra/server/router"
)

// listCustomers handles GET /customers.
//
// The response is a bare array of active customers. Search and paging happen
// on the client.
func listCustomers(c *gin.Context) {
	state, ok := router.GetAppState(c)
	if !ok {
		return
	}
	list, err := state.Users.ListCustomers(c.Request.Context())
	if err != nil {
		router.RespondError(c, err)
		return
	}
	router.RespondOK(c, list)
}

// getCustomer handles GET /customers/{user_id}.
func getCustomer(c *gin.Context) {
	state, ok := router.GetAppState(c)
	if !ok {
		return
	}
	customer, err := state.Users.GetCustomer(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		router.RespondError(c, err)
		return
	}
	router.RespondOK(c, customer)
}

// createCustomer handles POST /customers.
func createCustomer(c *gin.Context) {
	state, ok := router.GetAppState(c)
	if !ok {
		return
	}
	var in crm.CustomerInput
	if !router.BindJSON(c, &in) {
		return
	}
	customer, err := state.Users.CreateCustomer(c.Request.Context(), in)
	if err != nil {
		router.RespondError(c, err)
		return
	}
	state.Publish(events.ResourceCustomers, "created", customer.UserID)
	router.RespondCreated(c, customer)
}

func updateCustomer(c *gin.Context) {
	state, ok := router.GetAppState(c)
	if !ok {
		return
	}
	var in crm.CustomerInput
	if !router.BindJSON(c, &in) {
		return
	}
	customer, err := state.Users.UpdateCustomer(c.Request.Context(), c.Param("user_id"), in)
	if err != nil {
		router.RespondError(c, err)
		return
	}
	state.Publish(events.ResourceCustomers, "updated", customer.UserID)
	router.RespondOK(c, customer)
}

func deleteCustomer(c *gin.Context) {
	state, ok := router.GetAppState(c)
	if !ok {
		return
	}
	userID := c.Param("user_id")
	if err := state.Users.DeleteCustomer(c.Request.Context(), userID); err != nil {
		router.RespondError(c, err)
		return
	}
	state.Publish(events.ResourceCustomers, "deleted", userID)
	router.RespondNoContent(c)
}
