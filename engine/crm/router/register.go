// Package crmrouter exposes customers, staff, membership requests and
// estimates over HTTP.
package crmrouter

import (
	"github.com/gin-gonic/gin"
)

// Register mounts every CRM route on the API group.
func Register(apiBase *gin.RouterGroup) {
	customers := apiBase.Group("/customers")
	{
		customers.GET("", listCustomers)
		customers.POST("", createCustomer)
		customers.GET("/:user_id", getCustomer)
		customers.PUT("/:user_id", updateCustomer)
		customers.DELETE("/:user_id", deleteCustomer)
	}
	staff := apiBase.Group("/staff")
	{
		staff.GET("", listStaff)
		staff.POST("", createStaff)
		staff.GET("/:user_id", getStaff)
		staff.PUT("/:user_id", updateStaff)
		staff.DELETE("/:user_id", deleteStaff)
	}
	memberships := apiBase.Group("/membership-requests")
	{
		memberships.GET("", listMemberships)
		memberships.POST("", createMembership)
		memberships.GET("/:user_id", getMembership)
		memberships.POST("/:user_id/approve", approveMembership)
		memberships.POST("/:user_id/reject", rejectMembership)
	}
	estimates := apiBase.Group("/estimates")
	{
		estimates.GET("", listEstimates)
		estimates.POST("", requestEstimate)
		estimates.GET("/:estimate_no", getEstimate)
		estimates.DELETE("/:estimate_no", deleteEstimate)
		estimates.POST("/:estimate_no/quote", quoteEstimate)
		estimates.POST("/:estimate_no/accept", acceptEstimate)
		estimates.POST("/:estimate_no/reject", rejectEstimate)
	}
}
