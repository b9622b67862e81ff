package session

import (
	"fmt"

	"github.com/salesdesk/salesdesk/engine/crm"
)

// Action is a UI affordance gated by role.
type Action string

const (
	ActionManageStaff      Action = "manage_staff"
	ActionManageCustomers  Action = "manage_customers"
	ActionReviewMembership Action = "review_membership"
	ActionRequestEstimate  Action = "request_estimate"
	ActionQuoteEstimate    Action = "quote_estimate"
	ActionDecideEstimate   Action = "decide_estimate"
	ActionDeleteEstimate   Action = "delete_estimate"
)

// Can reports whether the session's role grants action.
func (s Session) Can(action Action) bool {
	switch action {
	case ActionManageStaff:
		return s.RoleID == crm.RoleAdmin
	case ActionManageCustomers, ActionReviewMembership, ActionQuoteEstimate, ActionDeleteEstimate:
		return s.RoleID == crm.RoleAdmin || s.RoleID == crm.RoleStaff
	case ActionRequestEstimate, ActionDecideEstimate:
		return s.RoleID == crm.RoleCustomer
	}
	return false
}

// CanDelete reports whether the session may delete the account userID.
// Admins delete anyone but themselves; customers delete only themselves.
func (s Session) CanDelete(userID string, target crm.RoleID) bool {
	switch s.RoleID {
	case crm.RoleAdmin:
		return userID != s.UserID
	case crm.RoleStaff:
		return target == crm.RoleCustomer
	case crm.RoleCustomer:
		return userID == s.UserID
	}
	return false
}

// Require returns crm.ErrForbidden when action is not granted.
func (s Session) Require(action Action) error {
	if s.Can(action) {
		return nil
	}
	return fmt.Errorf("%w: %s cannot %s", crm.ErrForbidden, s.RoleID, action)
}

// RequireDelete is the error-returning form of CanDelete.
func (s Session) RequireDelete(userID string, target crm.RoleID) error {
	if s.CanDelete(userID, target) {
		return nil
	}
	return fmt.Errorf("%w: %s cannot delete %s", crm.ErrForbidden, s.RoleID, userID)
}
