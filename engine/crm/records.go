package crm

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// RoleID identifies a session role.
type RoleID int

const (
	RoleAdmin    RoleID = 1
	RoleStaff    RoleID = 2
	RoleCustomer RoleID = 3
)

func (r RoleID) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleStaff:
		return "staff"
	case RoleCustomer:
		return "customer"
	default:
		return "unknown"
	}
}

func (r RoleID) Valid() bool {
	return r >= RoleAdmin && r <= RoleCustomer
}

// ParseRole accepts a role name or its numeric id.
func ParseRole(s string) (RoleID, error) {
	switch s {
	case "admin":
		return RoleAdmin, nil
	case "staff":
		return RoleStaff, nil
	case "customer":
		return RoleCustomer, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || !RoleID(n).Valid() {
		return 0, NewValidationError("role", "must be admin, staff, customer or 1-3")
	}
	return RoleID(n), nil
}

// Customer is an active customer account.
type Customer struct {
	UserID      string    `json:"userID"      db:"user_id"`
	CompanyName string    `json:"companyName" db:"company_name"`
	ContactName string    `json:"contactName" db:"contact_name"`
	Email       string    `json:"email"       db:"email"`
	Phone       string    `json:"phone"       db:"phone"`
	Address     string    `json:"address"     db:"address"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
}

func (c Customer) Key() string { return c.UserID }

func (c Customer) SearchFields() []string {
	return []string{c.CompanyName, c.ContactName}
}

type Staff struct {
	UserID     string    `json:"userID"     db:"user_id"`
	Name       string    `json:"name"       db:"contact_name"`
	Email      string    `json:"email"      db:"email"`
	Phone      string    `json:"phone"      db:"phone"`
	Department string    `json:"department" db:"department"`
	Position   string    `json:"position"   db:"position"`
	CreatedAt  time.Time `json:"createdAt"  db:"created_at"`
}

func (s Staff) Key() string { return s.UserID }

func (s Staff) SearchFields() []string {
	return []string{s.Name, s.Email, s.Department}
}

// MembershipStatus is the review state of a sign-up.
type MembershipStatus int

const (
	MembershipPending MembershipStatus = iota
	MembershipApproved
	MembershipRejected
)

func (s MembershipStatus) String() string {
	switch s {
	case MembershipPending:
		return "pending"
	case MembershipApproved:
		return "approved"
	case MembershipRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// MembershipRequest is a customer sign-up waiting for staff review.
type MembershipRequest struct {
	UserID      string           `json:"userID"      db:"user_id"`
	Name        string           `json:"name"        db:"contact_name"`
	Company     string           `json:"company"     db:"company_name"`
	Email       string           `json:"email"       db:"email"`
	Phone       string           `json:"phone"       db:"phone"`
	Status      MembershipStatus `json:"status"      db:"status"`
	RequestedAt time.Time        `json:"requestedAt" db:"created_at"`
}

func (m MembershipRequest) Key() string { return m.UserID }

func (m MembershipRequest) SearchFields() []string {
	return []string{m.Name, m.Company}
}

// EstimateStatus tracks an estimate through request, quote and decision.
type EstimateStatus int

const (
	EstimateRequested EstimateStatus = iota
	EstimateQuoted
	EstimateAccepted
	EstimateRejected
)

func (s EstimateStatus) String() string {
	switch s {
	case EstimateRequested:
		return "requested"
	case EstimateQuoted:
		return "quoted"
	case EstimateAccepted:
		return "accepted"
	case EstimateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// ParseEstimateStatus accepts a status name and returns its numeric value.
func ParseEstimateStatus(s string) (EstimateStatus, error) {
	for _, st := range []EstimateStatus{EstimateRequested, EstimateQuoted, EstimateAccepted, EstimateRejected} {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, NewValidationError("status", "must be requested, quoted, accepted or rejected")
}

// ParseMembershipStatus accepts a status name and returns its numeric value.
func ParseMembershipStatus(s string) (MembershipStatus, error) {
	for _, st := range []MembershipStatus{MembershipPending, MembershipApproved, MembershipRejected} {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, NewValidationError("status", "must be pending, approved or rejected")
}

type EstimateItem struct {
	Product   string          `json:"product"   db:"product"    validate:"required"`
	Quantity  int             `json:"quantity"  db:"quantity"   validate:"gt=0"`
	UnitPrice decimal.Decimal `json:"unitPrice" db:"unit_price"`
}

// Subtotal is quantity times unit price.
func (i EstimateItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Estimate is a quote request. TempEstimateNo is assigned at request time and
// is the record identity; EstimateNo is assigned when staff quote it.
type Estimate struct {
	TempEstimateNo string          `json:"tempEstimateNo" db:"temp_estimate_no"`
	EstimateNo     string          `json:"estimateNo"     db:"estimate_no"`
	CustomerID     string          `json:"customerID"     db:"customer_id"`
	CompanyName    string          `json:"companyName"    db:"company_name"`
	Title          string          `json:"title"          db:"title"`
	Status         EstimateStatus  `json:"status"         db:"status"`
	Amount         decimal.Decimal `json:"amount"         db:"amount"`
	Note           string          `json:"note"           db:"note"`
	Items          []EstimateItem  `json:"items"          db:"-"`
	CreatedAt      time.Time       `json:"createdAt"      db:"created_at"`
	QuotedAt       *time.Time      `json:"quotedAt"       db:"quoted_at"`
}

func (e Estimate) Key() string { return e.TempEstimateNo }

func (e Estimate) SearchFields() []string {
	return []string{e.CompanyName, e.Title, e.EstimateNo, e.TempEstimateNo}
}

// RequestedTotal sums the requested lines.
func (e Estimate) RequestedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range e.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}
