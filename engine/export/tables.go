package export

import (
	"time"

	"github.com/salesdesk/salesdesk/engine/crm"
)

const dateLayout = "2006-01-02"

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func Customers(items []crm.Customer) Table {
	t := Table{
		Sheet:   "Customers",
		Headers: []string{"User ID", "Company", "Contact", "Email", "Phone", "Address", "Created"},
	}
	for _, c := range items {
		t.Rows = append(t.Rows, []string{
			c.UserID, c.CompanyName, c.ContactName, c.Email, c.Phone, c.Address, formatDate(c.CreatedAt),
		})
	}
	return t
}

func Staff(items []crm.Staff) Table {
	t := Table{
		Sheet:   "Staff",
		Headers: []string{"User ID", "Name", "Email", "Phone", "Department", "Position", "Created"},
	}
	for _, s := range items {
		t.Rows = append(t.Rows, []string{
			s.UserID, s.Name, s.Email, s.Phone, s.Department, s.Position, formatDate(s.CreatedAt),
		})
	}
	return t
}

func Memberships(items []crm.MembershipRequest) Table {
	t := Table{
		Sheet:   "Membership Requests",
		Headers: []string{"User ID", "Name", "Company", "Email", "Phone", "Status", "Requested"},
	}
	for _, m := range items {
		t.Rows = append(t.Rows, []string{
			m.UserID, m.Name, m.Company, m.Email, m.Phone, m.Status.String(), formatDate(m.RequestedAt),
		})
	}
	return t
}

func Estimates(items []crm.Estimate) Table {
	t := Table{
		Sheet:   "Estimates",
		Headers: []string{"Temp No", "Estimate No", "Company", "Title", "Status", "Requested Total", "Quoted Amount", "Created"},
	}
	for _, e := range items {
		amount := ""
		if e.Status != crm.EstimateRequested {
			amount = e.Amount.StringFixed(2)
		}
		t.Rows = append(t.Rows, []string{
			e.TempEstimateNo, e.EstimateNo, e.CompanyName, e.Title, e.Status.String(),
			e.RequestedTotal().StringFixed(2), amount, formatDate(e.CreatedAt),
		})
	}
	return t
}
