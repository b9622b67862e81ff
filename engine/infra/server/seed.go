package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/salesdesk/salesdesk/engine/crm"
	"github.com/salesdesk/salesdesk/engine/infra/server/appstate"
	"github.com/salesdesk/salesdesk/pkg/logger"
	"github.com/shopspring/decimal"
)

// SeedResult lists the accounts created by Seed so the operator can log in.
type SeedResult struct {
	AdminID    string
	StaffID    string
	CustomerID string
	Skipped    bool
}

var seedCompanies = []string{
	"Acme Corp", "Globex", "Initech", "Umbrella", "Hooli", "Stark Industries",
	"Wayne Enterprises", "Wonka Industries", "Cyberdyne", "Soylent", "Tyrell", "Vandelay Imports",
}

// Seed fills an empty database with demo data: an admin, staff, a dozen
// customers, pending sign-ups and estimates in every status. It does nothing
// when the admin account already exists.
func Seed(ctx context.Context, state *appstate.State) (SeedResult, error) {
	log := logger.FromContext(ctx)
	var res SeedResult
	adminID, err := state.Users.CreateAdmin(ctx, "Administrator", "admin@salesdesk.test")
	if errors.Is(err, crm.ErrConflict) {
		log.Info("Seed data already present, skipping")
		return SeedResult{Skipped: true}, nil
	}
	if err != nil {
		return res, fmt.Errorf("seed admin: %w", err)
	}
	res.AdminID = adminID
	for i, dept := range []string{"Sales", "Sales", "Support", "Operations"} {
		s, err := state.Users.CreateStaff(ctx, crm.StaffInput{
			Name:       fmt.Sprintf("Staff Member %d", i+1),
			Email:      fmt.Sprintf("staff%d@salesdesk.test", i+1),
			Department: dept,
			Position:   "Associate",
		})
		if err != nil {
			return res, fmt.Errorf("seed staff: %w", err)
		}
		if res.StaffID == "" {
			res.StaffID = s.UserID
		}
	}
	customers := make([]crm.Customer, 0, len(seedCompanies))
	for i, company := range seedCompanies {
		c, err := state.Users.CreateCustomer(ctx, crm.CustomerInput{
			CompanyName: company,
			ContactName: fmt.Sprintf("Contact %02d", i+1),
			Email:       fmt.Sprintf("contact%02d@customer.test", i+1),
			Phone:       fmt.Sprintf("555-01%02d", i+1),
		})
		if err != nil {
			return res, fmt.Errorf("seed customer: %w", err)
		}
		customers = append(customers, c)
	}
	res.CustomerID = customers[0].UserID
	for i := range 3 {
		_, err := state.Users.CreateMembership(ctx, crm.MembershipInput{
			Name:    fmt.Sprintf("Applicant %d", i+1),
			Company: fmt.Sprintf("Prospect %d", i+1),
			Email:   fmt.Sprintf("applicant%d@prospect.test", i+1),
		})
		if err != nil {
			return res, fmt.Errorf("seed membership: %w", err)
		}
	}
	if err := seedEstimates(ctx, state, customers); err != nil {
		return res, err
	}
	log.Info("Seeded demo data", "customers", len(customers), "admin_id", res.AdminID)
	return res, nil
}

func seedEstimates(ctx context.Context, state *appstate.State, customers []crm.Customer) error {
	for i, c := range customers {
		e, err := state.Estimates.Create(ctx, crm.EstimateRequestInput{
			CustomerID: c.UserID,
			Title:      fmt.Sprintf("%s supply order", c.CompanyName),
			Items: []crm.EstimateItem{
				{Product: "Widget", Quantity: i + 1, UnitPrice: decimal.RequireFromString("19.99")},
				{Product: "Service hours", Quantity: 2, UnitPrice: decimal.NewFromInt(85)},
			},
		})
		if err != nil {
			return fmt.Errorf("seed estimate: %w", err)
		}
		if i%4 == 0 {
			continue
		}
		quote := crm.QuoteInput{Amount: e.RequestedTotal().Mul(decimal.RequireFromString("0.95")).Round(2), Note: "5% volume discount"}
		if _, err := state.Estimates.Quote(ctx, e.TempEstimateNo, quote); err != nil {
			return fmt.Errorf("seed quote: %w", err)
		}
		switch i % 4 {
		case 2:
			_, err = state.Estimates.Decide(ctx, e.TempEstimateNo, true)
		case 3:
			_, err = state.Estimates.Decide(ctx, e.TempEstimateNo, false)
		}
		if err != nil {
			return fmt.Errorf("seed decision: %w", err)
		}
	}
	return nil
}
