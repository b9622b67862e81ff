// Package forms builds the huh forms behind every add, edit and workflow
// dialog. Each builder binds its fields to a draft so a failed submit can
// rebuild the form without losing what the user typed.
package forms

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/salesdesk/salesdesk/engine/crm"
	"github.com/shopspring/decimal"
)

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func CustomerForm(in *crm.CustomerInput) *huh.Form {
	return huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Company name").Value(&in.CompanyName).Validate(required("company name")),
		huh.NewInput().Title("Contact name").Value(&in.ContactName).Validate(required("contact name")),
		huh.NewInput().Title("Email").Value(&in.Email).Validate(required("email")),
		huh.NewInput().Title("Phone").Value(&in.Phone),
		huh.NewInput().Title("Address").Value(&in.Address),
	))
}

func StaffForm(in *crm.StaffInput) *huh.Form {
	return huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Name").Value(&in.Name).Validate(required("name")),
		huh.NewInput().Title("Email").Value(&in.Email).Validate(required("email")),
		huh.NewInput().Title("Phone").Value(&in.Phone),
		huh.NewInput().Title("Department").Value(&in.Department).Validate(required("department")),
		huh.NewInput().Title("Position").Value(&in.Position),
	))
}

func MembershipForm(in *crm.MembershipInput) *huh.Form {
	return huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Your name").Value(&in.Name).Validate(required("name")),
		huh.NewInput().Title("Company").Value(&in.Company).Validate(required("company")),
		huh.NewInput().Title("Email").Value(&in.Email).Validate(required("email")),
		huh.NewInput().Title("Phone").Value(&in.Phone),
	))
}

// EstimateDraft is the text form of an estimate request.
type EstimateDraft struct {
	CustomerID string
	Title      string
	// Items holds one "product, quantity, unit price" line per item.
	Items string
}

// Input parses the draft into a request.
func (d *EstimateDraft) Input() (crm.EstimateRequestInput, error) {
	items, err := ParseItems(d.Items)
	if err != nil {
		return crm.EstimateRequestInput{}, err
	}
	in := crm.EstimateRequestInput{
		CustomerID: strings.TrimSpace(d.CustomerID),
		Title:      strings.TrimSpace(d.Title),
		Items:      items,
	}
	return in, in.Validate()
}

// EstimateForm asks for the customer only when askCustomer is set; customers
// request estimates for themselves.
func EstimateForm(d *EstimateDraft, askCustomer bool) *huh.Form {
	fields := make([]huh.Field, 0, 3)
	if askCustomer {
		fields = append(fields,
			huh.NewInput().Title("Customer ID").Value(&d.CustomerID).Validate(required("customer ID")))
	}
	fields = append(fields,
		huh.NewInput().Title("Title").Value(&d.Title).Validate(required("title")),
		huh.NewText().
			Title("Items").
			Description("One per line: product, quantity, unit price").
			Lines(5).
			Value(&d.Items).
			Validate(func(s string) error {
				_, err := ParseItems(s)
				return err
			}),
	)
	return huh.NewForm(huh.NewGroup(fields...))
}

// ParseItems reads "product, quantity, unit price" lines. Blank lines are skipped.
func ParseItems(text string) ([]crm.EstimateItem, error) {
	var items []crm.EstimateItem
	for n, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		item, err := ParseItem(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, crm.NewValidationError("items", "at least one item is required")
	}
	return items, nil
}

// ParseItem reads a single "product, quantity, unit price" entry.
func ParseItem(s string) (crm.EstimateItem, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return crm.EstimateItem{}, crm.NewValidationError("items", "expected product, quantity, unit price")
	}
	product := strings.TrimSpace(parts[0])
	if product == "" {
		return crm.EstimateItem{}, crm.NewValidationError("items.product", "is required")
	}
	qty, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || qty <= 0 {
		return crm.EstimateItem{}, crm.NewValidationError("items.quantity", "must be a positive whole number")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(parts[2]))
	if err != nil || price.IsNegative() {
		return crm.EstimateItem{}, crm.NewValidationError("items.unitPrice", "must be a non-negative amount")
	}
	return crm.EstimateItem{Product: product, Quantity: qty, UnitPrice: price}, nil
}

// QuoteDraft is the text form of a quote.
type QuoteDraft struct {
	Amount string
	Note   string
}

func (d *QuoteDraft) Input() (crm.QuoteInput, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(d.Amount))
	if err != nil {
		return crm.QuoteInput{}, crm.NewValidationError("amount", "must be a number")
	}
	in := crm.QuoteInput{Amount: amount, Note: strings.TrimSpace(d.Note)}
	return in, in.Validate()
}

func QuoteForm(d *QuoteDraft) *huh.Form {
	return huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Quoted amount").Value(&d.Amount).Validate(func(s string) error {
			_, err := (&QuoteDraft{Amount: s}).Input()
			return err
		}),
		huh.NewText().Title("Note").Lines(3).Value(&d.Note),
	))
}

// LoginDraft holds the session form values.
type LoginDraft struct {
	UserID string
	Role   crm.RoleID
}

func LoginForm(d *LoginDraft) *huh.Form {
	if !d.Role.Valid() {
		d.Role = crm.RoleStaff
	}
	return huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("User ID").Value(&d.UserID).Validate(required("user ID")),
		huh.NewSelect[crm.RoleID]().
			Title("Role").
			Options(
				huh.NewOption("Admin", crm.RoleAdmin),
				huh.NewOption("Staff", crm.RoleStaff),
				huh.NewOption("Customer", crm.RoleCustomer),
			).
			Value(&d.Role),
	))
}

func ConfirmForm(title string, ok *bool) *huh.Form {
	return huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title(title).Affirmative("Yes").Negative("No").Value(ok),
	))
}
