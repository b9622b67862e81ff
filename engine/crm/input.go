package crm

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// CustomerInput is the add/edit form for customers.
type CustomerInput struct {
	CompanyName string `json:"companyName" validate:"required"`
	ContactName string `json:"contactName" validate:"required"`
	Email       string `json:"email"       validate:"required,email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
}

type StaffInput struct {
	Name       string `json:"name"       validate:"required"`
	Email      string `json:"email"      validate:"required,email"`
	Phone      string `json:"phone"`
	Department string `json:"department" validate:"required"`
	Position   string `json:"position"`
}

// MembershipInput is the public sign-up form.
type MembershipInput struct {
	Name    string `json:"name"    validate:"required"`
	Company string `json:"company" validate:"required"`
	Email   string `json:"email"   validate:"required,email"`
	Phone   string `json:"phone"`
}

type EstimateRequestInput struct {
	CustomerID string         `json:"customerID" validate:"required"`
	Title      string         `json:"title"      validate:"required"`
	Items      []EstimateItem `json:"items"      validate:"required,min=1,dive"`
}

type QuoteInput struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate runs struct-tag validation and returns the first failure as a
// ValidationError naming the JSON field.
func Validate(v any) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return NewValidationError(fieldPath(fe.Namespace()), describeTag(fe))
}

// fieldPath strips the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must have at least " + fe.Param() + " entries"
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return "is invalid"
	}
}

func (in CustomerInput) Validate() error { return Validate(in) }
func (in StaffInput) Validate() error    { return Validate(in) }

func (in MembershipInput) Validate() error { return Validate(in) }

func (in EstimateRequestInput) Validate() error {
	if err := Validate(in); err != nil {
		return err
	}
	for _, item := range in.Items {
		if item.UnitPrice.IsNegative() {
			return NewValidationError("items.unitPrice", "cannot be negative")
		}
	}
	return nil
}

func (in QuoteInput) Validate() error {
	if !in.Amount.IsPositive() {
		return NewValidationError("amount", "must be greater than 0")
	}
	return nil
}
