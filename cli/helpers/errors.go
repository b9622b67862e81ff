package helpers

import (
	"context"
	"errors"

	"github.com/salesdesk/salesdesk/cli/api"
	"github.com/salesdesk/salesdesk/cli/tui/components"
	"github.com/salesdesk/salesdesk/engine/crm"
	"github.com/salesdesk/salesdesk/engine/session"
)

// Category classifies a command failure for output and exit status.
type Category struct {
	Code string
	Exit int
}

var (
	CategoryValidation = Category{Code: "VALIDATION_ERROR", Exit: ExitValidation}
	CategoryForbidden  = Category{Code: "FORBIDDEN", Exit: ExitForbidden}
	CategoryNoSession  = Category{Code: "NO_SESSION", Exit: ExitForbidden}
	CategoryNotFound   = Category{Code: "NOT_FOUND", Exit: ExitNotFound}
	CategoryConflict   = Category{Code: "CONFLICT", Exit: ExitConflict}
	CategoryNetwork    = Category{Code: "NETWORK_ERROR", Exit: ExitNetwork}
	CategoryTimeout    = Category{Code: "TIMEOUT", Exit: ExitTimeout}
	CategoryCanceled   = Category{Code: "CANCELED", Exit: ExitCanceled}
	CategoryServer     = Category{Code: "SERVER_ERROR", Exit: ExitError}
	CategoryInternal   = Category{Code: "INTERNAL_ERROR", Exit: ExitError}
)

// Categorize maps an error onto its category. Order matters: a timeout is
// also a transport failure, and a canceled form is not a server error.
func Categorize(err error) Category {
	var cliErr *CliError
	switch {
	case errors.As(err, &cliErr) && cliErr.Category.Code != "":
		return cliErr.Category
	case errors.Is(err, context.Canceled), errors.Is(err, components.ErrFormCanceled):
		return CategoryCanceled
	case api.IsTimeoutError(err):
		return CategoryTimeout
	case errors.Is(err, session.ErrNoSession):
		return CategoryNoSession
	case errors.Is(err, crm.ErrValidation):
		return CategoryValidation
	case errors.Is(err, crm.ErrForbidden):
		return CategoryForbidden
	case errors.Is(err, crm.ErrNotFound):
		return CategoryNotFound
	case errors.Is(err, crm.ErrConflict):
		return CategoryConflict
	case api.IsNetworkError(err):
		return CategoryNetwork
	case errors.Is(err, crm.ErrRemote):
		return CategoryServer
	default:
		return CategoryInternal
	}
}

// ExitCode is the process exit status for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	return Categorize(err).Exit
}
