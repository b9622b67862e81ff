package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/salesdesk/salesdesk/engine/crm"
	"github.com/salesdesk/salesdesk/engine/infra/server/appstate"
	"github.com/salesdesk/salesdesk/pkg/logger"
)

// Error codes
const (
	ErrInternalCode   = "INTERNAL_ERROR"
	ErrBadRequestCode = "BAD_REQUEST"
	ErrForbiddenCode  = "FORBIDDEN"
	ErrNotFoundCode   = "NOT_FOUND"
	ErrConflictCode   = "CONFLICT"
)

const ErrMsgAppStateNotInitialized = "application state not initialized"

// ErrorInfo is the body of every non-2xx response.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorInfo `json:"error"`
}

// StatusFor maps a domain error onto an HTTP status and error code.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, crm.ErrValidation):
		return http.StatusBadRequest, ErrBadRequestCode
	case errors.Is(err, crm.ErrNotFound):
		return http.StatusNotFound, ErrNotFoundCode
	case errors.Is(err, crm.ErrConflict):
		return http.StatusConflict, ErrConflictCode
	case errors.Is(err, crm.ErrForbidden):
		return http.StatusForbidden, ErrForbiddenCode
	default:
		return http.StatusInternalServerError, ErrInternalCode
	}
}

// RespondError writes err as an ErrorResponse and aborts the chain.
// Internal errors are logged with their cause but answered generically.
func RespondError(c *gin.Context, err error) {
	status, code := StatusFor(err)
	info := ErrorInfo{Code: code, Message: err.Error()}
	var verr *crm.ValidationError
	if errors.As(err, &verr) {
		info.Field = verr.Field
		info.Message = verr.Message
	}
	log := logger.FromContext(c.Request.Context())
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "status", status, "route", route, "error", err)
		info.Message = http.StatusText(status)
	} else {
		log.Warn("request failed", "status", status, "route", route, "code", code, "detail", info.Message)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: info})
}

// RespondBadRequest reports a malformed request body or query.
func RespondBadRequest(c *gin.Context, field, message string) {
	RespondError(c, crm.NewValidationError(field, message))
}

func RespondOK(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}

func RespondCreated(c *gin.Context, body any) {
	c.JSON(http.StatusCreated, body)
}

func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BindJSON decodes the request body into dst. On failure it has already
// answered 400.
func BindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondBadRequest(c, "body", err.Error())
		return false
	}
	return true
}

// GetAppState returns the request's state. On failure it has already
// answered 500.
func GetAppState(c *gin.Context) (*appstate.State, bool) {
	state, err := appstate.GetState(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: ErrorInfo{
			Code:    ErrInternalCode,
			Message: ErrMsgAppStateNotInitialized,
		}})
		return nil, false
	}
	return state, true
}
