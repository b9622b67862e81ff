package api

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/salesdesk/salesdesk/engine/crm"
)

// APIError is the backend's error body: {"error": {"code", "message", "field"}}.
type APIError struct {
	Body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Field   string `json:"field,omitempty"`
	} `json:"error"`
}

func (e *APIError) Error() string {
	if e.Body.Field != "" {
		return e.Body.Field + ": " + e.Body.Message
	}
	return e.Body.Message
}

func transportError(op string, err error) error {
	return crm.NewRemoteError(op, 0, "", err)
}

func responseError(op string, resp *resty.Response) error {
	msg := ""
	if apiErr, ok := resp.Error().(*APIError); ok && apiErr != nil {
		msg = apiErr.Error()
	}
	if msg == "" {
		msg = strings.TrimSpace(resp.String())
	}
	return crm.NewRemoteError(op, resp.StatusCode(), msg, nil)
}

// IsNetworkError reports whether err means the backend could not be reached.
func IsNetworkError(err error) bool {
	var rerr *crm.RemoteError
	if errors.As(err, &rerr) {
		return rerr.Transport() && !IsTimeoutError(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && !netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && !urlErr.Timeout()
}

// IsTimeoutError reports whether err is a deadline or network timeout.
func IsTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
