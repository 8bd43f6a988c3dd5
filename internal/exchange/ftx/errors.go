package ftx

import (
	"errors"
	"fmt"
	"strings"

	"ftx-rest/internal/core"
)

// ValidationError is returned when arguments are rejected before any
// request is built. It matches core.ErrValidation.
type ValidationError struct {
	Op     string
	Reason string
}

func (e *ValidationError) Error() string {
	return "ftx " + e.Op + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error { return core.ErrValidation }

func invalid(op, format string, args ...any) error {
	return &ValidationError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// HTTPError reports a response whose body was not a JSON envelope.
type HTTPError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("ftx http error %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPError) Unwrap() error { return e.Err }

// APIError carries the server's error string from an envelope with
// success=false. Error returns that string unchanged.
type APIError struct {
	StatusCode int
	Message    string

	kinds []error
}

func (e *APIError) Error() string {
	return e.Message
}

// Is matches the core error kinds the message was classified into.
func (e *APIError) Is(target error) bool {
	for _, kind := range e.kinds {
		if kind == target {
			return true
		}
	}
	return false
}

var apiErrorMessageKinds = []struct {
	prefix string
	kind   error
}{
	{"not enough balances", core.ErrInsufficientBalance},
	{"account does not have enough margin", core.ErrInsufficientBalance},
	{"order not found", core.ErrOrderNotFound},
	{"order already closed", core.ErrOrderNotFound},
	{"order already queued for cancellation", core.ErrOrderNotFound},
	{"size too small", core.ErrOrderRejected},
	{"trigger price too", core.ErrOrderRejected},
	{"market not found", core.ErrOrderRejected},
	{"not logged in", core.ErrUnauthorized},
	{"not allowed with", core.ErrUnauthorized},
	{"do not send more than", core.ErrRateLimited},
	{"please retry request", core.ErrRateLimited},
}

func newAPIError(status int, msg string) *APIError {
	apiErr := &APIError{StatusCode: status, Message: msg}
	apiErr.kinds = classifyAPIErrorKinds(status, msg)
	return apiErr
}

func classifyAPIErrorKinds(status int, msg string) []error {
	kinds := make([]error, 0, 2)
	normalizedMsg := normalizeAPIErrorMsg(msg)
	for _, entry := range apiErrorMessageKinds {
		if strings.HasPrefix(normalizedMsg, entry.prefix) {
			kinds = appendErrorKind(kinds, entry.kind)
		}
	}
	switch status {
	case 401:
		kinds = appendErrorKind(kinds, core.ErrUnauthorized)
	case 429:
		kinds = appendErrorKind(kinds, core.ErrRateLimited)
	}
	return kinds
}

func appendErrorKind(kinds []error, kind error) []error {
	if kind == nil {
		return kinds
	}
	for _, existing := range kinds {
		if existing == kind {
			return kinds
		}
	}
	return append(kinds, kind)
}

func normalizeAPIErrorMsg(msg string) string {
	return strings.ToLower(strings.TrimSpace(msg))
}

func AsAPIError(err error) (*APIError, bool) {
	if err == nil {
		return nil, false
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return nil, false
	}
	return apiErr, true
}

func AsHTTPError(err error) (*HTTPError, bool) {
	if err == nil {
		return nil, false
	}
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return nil, false
	}
	return httpErr, true
}
