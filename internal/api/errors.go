package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrorKind tags a RequestError so callers can switch on the failure
// class instead of inspecting ad hoc fields.
type ErrorKind string

const (
	// KindNetwork is a transport failure: DNS, refused connection,
	// timeout. Status is always 0.
	KindNetwork ErrorKind = "network"
	// KindDecode is a malformed body for its declared content type.
	KindDecode ErrorKind = "decode"
	// KindAPI is a non-2xx response with a server-supplied message.
	KindAPI ErrorKind = "api"
	// KindCancelled is a caller-initiated context cancellation.
	KindCancelled ErrorKind = "cancelled"
	// KindValidation is a client-side precondition failure raised
	// before any network call.
	KindValidation ErrorKind = "validation"
)

// RequestError is the single error shape returned for every failed
// request, regardless of where the failure happened.
type RequestError struct {
	Kind    ErrorKind
	Status  int // HTTP status, 0 for non-HTTP failures
	Message string
	Err     error // underlying cause, when any
}

func (e *RequestError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsAuthFailure reports whether the server rejected the bearer token.
// The session clear + re-login policy lives in the auth controller, not
// here; the client only classifies.
func (e *RequestError) IsAuthFailure() bool {
	return e.Kind == KindAPI &&
		(e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden)
}

// AsRequestError unwraps err into a RequestError if it is one.
func AsRequestError(err error) (*RequestError, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr, true
	}
	return nil, false
}

func validationError(format string, args ...any) *RequestError {
	return &RequestError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// apiMessage extracts the best human-readable message from an error
// body. The backend reports errors as {"detail": ...} where detail is
// either a string or a list of {loc, msg} validation entries; anything
// else falls back to the raw body, then the status text.
func apiMessage(body []byte, status int) string {
	detail := gjson.GetBytes(body, "detail")

	switch {
	case detail.Type == gjson.String:
		return detail.String()
	case detail.IsArray():
		var parts []string
		for _, entry := range detail.Array() {
			var locs []string
			for _, loc := range entry.Get("loc").Array() {
				locs = append(locs, loc.String())
			}
			msg := entry.Get("msg").String()
			if len(locs) > 0 {
				parts = append(parts, strings.Join(locs, ".")+": "+msg)
			} else {
				parts = append(parts, msg)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "; ")
		}
	}

	if trimmed := strings.TrimSpace(string(body)); trimmed != "" {
		return trimmed
	}
	return http.StatusText(status)
}
