package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed backend call.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindAuthorizationDenied
	KindRateLimited
	KindValidation
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network_failure"
	case KindAuthorizationDenied:
		return "authorization_denied"
	case KindRateLimited:
		return "rate_limited"
	case KindValidation:
		return "validation_failure"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// fallbackMessages are shown when the backend payload carries no message.
var fallbackMessages = map[Kind]string{
	KindNetwork:             "Unable to reach the jobs service.",
	KindAuthorizationDenied: "You are not allowed to do that. Please log in again.",
	KindRateLimited:         "Too many requests, please slow down.",
	KindValidation:          "The submitted data was rejected.",
	KindNotFound:            "The requested resource was not found.",
	KindUnknown:             "Please try again later.",
}

// Error is returned for every failed backend call.
type Error struct {
	Kind    Kind
	Status  int    // HTTP status, 0 for transport failures
	Message string // human-readable message from the payload, may be empty
	Err     error  // transport or decode cause, may be nil
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("backend %s: %v", e.Kind, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d (%s): %s", e.Status, e.Kind, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("backend returned %d (%s): %v", e.Status, e.Kind, e.Err)
	}
	return fmt.Sprintf("backend returned %d (%s)", e.Status, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// ClassifyStatus maps an HTTP status code to an error Kind.
func ClassifyStatus(code int) Kind {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuthorizationDenied
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusNotFound:
		return KindNotFound
	default:
		return KindUnknown
	}
}

// KindOf returns the Kind of err, or KindUnknown when err is not a backend error.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindUnknown
}

// UserMessage returns the text to show an end user for err: the backend's
// message when it sent one, else a generic sentence for the error kind.
func UserMessage(err error) string {
	var be *Error
	if errors.As(err, &be) {
		if be.Message != "" {
			return be.Message
		}
		return fallbackMessages[be.Kind]
	}
	return fallbackMessages[KindUnknown]
}

// payloadMessage pulls a message out of an error body. NestJS-style backends
// send either a string or a list of validation messages.
func payloadMessage(body []byte) string {
	var p struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &p); err != nil {
		return ""
	}
	if len(p.Message) > 0 {
		var s string
		if json.Unmarshal(p.Message, &s) == nil && s != "" {
			return s
		}
		var list []string
		if json.Unmarshal(p.Message, &list) == nil && len(list) > 0 {
			return strings.Join(list, "; ")
		}
	}
	return p.Error
}
